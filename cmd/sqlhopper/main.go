package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FrancescoCarrabino/sqlhopper/internal/config"
	"github.com/FrancescoCarrabino/sqlhopper/internal/keywords"
	"github.com/FrancescoCarrabino/sqlhopper/internal/logging"
	"github.com/FrancescoCarrabino/sqlhopper/internal/parser"
	"github.com/FrancescoCarrabino/sqlhopper/internal/session"
)

const serverName = "sqlhopper"

var version = "0.1.0"

var (
	flagConfig   string
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           serverName,
		Short:         "Hover and completion language server for SQL queries",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: $XDG_CONFIG_HOME/sqlhopper/config.toml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "write logs to this file instead of stderr")

	root.AddCommand(newServeCmd())
	root.AddCommand(newHoverCmd())
	root.AddCommand(newCompleteCmd())
	root.AddCommand(newKeywordsCmd())
	return root
}

// runtime is everything a command needs once configuration is resolved.
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	parser  *parser.Manager
	docs    *keywords.Docs
	session *session.Session
}

func (r *runtime) Close() {
	r.session.Shutdown()
	r.parser.Close()
	_ = r.logger.Sync()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		if err := cfg.SetLogLevel(flagLogLevel); err != nil {
			return nil, err
		}
	}
	if flagLogFile != "" {
		cfg.LogFile = flagLogFile
	}
	return cfg, nil
}

// bootstrap builds the parser, docs and session. Grammar or query failures
// surface here, before anything is served.
func bootstrap() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	if cfg.Source != "" {
		logger.Debug("Loaded config", zap.String("path", cfg.Source))
	}

	docs, err := keywords.Load(cfg.Keywords.DocsFile)
	if err != nil {
		return nil, err
	}
	p, err := parser.NewManager(logger)
	if err != nil {
		return nil, fmt.Errorf("initialize parser: %w", err)
	}

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		parser:  p,
		docs:    docs,
		session: session.New(p, docs, logger, cfg.Completion.FlattenMultiline),
	}, nil
}
