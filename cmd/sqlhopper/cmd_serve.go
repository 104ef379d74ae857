package main

import (
	"github.com/spf13/cobra"

	"github.com/FrancescoCarrabino/sqlhopper/internal/logging"
	"github.com/FrancescoCarrabino/sqlhopper/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the language server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.Close()

			srv := server.NewServer(serverName, version, rt.session, rt.logger, logging.Verbosity(rt.cfg.LogLevel))
			return srv.RunStdio()
		},
	}
}
