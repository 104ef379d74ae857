// Package keywords holds the static keyword documentation used for hover and
// completion item details.
package keywords

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed keywords.toml
var embeddedDocs []byte

// file is the on-disk layout of a documentation file (TOML or YAML).
type file struct {
	Aliases map[string]string `toml:"aliases" yaml:"aliases"`
	Docs    map[string]string `toml:"docs" yaml:"docs"`
}

// Docs maps canonical keywords to markdown documentation. It is immutable
// once built and safe for concurrent reads.
type Docs struct {
	docs    map[string]string
	aliases map[string]string
}

// Default returns the documentation bundled with the binary.
func Default() (*Docs, error) {
	var f file
	if _, err := toml.Decode(string(embeddedDocs), &f); err != nil {
		return nil, fmt.Errorf("decode embedded keyword docs: %w", err)
	}
	d := &Docs{docs: make(map[string]string), aliases: make(map[string]string)}
	d.merge(f)
	return d, nil
}

// Load returns the bundled documentation overlaid with the entries of path.
// An empty path yields the defaults. The format is chosen by extension:
// .toml, .yaml or .yml.
func Load(path string) (*Docs, error) {
	d, err := Default()
	if err != nil {
		return nil, err
	}
	if path == "" {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read keyword docs '%s': %w", path, err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("decode keyword docs '%s': %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("decode keyword docs '%s': %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported keyword docs format %q", ext)
	}
	d.merge(f)
	return d, nil
}

func (d *Docs) merge(f file) {
	for k, v := range f.Docs {
		d.docs[Canonical(k)] = strings.TrimSpace(v)
	}
	for k, v := range f.Aliases {
		d.aliases[Canonical(k)] = Canonical(v)
	}
}

// Canonical upper-cases a keyword and collapses inner whitespace, so
// "group\n  by" and "GROUP BY" name the same entry.
func Canonical(keyword string) string {
	return strings.ToUpper(strings.Join(strings.Fields(keyword), " "))
}

// Lookup returns the documentation for keyword, following aliases.
func (d *Docs) Lookup(keyword string) (string, bool) {
	key := Canonical(keyword)
	if text, ok := d.docs[key]; ok {
		return text, true
	}
	if target, ok := d.aliases[key]; ok {
		text, ok := d.docs[target]
		return text, ok
	}
	return "", false
}

// Keywords returns the documented keywords in sorted order.
func (d *Docs) Keywords() []string {
	out := make([]string, 0, len(d.docs))
	for k := range d.docs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
