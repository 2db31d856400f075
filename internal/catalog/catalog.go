// Package catalog describes the canonical review columns: their stage order and
// PII class.
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yml
var catalogYAML []byte

// PII classes.
const (
	PIINone    = "none"
	PIIDirect  = "direct"
	PIIDerived = "derived"
)

type Column struct {
	Name string `yaml:"name"`
	PII  string `yaml:"pii"`
}

type Catalog struct {
	Columns []Column `yaml:"columns"`
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	seen := map[string]struct{}{}
	for _, col := range c.Columns {
		if col.Name == "" {
			return Catalog{}, fmt.Errorf("catalog column without name")
		}
		if _, dup := seen[col.Name]; dup {
			return Catalog{}, fmt.Errorf("catalog column %q listed twice", col.Name)
		}
		seen[col.Name] = struct{}{}
		switch col.PII {
		case PIINone, PIIDirect, PIIDerived:
		default:
			return Catalog{}, fmt.Errorf("catalog column %q: unknown pii class %q", col.Name, col.PII)
		}
	}
	return c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog Catalog
)

// Default returns the embedded catalog. It panics if the embedded document is
// malformed, which the package tests guard against.
func Default() Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Names returns the column names in stage order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.Columns))
	for i, col := range c.Columns {
		names[i] = col.Name
	}
	return names
}

// Sensitive returns the names of columns holding raw personal data.
func (c Catalog) Sensitive() []string {
	var out []string
	for _, col := range c.Columns {
		if col.PII == PIIDirect {
			out = append(out, col.Name)
		}
	}
	return out
}

// Order arranges columns with catalog columns first, in catalog order, followed by
// any other columns in the order given. Catalog columns missing from columns are
// skipped.
func (c Catalog) Order(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, name := range c.Names() {
		if slices.Contains(columns, name) {
			out = append(out, name)
		}
	}
	for _, name := range columns {
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}
