package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/ardnew/stencil/lang"
)

// Symbols lists the registered functions, filters, and tests. With a query,
// only fuzzy matches are listed, best first.
type Symbols struct {
	Engine `embed:""`

	Query string `arg:""     help:"Fuzzy filter on symbol names" optional:""`
	Kind  string `default:"" enum:",function,filter,test"        help:"Only list symbols of this kind." short:"k"`
}

type entry struct {
	kind   string
	symbol *lang.Symbol
}

// entries implements [fuzzy.Source] over symbol names.
type entries []entry

func (e entries) String(i int) string { return e[i].symbol.Name }

func (e entries) Len() int { return len(e) }

// Run executes the symbols command.
func (s *Symbols) Run(_ context.Context, out io.Writer) error {
	env, err := s.Environment()
	if err != nil {
		return err
	}

	list := catalog(env, s.Kind)

	if s.Query != "" {
		matches := fuzzy.FindFrom(s.Query, list)

		ranked := make(entries, len(matches))
		for i, m := range matches {
			ranked[i] = list[m.Index]
		}

		list = ranked
	}

	var sb strings.Builder
	for _, e := range list {
		fmt.Fprintf(&sb, "%-8s  %s\n", e.kind, e.symbol.Signature())
	}

	if _, err := io.WriteString(out, sb.String()); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// catalog returns the symbols of env, optionally restricted to one kind.
func catalog(env *lang.Environment, kind string) entries {
	var list entries

	for _, reg := range []*lang.Registry{env.Functions(), env.Filters(), env.Tests()} {
		if kind != "" && reg.Kind() != kind {
			continue
		}

		for _, sym := range reg.Symbols() {
			list = append(list, entry{kind: reg.Kind(), symbol: sym})
		}
	}

	return list
}
