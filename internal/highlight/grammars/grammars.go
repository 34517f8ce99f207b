// Package grammars bundles the built-in grammars.
package grammars

import (
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/highlight/grammars/bash"
	"github.com/dshills/lexfold/internal/highlight/grammars/cfamily"
	"github.com/dshills/lexfold/internal/highlight/grammars/lua"
	"github.com/dshills/lexfold/internal/highlight/grammars/makefile"
	"github.com/dshills/lexfold/internal/highlight/grammars/python"
	"github.com/dshills/lexfold/internal/highlight/grammars/tcl"
)

// All returns a fresh instance of every built-in grammar.
func All() []grammar.Grammar {
	return []grammar.Grammar{
		bash.New(),
		cfamily.NewCPP(),
		lua.New(),
		makefile.New(),
		python.New(),
		tcl.New(),
		cfamily.NewTOL(),
	}
}

// Default returns a registry holding every built-in grammar.
func Default() *grammar.Registry {
	r := grammar.NewRegistry()
	for _, g := range All() {
		r.Register(g)
	}
	return r
}
