package lua

import (
	"context"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// ModuleName is the name scripts require to reach the host.
const ModuleName = "lexfold"

// Env is what a script sees of the grammar it configures.
type Env struct {
	// Grammar is the grammar name, exposed as lexfold.grammar.
	Grammar string

	// Defaults are the grammar's default keyword lists, returned by
	// lexfold.defaults(n).
	Defaults [9][]string

	// Print receives the output of print. Nil discards it.
	Print func(string)
}

// Keywords maps keyword categories 1 to 9 to word lists.
type Keywords map[int][]string

// Categories returns the categories in order.
func (k Keywords) Categories() []int {
	out := make([]int, 0, len(k))
	for n := range k {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// Clone copies the lists.
func (k Keywords) Clone() Keywords {
	out := make(Keywords, len(k))
	for n, words := range k {
		out[n] = append([]string(nil), words...)
	}
	return out
}

// RunFile runs the keyword script at path.
func RunFile(ctx context.Context, path string, env Env, opts ...StateOption) (Keywords, error) {
	return run(path, env, opts, func(s *State) ([]lua.LValue, error) {
		return s.DoFile(ctx, path)
	})
}

// RunString runs a keyword script held in memory. name labels errors.
func RunString(ctx context.Context, name, code string, env Env, opts ...StateOption) (Keywords, error) {
	return run(name, env, opts, func(s *State) ([]lua.LValue, error) {
		return s.DoString(ctx, code)
	})
}

func run(name string, env Env, opts []StateOption, do func(*State) ([]lua.LValue, error)) (Keywords, error) {
	s := NewState(opts...)
	defer s.Close()

	if env.Print != nil {
		s.Sandbox().SetPrint(env.Print)
	}
	s.Sandbox().Preload(ModuleName, hostModule(env))

	ret, err := do(s)
	if err != nil {
		return nil, &ScriptError{Path: name, Err: err}
	}

	// A script may also leave its table in the global "keywords".
	var result lua.LValue = lua.LNil
	if len(ret) > 0 {
		result = ret[0]
	}
	if result == lua.LNil {
		result = s.GetGlobal("keywords")
	}

	kw, err := NewBridge(s.L).Keywords(result)
	if err != nil {
		return nil, &ScriptError{Path: name, Err: err}
	}
	return kw, nil
}

func hostModule(env Env) lua.LGFunction {
	return func(L *lua.LState) int {
		b := NewBridge(L)
		mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
			"defaults": func(L *lua.LState) int {
				n := L.CheckInt(1)
				if n < 1 || n > len(env.Defaults) {
					L.ArgError(1, "keyword category must be from 1 to 9")
					return 0
				}
				L.Push(b.StringList(env.Defaults[n-1]))
				return 1
			},
			"words": func(L *lua.LState) int {
				L.Push(b.StringList(strings.Fields(L.CheckString(1))))
				return 1
			},
		})
		L.SetField(mod, "grammar", lua.LString(env.Grammar))
		L.Push(mod)
		return 1
	}
}
