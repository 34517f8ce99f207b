// Package lua runs keyword scripts: small sandboxed Lua programs that
// return keyword lists for a grammar.
//
// A script sees the safe parts of the standard library (base, string,
// table, math) and a "lexfold" module:
//
//	local lf = require("lexfold")
//	local words = lf.defaults(1)
//	table.insert(words, "goto")
//	return { [1] = words, [2] = "print require pairs" }
//
// The returned table maps keyword categories 1 to 9 to either an array of
// words or one string of words separated by spaces.
package lua

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// DefaultExecutionTimeout bounds one script run.
const DefaultExecutionTimeout = 2 * time.Second

// State wraps a sandboxed gopher-lua state.
//
// gopher-lua's LState is not goroutine-safe; the mutex serialises calls
// made through State.
type State struct {
	L *lua.LState

	mu      sync.Mutex
	timeout time.Duration
	sandbox *Sandbox
	closed  bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithExecutionTimeout sets the timeout for each run. Zero leaves runs
// bounded only by the caller's context.
func WithExecutionTimeout(d time.Duration) StateOption {
	return func(s *State) {
		s.timeout = d
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{timeout: DefaultExecutionTimeout}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(s.L)
	s.sandbox = NewSandbox(s.L)
	s.sandbox.Install()
	return s
}

// openSafeLibraries opens only safe Lua standard libraries. io, os and
// debug stay closed.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenPackage(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// Sandbox returns the sandbox of the state.
func (s *State) Sandbox() *Sandbox {
	return s.sandbox
}

// DoFile runs the file and returns the values its chunk returns.
func (s *State) DoFile(ctx context.Context, path string) ([]lua.LValue, error) {
	return s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.LoadFile(path)
	})
}

// DoString runs code and returns the values it returns.
func (s *State) DoString(ctx context.Context, code string) ([]lua.LValue, error) {
	return s.run(ctx, func() (*lua.LFunction, error) {
		return s.L.LoadString(code)
	})
}

func (s *State) run(ctx context.Context, load func() (*lua.LFunction, error)) (ret []lua.LValue, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrStateClosed
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	s.L.SetContext(ctx)
	defer s.L.RemoveContext()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()

	fn, err := load()
	if err != nil {
		return nil, err
	}

	top := s.L.GetTop()
	s.L.Push(fn)
	if err := s.L.PCall(0, lua.MultRet, nil); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", ErrExecutionTimeout, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	n := s.L.GetTop() - top
	ret = make([]lua.LValue, n)
	for i := 0; i < n; i++ {
		ret[i] = s.L.Get(top + i + 1)
	}
	s.L.Pop(n)
	return ret, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// Close releases the Lua state. Later runs return ErrStateClosed.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.L.Close()
	s.closed = true
}
