package lua

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Sandbox restricts what a script can reach.
type Sandbox struct {
	L *lua.LState

	modules map[string]bool
	print   func(string)
}

// NewSandbox creates a new sandbox for the Lua state.
func NewSandbox(L *lua.LState) *Sandbox {
	return &Sandbox{
		L: L,
		modules: map[string]bool{
			"string": true,
			"table":  true,
			"math":   true,
		},
		print: func(string) {},
	}
}

// Install removes the functions that load code from disk or strings,
// routes print through the sandbox and replaces require with one that
// only loads whitelisted modules.
func (s *Sandbox) Install() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "module"} {
		s.L.SetGlobal(name, lua.LNil)
	}
	s.installPrint()
	s.installSafeRequire()
}

// SetPrint sends the output of print to out.
func (s *Sandbox) SetPrint(out func(string)) {
	s.print = out
}

// Preload makes a Go module available to require.
func (s *Sandbox) Preload(name string, loader lua.LGFunction) {
	s.modules[name] = true
	s.L.PreloadModule(name, loader)
}

func (s *Sandbox) installPrint() {
	s.L.SetGlobal("print", s.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, n)
		for i := 1; i <= n; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		s.print(strings.Join(parts, "\t"))
		return 0
	}))
}

// installSafeRequire clears package.path and package.cpath so nothing is
// loaded from disk and wraps require with the module whitelist.
func (s *Sandbox) installSafeRequire() {
	if pkg, ok := s.L.GetGlobal("package").(*lua.LTable); ok {
		s.L.SetField(pkg, "path", lua.LString(""))
		s.L.SetField(pkg, "cpath", lua.LString(""))
	}

	originalRequire := s.L.GetGlobal("require")
	s.L.SetGlobal("require", s.L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		if !s.modules[name] {
			L.RaiseError("module %q is not available", name)
			return 0
		}
		L.Push(originalRequire)
		L.Push(lua.LString(name))
		L.Call(1, 1)
		return 1
	}))
}
