package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dshills/lexfold/internal/config/loader"
	"github.com/dshills/lexfold/internal/logging"
)

func noEnv() Option {
	return WithEnv(nil)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if c.LogLevel() != logging.LevelInfo {
		t.Errorf("LogLevel() = %v, want info", c.LogLevel())
	}
	tr := c.Tracing()
	if tr.Enabled || tr.Exporter != "stdout" || tr.ServiceName != "lexfold" {
		t.Errorf("Tracing() = %+v", tr)
	}
	if len(c.Grammars()) != 0 {
		t.Errorf("Grammars() = %v, want none", c.Grammars())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.toml"), noEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.LogLevel() != logging.LevelInfo {
		t.Errorf("LogLevel() = %v, want info", c.LogLevel())
	}
}

func TestLoad_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[log]
level = "debug"

[tracing]
enabled = true
exporter = "file"
file_path = "/tmp/trace.json"

[grammars.lua]
enable = false
bracestyle = "operator"
patterns = ["*.rockspec", "*.luau"]
keyword_script = "kw.lua"

[grammars.lua.options]
foldcompact = false

[grammars.lua.keywords]
2 = ["print", "require"]
3 = "a b  c"

[grammars.python]
foldquote = 0
`)

	c, err := Load(path, noEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.Path() != path {
		t.Errorf("Path() = %q, want %q", c.Path(), path)
	}
	if c.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel() = %v, want debug", c.LogLevel())
	}
	tr := c.Tracing()
	if !tr.Enabled || tr.Exporter != "file" || tr.FilePath != "/tmp/trace.json" {
		t.Errorf("Tracing() = %+v", tr)
	}
	if got := c.Grammars(); !reflect.DeepEqual(got, []string{"lua", "python"}) {
		t.Errorf("Grammars() = %v", got)
	}

	lua, err := c.Grammar("lua")
	if err != nil {
		t.Fatalf("Grammar(lua) error = %v", err)
	}
	if lua.Enable == nil || *lua.Enable {
		t.Errorf("Enable = %v, want false", lua.Enable)
	}
	if lua.KeywordScript != filepath.Join(filepath.Dir(path), "kw.lua") {
		t.Errorf("KeywordScript = %q, want it next to the settings file", lua.KeywordScript)
	}
	if !reflect.DeepEqual(lua.Patterns, []string{"*.rockspec", "*.luau"}) {
		t.Errorf("Patterns = %v", lua.Patterns)
	}
	wantKeywords := map[int][]string{2: {"print", "require"}, 3: {"a", "b", "c"}}
	if !reflect.DeepEqual(lua.Keywords, wantKeywords) {
		t.Errorf("Keywords = %v, want %v", lua.Keywords, wantKeywords)
	}
	if got := lua.Categories(); !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("Categories() = %v", got)
	}
	wantSettings := map[string]string{"enable": "false", "bracestyle": "operator", "foldcompact": "0"}
	if got := lua.Settings(); !reflect.DeepEqual(got, wantSettings) {
		t.Errorf("Settings() = %v, want %v", got, wantSettings)
	}

	py, err := c.Grammar("python")
	if err != nil {
		t.Fatalf("Grammar(python) error = %v", err)
	}
	if got := py.Settings(); !reflect.DeepEqual(got, map[string]string{"foldquote": "0"}) {
		t.Errorf("python Settings() = %v", got)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
log:
  level: warn
grammars:
  tcl:
    keywords:
      1: [proc, set]
    options:
      foldcomment: true
`)

	c, err := Load(path, noEnv())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.LogLevel() != logging.LevelWarn {
		t.Errorf("LogLevel() = %v, want warn", c.LogLevel())
	}
	tcl, err := c.Grammar("tcl")
	if err != nil {
		t.Fatalf("Grammar(tcl) error = %v", err)
	}
	if !reflect.DeepEqual(tcl.Keywords[1], []string{"proc", "set"}) {
		t.Errorf("Keywords[1] = %v", tcl.Keywords[1])
	}
	if tcl.Options["foldcomment"] != "1" {
		t.Errorf("foldcomment = %q, want 1", tcl.Options["foldcomment"])
	}
}

func TestLoad_Environment(t *testing.T) {
	path := writeFile(t, "config.toml", "[log]\nlevel = \"error\"\n")
	env := loader.NewEnvLoaderWithLookup(EnvPrefix, func(k string) (string, bool) {
		switch k {
		case "LEXFOLD_LOG_LEVEL":
			return "debug", true
		case "LEXFOLD_TRACE":
			return "1", true
		}
		return "", false
	})

	c, err := Load(path, WithEnv(env))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if c.LogLevel() != logging.LevelDebug {
		t.Errorf("LogLevel() = %v, want the environment to win", c.LogLevel())
	}
	if !c.Tracing().Enabled {
		t.Error("LEXFOLD_TRACE=1 should enable tracing")
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		target  error
	}{
		{"bad level", "c.toml", "[log]\nlevel = \"loud\"\n", ErrValidationFailed},
		{"bad exporter", "c.toml", "[tracing]\nexporter = \"jaeger\"\n", ErrValidationFailed},
		{"level type", "c.toml", "[log]\nlevel = 3\n", ErrTypeMismatch},
		{"grammars type", "c.toml", "grammars = 1\n", ErrTypeMismatch},
		{"category", "c.toml", "[grammars.lua.keywords]\n10 = [\"x\"]\n", ErrValidationFailed},
		{"category name", "c.toml", "[grammars.lua.keywords]\nfoo = [\"x\"]\n", ErrValidationFailed},
		{"keyword type", "c.toml", "[grammars.lua.keywords]\n1 = 5\n", ErrTypeMismatch},
		{"enable type", "c.toml", "[grammars.lua]\nenable = \"sure\"\n", ErrTypeMismatch},
		{"patterns type", "c.toml", "[grammars.lua]\npatterns = \"*.x\"\n", ErrTypeMismatch},
		{"option type", "c.yaml", "grammars:\n  lua:\n    options:\n      foldcompact: [1]\n", ErrTypeMismatch},
		{"format", "c.json", "{}", loader.ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content), noEnv())
			if !errors.Is(err, tt.target) {
				t.Errorf("Load() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestLoad_ReportsEveryBadSetting(t *testing.T) {
	content := "[log]\nlevel = \"loud\"\n[tracing]\nexporter = 5\n[grammars.lua.keywords]\n10 = [\"x\"]\n"
	_, err := Load(writeFile(t, "c.toml", content), noEnv())

	var problems Problems
	if !errors.As(err, &problems) {
		t.Fatalf("Load() error = %v, want Problems", err)
	}
	if len(problems) != 3 {
		t.Fatalf("got %d problems, want 3: %v", len(problems), err)
	}
	if !errors.Is(err, ErrTypeMismatch) || !errors.Is(err, ErrValidationFailed) {
		t.Errorf("Load() error = %v, want both a type mismatch and a validation failure", err)
	}

	var setting *SettingError
	if !errors.As(problems[0], &setting) || setting.Path != "log.level" {
		t.Errorf("first problem = %v, want log.level", problems[0])
	}
	want := `log.level: loud is not debug, info, warn or error`
	if problems[0].Error() != want {
		t.Errorf("Error() = %q, want %q", problems[0].Error(), want)
	}
	if got := problems[1].Error(); got != "tracing.exporter: want string, got int" {
		t.Errorf("Error() = %q", got)
	}
}

func TestLoad_ParseError(t *testing.T) {
	path := writeFile(t, "c.toml", "[log\n")
	_, err := Load(path, noEnv())

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() error = %v, want *ParseError", err)
	}
	if pe.Path != path {
		t.Errorf("Path = %q, want %q", pe.Path, path)
	}
}

func TestReload(t *testing.T) {
	path := writeFile(t, "config.toml", "[log]\nlevel = \"error\"\n")
	c, err := Load(path, noEnv())
	if err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	next, err := c.Reload(noEnv())
	if err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if next.LogLevel() != logging.LevelDebug {
		t.Errorf("reloaded LogLevel() = %v, want debug", next.LogLevel())
	}
	if c.LogLevel() != logging.LevelError {
		t.Error("Reload must not change the original snapshot")
	}
}

func TestFromMap(t *testing.T) {
	c, err := FromMap(map[string]any{
		"grammars": map[string]any{
			"bash": map[string]any{"foldcomment": true},
		},
	})
	if err != nil {
		t.Fatalf("FromMap() error = %v", err)
	}
	bash, _ := c.Grammar("bash")
	if bash.Options["foldcomment"] != "1" {
		t.Errorf("foldcomment = %q, want 1", bash.Options["foldcomment"])
	}

	if _, err := FromMap(map[string]any{"log": map[string]any{"level": "x"}}); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("FromMap() error = %v, want validation failure", err)
	}
}

func TestGrammar_Absent(t *testing.T) {
	g, err := Default().Grammar("cpp")
	if err != nil {
		t.Fatalf("Grammar() error = %v", err)
	}
	if g.Name != "cpp" || g.Enable != nil || len(g.Settings()) != 0 {
		t.Errorf("Grammar() = %+v, want empty section", g)
	}
}

func TestGetters(t *testing.T) {
	c, err := FromMap(map[string]any{
		"x": map[string]any{
			"n":    int64(4),
			"b":    int64(1),
			"s":    "str",
			"list": []any{"a", "b"},
			"mix":  []any{"a", 1},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if n, err := c.GetInt("x.n"); err != nil || n != 4 {
		t.Errorf("GetInt = %d, %v", n, err)
	}
	if b, err := c.GetBool("x.b"); err != nil || !b {
		t.Errorf("GetBool = %v, %v", b, err)
	}
	if _, err := c.GetBool("x.n"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetBool(4) error = %v, want type mismatch", err)
	}
	if s, err := c.GetString("x.s"); err != nil || s != "str" {
		t.Errorf("GetString = %q, %v", s, err)
	}
	if l, err := c.GetStringSlice("x.list"); err != nil || !reflect.DeepEqual(l, []string{"a", "b"}) {
		t.Errorf("GetStringSlice = %v, %v", l, err)
	}
	if _, err := c.GetStringSlice("x.mix"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetStringSlice(mix) error = %v", err)
	}
	if _, err := c.GetString("x.missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetString(missing) error = %v", err)
	}
	if _, err := c.GetString("x.s.deeper"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetString(x.s.deeper) error = %v", err)
	}

	merged := c.Merged()
	merged["x"].(map[string]any)["s"] = "changed"
	if s, _ := c.GetString("x.s"); s != "str" {
		t.Error("Merged must return a copy")
	}
}

func TestDefaultPath(t *testing.T) {
	p := DefaultPath()
	if filepath.Base(p) != "config.toml" || filepath.Base(filepath.Dir(p)) != "lexfold" {
		t.Errorf("DefaultPath() = %q", p)
	}
}
