package loader

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
		err  bool
	}{
		{"/a/config.toml", FormatTOML, false},
		{"/a/config.TOML", FormatTOML, false},
		{"config.yaml", FormatYAML, false},
		{"config.yml", FormatYAML, false},
		{"config.json", "", true},
		{"config", "", true},
	}

	for _, tt := range tests {
		got, err := FormatOf(tt.path)
		if (err != nil) != tt.err {
			t.Errorf("FormatOf(%q) error = %v, want error %v", tt.path, err, tt.err)
			continue
		}
		if tt.err && !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("FormatOf(%q) error = %v, want ErrUnsupportedFormat", tt.path, err)
		}
		if got != tt.want {
			t.Errorf("FormatOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.toml", `
[log]
level = "debug"

[grammars.lua]
enable = true
patterns = ["*.rockspec"]

[grammars.lua.keywords]
2 = ["print", "require"]
`)

	config, err := NewTOMLLoaderWithFS(memfs, "/config.toml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	log, ok := config["log"].(map[string]any)
	if !ok {
		t.Fatal("expected log to be a map")
	}
	if log["level"] != "debug" {
		t.Errorf("level = %v, want 'debug'", log["level"])
	}

	grammars, ok := config["grammars"].(map[string]any)
	if !ok {
		t.Fatal("expected grammars to be a map")
	}
	lua, ok := grammars["lua"].(map[string]any)
	if !ok {
		t.Fatal("expected grammars.lua to be a map")
	}
	if lua["enable"] != true {
		t.Errorf("enable = %v, want true", lua["enable"])
	}
	keywords, ok := lua["keywords"].(map[string]any)
	if !ok {
		t.Fatal("expected keywords to be a map")
	}
	if _, ok := keywords["2"]; !ok {
		t.Errorf("keywords = %v, want key \"2\"", keywords)
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	config, err := NewTOMLLoaderWithFS(NewMemFS(), "/nonexistent.toml").Load()
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if config != nil {
		t.Error("expected nil config for non-existent file")
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/invalid.toml", "[log\nlevel = 4\n")

	_, err := NewTOMLLoaderWithFS(memfs, "/invalid.toml").Load()
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.toml" {
		t.Errorf("Path = %q, want '/invalid.toml'", parseErr.Path)
	}
	if parseErr.Line == 0 {
		t.Error("Line should be set for TOML decode errors")
	}
	if !strings.Contains(err.Error(), "/invalid.toml at line") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestTOMLLoader_LoadFromReader(t *testing.T) {
	l := NewTOMLLoader("")
	config, err := l.LoadFromReader(strings.NewReader("level = \"warn\"\n"))
	if err != nil {
		t.Fatalf("LoadFromReader failed: %v", err)
	}
	if config["level"] != "warn" {
		t.Errorf("level = %v, want 'warn'", config["level"])
	}

	_, err = l.LoadFromReader(strings.NewReader("= broken"))
	var parseErr *ParseError
	if !errors.As(err, &parseErr) || parseErr.Path != "<reader>" {
		t.Errorf("error = %v, want parse error for <reader>", err)
	}
}

func TestYAMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/config.yaml", `
log:
  level: warn
grammars:
  tcl:
    keywords:
      1: [proc, set]
      3: "expr incr"
`)

	config, err := NewYAMLLoaderWithFS(memfs, "/config.yaml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	grammars, ok := config["grammars"].(map[string]any)
	if !ok {
		t.Fatalf("grammars = %T, want map", config["grammars"])
	}
	tcl, ok := grammars["tcl"].(map[string]any)
	if !ok {
		t.Fatalf("grammars.tcl = %T, want map", grammars["tcl"])
	}
	keywords, ok := tcl["keywords"].(map[string]any)
	if !ok {
		t.Fatalf("keywords = %T, want map with string keys", tcl["keywords"])
	}
	if keywords["3"] != "expr incr" {
		t.Errorf("keywords[3] = %v, want 'expr incr'", keywords["3"])
	}
	list, ok := keywords["1"].([]any)
	if !ok || len(list) != 2 || list[0] != "proc" {
		t.Errorf("keywords[1] = %v, want [proc set]", keywords["1"])
	}
}

func TestYAMLLoader_Empty(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/empty.yml", "")

	config, err := NewYAMLLoaderWithFS(memfs, "/empty.yml").Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config == nil || len(config) != 0 {
		t.Errorf("config = %v, want empty map", config)
	}
}

func TestYAMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/bad.yaml", "log: [unclosed\n")

	_, err := NewYAMLLoaderWithFS(memfs, "/bad.yaml").Load()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Path != "/bad.yaml" {
		t.Errorf("Path = %q, want '/bad.yaml'", parseErr.Path)
	}
}

func TestLoadWithIncludes(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cfg/main.toml", `
"@include" = ["base.yaml"]

[log]
level = "debug"
`)
	memfs.AddFile("/cfg/base.yaml", `
log:
  level: error
tracing:
  enabled: true
`)

	config, err := LoadWithIncludes(memfs, "/cfg/main.toml", 4)
	if err != nil {
		t.Fatalf("LoadWithIncludes failed: %v", err)
	}
	if _, ok := config["@include"]; ok {
		t.Error("@include key should be removed")
	}

	log := config["log"].(map[string]any)
	if log["level"] != "debug" {
		t.Errorf("level = %v, want main file to win", log["level"])
	}
	tracing := config["tracing"].(map[string]any)
	if tracing["enabled"] != true {
		t.Errorf("tracing.enabled = %v, want value from include", tracing["enabled"])
	}
}

func TestLoadWithIncludes_Cycle(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/a.toml", `"@include" = "b.toml"`)
	memfs.AddFile("/b.toml", `"@include" = "a.toml"`)

	_, err := LoadWithIncludes(memfs, "/a.toml", 3)
	if !errors.Is(err, ErrIncludeDepth) {
		t.Errorf("error = %v, want ErrIncludeDepth", err)
	}
}

func TestDeepMerge(t *testing.T) {
	dst := map[string]any{
		"log":  map[string]any{"level": "info", "keep": true},
		"list": []any{"a"},
	}
	src := map[string]any{
		"log":  map[string]any{"level": "debug"},
		"list": []any{"b"},
	}

	got := DeepMerge(dst, src)
	log := got["log"].(map[string]any)
	if log["level"] != "debug" || log["keep"] != true {
		t.Errorf("log = %v, want merged map", log)
	}
	if list := got["list"].([]any); len(list) != 1 || list[0] != "b" {
		t.Errorf("list = %v, want replaced", list)
	}
}

func TestClone(t *testing.T) {
	src := map[string]any{
		"a": map[string]any{"b": []any{map[string]any{"c": 1}}},
	}
	dst := Clone(src)
	dst["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"] = 2

	if src["a"].(map[string]any)["b"].([]any)[0].(map[string]any)["c"] != 1 {
		t.Error("Clone shares nested values with the source")
	}
	if Clone(nil) != nil {
		t.Error("Clone(nil) should be nil")
	}
}

func TestEnvLoader(t *testing.T) {
	env := map[string]string{
		"LEXFOLD_LOG_LEVEL":      "debug",
		"LEXFOLD_TRACE":          "true",
		"LEXFOLD_TRACE_EXPORTER": "file",
		"OTHER_LOG_LEVEL":        "error",
	}
	l := NewEnvLoaderWithLookup("LEXFOLD_", func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	config, err := l.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := config["log"].(map[string]any)["level"]; got != "debug" {
		t.Errorf("log.level = %v, want debug", got)
	}
	tracing := config["tracing"].(map[string]any)
	if tracing["enabled"] != true {
		t.Errorf("tracing.enabled = %v, want true", tracing["enabled"])
	}
	if tracing["exporter"] != "file" {
		t.Errorf("tracing.exporter = %v, want file", tracing["exporter"])
	}
	if _, ok := tracing["file_path"]; ok {
		t.Error("unset variable should not produce a setting")
	}
}

func TestEnvLoader_AddMapping(t *testing.T) {
	l := NewEnvLoaderWithLookup("LEXFOLD_", func(k string) (string, bool) {
		if k == "LEXFOLD_LUA_FOLDCOMPACT" {
			return "0", true
		}
		return "", false
	})
	l.AddMapping("LEXFOLD_LUA_FOLDCOMPACT", "grammars.lua.options.foldcompact")

	config, _ := l.Load()
	lua := config["grammars"].(map[string]any)["lua"].(map[string]any)
	if got := lua["options"].(map[string]any)["foldcompact"]; got != int64(0) {
		t.Errorf("foldcompact = %v (%T), want int64 0", got, got)
	}
}
