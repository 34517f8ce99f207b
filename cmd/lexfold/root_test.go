package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/lexfold/internal/highlight/dirty"
)

const luaSource = "function f()\n  return (1)\nend\n"

// syncBuffer is a bytes.Buffer safe for the watch command's goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs the command line with an empty settings file.
func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	cfg := writeFile(t, t.TempDir(), "config.toml", "[log]\nlevel = \"error\"\n")

	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func TestGrammarsCmd(t *testing.T) {
	out, _, err := execute(t, context.Background(), "grammars")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "GRAMMAR"))
	for _, name := range []string{"bash", "cpp", "lua", "makefile", "python", "tcl", "tol"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "*.lua")
}

func TestStylesCmd(t *testing.T) {
	out, _, err := execute(t, context.Background(), "styles", "lua")
	require.NoError(t, err)
	assert.Contains(t, out, "identifier")
	assert.Contains(t, out, "foldcompact")
	assert.Contains(t, out, "keyword1")

	out, _, err = execute(t, context.Background(), "styles")
	require.NoError(t, err)
	assert.Contains(t, out, "formatters:")
	assert.Contains(t, out, "monokai")

	_, _, err = execute(t, context.Background(), "styles", "cobol")
	assert.Error(t, err)
}

func TestHighlightCmd(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "f.lua", luaSource)

	out, _, err := execute(t, context.Background(), "highlight", "-f", "noop", path)
	require.NoError(t, err)
	assert.Equal(t, luaSource, out)

	noEOL := writeFile(t, dir, "g.lua", "return 1")
	out, _, err = execute(t, context.Background(), "highlight", "-f", "noop", noEOL)
	require.NoError(t, err)
	assert.Equal(t, "return 1", out)

	out, _, err = execute(t, context.Background(), "highlight", "-f", "html", "-s", "github", path)
	require.NoError(t, err)
	assert.Contains(t, out, "<pre")

	_, _, err = execute(t, context.Background(), "highlight", "-f", "bogus", path)
	assert.Error(t, err)

	_, _, err = execute(t, context.Background(), "highlight", writeFile(t, dir, "notes.txt", "x\n"))
	assert.Error(t, err)

	out, _, err = execute(t, context.Background(), "highlight", "-g", "lua", "-f", "noop", filepath.Join(dir, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "x\n", out)
}

func TestFoldCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.lua", luaSource)

	out, _, err := execute(t, context.Background(), "fold", path)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1 -  0 H. function f()",
		"2 |  1 ..   return (1)",
		"3 '  1 .. end",
	}, strings.Split(strings.TrimSuffix(out, "\n"), "\n"))

	out, _, err = execute(t, context.Background(), "fold", "--all", path)
	require.NoError(t, err)
	assert.Equal(t, "1 +  0 H. function f()\n", out)

	out, _, err = execute(t, context.Background(), "fold", "--collapse", "2", path)
	require.NoError(t, err)
	assert.Equal(t, "1 +  0 H. function f()\n", out, "a line inside a region folds its header")

	out, _, err = execute(t, context.Background(), "fold", "--collapse", "1", "--hidden", path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSuffix(out, "\n"), "\n"), 3)

	_, _, err = execute(t, context.Background(), "fold", "--collapse", "9", path)
	assert.Error(t, err)
}

func TestInspectCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.lua", luaSource)

	out, _, err := execute(t, context.Background(), "inspect", path, "2", "10")
	require.NoError(t, err)
	assert.Contains(t, out, "grammar: lua")
	assert.Contains(t, out, "char:    '('")
	assert.Contains(t, out, "operator")
	assert.Contains(t, out, "fold:    depth 1 header false white false")
	assert.Contains(t, out, "match:   2:12")

	out, _, err = execute(t, context.Background(), "inspect", path, "1", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "keyword1")
	assert.Contains(t, out, "header true")
	assert.NotContains(t, out, "match:")

	tests := []struct {
		name string
		args []string
	}{
		{name: "line zero", args: []string{"0", "1"}},
		{name: "not a number", args: []string{"x", "1"}},
		{name: "line past end", args: []string{"9", "1"}},
		{name: "column past end", args: []string{"1", "99"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := execute(t, context.Background(), append([]string{"inspect", path}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestSetupErrors(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.toml"), "grammars"})
	assert.Error(t, cmd.Execute())

	_, _, err := execute(t, context.Background(), "--log-level", "loud", "grammars")
	assert.ErrorContains(t, err, "invalid log level")
}

func TestWatchCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "f.lua", luaSource)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := writeFile(t, t.TempDir(), "config.toml", "[log]\nlevel = \"error\"\n")
	stdout := &syncBuffer{}
	cmd := newRootCmd()
	cmd.SetOut(stdout)
	cmd.SetErr(&syncBuffer{})
	cmd.SetArgs([]string{"--config", cfg, "watch", "--debounce", "10ms", path})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	i := 0
	require.Eventually(t, func() bool {
		i++
		content := fmt.Sprintf("%s-- %d\n", luaSource, i)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return false
		}
		return strings.Contains(stdout.String(), "restyled")
	}, 5*time.Second, 100*time.Millisecond)
	assert.Contains(t, stdout.String(), path)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestFormatRanges(t *testing.T) {
	assert.Equal(t, "nothing", formatRanges(nil))
	assert.Equal(t, "line 3, lines 5-7", formatRanges([]dirty.Range{dirty.NewRange(2, 2), dirty.NewRange(4, 6)}))
}
