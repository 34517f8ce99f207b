package lua

import (
	"fmt"
	"strconv"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Bridge converts values between Go and Lua.
type Bridge struct {
	L *lua.LState
}

// NewBridge creates a new Bridge for the given Lua state.
func NewBridge(L *lua.LState) *Bridge {
	return &Bridge{L: L}
}

// ToGoValue converts a Lua value to a Go value. Tables become slices
// when their keys are 1..n and maps otherwise; functions become nil.
func (b *Bridge) ToGoValue(lv lua.LValue) any {
	return b.toGoValue(lv, make(map[*lua.LTable]bool))
}

func (b *Bridge) toGoValue(lv lua.LValue, visited map[*lua.LTable]bool) any {
	switch v := lv.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return int64(f)
		}
		return f
	case lua.LString:
		return string(v)
	case *lua.LTable:
		if visited[v] {
			return nil // Break circular reference
		}
		visited[v] = true
		return b.tableToGo(v, visited)
	default:
		return nil
	}
}

func (b *Bridge) tableToGo(t *lua.LTable, visited map[*lua.LTable]bool) any {
	n := t.MaxN()
	count := 0
	t.ForEach(func(_, _ lua.LValue) { count++ })

	if n > 0 && n == count {
		arr := make([]any, n)
		for i := 1; i <= n; i++ {
			arr[i-1] = b.toGoValue(t.RawGetInt(i), visited)
		}
		return arr
	}

	m := make(map[string]any, count)
	t.ForEach(func(k, v lua.LValue) {
		m[keyString(k)] = b.toGoValue(v, visited)
	})
	return m
}

func keyString(k lua.LValue) string {
	if n, ok := k.(lua.LNumber); ok && float64(n) == float64(int64(n)) {
		return strconv.FormatInt(int64(n), 10)
	}
	return k.String()
}

// StringList converts words to a Lua array.
func (b *Bridge) StringList(words []string) *lua.LTable {
	t := b.L.CreateTable(len(words), 0)
	for _, w := range words {
		t.Append(lua.LString(w))
	}
	return t
}

// Keywords reads a keyword table: categories 1 to 9, given as numbers
// or numeric strings, each mapped to an array of words or a string of
// words separated by spaces.
func (b *Bridge) Keywords(lv lua.LValue) (map[int][]string, error) {
	t, ok := lv.(*lua.LTable)
	if !ok {
		return nil, fmt.Errorf("%w, got %s", ErrNoTable, lv.Type())
	}

	out := make(map[int][]string)
	var err error
	t.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		key := keyString(k)
		n, convErr := strconv.Atoi(key)
		if convErr != nil || n < 1 || n > 9 {
			err = fmt.Errorf("%w: category %q must be from 1 to 9", ErrBadKeywords, key)
			return
		}
		var words []string
		words, err = b.words(key, v)
		out[n] = words
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *Bridge) words(key string, v lua.LValue) ([]string, error) {
	switch val := v.(type) {
	case lua.LString:
		return strings.Fields(string(val)), nil
	case *lua.LTable:
		n := val.MaxN()
		words := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			item := val.RawGetInt(i)
			s, ok := item.(lua.LString)
			if !ok {
				return nil, fmt.Errorf("%w: category %s holds a %s", ErrBadKeywords, key, item.Type())
			}
			words = append(words, string(s))
		}
		return words, nil
	default:
		return nil, fmt.Errorf("%w: category %s holds a %s", ErrBadKeywords, key, v.Type())
	}
}
