package wordlist

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestList_InList(t *testing.T) {
	l := New("while", "if", "", "else", "^__", "end")

	tests := []struct {
		token string
		want  bool
	}{
		{"if", true},
		{"else", true},
		{"end", true},
		{"while", true},
		{"elsewhere", false},
		{"el", false},
		{"i", false},
		{"__init", true},
		{"__", true},
		{"_x", false},
		{"", false},
		{"For", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, l.InList(tt.token))
		})
	}
}

func TestList_Replace(t *testing.T) {
	l := New("a", "b")
	assert.True(t, l.InList("a"))
	assert.Equal(t, 2, l.Len())

	l.Replace([]string{"c"})
	assert.False(t, l.InList("a"))
	assert.True(t, l.InList("c"))
	assert.Equal(t, []string{"c"}, l.Words())
	assert.Equal(t, "c", l.String())

	var nilList *List
	assert.False(t, nilList.InList("a"))
	assert.False(t, New().InList("a"))
}

func TestList_WordsKeepsOrder(t *testing.T) {
	l := New("zeta", "alpha", "mid")
	assert.True(t, l.InList("alpha"))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, l.Words())
	assert.Equal(t, "zeta alpha mid", l.String())
}

func TestList_ConcurrentLookups(t *testing.T) {
	l := New("for", "func", "go", "goto")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if !l.InList("goto") || l.InList("gone") {
					t.Error("lookup mismatch")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSet(t *testing.T) {
	s := NewSet()
	s[0].Replace([]string{"if", "then"})
	s[3].Replace([]string{"print", "then"})

	cat, ok := s.Match("print")
	assert.True(t, ok)
	assert.Equal(t, 3, cat)

	cat, ok = s.Match("then")
	assert.True(t, ok)
	assert.Equal(t, 0, cat, "the first category wins")

	_, ok = s.Match("nope")
	assert.False(t, ok)

	assert.True(t, s.InList(3, "print"))
	assert.False(t, s.InList(-1, "print"))
	assert.False(t, s.InList(Categories, "print"))

	c := s.Clone()
	c[0].Replace([]string{"else"})
	assert.True(t, s.InList(0, "if"), "replacing a list in a clone leaves the original")
	assert.False(t, c.InList(0, "if"))
	assert.True(t, c.InList(3, "print"))

	var nilSet *Set
	_, ok = nilSet.Match("if")
	assert.False(t, ok)
}
