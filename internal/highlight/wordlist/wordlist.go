// Package wordlist implements the keyword tables grammars use to
// reclassify identifiers.
//
// A List is a set of words indexed by first byte. The index is built on
// the first lookup after the words change and reused until the list is
// replaced. Words starting with '^' match any token they prefix.
package wordlist

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Categories is the number of keyword lists a grammar may use.
const Categories = 9

// prefixMarker introduces a word that matches token prefixes.
const prefixMarker = '^'

// List is a keyword list. Lookups are safe for concurrent use; Replace
// must not race with lookups on the same list.
type List struct {
	words []string
	index atomic.Pointer[index]
}

type index struct {
	words  []string
	starts [256]int
}

// New creates a list holding words.
func New(words ...string) *List {
	l := &List{}
	l.Replace(words)
	return l
}

// Replace sets the words of the list and drops the lookup index.
func (l *List) Replace(words []string) {
	l.words = make([]string, 0, len(words))
	for _, w := range words {
		if w != "" {
			l.words = append(l.words, w)
		}
	}
	l.index.Store(nil)
}

// Words returns the words in their original order.
func (l *List) Words() []string {
	out := make([]string, len(l.words))
	copy(out, l.words)
	return out
}

// Len returns the number of words.
func (l *List) Len() int {
	return len(l.words)
}

// String joins the words with spaces.
func (l *List) String() string {
	return strings.Join(l.words, " ")
}

func (l *List) lookupIndex() *index {
	if idx := l.index.Load(); idx != nil {
		return idx
	}
	idx := &index{words: make([]string, len(l.words))}
	copy(idx.words, l.words)
	sort.Strings(idx.words)
	for i := range idx.starts {
		idx.starts[i] = -1
	}
	for i := len(idx.words) - 1; i >= 0; i-- {
		idx.starts[idx.words[i][0]] = i
	}
	l.index.CompareAndSwap(nil, idx)
	return idx
}

// InList reports whether token is in the list, either as a whole word
// or through a '^' prefix entry.
func (l *List) InList(token string) bool {
	if l == nil || len(l.words) == 0 || token == "" {
		return false
	}
	idx := l.lookupIndex()

	first := token[0]
	if j := idx.starts[first]; j >= 0 {
		for ; j < len(idx.words) && idx.words[j][0] == first; j++ {
			w := idx.words[j]
			if len(w) == len(token) && w == token {
				return true
			}
			if w > token {
				break
			}
		}
	}

	if j := idx.starts[prefixMarker]; j >= 0 {
		for ; j < len(idx.words) && idx.words[j][0] == prefixMarker; j++ {
			if strings.HasPrefix(token, idx.words[j][1:]) {
				return true
			}
		}
	}
	return false
}

// Set is the group of keyword lists of one grammar instance.
type Set [Categories]*List

// NewSet creates a set of empty lists.
func NewSet() *Set {
	var s Set
	for i := range s {
		s[i] = New()
	}
	return &s
}

// Match returns the first category whose list holds token.
func (s *Set) Match(token string) (int, bool) {
	if s == nil {
		return 0, false
	}
	for i, l := range s {
		if l.InList(token) {
			return i, true
		}
	}
	return 0, false
}

// InList reports whether token is in list category.
func (s *Set) InList(category int, token string) bool {
	if s == nil || category < 0 || category >= Categories {
		return false
	}
	return s[category].InList(token)
}

// Clone copies the set so that replacing a list in the copy leaves the
// original untouched.
func (s *Set) Clone() *Set {
	c := NewSet()
	for i, l := range s {
		if l != nil {
			c[i].Replace(l.words)
		}
	}
	return c
}
