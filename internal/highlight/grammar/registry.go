package grammar

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Registry manages the available grammars.
type Registry struct {
	mu sync.RWMutex

	// byName maps grammar names to grammars
	byName map[string]Grammar

	// patterns maps file name globs to grammars, in registration order
	patterns []patternEntry
}

type patternEntry struct {
	pattern string
	grammar Grammar
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]Grammar),
	}
}

// Register adds a grammar, replacing any grammar of the same name.
func (r *Registry) Register(g Grammar) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byName[g.Name()] = g
	for _, p := range g.Metadata().Patterns {
		r.patterns = append(r.patterns, patternEntry{pattern: p, grammar: g})
	}
}

// AddPattern associates an extra file name glob with a grammar.
func (r *Registry) AddPattern(name, pattern string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	g, ok := r.byName[name]
	if !ok {
		return r.unknownLocked(name)
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}
	r.patterns = append([]patternEntry{{pattern: pattern, grammar: g}}, r.patterns...)
	return nil
}

// Get returns the grammar with the given name.
func (r *Registry) Get(name string) (Grammar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byName[name]
	if !ok {
		return nil, r.unknownLocked(name)
	}
	return g, nil
}

// ByFile returns the grammar whose patterns match the base name of
// path.
func (r *Registry) ByFile(path string) (Grammar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	base := filepath.Base(path)
	for _, e := range r.patterns {
		if ok, _ := filepath.Match(e.pattern, base); ok {
			return e.grammar, true
		}
	}
	return nil, false
}

// Names returns the registered grammar names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// unknownLocked builds the error for an unknown name, listing the
// valid ones.
func (r *Registry) unknownLocked(name string) error {
	names := r.namesLocked()
	switch len(names) {
	case 0:
		return fmt.Errorf("%w %q: no grammars registered", ErrUnknownGrammar, name)
	case 1:
		return fmt.Errorf("%w %q: must be %s", ErrUnknownGrammar, name, names[0])
	}
	list := strings.Join(names[:len(names)-1], ", ")
	return fmt.Errorf("%w %q: must be %s, or %s", ErrUnknownGrammar, name, list, names[len(names)-1])
}
