package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/lexfold/internal/config"
	"github.com/dshills/lexfold/internal/highlight/grammar"
	"github.com/dshills/lexfold/internal/logging"
)

// Manager keeps the sessions of open files. Sessions share the
// manager's registry, settings, keyword script cache and metrics.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session // absolute path -> session
	order    []string            // open order
	settings
}

// NewManager creates a manager. The registry gets the file patterns of
// the settings.
func NewManager(opts ...Option) (*Manager, error) {
	st, err := newSettings(opts)
	if err != nil {
		return nil, err
	}
	st.logger = st.logger.WithComponent("app")
	return &Manager{
		sessions: make(map[string]*Session),
		settings: st,
	}, nil
}

// Open opens a session for the file at path, returning the existing one
// if the file is already open. opts apply to a new session only.
func (m *Manager) Open(ctx context.Context, path string, opts ...Option) (*Session, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &SessionError{Op: "open", Path: path, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, exists := m.sessions[absPath]; exists {
		return s, nil
	}

	st := m.settings
	st.grammar = ""
	for _, opt := range opts {
		opt(&st)
	}
	s, err := openSession(ctx, absPath, st)
	if err != nil {
		return nil, err
	}
	m.sessions[absPath] = s
	m.order = append(m.order, absPath)
	m.logger.Info("opened %s as %s", absPath, s.Grammar())
	return s, nil
}

// Close forgets the session of path.
func (m *Manager) Close(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[absPath]; !exists {
		return ErrSessionNotFound
	}
	delete(m.sessions, absPath)
	for i, p := range m.order {
		if p == absPath {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

// Get returns the session of path.
func (m *Manager) Get(path string) (*Session, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	s, exists := m.sessions[absPath]
	return s, exists
}

// All returns the sessions in the order they were opened.
func (m *Manager) All() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Session, 0, len(m.order))
	for _, p := range m.order {
		if s, exists := m.sessions[p]; exists {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Config returns the settings sessions are configured from.
func (m *Manager) Config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Registry returns the grammars sessions choose from.
func (m *Manager) Registry() *grammar.Registry { return m.registry }

// Metrics returns the metrics every session records into.
func (m *Manager) Metrics() *Metrics { return m.metrics }

// Logger returns the manager's logger.
func (m *Manager) Logger() *logging.Logger { return m.logger }

// SetConfig applies cfg to every session. A session that rejects the
// new settings keeps running with its grammar's defaults; the errors of
// all sessions are returned together.
func (m *Manager) SetConfig(ctx context.Context, cfg *config.Config) error {
	if err := ApplyPatterns(m.registry, cfg); err != nil {
		return err
	}

	m.mu.Lock()
	m.cfg = cfg
	m.mu.Unlock()

	var rejected Rejections
	for _, s := range m.All() {
		if _, err := s.ApplyConfig(ctx, cfg); err != nil {
			m.logger.Error("configuring %s: %v", s.Path(), err)
			rejected.add(s, err)
		}
	}
	m.metrics.RecordConfigReload()
	m.logger.SetLevel(cfg.LogLevel())
	return rejected.Err()
}

// ReloadConfig reads the settings file again and applies it.
func (m *Manager) ReloadConfig(ctx context.Context) error {
	next, err := m.Config().Reload(m.cfgOpts...)
	if err != nil {
		return fmt.Errorf("reload settings %s: %w", m.Config().Path(), err)
	}
	return m.SetConfig(ctx, next)
}

func openSession(ctx context.Context, path string, st settings) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &SessionError{Op: "open", Path: path, Err: err}
	}
	return newSession(ctx, path, string(data), st)
}
