package app

import (
	"context"
	"path/filepath"

	"github.com/dshills/lexfold/internal/config/watcher"
)

// Update reports one change the manager followed.
type Update struct {
	// Path is the file that changed.
	Path string

	// Session is the session whose source was reloaded, nil for a
	// settings change.
	Session *Session

	// Reload describes the reload of Session.
	Reload ReloadResult

	// Config is set when the settings file or a keyword script changed
	// and every session was reconfigured.
	Config bool

	// Err is the error of the reload, if any.
	Err error
}

// Watch follows the files of the open sessions, the settings file and
// the keyword scripts it names. A changed source is reloaded; a changed
// settings file or script reconfigures every session. onUpdate is
// called after each change from the watcher's goroutine. Watch starts w,
// blocks until ctx is done and then stops w.
func (m *Manager) Watch(ctx context.Context, w *watcher.Watcher, onUpdate func(Update)) error {
	for _, s := range m.All() {
		if s.Path() == "" {
			continue
		}
		if err := w.Watch(s.Path()); err != nil {
			return err
		}
	}
	for _, path := range m.settingsFiles() {
		if err := w.Watch(path); err != nil {
			return err
		}
	}

	w.OnChange(func(e watcher.Event) {
		u, ok := m.handle(ctx, w, e)
		if ok && onUpdate != nil {
			onUpdate(u)
		}
	})
	w.Start()
	m.logger.Info("watching %d files", len(w.WatchedFiles()))

	<-ctx.Done()
	return w.Stop()
}

// settingsFiles returns the settings file and every keyword script of
// the current settings, as absolute paths.
func (m *Manager) settingsFiles() []string {
	cfg := m.Config()
	var files []string
	if p := cfg.Path(); p != "" {
		files = append(files, p)
	}
	for _, name := range cfg.Grammars() {
		gc, err := cfg.Grammar(name)
		if err != nil || gc.KeywordScript == "" {
			continue
		}
		files = append(files, gc.KeywordScript)
	}
	for i, f := range files {
		if abs, err := filepath.Abs(f); err == nil {
			files[i] = abs
		}
	}
	return files
}

func (m *Manager) isSettingsFile(path string) bool {
	for _, f := range m.settingsFiles() {
		if f == path {
			return true
		}
	}
	return false
}

func (m *Manager) handle(ctx context.Context, w *watcher.Watcher, e watcher.Event) (Update, bool) {
	if e.Op == watcher.OpRemove || e.Op == watcher.OpRename {
		// A save by rename recreates the file; wait for that event.
		m.logger.Debug("%s: %s", e.Op, e.Path)
		return Update{}, false
	}

	if m.isSettingsFile(e.Path) {
		m.scripts.Invalidate(e.Path)
		err := m.ReloadConfig(ctx)
		if err != nil {
			m.metrics.RecordFailure()
			m.logger.Error("reloading settings: %v", err)
		} else {
			m.logger.Info("settings reloaded after %s of %s", e.Op, e.Path)
			// The new settings may name other keyword scripts.
			for _, f := range m.settingsFiles() {
				if err := w.Watch(f); err != nil {
					m.logger.Warn("watching %s: %v", f, err)
				}
			}
		}
		return Update{Path: e.Path, Config: true, Err: err}, true
	}

	s, ok := m.Get(e.Path)
	if !ok {
		return Update{}, false
	}
	res, err := s.ReloadFile(ctx)
	if err != nil {
		m.logger.Error("reloading %s: %v", e.Path, err)
	}
	return Update{Path: e.Path, Session: s, Reload: res, Err: err}, true
}
