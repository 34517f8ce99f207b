package app

import (
	"errors"
	"fmt"
	"strings"
)

// Session errors.
var (
	// ErrSessionNotFound indicates no session is open for a path.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoGrammarForFile indicates no grammar was requested and none
	// matches the file name.
	ErrNoGrammarForFile = errors.New("no grammar matches file")

	// ErrNoPath indicates a session that was not opened from a file.
	ErrNoPath = errors.New("session has no file")
)

// SessionError reports a failed session operation. Path is empty for a
// session over text that was not read from a file, and Grammar is empty
// when the failure came before a grammar was chosen.
type SessionError struct {
	Op      string // open, reload, set grammar, configure
	Path    string
	Grammar string
	Err     error
}

func (e *SessionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		b.WriteString(" ")
		b.WriteString(e.Path)
	}
	if e.Grammar != "" {
		fmt.Fprintf(&b, " [%s]", e.Grammar)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *SessionError) Unwrap() error { return e.Err }

func (s *Session) fail(op string, err error) *SessionError {
	return &SessionError{Op: op, Path: s.path, Grammar: s.drv.Grammar(), Err: err}
}

// Rejections lists the sessions that rejected a configuration change.
// Each of them keeps running with its grammar's defaults.
type Rejections []*SessionError

func (r *Rejections) add(s *Session, err error) {
	var se *SessionError
	if !errors.As(err, &se) {
		se = s.fail("configure", err)
	}
	*r = append(*r, se)
}

// Err returns nil when no session rejected the change.
func (r Rejections) Err() error {
	if len(r) == 0 {
		return nil
	}
	return r
}

// Paths returns the files of the rejecting sessions.
func (r Rejections) Paths() []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.Path
	}
	return out
}

func (r Rejections) Error() string {
	if len(r) == 1 {
		return r[0].Error()
	}
	msgs := make([]string, len(r))
	for i, e := range r {
		msgs[i] = e.Error()
	}
	return fmt.Sprintf("%d sessions rejected the settings: %s", len(r), strings.Join(msgs, "; "))
}

func (r Rejections) Unwrap() []error {
	out := make([]error, len(r))
	for i, e := range r {
		out[i] = e
	}
	return out
}
