package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/lexfold/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrSettingNotFound indicates the setting path doesn't exist.
	ErrSettingNotFound = errors.New("setting not found")

	// ErrTypeMismatch indicates a setting holds a value of the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrValidationFailed indicates a setting holds a value it does not
	// accept.
	ErrValidationFailed = errors.New("validation failed")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// SettingError reports a setting whose value cannot be used. It matches
// ErrTypeMismatch when WantType is set and ErrValidationFailed
// otherwise.
type SettingError struct {
	Path  string
	Value any

	// WantType names the type the setting must have.
	WantType string

	// Accepts describes the values the setting takes.
	Accepts string
}

func typeMismatch(path, want string, v any) *SettingError {
	return &SettingError{Path: path, Value: v, WantType: want}
}

func notAccepted(path, accepts string, v any) *SettingError {
	return &SettingError{Path: path, Value: v, Accepts: accepts}
}

func (e *SettingError) Error() string {
	if e.WantType != "" {
		return fmt.Sprintf("%s: want %s, got %s", e.Path, e.WantType, typeName(e.Value))
	}
	return fmt.Sprintf("%s: %v is not %s", e.Path, e.Value, e.Accepts)
}

func (e *SettingError) Is(target error) bool {
	if e.WantType != "" {
		return target == ErrTypeMismatch
	}
	return target == ErrValidationFailed
}

// Problems collects the settings a file gets wrong so they can be
// reported together.
type Problems []error

func (p *Problems) add(err error) {
	if err != nil {
		*p = append(*p, err)
	}
}

// Err returns nil when nothing was collected.
func (p Problems) Err() error {
	if len(p) == 0 {
		return nil
	}
	return p
}

func (p Problems) Error() string {
	if len(p) == 1 {
		return p[0].Error()
	}
	msgs := make([]string, len(p))
	for i, err := range p {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d bad settings: %s", len(p), strings.Join(msgs, "; "))
}

func (p Problems) Unwrap() []error { return p }
