package driver

import "errors"

// Errors returned by driver commands.
var (
	// ErrNoGrammar is returned by commands that need a grammar when none
	// is set.
	ErrNoGrammar = errors.New("grammar is unspecified")

	// ErrKeywordCategory is returned for keyword list numbers outside
	// 1..9.
	ErrKeywordCategory = errors.New("keyword list must be from 1 to 9")

	// ErrInvalidRange is returned when a range starts after it ends.
	ErrInvalidRange = errors.New("start must be less than or equal to end")

	// ErrUnknownStyle is returned for style names the grammar does not
	// define.
	ErrUnknownStyle = errors.New("unknown style")

	// ErrPosition is returned for positions outside the document.
	ErrPosition = errors.New("position out of range")
)
