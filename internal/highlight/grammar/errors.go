package grammar

import "errors"

// Configuration errors.
var (
	// ErrUnknownGrammar is returned when no grammar has the given name.
	ErrUnknownGrammar = errors.New("unknown grammar")

	// ErrUnknownOption is returned for options a grammar does not define.
	ErrUnknownOption = errors.New("unknown option")

	// ErrInvalidOption is returned for option values that do not parse
	// or are out of range.
	ErrInvalidOption = errors.New("invalid option value")
)
