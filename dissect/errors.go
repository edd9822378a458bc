package dissect

import (
	"errors"
	"fmt"
)

var (
	ErrPattern = errors.New("invalid dissect pattern")
	ErrNoMatch = errors.New("dissect pattern does not match")
)

// PatternError is returned by Compile when a pattern cannot be used.
type PatternError struct {
	Pattern string
	Reason  string
}

func newPatternError(pattern, format string, args ...any) *PatternError {
	return &PatternError{
		Pattern: pattern,
		Reason:  fmt.Sprintf(format, args...),
	}
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("unable to parse pattern %q: %s", e.Pattern, e.Reason)
}

func (e *PatternError) Unwrap() error { return ErrPattern }

// MatchError is returned by Parse when the input does not satisfy the pattern.
type MatchError struct {
	Pattern string
	Input   string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("unable to find match for dissect pattern %q against source %q", e.Pattern, e.Input)
}

func (e *MatchError) Unwrap() error { return ErrNoMatch }
