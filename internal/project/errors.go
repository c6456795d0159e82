package project

import "fmt"

// ParseError reports malformed project document or task file input.
// It is distinguishable from I/O errors so callers can decide whether a
// failure is structural or environmental.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}
