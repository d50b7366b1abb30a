package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedScheme = errors.New("unsupported scheme")
	ErrMissingHost       = errors.New("missing host")
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidPort       = errors.New("invalid port")
)

// ParseError describes why a share link was skipped.
type ParseError struct {
	Link string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q: %v", truncate(e.Link, 64), e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseErrorf(link string, err error, format string, v ...interface{}) *ParseError {
	if format == "" {
		return &ParseError{Link: link, Err: err}
	}
	return &ParseError{Link: link, Err: fmt.Errorf("%w: "+format, append([]interface{}{err}, v...)...)}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
