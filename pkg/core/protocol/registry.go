package protocol

import (
	"errors"
	"strings"
	"sync"
)

// ParserFunc turns one share link into a Record.
type ParserFunc func(link string) (*Record, error)

// Registry dispatches share links to a parser by URI scheme.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]ParserFunc
}

// NewRegistry returns a registry with every dialect that has an output mapping.
// vmess is deliberately absent, see DecodeVmess.
func NewRegistry() *Registry {
	r := &Registry{parsers: make(map[string]ParserFunc)}
	r.Register(VlessIdentifier, ParseVless)
	return r
}

// Register adds or replaces the parser for scheme.
func (r *Registry) Register(scheme string, fn ParserFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parsers[strings.ToLower(scheme)] = fn
}

// Schemes lists the registered schemes.
func (r *Registry) Schemes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schemes := make([]string, 0, len(r.parsers))
	for s := range r.parsers {
		schemes = append(schemes, s)
	}
	return schemes
}

// Parse picks the parser from the link prefix, ignoring case.
// Every failure is returned as a *ParseError.
func (r *Registry) Parse(link string) (*Record, error) {
	// Remove any spaces
	link = strings.TrimSpace(link)

	scheme, ok := schemeOf(link)
	if !ok {
		return nil, parseErrorf(link, ErrUnsupportedScheme, "no scheme")
	}

	r.mu.RLock()
	fn, ok := r.parsers[scheme]
	r.mu.RUnlock()
	if !ok {
		return nil, parseErrorf(link, ErrUnsupportedScheme, "%s", scheme)
	}

	rec, err := fn(link)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			return nil, err
		}
		return nil, &ParseError{Link: link, Err: err}
	}
	return rec, nil
}

func schemeOf(link string) (string, bool) {
	i := strings.Index(link, "://")
	if i <= 0 {
		return "", false
	}
	return strings.ToLower(link[:i]), true
}
