package protocol

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/proxyfig/proxyfig/utils"
)

// ParseVless reads a vless:// share link. Query parameters that are absent or
// empty fall back to their defaults; the first value of a repeated one wins.
func ParseVless(link string) (*Record, error) {
	if !strings.HasPrefix(strings.ToLower(link), VlessIdentifier+"://") {
		return nil, parseErrorf(link, ErrUnsupportedScheme, "vless unrecognized")
	}

	uri, err := url.Parse(link)
	if err != nil {
		return nil, &ParseError{Link: link, Err: err}
	}

	if uri.Host == "" {
		return nil, parseErrorf(link, ErrMissingHost, "")
	}

	address := uri.Hostname()
	if address == "" || !utils.IsValidHostOrSNI(address) {
		return nil, parseErrorf(link, ErrMissingHost, "%q", uri.Host)
	}

	port, err := parsePort(uri)
	if err != nil {
		return nil, parseErrorf(link, ErrInvalidPort, "%v", err)
	}

	id := rawUsername(link)
	if uri.User == nil || id == "" {
		return nil, parseErrorf(link, ErrMissingCredential, "")
	}

	q := uri.Query()
	rec := &Record{
		Protocol:    VlessIdentifier,
		ID:          id,
		Address:     address,
		Port:        port,
		Flow:        queryOr(q, "flow", ""),
		Security:    queryOr(q, "security", SecurityNone),
		SNI:         queryOr(q, "sni", address),
		Fingerprint: queryOr(q, "fp", ""),
		PublicKey:   queryOr(q, "pbk", ""),
		ShortID:     queryOr(q, "sid", ""),
		Type:        queryOr(q, "type", TransportTCP),
		Path:        queryOr(q, "path", ""),
		Host:        queryOr(q, "host", ""),
		Remark:      uri.Fragment,
		OrigLink:    link,
	}
	return rec, nil
}

// rawUsername returns the user part of the link's authority exactly as
// written. url.URL only exposes it percent-decoded.
func rawUsername(link string) string {
	authority := link[strings.Index(link, "://")+3:]
	if i := strings.IndexAny(authority, "/?#"); i >= 0 {
		authority = authority[:i]
	}
	at := strings.LastIndex(authority, "@")
	if at < 0 {
		return ""
	}
	user, _, _ := strings.Cut(authority[:at], ":")
	return user
}

func parsePort(uri *url.URL) (int, error) {
	// "host:" has an empty port, which is not the same as no port at all.
	if strings.HasSuffix(uri.Host, ":") {
		return 0, fmt.Errorf("empty port in %q", uri.Host)
	}

	p := uri.Port()
	if p == "" {
		return DefaultPort, nil
	}

	port, err := strconv.Atoi(p)
	if err != nil {
		return 0, err
	}
	if port < 1 || port > 65535 {
		return 0, fmt.Errorf("port %d out of range", port)
	}
	return port, nil
}

func queryOr(q url.Values, key, def string) string {
	if v := q.Get(key); v != "" {
		return v
	}
	return def
}
