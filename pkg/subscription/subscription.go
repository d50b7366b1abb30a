package subscription

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/proxyfig/proxyfig/utils"
	"github.com/proxyfig/proxyfig/utils/customlog"

	"github.com/imroc/req/v3"
)

const DefaultTimeout = 15 * time.Second

// Subscription is a remote list of share links, served either plain or
// base64 encoded with one link per line.
type Subscription struct {
	Remark      string
	URL         string
	UserAgent   string
	Method      string
	Proxy       string // optional proxy URL used for the fetch
	Fingerprint string // optional browser TLS fingerprint, e.g. "chrome"
	Timeout     time.Duration
	ConfigLinks []string
}

func (s *Subscription) client() (*req.Client, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := req.C().SetTimeout(timeout)
	if s.UserAgent != "" {
		c.SetUserAgent(s.UserAgent)
	}
	if s.Proxy != "" {
		c.SetProxyURL(s.Proxy)
	}
	if s.Fingerprint != "" {
		hello, ok := utils.ClientHello(s.Fingerprint)
		if !ok {
			return nil, fmt.Errorf("unknown tls fingerprint %q", s.Fingerprint)
		}
		c.SetTLSFingerprint(hello)
	}
	return c, nil
}

// FetchAll downloads the subscription and returns its non-blank lines.
func (s *Subscription) FetchAll(ctx context.Context) ([]string, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("subscription url is empty")
	}
	if s.Method == "" {
		s.Method = http.MethodGet
	}

	c, err := s.client()
	if err != nil {
		return nil, err
	}
	resp, err := c.R().SetContext(ctx).Send(s.Method, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch subscription: %w", err)
	}
	if !resp.IsSuccessState() {
		return nil, fmt.Errorf("subscription responded with %s", resp.Status)
	}

	body := resp.String()
	text := body
	if decoded, err := utils.Base64Decode(body); err == nil {
		text = string(decoded)
	} else {
		customlog.Printf(customlog.Processing, "Couldn't decode the body! let's try parsing without decoding...\n")
	}

	lines, err := utils.ReadLines(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	links := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			links = append(links, l)
		}
	}
	s.ConfigLinks = links
	return links, nil
}

// RemoveDuplicate drops repeated links, keeping the first occurrence.
func (s *Subscription) RemoveDuplicate(verbose bool) {
	seen := make(map[string]bool, len(s.ConfigLinks))
	var list []string
	for _, item := range s.ConfigLinks {
		if !seen[item] {
			seen[item] = true
			list = append(list, item)
		}
	}
	if verbose {
		customlog.Printf(customlog.Info, "Removed %d duplicate configs!\n", len(s.ConfigLinks)-len(list))
	}
	s.ConfigLinks = list
}
