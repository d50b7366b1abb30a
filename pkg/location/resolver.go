package location

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/proxyfig/proxyfig/utils/customlog"

	"golang.org/x/sync/singleflight"
)

// Unknown is the label of every address whose country could not be found.
const Unknown = "🏳️ Unknown"

// DefaultTimeout bounds a single country lookup.
const DefaultTimeout = 5 * time.Second

// Resolver turns server addresses into display labels such as "🇩🇪 Germany".
//
// Labels are memoized for the lifetime of the Resolver under the address and,
// when the lookup succeeded, under the resolved IP. Nothing is evicted, so a
// Resolver should live no longer than one conversion run. Concurrent calls for
// the same uncached address or IP share a single lookup.
type Resolver struct {
	addrs  AddressResolver
	lookup CountryLookup

	Timeout time.Duration
	Verbose bool

	mu    sync.RWMutex
	cache map[string]string

	byAddress singleflight.Group
	byIP      singleflight.Group
}

func NewResolver(addrs AddressResolver, lookup CountryLookup) *Resolver {
	return &Resolver{
		addrs:   addrs,
		lookup:  lookup,
		Timeout: DefaultTimeout,
		cache:   make(map[string]string),
	}
}

// Resolve never fails; any error degrades to Unknown.
func (r *Resolver) Resolve(ctx context.Context, address string) string {
	if label, ok := r.cached(address); ok {
		return label
	}

	v, _, _ := r.byAddress.Do(address, func() (interface{}, error) {
		// A previous flight may have finished between the check above and Do.
		if label, ok := r.cached(address); ok {
			return label, nil
		}
		return r.resolve(ctx, address), nil
	})
	return v.(string)
}

type ipLabel struct {
	label string
	err   error
}

func (r *Resolver) resolve(ctx context.Context, address string) string {
	ip, err := r.addrs.ResolveIP(ctx, address)
	if err != nil {
		return r.fail(address, err)
	}

	if label, ok := r.cached(ip); ok {
		r.store(label, address)
		return label
	}

	v, _, _ := r.byIP.Do(ip, func() (interface{}, error) {
		if label, ok := r.cached(ip); ok {
			return ipLabel{label: label}, nil
		}
		label, err := r.lookupIP(ctx, ip)
		if err == nil {
			r.store(label, ip)
		}
		return ipLabel{label: label, err: err}, nil
	})

	res := v.(ipLabel)
	if res.err != nil {
		return r.fail(address, res.err)
	}
	r.store(res.label, address)
	return res.label
}

func (r *Resolver) lookupIP(ctx context.Context, ip string) (string, error) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c, err := r.lookup.Lookup(ctx, ip)
	if err != nil {
		return "", err
	}

	flag, ok := Flag(c.Code)
	if !ok {
		return "", ErrNoCountry
	}
	return flag + " " + c.Name, nil
}

func (r *Resolver) fail(address string, err error) string {
	if r.Verbose {
		customlog.Printf(customlog.Warning, "Location of %s is unknown: %v\n", address, err)
	}
	r.store(Unknown, address)
	return Unknown
}

func (r *Resolver) cached(key string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	label, ok := r.cache[key]
	return label, ok
}

func (r *Resolver) store(label string, keys ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range keys {
		r.cache[k] = label
	}
}

// Flag converts a two letter ISO country code into its regional indicator
// emoji pair, e.g. "us" -> "🇺🇸".
func Flag(code string) (string, bool) {
	code = strings.ToUpper(code)
	if len(code) != 2 {
		return "", false
	}

	var b strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return "", false
		}
		b.WriteRune(rune(0x1F1E6 + int(c-'A')))
	}
	return b.String(), true
}

// Static labels every address with the same string.
type Static string

func (s Static) Resolve(context.Context, string) string {
	return string(s)
}
