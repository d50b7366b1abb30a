package location

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"

	"github.com/proxyfig/proxyfig/utils"

	"golang.org/x/net/idna"
)

// AddressResolver maps a server address to the IP used for geolocation.
type AddressResolver interface {
	ResolveIP(ctx context.Context, address string) (string, error)
}

type dnsAnswer struct {
	ip  string
	err error
}

// DNSResolver resolves hostnames with a net.Resolver and remembers every
// answer, including failures, for its lifetime.
type DNSResolver struct {
	Resolver *net.Resolver

	mu    sync.Mutex
	cache map[string]dnsAnswer
}

func NewDNSResolver() *DNSResolver {
	return &DNSResolver{
		Resolver: net.DefaultResolver,
		cache:    make(map[string]dnsAnswer),
	}
}

func (r *DNSResolver) ResolveIP(ctx context.Context, address string) (string, error) {
	address = utils.StripBrackets(address)
	if addr, err := netip.ParseAddr(address); err == nil {
		return addr.Unmap().String(), nil
	}

	r.mu.Lock()
	if a, ok := r.cache[address]; ok {
		r.mu.Unlock()
		return a.ip, a.err
	}
	r.mu.Unlock()

	ip, err := r.lookup(ctx, address)

	r.mu.Lock()
	r.cache[address] = dnsAnswer{ip: ip, err: err}
	r.mu.Unlock()
	return ip, err
}

func (r *DNSResolver) lookup(ctx context.Context, host string) (string, error) {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		ascii = host
	}

	addrs, err := r.Resolver.LookupNetIP(ctx, "ip", ascii)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if len(addrs) == 0 {
		return "", fmt.Errorf("resolve %s: no addresses", host)
	}

	// Prefer an IPv4 answer.
	for _, a := range addrs {
		if a.Unmap().Is4() {
			return a.Unmap().String(), nil
		}
	}
	return addrs[0].String(), nil
}
