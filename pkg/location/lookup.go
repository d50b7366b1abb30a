package location

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/imroc/req/v3"
	"github.com/oschwald/geoip2-golang"
)

var ErrNoCountry = errors.New("no country code in response")

// Country is the answer of a CountryLookup.
type Country struct {
	Name string `json:"country"`
	Code string `json:"countryCode"` // ISO 3166-1 alpha-2
}

// CountryLookup maps an IP address to the country it is located in.
type CountryLookup interface {
	Lookup(ctx context.Context, ip string) (Country, error)
}

const (
	DefaultIPAPIBaseURL = "http://ip-api.com"
	userAgent           = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// IPAPILookup asks the ip-api.com JSON endpoint, requesting only the
// country name and code.
type IPAPILookup struct {
	client *req.Client
}

func NewIPAPILookup(baseURL string, timeout time.Duration) *IPAPILookup {
	if baseURL == "" {
		baseURL = DefaultIPAPIBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := req.C().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetUserAgent(userAgent)

	return &IPAPILookup{client: c}
}

func (l *IPAPILookup) Lookup(ctx context.Context, ip string) (Country, error) {
	var c Country
	resp, err := l.client.R().
		SetContext(ctx).
		SetPathParam("ip", ip).
		SetQueryParam("fields", "country,countryCode").
		SetSuccessResult(&c).
		Get("/json/{ip}")
	if err != nil {
		return Country{}, fmt.Errorf("ip-api request for %s: %w", ip, err)
	}
	if !resp.IsSuccessState() {
		return Country{}, fmt.Errorf("ip-api request for %s: unexpected status %d", ip, resp.StatusCode)
	}
	if c.Code == "" {
		return Country{}, ErrNoCountry
	}
	return c, nil
}

// GeoIPLookup reads a MaxMind GeoIP2 or GeoLite2 country database.
type GeoIPLookup struct {
	db       *geoip2.Reader
	Language string
}

func OpenGeoIP(path string) (*GeoIPLookup, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip database: %w", err)
	}
	return &GeoIPLookup{db: db, Language: "en"}, nil
}

func (g *GeoIPLookup) Lookup(_ context.Context, ip string) (Country, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Country{}, fmt.Errorf("invalid ip %q", ip)
	}

	record, err := g.db.Country(parsed)
	if err != nil {
		return Country{}, fmt.Errorf("geoip lookup for %s: %w", ip, err)
	}
	if record.Country.IsoCode == "" {
		return Country{}, ErrNoCountry
	}

	name := record.Country.Names[g.Language]
	if name == "" {
		name = record.Country.Names["en"]
	}
	return Country{Name: name, Code: record.Country.IsoCode}, nil
}

func (g *GeoIPLookup) Close() error {
	return g.db.Close()
}
