package utils

import (
	"strings"

	utls "github.com/refraction-networking/utls"
)

// Fingerprint names sing-box accepts in an outbound's utls.fingerprint.
var singboxFingerprints = map[string]struct{}{
	"chrome":                     {},
	"chrome_psk":                 {},
	"chrome_psk_shuffle":         {},
	"chrome_padding_psk_shuffle": {},
	"chrome_pq":                  {},
	"chrome_pq_psk":              {},
	"firefox":                    {},
	"edge":                       {},
	"safari":                     {},
	"360":                        {},
	"qq":                         {},
	"ios":                        {},
	"android":                    {},
	"random":                     {},
	"randomized":                 {},
}

// Client hellos used when proxyfig itself dials TLS, e.g. to fetch a subscription.
var clientHellos = map[string]utls.ClientHelloID{
	"chrome":     utls.HelloChrome_Auto,
	"firefox":    utls.HelloFirefox_Auto,
	"edge":       utls.HelloEdge_Auto,
	"safari":     utls.HelloSafari_Auto,
	"ios":        utls.HelloIOS_Auto,
	"android":    utls.HelloAndroid_11_OkHttp,
	"360":        utls.Hello360_Auto,
	"qq":         utls.HelloQQ_Auto,
	"random":     utls.HelloRandomized,
	"randomized": utls.HelloRandomized,
}

// ClientHello maps a fingerprint name to the uTLS hello that imitates it.
func ClientHello(name string) (utls.ClientHelloID, bool) {
	id, ok := clientHellos[strings.ToLower(name)]
	return id, ok
}

// IsKnownFingerprint reports whether name is empty (runtime default) or a
// fingerprint sing-box understands.
func IsKnownFingerprint(name string) bool {
	if name == "" {
		return true
	}
	_, ok := singboxFingerprints[strings.ToLower(name)]
	return ok
}
