package utils

import "strings"

// IsValidHostOrSNI rejects a host that still carries brackets or parentheses
// after URL parsing, such as a half-closed IPv6 literal or a templated
// placeholder like "(server)". It is not a full hostname check.
func IsValidHostOrSNI(value string) bool {
	return !strings.ContainsAny(value, "[]()")
}
