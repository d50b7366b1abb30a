package utils

import "strings"

// StripBrackets turns "[2001:db8::1]" into "2001:db8::1" and leaves anything else alone.
func StripBrackets(host string) string {
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		return host[1 : len(host)-1]
	}
	return host
}
