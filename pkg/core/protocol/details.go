package protocol

import (
	"fmt"
	"strings"
)

// DetailsStr renders the record as "Key: value" lines for display.
func (r *Record) DetailsStr() string {
	var b strings.Builder
	line := func(key string, value interface{}) {
		fmt.Fprintf(&b, "%s: %v\n", key, value)
	}

	line("Protocol", r.Protocol)
	line("Remark", r.Remark)
	line("Network", r.Type)
	line("Address", r.Address)
	line("Port", r.Port)
	line("UUID", r.ID)
	if r.Flow != "" {
		line("Flow", r.Flow)
	}
	if r.Type == TransportWebsocket {
		line("Host", r.Host)
		line("Path", r.Path)
	}

	line("TLS", r.Security)
	switch r.Security {
	case SecurityReality:
		line("SNI", r.SNI)
		line("PublicKey", r.PublicKey)
		line("ShortID", r.ShortID)
		line("Fingerprint", r.Fingerprint)
	case SecurityTLS:
		line("SNI", r.SNI)
		line("Fingerprint", r.Fingerprint)
	}
	return b.String()
}
