package singbox

import (
	"fmt"

	"github.com/proxyfig/proxyfig/pkg/core/protocol"

	C "github.com/sagernet/sing-box/constant"
)

// TagPrefix starts the tag of every generated proxy outbound.
const TagPrefix = "@Proxyfig"

// Outbound is one proxy entry of the "outbounds" array.
type Outbound struct {
	Type       string     `json:"type"`
	Tag        string     `json:"tag"`
	Server     string     `json:"server"`
	ServerPort int        `json:"server_port"`
	UUID       string     `json:"uuid"`
	Flow       string     `json:"flow"`
	TLS        *TLS       `json:"tls,omitempty"`
	Transport  *Transport `json:"transport,omitempty"`
}

type TLS struct {
	Enabled    bool      `json:"enabled"`
	ServerName string    `json:"server_name"`
	Insecure   bool      `json:"insecure,omitempty"`
	Reality    *Reality  `json:"reality,omitempty"`
	UTLS       *UTLS     `json:"utls,omitempty"`
	Fragment   *Fragment `json:"fragment,omitempty"`
}

type Reality struct {
	Enabled   bool   `json:"enabled"`
	PublicKey string `json:"public_key"`
	ShortID   string `json:"short_id"`
}

type UTLS struct {
	Enabled     bool   `json:"enabled"`
	Fingerprint string `json:"fingerprint"`
}

// Fragment randomizes packet sizes and delays of the TLS handshake.
type Fragment struct {
	Enabled bool   `json:"enabled"`
	Size    string `json:"size"`
	Sleep   string `json:"sleep"`
}

type Transport struct {
	Type    string            `json:"type"`
	Path    string            `json:"path"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Tag names the outbound of the index-th input line.
func Tag(index int, label string) string {
	return fmt.Sprintf("%s-%02d - %s", TagPrefix, index, label)
}

// BuildOutbound converts a parsed link into its outbound. It returns nil for
// dialects that have no outbound mapping.
func BuildOutbound(rec *protocol.Record, label string, index int) *Outbound {
	if rec == nil {
		return nil
	}

	switch rec.Protocol {
	case protocol.VlessIdentifier:
		return buildVless(rec, label, index)
	default:
		return nil
	}
}

func buildVless(rec *protocol.Record, label string, index int) *Outbound {
	o := &Outbound{
		Type:       C.TypeVLESS,
		Tag:        Tag(index, label),
		Server:     rec.Address,
		ServerPort: rec.Port,
		UUID:       rec.ID,
		Flow:       rec.Flow,
	}

	switch rec.Security {
	case protocol.SecurityReality:
		o.TLS = &TLS{
			Enabled:    true,
			ServerName: rec.SNI,
			Reality: &Reality{
				Enabled:   true,
				PublicKey: rec.PublicKey,
				ShortID:   rec.ShortID,
			},
			UTLS: &UTLS{Enabled: true, Fingerprint: rec.Fingerprint},
		}
	case protocol.SecurityTLS:
		// Certificates are not verified for plain tls links.
		o.TLS = &TLS{
			Enabled:    true,
			ServerName: rec.SNI,
			Insecure:   true,
			UTLS:       &UTLS{Enabled: true, Fingerprint: rec.Fingerprint},
		}
	}

	// Only websocket carries a transport block for now; tcp needs none and
	// grpc, http and httpupgrade links are emitted without one.
	if rec.Type == C.V2RayTransportTypeWebsocket {
		o.Transport = &Transport{
			Type:    C.V2RayTransportTypeWebsocket,
			Path:    rec.Path,
			Headers: map[string]string{"Host": rec.Host},
		}
	}

	return o
}

// Clone returns a deep copy of o.
func (o Outbound) Clone() Outbound {
	c := o
	if o.TLS != nil {
		t := *o.TLS
		if o.TLS.Reality != nil {
			r := *o.TLS.Reality
			t.Reality = &r
		}
		if o.TLS.UTLS != nil {
			u := *o.TLS.UTLS
			t.UTLS = &u
		}
		if o.TLS.Fragment != nil {
			f := *o.TLS.Fragment
			t.Fragment = &f
		}
		c.TLS = &t
	}
	if o.Transport != nil {
		tr := *o.Transport
		if o.Transport.Headers != nil {
			tr.Headers = make(map[string]string, len(o.Transport.Headers))
			for k, v := range o.Transport.Headers {
				tr.Headers[k] = v
			}
		}
		c.Transport = &tr
	}
	return c
}
