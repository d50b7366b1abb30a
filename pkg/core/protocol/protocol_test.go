package protocol

import (
	"encoding/base64"
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

func TestParseVless(t *testing.T) {
	tests := []struct {
		name string
		link string
		want Record
	}{
		{
			name: "reality with defaults",
			link: "vless://uuid1@example.com:443?security=reality&pbk=PK&sid=SID&sni=sni.example",
			want: Record{
				Protocol: VlessIdentifier, ID: "uuid1", Address: "example.com", Port: 443,
				Security: SecurityReality, SNI: "sni.example", PublicKey: "PK", ShortID: "SID",
				Type: TransportTCP,
			},
		},
		{
			name: "no port and no query",
			link: "vless://d1d1d1d1-e2e2-f3f3-a4a4-b5b5b5b5b5b5@test.com",
			want: Record{
				Protocol: VlessIdentifier, ID: "d1d1d1d1-e2e2-f3f3-a4a4-b5b5b5b5b5b5", Address: "test.com", Port: 443,
				Security: SecurityNone, SNI: "test.com", Type: TransportTCP,
			},
		},
		{
			name: "ws tls with remark",
			link: "vless://b1b1@1.2.3.4:8080?encryption=none&security=tls&fp=chrome&type=ws&host=cdn.example&path=%2Fgraphql&flow=xtls-rprx-vision#WS+TLS",
			want: Record{
				Protocol: VlessIdentifier, ID: "b1b1", Address: "1.2.3.4", Port: 8080, Flow: "xtls-rprx-vision",
				Security: SecurityTLS, SNI: "1.2.3.4", Fingerprint: "chrome", Type: TransportWebsocket,
				Path: "/graphql", Host: "cdn.example", Remark: "WS+TLS",
			},
		},
		{
			name: "empty parameters count as absent",
			link: "vless://u@host.example:2053?security=&sni=&type=",
			want: Record{
				Protocol: VlessIdentifier, ID: "u", Address: "host.example", Port: 2053,
				Security: SecurityNone, SNI: "host.example", Type: TransportTCP,
			},
		},
		{
			name: "first repeated value wins",
			link: "vless://u@h.example:1?sid=a&sid=b",
			want: Record{
				Protocol: VlessIdentifier, ID: "u", Address: "h.example", Port: 1,
				Security: SecurityNone, SNI: "h.example", ShortID: "a", Type: TransportTCP,
			},
		},
		{
			name: "IPv6 host",
			link: "vless://u@[2001:db8::1]:443?security=tls&sni=ipv6.example.com",
			want: Record{
				Protocol: VlessIdentifier, ID: "u", Address: "2001:db8::1", Port: 443,
				Security: SecurityTLS, SNI: "ipv6.example.com", Type: TransportTCP,
			},
		},
		{
			name: "credential kept as written",
			link: "vless://a%40b@h.example:443",
			want: Record{
				Protocol: VlessIdentifier, ID: "a%40b", Address: "h.example", Port: 443,
				Security: SecurityNone, SNI: "h.example", Type: TransportTCP,
			},
		},
		{
			name: "upper case scheme",
			link: "VLESS://u@Example.com:80",
			want: Record{
				Protocol: VlessIdentifier, ID: "u", Address: "Example.com", Port: 80,
				Security: SecurityNone, SNI: "Example.com", Type: TransportTCP,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVless(tt.link)
			if err != nil {
				t.Fatalf("ParseVless() error = %v", err)
			}
			tt.want.OrigLink = tt.link
			if *got != tt.want {
				t.Errorf("ParseVless() mismatch\n got:  %+v\n want: %+v", *got, tt.want)
			}
		})
	}
}

func TestParseVless_Failures(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		wantErr error
	}{
		{name: "wrong scheme", link: "trojan://pw@host:443", wantErr: ErrUnsupportedScheme},
		{name: "missing host", link: "vless://uuid@:443", wantErr: ErrMissingHost},
		{name: "empty port", link: "vless://uuid@host.example:", wantErr: ErrInvalidPort},
		{name: "port out of range", link: "vless://uuid@host.example:70000", wantErr: ErrInvalidPort},
		{name: "port zero", link: "vless://uuid@host.example:0", wantErr: ErrInvalidPort},
		{name: "missing credential", link: "vless://host.example:443", wantErr: ErrMissingCredential},
		{name: "empty credential", link: "vless://@host.example:443", wantErr: ErrMissingCredential},
		{name: "password only", link: "vless://:pw@host.example:443", wantErr: ErrMissingCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVless(tt.link)
			if err == nil {
				t.Fatalf("ParseVless() expected an error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("ParseVless() error %T is not a *ParseError", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseVless() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := ParseVless("vless://uuid@host.example:abc"); err == nil {
		t.Errorf("ParseVless() accepted a non-numeric port")
	}
}

// buildLink renders rec back into a share link, leaving out parameters that
// equal their default.
func buildLink(rec Record) string {
	q := url.Values{}
	set := func(key, value, def string) {
		if value != def {
			q.Set(key, value)
		}
	}
	set("flow", rec.Flow, "")
	set("security", rec.Security, SecurityNone)
	set("sni", rec.SNI, rec.Address)
	set("fp", rec.Fingerprint, "")
	set("pbk", rec.PublicKey, "")
	set("sid", rec.ShortID, "")
	set("type", rec.Type, TransportTCP)
	set("path", rec.Path, "")
	set("host", rec.Host, "")

	u := url.URL{
		Scheme:   VlessIdentifier,
		User:     url.User(rec.ID),
		Host:     net.JoinHostPort(rec.Address, strconv.Itoa(rec.Port)),
		RawQuery: q.Encode(),
	}
	return u.String()
}

func TestParseVless_RoundTrip(t *testing.T) {
	records := []Record{
		{ID: "uuid1", Address: "example.com", Port: 443, Security: SecurityNone, SNI: "example.com", Type: TransportTCP},
		{ID: "a-b-c", Address: "10.0.0.1", Port: 8443, Flow: "xtls-rprx-vision", Security: SecurityReality,
			SNI: "www.microsoft.com", Fingerprint: "firefox", PublicKey: "PK+/=", ShortID: "0123", Type: TransportTCP},
		{ID: "x", Address: "cdn.example", Port: 2096, Security: SecurityTLS, SNI: "cdn.example",
			Type: TransportWebsocket, Path: "/ws?ed=2048", Host: "front.example"},
		{ID: "y", Address: "2001:db8::2", Port: 443, Security: SecurityNone, SNI: "2001:db8::2", Type: "grpc"},
	}

	for _, rec := range records {
		rec.Protocol = VlessIdentifier
		link := buildLink(rec)
		t.Run(link, func(t *testing.T) {
			got, err := ParseVless(link)
			if err != nil {
				t.Fatalf("ParseVless() error = %v", err)
			}
			rec.OrigLink = link
			if *got != rec {
				t.Errorf("round trip mismatch\n got:  %+v\n want: %+v", *got, rec)
			}
		})
	}
}

func TestRegistry_Parse(t *testing.T) {
	r := NewRegistry()

	if _, err := r.Parse("  vless://u@h.example:443  "); err != nil {
		t.Errorf("Parse() error = %v", err)
	}
	if _, err := r.Parse("Vless://u@h.example:443"); err != nil {
		t.Errorf("Parse() with mixed case scheme error = %v", err)
	}

	vmess := "vmess://" + base64.StdEncoding.EncodeToString([]byte(`{"add":"h.example","port":"443","id":"u"}`))
	for _, link := range []string{"garbage-line", vmess, "ss://abc@h:1", "://nothing"} {
		_, err := r.Parse(link)
		if !errors.Is(err, ErrUnsupportedScheme) {
			t.Errorf("Parse(%q) error = %v, want ErrUnsupportedScheme", link, err)
		}
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("Demo", func(link string) (*Record, error) {
		called = true
		return &Record{Protocol: "demo", OrigLink: link}, nil
	})

	rec, err := r.Parse("demo://anything")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !called || rec.Protocol != "demo" {
		t.Errorf("registered parser was not used")
	}
	if _, err := r.Parse("vless://u@h.example"); err != nil {
		t.Errorf("existing dialect broke after Register: %v", err)
	}
	if len(r.Schemes()) != 2 {
		t.Errorf("Schemes() = %v", r.Schemes())
	}

	r.Register("fails", func(link string) (*Record, error) {
		return nil, errors.New("boom")
	})
	_, err = r.Parse("fails://x")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("plain parser errors must be wrapped in *ParseError, got %T", err)
	}
}

func TestDecodeVmess(t *testing.T) {
	payload := `{"v":"2","ps":"remark","add":"h.example","port":"443","id":"uuid","net":"ws"}`
	link := "vmess://" + base64.RawStdEncoding.EncodeToString([]byte(payload))

	got, err := DecodeVmess(link)
	if err != nil {
		t.Fatalf("DecodeVmess() error = %v", err)
	}
	if got["add"] != "h.example" || got["net"] != "ws" {
		t.Errorf("DecodeVmess() = %v", got)
	}

	bad := []string{
		"vless://u@h",
		"vmess://%%%%",
		"vmess://" + base64.StdEncoding.EncodeToString([]byte("not json")),
		"vmess://" + base64.StdEncoding.EncodeToString([]byte{0xff, 0xfe, '{', '}'}),
	}
	for _, link := range bad {
		if _, err := DecodeVmess(link); err == nil {
			t.Errorf("DecodeVmess(%q) expected an error", link)
		}
	}
}

func TestRecord_DetailsStr(t *testing.T) {
	rec, err := ParseVless("vless://u@h.example:8443?security=reality&pbk=PK&sid=ab&type=ws&host=cdn.example&path=/p#home")
	if err != nil {
		t.Fatal(err)
	}
	got := rec.DetailsStr()
	for _, want := range []string{"Protocol: vless\n", "Remark: home\n", "Port: 8443\n", "Host: cdn.example\n", "TLS: reality\n", "PublicKey: PK\n", "ShortID: ab\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("DetailsStr() lacks %q:\n%s", want, got)
		}
	}

	plain, _ := ParseVless("vless://u@h.example")
	if s := plain.DetailsStr(); strings.Contains(s, "SNI") || strings.Contains(s, "Path") {
		t.Errorf("DetailsStr() of a plain tcp record:\n%s", s)
	}
}
