package singbox

import (
	"bytes"
	"encoding/json"

	C "github.com/sagernet/sing-box/constant"
	"github.com/sagernet/sing/common"
)

const (
	ProxyTag    = "PROXY"
	DirectTag   = "DIRECT"
	BlockTag    = "BLOCK"
	BestPingTag = "♻️ Best Ping 🔥"

	ProxyDNSTag = "proxy-dns"
	LocalDNSTag = "local-dns"

	GeositeIRTag  = "geosite-ir"
	GeositeAdsTag = "geosite-ads-all"

	GeositeIRURL  = "https://raw.githubusercontent.com/SagerNet/sing-geosite/rule-set/geosite-ir.srs"
	GeositeAdsURL = "https://raw.githubusercontent.com/SagerNet/sing-geosite/rule-set/geosite-category-ads-all.srs"

	ProbeURL = "http://www.gstatic.com/generate_204"

	// Deprecated upstream in favor of the reject rule action.
	typeBlock = "block"

	fragmentSize  = "10-100"
	fragmentSleep = "10-100"
)

// RoutingConfig is a complete sing-box configuration document.
type RoutingConfig struct {
	Log       Log           `json:"log"`
	DNS       DNS           `json:"dns"`
	Inbounds  []Inbound     `json:"inbounds"`
	Outbounds []interface{} `json:"outbounds"` // GroupOutbound then Outbound values
	Route     Route         `json:"route"`
}

type Log struct {
	Level     string `json:"level"`
	Timestamp bool   `json:"timestamp"`
}

type DNS struct {
	Servers []DNSServer `json:"servers"`
	Rules   []DNSRule   `json:"rules"`
}

type DNSServer struct {
	Tag     string `json:"tag"`
	Address string `json:"address"`
	Detour  string `json:"detour"`
}

type DNSRule struct {
	Outbound []string `json:"outbound,omitempty"`
	RuleSet  []string `json:"rule_set,omitempty"`
	Server   string   `json:"server"`
}

type Inbound struct {
	Type   string `json:"type"`
	Tag    string `json:"tag"`
	Stack  string `json:"stack,omitempty"`
	Sniff  bool   `json:"sniff,omitempty"`
	Listen string `json:"listen,omitempty"`
}

// GroupOutbound covers the structural outbounds: selector, urltest, direct and block.
type GroupOutbound struct {
	Type      string   `json:"type"`
	Tag       string   `json:"tag"`
	Outbounds []string `json:"outbounds,omitempty"`
	URL       string   `json:"url,omitempty"`
}

type Route struct {
	Rules   []RouteRule `json:"rules"`
	RuleSet []RuleSet   `json:"rule_set"`
	Final   string      `json:"final"`
}

type RouteRule struct {
	RuleSet  string `json:"rule_set"`
	Outbound string `json:"outbound"`
}

type RuleSet struct {
	Tag    string `json:"tag"`
	Type   string `json:"type"`
	Format string `json:"format"`
	URL    string `json:"url"`
}

// Assemble builds the full document around outbounds. The outbounds are
// copied first, so neither call mode touches the caller's slice. With augment
// set, every vless outbound that already has TLS gets a fragment block.
func Assemble(outbounds []Outbound, augment bool) *RoutingConfig {
	proxies := common.Map(outbounds, func(it Outbound) Outbound {
		return it.Clone()
	})

	if augment {
		for i := range proxies {
			if proxies[i].Type == C.TypeVLESS && proxies[i].TLS != nil {
				proxies[i].TLS.Fragment = &Fragment{
					Enabled: true,
					Size:    fragmentSize,
					Sleep:   fragmentSleep,
				}
			}
		}
	}

	tags := common.Map(proxies, func(it Outbound) string {
		return it.Tag
	})

	all := []interface{}{
		GroupOutbound{Type: C.TypeSelector, Tag: ProxyTag, Outbounds: append([]string{BestPingTag}, tags...)},
		GroupOutbound{Type: C.TypeDirect, Tag: DirectTag},
		GroupOutbound{Type: typeBlock, Tag: BlockTag},
		GroupOutbound{Type: C.TypeURLTest, Tag: BestPingTag, Outbounds: tags, URL: ProbeURL},
	}
	for _, p := range proxies {
		all = append(all, p)
	}

	return &RoutingConfig{
		Log: Log{Level: "warn", Timestamp: true},
		DNS: DNS{
			Servers: []DNSServer{
				{Tag: ProxyDNSTag, Address: "https://1.1.1.1/dns-query", Detour: ProxyTag},
				{Tag: LocalDNSTag, Address: "https://8.8.8.8/dns-query", Detour: DirectTag},
			},
			Rules: []DNSRule{
				{Outbound: []string{"any"}, Server: LocalDNSTag},
				{RuleSet: []string{GeositeIRTag}, Server: LocalDNSTag},
			},
		},
		Inbounds: []Inbound{
			{Type: C.TypeTun, Tag: "tun-in", Stack: "mixed", Sniff: true},
			{Type: C.TypeMixed, Tag: "mixed-in", Listen: "127.0.0.1:2080"},
		},
		Outbounds: all,
		Route: Route{
			Rules: []RouteRule{
				{RuleSet: GeositeIRTag, Outbound: DirectTag},
				{RuleSet: GeositeAdsTag, Outbound: BlockTag},
			},
			RuleSet: []RuleSet{
				{Tag: GeositeIRTag, Type: C.RuleSetTypeRemote, Format: C.RuleSetFormatBinary, URL: GeositeIRURL},
				{Tag: GeositeAdsTag, Type: C.RuleSetTypeRemote, Format: C.RuleSetFormatBinary, URL: GeositeAdsURL},
			},
			Final: ProxyTag,
		},
	}
}

// Proxies returns the proxy outbounds of the document in order.
func (c *RoutingConfig) Proxies() []Outbound {
	var out []Outbound
	for _, o := range c.Outbounds {
		if p, ok := o.(Outbound); ok {
			out = append(out, p)
		}
	}
	return out
}

// Marshal renders the document as indented JSON, keeping emoji and '&' literal.
func (c *RoutingConfig) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
