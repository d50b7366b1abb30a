package protocol

const (
	VmessIdentifier = "vmess"
	VlessIdentifier = "vless"
)

const (
	SecurityNone    = "none"
	SecurityTLS     = "tls"
	SecurityReality = "reality"
)

const (
	TransportTCP       = "tcp"
	TransportWebsocket = "ws"
)

// DefaultPort is used when a share link carries no port.
const DefaultPort = 443

// Record is the normalized content of one share link.
type Record struct {
	Protocol    string
	ID          string // UUID or equivalent secret
	Address     string // hostname or bare IP (IPv6 without brackets)
	Port        int
	Flow        string
	Security    string // none, tls or reality
	SNI         string // Server name indication
	Fingerprint string // uTLS fingerprint hint
	PublicKey   string // reality
	ShortID     string // reality
	Type        string // transport: tcp, ws, ...
	Path        string
	Host        string // transport Host header
	Remark      string // link fragment, informational
	OrigLink    string
}
