package protocol

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/proxyfig/proxyfig/utils"
)

// DecodeVmess decodes the base64 JSON payload of a vmess:// link.
//
// It is not registered in NewRegistry: there is no field mapping from the
// payload to an outbound yet, so vmess links are reported as unsupported.
func DecodeVmess(link string) (map[string]interface{}, error) {
	if !strings.HasPrefix(strings.ToLower(link), VmessIdentifier+"://") {
		return nil, parseErrorf(link, ErrUnsupportedScheme, "vmess unrecognized")
	}

	decoded, err := utils.Base64Decode(link[len(VmessIdentifier+"://"):])
	if err != nil {
		return nil, &ParseError{Link: link, Err: fmt.Errorf("base64: %w", err)}
	}
	if !utf8.Valid(decoded) {
		return nil, &ParseError{Link: link, Err: fmt.Errorf("payload is not valid UTF-8")}
	}

	var payload map[string]interface{}
	if err = json.Unmarshal(decoded, &payload); err != nil {
		return nil, &ParseError{Link: link, Err: fmt.Errorf("json: %w", err)}
	}
	return payload, nil
}
