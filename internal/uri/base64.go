package uri

import (
	"encoding/base64"
	"strings"
)

// Base64Decode decodes standard or URL-safe base64, tolerant of missing
// padding and the SIP002/SSR encodings.
func Base64Decode(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	padded := s
	if pad := len(s) % 4; pad != 0 {
		padded += strings.Repeat("=", 4-pad)
	}
	if b, err := base64.StdEncoding.DecodeString(padded); err == nil {
		return b, nil
	}
	if b, err := base64.URLEncoding.DecodeString(padded); err == nil {
		return b, nil
	}
	return base64.RawURLEncoding.DecodeString(s)
}

// Base64EncodeStd encodes using standard base64 without padding removal,
// the form SIP002 and vmess JSON links expect.
func Base64EncodeStd(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// Base64EncodeURL encodes using URL-safe base64 without padding, the
// form ShadowsocksR links expect.
func Base64EncodeURL(b []byte) string {
	return base64.RawURLEncoding.EncodeToString(b)
}
