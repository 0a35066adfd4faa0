package gateway

import "encoding/base64"

// Signature derives the request digest some gateways verify: the payload and
// key concatenated, base64-encoded, stripped of non-alphanumerics, truncated
// to 32 characters. The scheme is fixed by the gateway contract and must
// match byte for byte.
func Signature(data, key string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(data + key))
	buf := make([]byte, 0, len(encoded))
	for i := 0; i < len(encoded); i++ {
		ch := encoded[i]
		if (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') {
			buf = append(buf, ch)
		}
	}
	if len(buf) > 32 {
		buf = buf[:32]
	}
	return string(buf)
}
