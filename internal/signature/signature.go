package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes the HMAC-SHA256 of payload under key and renders it as
// lowercase hex, two characters per byte. The signature must cover exactly
// the bytes put on the wire, so callers serialize first and sign the result.
//
// An empty key yields an empty string: the payload is then effectively
// unsigned and stricter callers should refuse to transmit it.
func Sign(payload []byte, key string) string {
	if key == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether sig is the valid signature of payload under key,
// using a constant-time comparison.
func Verify(payload []byte, key, sig string) bool {
	expected := Sign(payload, key)
	if expected == "" {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(sig))
}
