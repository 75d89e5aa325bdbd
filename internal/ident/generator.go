package ident

import "math/rand/v2"

// Identifier alphabet: uppercase letters plus digits, 36 symbols. Eight
// positions give roughly 41 bits of entropy, short enough to read over the
// phone and write on a requisition form.
const (
	alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length   = 8
)

// Generate returns a fresh 8-character identifier drawn uniformly from
// [A-Z0-9]. Each call is independent; the shared source in math/rand/v2 is
// safe for concurrent use, so Generate never fails and needs no locking.
func Generate() string {
	buf := make([]byte, Length)
	for i := range buf {
		buf[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return string(buf)
}

// Valid reports whether s has the exact shape of a generated identifier.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
