package core

import (
	"crypto/rand"
	"encoding/base64"
	"io"
)

const (
	roomTokenBytes        = 16
	participantTokenBytes = 8
)

// newToken returns n crypto-random bytes as base64url. Room and participant
// identifiers are capability tokens; nothing ever parses them.
func newToken(n int) string {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		// crypto/rand is documented to never fail on supported platforms.
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
