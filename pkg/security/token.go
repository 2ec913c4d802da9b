package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const minPublicTokenBytes = 16

// GeneratePublicToken returns an opaque URL-safe token. Possession of the
// token is the only credential for the public proposal flow, so it must be
// unguessable.
func GeneratePublicToken(numBytes int) (string, error) {
	if numBytes < minPublicTokenBytes {
		numBytes = minPublicTokenBytes
	}
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate public token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
