// Package secretkey generates the per-process secret key.
package secretkey

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Size is the number of random bytes in a secret key.
const Size = 12

// ConfigKey is the application configuration key the secret is stored under.
const ConfigKey = "SECRET_KEY"

// Generate reads Size bytes from r. A nil reader means crypto/rand.
// A short read is an error; there is no fallback key.
func Generate(r io.Reader) ([]byte, error) {
	if r == nil {
		r = rand.Reader
	}
	key := make([]byte, Size)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("read %d bytes of entropy: %w", Size, err)
	}
	return key, nil
}
