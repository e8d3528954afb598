package token

import (
	"crypto/rand"
	"fmt"
)

// Alphabet is intentionally wide (62 symbols) so a 48+ character token
// carries well over 256 bits of entropy.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// MinLength is the floor enforced on generated tokens.
const MinLength = 48

// Generate returns a cryptographically random opaque token of n
// characters. Lengths below MinLength are raised to MinLength.
func Generate(n int) (string, error) {
	if n < MinLength {
		n = MinLength
	}

	// Bytes at or above limit are rejected so every symbol stays
	// equally likely (256 is not a multiple of the alphabet size).
	const limit = 256 - 256%len(alphabet)

	out := make([]byte, 0, n)
	buf := make([]byte, n)
	for len(out) < n {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out), nil
}
