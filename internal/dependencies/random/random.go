package random

import (
	"crypto/rand"
	"math/big"
)

// Random generates the opaque identifiers handed out by the server
// (time record ids, OAuth state values)
type Random interface {
	// String generates a random string of the given length from the given alphabet
	String(length int, alphabet string) string
}

// CryptoRandom implements Random using crypto/rand
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// String generates a random string of the given length from the given alphabet.
// It panics if the system entropy source fails, since every caller relies on
// the result being unguessable.
func (r *CryptoRandom) String(length int, alphabet string) string {
	if length <= 0 || len(alphabet) == 0 {
		return ""
	}
	max := big.NewInt(int64(len(alphabet)))
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("random: entropy source failed: " + err.Error())
		}
		result[i] = alphabet[n.Int64()]
	}
	return string(result)
}
