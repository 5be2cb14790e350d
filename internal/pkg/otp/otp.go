package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Generate returns a 6-digit numeric code drawn uniformly from
// [100000, 999999]. Codes never have a leading zero, so the string is
// always exactly six characters.
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
