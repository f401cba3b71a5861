package auth

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// GenerateCode returns a numeric code of the given length, each digit drawn
// uniformly from crypto/rand.
func GenerateCode(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)

	max := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + n.Int64()))
	}
	return b.String(), nil
}
