package booking

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	numberPrefix   = "BK-"
	numberLength   = 8
	numberAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var numberPattern = regexp.MustCompile(`^BK-[A-Z0-9]{8}$`)

// NewNumber returns a random booking number such as "BK-7Q2ZK0AM".
func NewNumber() (string, error) {
	size := big.NewInt(int64(len(numberAlphabet)))
	buf := make([]byte, 0, len(numberPrefix)+numberLength)
	buf = append(buf, numberPrefix...)
	for range numberLength {
		i, err := rand.Int(rand.Reader, size)
		if err != nil {
			return "", err
		}
		buf = append(buf, numberAlphabet[i.Int64()])
	}
	return string(buf), nil
}

// ValidNumber reports whether s has the booking number shape.
func ValidNumber(s string) bool {
	return numberPattern.MatchString(s)
}
