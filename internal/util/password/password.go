// Package password generates console login passwords for student accounts.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// MinLength is the minimum password length; shorter requests are raised to it.
const MinLength = 8

const (
	upper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lower  = "abcdefghijklmnopqrstuvwxyz"
	digits = "0123456789"

	// SafeSymbols is the restricted symbol set. These characters are accepted
	// by virtually every provider password policy.
	SafeSymbols = "!@#$_-"
)

// Generate returns a random password of max(length, MinLength) characters
// containing at least one uppercase letter, one lowercase letter, one digit,
// and one symbol from SafeSymbols. The result is cryptographically shuffled
// so the guaranteed characters are not positionally predictable.
func Generate(length int) (string, error) {
	if length < MinLength {
		length = MinLength
	}

	chars := make([]byte, 0, length)
	for _, class := range []string{upper, lower, digits, SafeSymbols} {
		c, err := pick(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	all := upper + lower + digits + SafeSymbols
	for len(chars) < length {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	if err := shuffle(chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

// pick returns one uniformly random character from the given set.
func pick(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("failed to read random bytes: %w", err)
	}
	return set[n.Int64()], nil
}

// shuffle performs a Fisher-Yates shuffle using crypto/rand.
func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to read random bytes: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
