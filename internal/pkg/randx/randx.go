/*
Package randx generates cryptographically secure random identifiers.

Session identifiers are fixed-length Base62 strings drawn from crypto/rand;
correlation identifiers are UUID v4 strings.
*/
package randx

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	// Base62Chars defines the character set used for Base62 encoding (0-9, A-Z, a-z).
	Base62Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

	// Base62Len is the total number of characters in the Base62 character set (62).
	Base62Len = int64(len(Base62Chars))

	// SessionIDLength gives roughly 190 bits of entropy.
	SessionIDLength = 32
)

// base62 returns n random Base62 characters.
func base62(n int) (string, error) {
	result := make([]byte, n)

	for i := range n {
		num, err := rand.Int(rand.Reader, big.NewInt(Base62Len))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		result[i] = Base62Chars[num.Int64()]
	}

	return string(result), nil
}

// SessionID returns a new random session identifier of SessionIDLength characters.
func SessionID() (string, error) {
	return base62(SessionIDLength)
}

// IsValidSessionID reports whether id has the shape produced by SessionID.
func IsValidSessionID(id string) bool {
	if len(id) != SessionIDLength {
		return false
	}

	for _, char := range id {
		if !strings.ContainsRune(Base62Chars, char) {
			return false
		}
	}

	return true
}

// RequestID returns a UUID v4 string used to correlate a chat turn across log lines.
func RequestID() string {
	return uuid.New().String()
}
