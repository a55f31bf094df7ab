// Package recovery generates and checks one-time recovery keys.
//
// A recovery key is 24 symbols from A-Z0-9 grouped as XXXXXX-XXXXXX-XXXXXX-XXXXXX
// (about 124 bits of entropy). Only its SHA-256 hash is ever persisted.
package recovery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"

	"github.com/illarion/hostlock/internal/crypto"
)

const (
	Alphabet  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	Length    = 24 // symbols, separators excluded
	GroupSize = 6
)

// Bytes at or above this bound are rejected so every symbol is equally likely.
const rejectionBound = 256 - 256%len(Alphabet)

// Pattern matches a well-formed recovery key.
var Pattern = regexp.MustCompile(`^[A-Z0-9]{6}(-[A-Z0-9]{6}){3}$`)

// Generate returns a fresh recovery key drawn from crypto/rand.
func Generate() (string, error) {
	symbols := make([]byte, 0, Length)
	for len(symbols) < Length {
		buf, err := crypto.GenerateRandom(Length)
		if err != nil {
			return "", fmt.Errorf("failed to generate recovery key: %w", err)
		}
		for _, b := range buf {
			if int(b) >= rejectionBound {
				continue
			}
			symbols = append(symbols, Alphabet[int(b)%len(Alphabet)])
			if len(symbols) == Length {
				break
			}
		}
	}

	var sb strings.Builder
	sb.Grow(Length + Length/GroupSize - 1)
	for i, s := range symbols {
		if i > 0 && i%GroupSize == 0 {
			sb.WriteByte('-')
		}
		sb.WriteByte(s)
	}
	return sb.String(), nil
}

// Hash returns the hex SHA-256 digest of key.
func Hash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether key hashes to storedHash.
func Verify(key, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return crypto.ConstantTimeCompare([]byte(Hash(key)), []byte(storedHash))
}
