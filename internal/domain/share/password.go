package share

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLen     = 64
	saltLen          = 16
)

// HashPassword derives a PBKDF2-SHA512 hash and returns it as
// "salt:hash", both hex encoded.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	saltHex := hex.EncodeToString(salt)
	key := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return saltHex + ":" + hex.EncodeToString(key), nil
}

// VerifyPassword checks a candidate password against a stored "salt:hash".
func VerifyPassword(password, stored string) bool {
	saltHex, wantHex, ok := strings.Cut(stored, ":")
	if !ok || saltHex == "" || wantHex == "" {
		return false
	}
	want, err := hex.DecodeString(wantHex)
	if err != nil {
		return false
	}
	got := pbkdf2.Key([]byte(password), []byte(saltHex), pbkdf2Iterations, pbkdf2KeyLen, sha512.New)
	return subtle.ConstantTimeCompare(got, want) == 1
}
