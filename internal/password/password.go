// Package password hashes and verifies room passwords.
//
// The stored format is "salt:hash" where salt is 16 random bytes and
// hash is SHA-256(salt || plaintext), both hex-encoded. Verification
// also accepts a bare SHA-256(plaintext) digest with no separator:
// rooms created before salting was introduced store that format and
// must keep authenticating, so the legacy path is permanent.
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

const saltSize = 16

// Hash returns the salted digest of plaintext in "salt:hash" form.
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	sum := sha256.Sum256(append(salt, []byte(plaintext)...))
	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(sum[:]), nil
}

// Verify checks a candidate password against a stored hash.
// An empty stored hash means the room has no password and always
// verifies. Stored values without a ':' separator are legacy unsalted
// digests.
func Verify(stored, candidate string) bool {
	if stored == "" {
		return true
	}

	saltHex, wantHex, ok := strings.Cut(stored, ":")
	if !ok {
		// Legacy format: bare SHA-256 of the plaintext
		sum := sha256.Sum256([]byte(candidate))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(stored)) == 1
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	sum := sha256.Sum256(append(salt, []byte(candidate)...))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(wantHex)) == 1
}
