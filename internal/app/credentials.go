/**
 * @description
 * This file implements operator credential hashing and verification. Passwords
 * are never stored; a PBKDF2-HMAC-SHA512 key derived with a per-password salt
 * is kept instead.
 *
 * Stored hash layout (one hex string, 256 chars):
 *   [0:128)   salt: hex of SHA-512 over 60 random bytes
 *   [128:256) key: hex of the 64-byte derived key
 *
 * @dependencies
 * - crypto/rand, crypto/sha512, crypto/subtle, encoding/hex: Standard Go libraries.
 * - golang.org/x/crypto/pbkdf2: Key derivation.
 */

package app

import (
	"crypto/rand"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltHexLen    = 128
	storedHashLen = 256
	pbkdf2Iters   = 100000
	pbkdf2KeyLen  = 64
)

// HashPassword derives a storable hash for a plaintext password. Each call
// draws a fresh salt, so hashing the same password twice yields different
// stored values.
func HashPassword(password string) (string, error) {
	seed := make([]byte, 60)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	digest := sha512.Sum512(seed)
	salt := hex.EncodeToString(digest[:])

	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iters, pbkdf2KeyLen, sha512.New)
	return salt + hex.EncodeToString(key), nil
}

// VerifyPassword reports whether password matches the stored hash. A
// malformed stored hash verifies as false rather than erroring, so a
// corrupted credential row can never authenticate.
func VerifyPassword(stored, password string) bool {
	if len(stored) != storedHashLen {
		return false
	}
	salt, want := stored[:saltHexLen], stored[saltHexLen:]

	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iters, pbkdf2KeyLen, sha512.New)
	got := hex.EncodeToString(key)
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
