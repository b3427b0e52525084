package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/osmnotes/internal/common"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DerivedPasswordSize is the length of DerivePassword output.
	DerivedPasswordSize = 32
	// DeriveIterations is the PBKDF2-SHA256 work factor.
	DeriveIterations = 100_000

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16

	// Limits on parameters read back from a stored hash.
	maxArgonTime    = 10
	maxArgonMemory  = argonMemory * 4
	maxArgonThreads = argonThreads * 4
	maxArgonKeyLen  = 64
)

var ErrMalformedHash = errors.New("malformed password hash")

// DerivePassword turns the user's secret into the bytes submitted as the
// password of signup and signin payloads. The salt is bound to the OSM
// identity so every client derives the same value. The server never calls
// it; clients and tests do.
func DerivePassword(secret []byte, osmID string) []byte {
	salt := []byte("osmnotes/" + osmID)
	return pbkdf2.Key(secret, salt, DeriveIterations, DerivedPasswordSize, sha256.New)
}

func argon2Key(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// HashPassword hashes a derived password with argon2id and a random salt. The
// result is a PHC string:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>
func HashPassword(derived []byte) string {
	salt := common.GenerateRandByteArray(argonSaltLen)
	key := argon2Key(derived, salt)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

// VerifyPassword reports whether derived matches an encoded hash produced by
// HashPassword. The comparison is constant time.
func VerifyPassword(encoded string, derived []byte) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false, ErrMalformedHash
	}

	var memory uint32
	var iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, ErrMalformedHash
	}
	if iterations < 1 || iterations > maxArgonTime ||
		threads < 1 || threads > maxArgonThreads ||
		memory < 8*uint32(threads) || memory > maxArgonMemory {
		return false, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, ErrMalformedHash
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(want) == 0 || len(want) > maxArgonKeyLen {
		return false, ErrMalformedHash
	}

	got := argon2.IDKey(derived, salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
