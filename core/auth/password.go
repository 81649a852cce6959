package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	saltLen      = 16
)

// PasswordHash carries the derived key and per-user salt, both base64. The
// server-side pepper is mixed into the password before derivation and lives
// only in config.
type PasswordHash struct {
	Hash string
	Salt string
}

func HashPassword(password, pepper string) (PasswordHash, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return PasswordHash{}, err
	}
	key := argon2.IDKey([]byte(password+pepper), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return PasswordHash{
		Hash: base64.RawStdEncoding.EncodeToString(key),
		Salt: base64.RawStdEncoding.EncodeToString(salt),
	}, nil
}

func MustHashPassword(password, pepper string) PasswordHash {
	ph, err := HashPassword(password, pepper)
	if err != nil {
		panic(err)
	}
	return ph
}

func ParsePasswordHash(hash, salt string) (PasswordHash, error) {
	if hash == "" || salt == "" {
		return PasswordHash{}, errors.New("empty password hash")
	}
	return PasswordHash{Hash: hash, Salt: salt}, nil
}

func VerifyPassword(password, pepper string, ph PasswordHash) (bool, error) {
	salt, err := base64.RawStdEncoding.DecodeString(ph.Salt)
	if err != nil {
		return false, err
	}
	want, err := base64.RawStdEncoding.DecodeString(ph.Hash)
	if err != nil {
		return false, err
	}
	got := argon2.IDKey([]byte(password+pepper), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}
