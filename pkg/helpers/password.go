package helpers

import (
	"errors"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned for secrets bcrypt would silently truncate.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// HashPassword hashes the plain text password using bcrypt (salted, one-way)
func HashPassword(plain string) (string, error) {
	if len(plain) > 72 {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareHashAndPassword compares a bcrypt hash with a plain password
func CompareHashAndPassword(hash string, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// dummyHash has the same cost as real hashes so a comparison against it
// takes as long as one against a stored password.
var dummyHash = sync.OnceValue(func() []byte {
	b, err := bcrypt.GenerateFromPassword([]byte("morningforge-no-such-account"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return b
})

// CompareDummyPassword spends one bcrypt comparison and always fails. Login
// calls it for unknown emails so timing does not reveal registration.
func CompareDummyPassword(plain string) bool {
	_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(plain))
	return false
}
