package hash

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength applies to new passwords only; existing hashes are never re-checked.
const MinPasswordLength = 6

var ErrPasswordTooShort = errors.New("password is too short")

func HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashbytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashbytes), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
