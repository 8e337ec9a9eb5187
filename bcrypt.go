package console

import (
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the work factor the dashboard has always used.
// The bcrypt record is self describing, so records written at other costs
// keep verifying after the default changes.
const DefaultBcryptCost = 10

// HashPassword will generate a password hash at the default cost
func HashPassword(password string) (string, error) {
	return HashPasswordCost(password, DefaultBcryptCost)
}

// HashPasswordCost generates a password hash at the given bcrypt cost. Each
// call salts independently, so equal passwords produce distinct records.
func HashPasswordCost(password string, cost int) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password matches
// the hashed password. Malformed hash records fail the same way as a wrong
// password; this never panics on bad input.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}
