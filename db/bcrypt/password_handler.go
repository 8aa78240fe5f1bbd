// Package bcrypt hashes and checks passwords before they are stored.
package bcrypt

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHandler hashes and checks passwords with the bcrypt algorithm.
type PasswordHandler struct {
	cost int
}

// NewPasswordHandler creates a password handler with the default cost.
func NewPasswordHandler() PasswordHandler {
	ph := PasswordHandler{
		cost: bcrypt.DefaultCost,
	}
	return ph
}

// Hash computes the hash of the password.
func (ph PasswordHandler) Hash(password string) ([]byte, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), ph.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return hashedPassword, nil
}

// IsCorrect determines if the hashed password was computed from the password.
func (PasswordHandler) IsCorrect(hashedPassword []byte, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(hashedPassword, []byte(password))
	switch {
	case err == bcrypt.ErrMismatchedHashAndPassword:
		return false, nil
	case err != nil:
		return false, fmt.Errorf("checking password: %w", err)
	}
	return true, nil
}
