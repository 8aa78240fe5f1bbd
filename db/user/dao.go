package user

import (
	"context"
	"fmt"
)

type (
	// Dao contains the CRUD operations for user accounts.
	// Passwords are hashed before they reach the backend.
	Dao struct {
		backend Backend
		ph      PasswordHandler
	}

	// Backend stores users.
	Backend interface {
		// Create adds the username/password pair.
		Create(ctx context.Context, u User) error
		// Read gets the user by username.
		// ErrIncorrectLogin is returned if no user has the username.
		Read(ctx context.Context, u User) (*User, error)
		// UpdatePassword sets the password of the user identified by the username.
		UpdatePassword(ctx context.Context, u User) error
		// UpdatePointsIncrement changes the points for all of the usernames.
		UpdatePointsIncrement(ctx context.Context, usernamePoints map[string]int) error
		// Delete removes the user.
		Delete(ctx context.Context, u User) error
	}

	// PasswordHandler hashes and checks passwords before they are stored.
	PasswordHandler interface {
		Hash(password string) ([]byte, error)
		IsCorrect(hashedPassword []byte, password string) (bool, error)
	}
)

// ErrIncorrectLogin is returned when a user cannot be authenticated.
var ErrIncorrectLogin = fmt.Errorf("incorrect username/password")

// NewDao creates a Dao on the backend.
func NewDao(backend Backend, ph PasswordHandler) (*Dao, error) {
	switch {
	case backend == nil:
		return nil, fmt.Errorf("creating user dao: backend required")
	case ph == nil:
		return nil, fmt.Errorf("creating user dao: password handler required")
	}
	d := Dao{
		backend: backend,
		ph:      ph,
	}
	return &d, nil
}

// Create validates the user and adds it with a hashed password.
func (d Dao) Create(ctx context.Context, u User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	hashedPassword, err := d.ph.Hash(u.Password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.Password = string(hashedPassword)
	if err := d.backend.Create(ctx, u); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read gets the user, checking the password against the stored hash.
func (d Dao) Read(ctx context.Context, u User) (*User, error) {
	u2, err := d.backend.Read(ctx, u)
	if err != nil {
		if err == ErrIncorrectLogin {
			return nil, err
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	isCorrect, err := d.ph.IsCorrect([]byte(u2.Password), u.Password)
	switch {
	case err != nil:
		return nil, fmt.Errorf("checking password: %w", err)
	case !isCorrect:
		return nil, ErrIncorrectLogin
	}
	return u2, nil
}

// UpdatePassword changes the password of the user after checking the old one.
func (d Dao) UpdatePassword(ctx context.Context, u User, newPassword string) error {
	if _, err := d.Read(ctx, u); err != nil {
		return fmt.Errorf("checking old password: %w", err)
	}
	u.Password = newPassword
	if err := u.validatePassword(); err != nil {
		return err
	}
	hashedPassword, err := d.ph.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.Password = string(hashedPassword)
	if err := d.backend.UpdatePassword(ctx, u); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdatePointsIncrement increments the points of each user by the amount in the map.
func (d Dao) UpdatePointsIncrement(ctx context.Context, usernamePoints map[string]int) error {
	if err := d.backend.UpdatePointsIncrement(ctx, usernamePoints); err != nil {
		return fmt.Errorf("incrementing user points: %w", err)
	}
	return nil
}

// Delete removes the user after checking the password.
func (d Dao) Delete(ctx context.Context, u User) error {
	if _, err := d.Read(ctx, u); err != nil {
		return fmt.Errorf("checking password: %w", err)
	}
	if err := d.backend.Delete(ctx, u); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
