package user

import (
	"context"
	"fmt"
)

// NoDatabaseBackend is used when the server runs without a database.
// Users can play games, but accounts cannot be stored.
type NoDatabaseBackend struct{}

// Create returns an error.
func (NoDatabaseBackend) Create(ctx context.Context, u User) error {
	return fmt.Errorf("no database to create user")
}

// Read returns the user without any stored points.
func (NoDatabaseBackend) Read(ctx context.Context, u User) (*User, error) {
	return &u, nil
}

// UpdatePassword returns an error.
func (NoDatabaseBackend) UpdatePassword(ctx context.Context, u User) error {
	return fmt.Errorf("no database to update user password")
}

// UpdatePointsIncrement returns an error.
func (NoDatabaseBackend) UpdatePointsIncrement(ctx context.Context, usernamePoints map[string]int) error {
	return fmt.Errorf("no database to increment user points")
}

// Delete returns an error.
func (NoDatabaseBackend) Delete(ctx context.Context, u User) error {
	return fmt.Errorf("no database to delete user")
}
