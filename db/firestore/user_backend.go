// Package firestore stores users in a google cloud firestore collection.
package firestore

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"

	"github.com/polyfall-game/polyfall/db"
	"github.com/polyfall-game/polyfall/db/user"
)

const (
	serviceName   = "polyfall"
	passwordField = "password"
	pointsField   = "points"
)

// UserBackend manages the users collection.
type UserBackend struct {
	client *firestore.Client
	db.Config
}

// NewUserBackend creates a firestore client for the project to manage users with.
func NewUserBackend(ctx context.Context, cfg db.Config, projectID string) (*UserBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating firestore user backend: %w", err)
	}
	// the client outlives any single query, so its context is not subject to the query period
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	ub := UserBackend{
		client: client,
		Config: cfg,
	}
	return &ub, nil
}

// users gets the collection the user documents are stored in, keyed by username.
func (ub *UserBackend) users() *firestore.CollectionRef {
	return ub.client.Collection("services").Doc(serviceName).Collection("users")
}

// withTimeoutContext runs the function with a context that is cancelled after the query period.
func (ub *UserBackend) withTimeoutContext(ctx context.Context, f func(ctx context.Context) error) error {
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	return f(ctx)
}

// Create adds the username/password pair.
func (ub *UserBackend) Create(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.users().Doc(u.Username)
		m := map[string]interface{}{
			passwordField: u.Password,
		}
		// Create returns an error if the user already exists
		_, err := docRef.Create(ctx, m)
		return err
	}); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read gets the user by username.
func (ub *UserBackend) Read(ctx context.Context, u user.User) (*user.User, error) {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.users().Doc(u.Username)
		snapshot, err := docRef.Get(ctx)
		if err != nil {
			if snapshot != nil && !snapshot.Exists() {
				return user.ErrIncorrectLogin
			}
			return err
		}
		return snapshot.DataTo(&u)
	}); err != nil {
		if err == user.ErrIncorrectLogin {
			return nil, err
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u, nil
}

// UpdatePassword sets the password of the user identified by the username.
func (ub *UserBackend) UpdatePassword(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.users().Doc(u.Username)
		updates := []firestore.Update{
			{
				Path:  passwordField,
				Value: u.Password,
			},
		}
		_, err := docRef.Update(ctx, updates)
		return err
	}); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdatePointsIncrement changes the points for all of the usernames in one batch.
func (ub *UserBackend) UpdatePointsIncrement(ctx context.Context, usernamePoints map[string]int) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		users := ub.users()
		b := ub.client.Batch()
		for username, points := range usernamePoints {
			docRef := users.Doc(username)
			updates := []firestore.Update{
				{
					Path:  pointsField,
					Value: firestore.FieldTransformIncrement(points),
				},
			}
			b.Update(docRef, updates)
		}
		_, err := b.Commit(ctx)
		return err
	}); err != nil {
		return fmt.Errorf("incrementing user points: %w", err)
	}
	return nil
}

// Delete removes the user.
func (ub *UserBackend) Delete(ctx context.Context, u user.User) error {
	if err := ub.withTimeoutContext(ctx, func(ctx context.Context) error {
		docRef := ub.users().Doc(u.Username)
		_, err := docRef.Delete(ctx, firestore.Exists)
		return err
	}); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
