// Package mongo stores users in a mongodb collection.
package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/polyfall-game/polyfall/db"
	"github.com/polyfall-game/polyfall/db/user"
)

const (
	databaseName   = "polyfall-db"
	collectionName = "users"
	usernameField  = "username"
	passwordField  = "password"
	pointsField    = "points"
)

// UserBackend manages the users collection.
type UserBackend struct {
	Users *mongo.Collection
	db.Config
}

// NewUserBackend connects to the database and creates a backend for the users collection.
func NewUserBackend(ctx context.Context, cfg db.Config, databaseURL string) (*UserBackend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("creating mongodb user backend: %w", err)
	}
	clientOptions := options.Client()
	clientOptions.ApplyURI(databaseURL)
	ctx, cancelFunc := context.WithTimeout(ctx, cfg.QueryPeriod)
	defer cancelFunc()
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	users := client.Database(databaseName).Collection(collectionName)
	ub := UserBackend{
		Users:  users,
		Config: cfg,
	}
	return &ub, nil
}

// Setup ensures usernames are unique.
func (ub *UserBackend) Setup(ctx context.Context) error {
	indexOptions := options.Index()
	indexOptions.SetUnique(true)
	model := mongo.IndexModel{
		Keys:    d(e(usernameField, 1)),
		Options: indexOptions,
	}
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.Indexes().CreateOne(ctx, model); err != nil {
		return fmt.Errorf("creating unique username index: %w", err)
	}
	return nil
}

// Create adds the username/password pair.
func (ub *UserBackend) Create(ctx context.Context, u user.User) error {
	document := d(
		e(usernameField, u.Username),
		e(passwordField, u.Password),
	)
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.InsertOne(ctx, document); err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	return nil
}

// Read gets the user by username.
func (ub *UserBackend) Read(ctx context.Context, u user.User) (*user.User, error) {
	filter := d(e(usernameField, u.Username))
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	result := ub.Users.FindOne(ctx, filter)
	var u2 user.User
	if err := result.Decode(&u2); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, user.ErrIncorrectLogin
		}
		return nil, fmt.Errorf("reading user: %w", err)
	}
	return &u2, nil
}

// UpdatePassword sets the password of the user identified by the username.
func (ub *UserBackend) UpdatePassword(ctx context.Context, u user.User) error {
	filter := d(e(usernameField, u.Username))
	update := d(e("$set", d(e(passwordField, u.Password))))
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	return nil
}

// UpdatePointsIncrement changes the points for all of the usernames in one bulk write.
func (ub *UserBackend) UpdatePointsIncrement(ctx context.Context, usernamePoints map[string]int) error {
	writeModels := make([]mongo.WriteModel, 0, len(usernamePoints))
	for username, points := range usernamePoints {
		m := mongo.NewUpdateOneModel()
		m.SetFilter(d(e(usernameField, username)))
		m.SetUpdate(d(e("$inc", d(e(pointsField, points)))))
		writeModels = append(writeModels, m)
	}
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.BulkWrite(ctx, writeModels); err != nil {
		return fmt.Errorf("incrementing user points: %w", err)
	}
	return nil
}

// Delete removes the user.
func (ub *UserBackend) Delete(ctx context.Context, u user.User) error {
	filter := d(e(usernameField, u.Username))
	ctx, cancelFunc := context.WithTimeout(ctx, ub.QueryPeriod)
	defer cancelFunc()
	if _, err := ub.Users.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}

// d is a helper function to create bson documents.
func d(e ...bson.E) bson.D {
	return bson.D(e)
}

// e is a helper function to create bson document elements.
func e(key string, value interface{}) bson.E {
	return bson.E{Key: key, Value: value}
}
