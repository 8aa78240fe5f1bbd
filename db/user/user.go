// Package user handles the accounts of the people who play games.
package user

import (
	"fmt"
	"unicode"
)

// User contains the stored attributes of a player account.
type User struct {
	Username string `json:"username" firestore:"-" bson:"username"`
	Password string `json:"password" firestore:"password" bson:"password"`
	Points   int    `json:"-"        firestore:"points"   bson:"points"`
}

// Validate ensures the username and password are acceptable for a new account.
func (u User) Validate() error {
	if err := u.validateUsername(); err != nil {
		return err
	}
	if err := u.validatePassword(); err != nil {
		return err
	}
	return nil
}

// validateUsername returns an error if the username is not valid.
// Usernames are lowercase so they read the same in chat messages and game infos.
func (u User) validateUsername() error {
	switch {
	case len(u.Username) < 1:
		return fmt.Errorf("username required")
	case len(u.Username) > 32:
		return fmt.Errorf("username must be at most 32 characters long")
	}
	for _, r := range u.Username {
		if !unicode.IsLower(r) {
			return fmt.Errorf("username must be made of only lowercase letters")
		}
	}
	return nil
}

// validatePassword returns an error if the password is not valid.
func (u User) validatePassword() error {
	if len(u.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}
	return nil
}
