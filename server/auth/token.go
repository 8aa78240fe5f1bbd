// Package auth ensures users are authorized to use the server after they have logged in.
package auth

import (
	"fmt"
	"io"

	jwt "github.com/golang-jwt/jwt/v4"
)

type (
	// Tokenizer creates and reads tokens from http traffic.
	Tokenizer interface {
		Create(username string, points int) (string, error)
		ReadUsername(tokenString string) (string, error)
	}

	// TokenizerConfig contains the properties to create a tokenizer.
	TokenizerConfig struct {
		// KeyReader supplies the bytes of the symmetric signing key.
		KeyReader io.Reader
		// TimeFunc supplies the current time in seconds since the unix epoch.
		TimeFunc func() int64
		// ValidSec is the number of seconds a token is valid from its issuing time.
		ValidSec int64
	}

	// JwtTokenizer signs tokens with a symmetric key.
	JwtTokenizer struct {
		method jwt.SigningMethod
		key    interface{}
		TokenizerConfig
	}

	// jwtUserClaims adds the user's points to the standard claims.
	// The username is stored in the Subject ("sub") field.
	jwtUserClaims struct {
		Points int `json:"points"`
		jwt.StandardClaims
	}
)

// NewTokenizer creates a tokenizer, generating a signing key from the key reader.
func (cfg TokenizerConfig) NewTokenizer() (*JwtTokenizer, error) {
	switch {
	case cfg.KeyReader == nil:
		return nil, fmt.Errorf("creating tokenizer: key reader required")
	case cfg.TimeFunc == nil:
		return nil, fmt.Errorf("creating tokenizer: time func required")
	case cfg.ValidSec <= 0:
		return nil, fmt.Errorf("creating tokenizer: positive valid seconds required")
	}
	key := make([]byte, 64)
	if _, err := cfg.KeyReader.Read(key); err != nil {
		return nil, fmt.Errorf("generating tokenizer key: %w", err)
	}
	j := JwtTokenizer{
		method:          jwt.SigningMethodHS256,
		key:             key,
		TokenizerConfig: cfg,
	}
	return &j, nil
}

// Create signs a token string containing the username and points.
func (j JwtTokenizer) Create(username string, points int) (string, error) {
	now := j.TimeFunc()
	claims := jwtUserClaims{
		Points: points,
		StandardClaims: jwt.StandardClaims{
			Subject:   username,
			NotBefore: now,
			ExpiresAt: now + j.ValidSec,
		},
	}
	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.key)
}

// ReadUsername extracts the username from the token string.
func (j JwtTokenizer) ReadUsername(tokenString string) (string, error) {
	var claims jwtUserClaims
	if _, err := jwt.ParseWithClaims(tokenString, &claims, j.keyFunc); err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return claims.Subject, nil
}

// keyFunc ensures the signing method of the token is correct before returning the key.
func (j JwtTokenizer) keyFunc(t *jwt.Token) (interface{}, error) {
	if t.Method != j.method {
		return nil, fmt.Errorf("incorrect authorization signing method")
	}
	return j.key, nil
}
