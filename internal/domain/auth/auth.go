// Package auth decides whether a username/password pair may open the dashboard.
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrEmptyPassword is returned by HashPassword for an empty input.
var ErrEmptyPassword = errors.New("password is empty")

// Verifier checks credentials. Implementations must be safe for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, username, password string) bool
}

// Static accepts exactly one configured pair.
type Static struct {
	username []byte
	password []byte
}

// NewStatic returns a verifier for the given pair.
func NewStatic(username, password string) *Static {
	return &Static{username: []byte(username), password: []byte(password)}
}

// Verify compares both fields in constant time.
func (s *Static) Verify(_ context.Context, username, password string) bool {
	u := subtle.ConstantTimeCompare(s.username, []byte(username))
	p := subtle.ConstantTimeCompare(s.password, []byte(password))
	return u&p == 1
}

// Bcrypt accepts one username whose password matches a bcrypt hash.
type Bcrypt struct {
	username []byte
	hash     []byte
}

// NewBcrypt returns a verifier for username and a hash produced by HashPassword.
func NewBcrypt(username, hash string) (*Bcrypt, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &Bcrypt{username: []byte(username), hash: []byte(hash)}, nil
}

func (b *Bcrypt) Verify(_ context.Context, username, password string) bool {
	userOK := subtle.ConstantTimeCompare(b.username, []byte(username)) == 1
	// always pay for the hash so a wrong username is not faster
	passOK := bcrypt.CompareHashAndPassword(b.hash, []byte(password)) == nil
	return userOK && passOK
}

// HashPassword hashes password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}
