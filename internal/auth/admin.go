// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any username or password mismatch.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AdminAuthenticator verifies the configured administrator's credentials.
type AdminAuthenticator struct {
	username     string
	passwordHash []byte
}

// NewAdminAuthenticator accepts either a plain password, hashed once here, or
// an existing bcrypt hash.
func NewAdminAuthenticator(username, password string) (*AdminAuthenticator, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}

	if isBcryptHash(password) {
		if _, err := bcrypt.Cost([]byte(password)); err != nil {
			return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
		}
		return &AdminAuthenticator{username: username, passwordHash: []byte(password)}, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	return &AdminAuthenticator{username: username, passwordHash: hash}, nil
}

// Username returns the administrator's username.
func (a *AdminAuthenticator) Username() string {
	return a.username
}

// Authenticate checks both fields, always running bcrypt so a wrong username
// costs the same as a wrong password.
func (a *AdminAuthenticator) Authenticate(username, password string) error {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil

	if !usernameMatch || !passwordMatch {
		return ErrInvalidCredentials
	}
	return nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
