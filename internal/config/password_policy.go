// Waypoint - Travel Photo Map Services
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/waypoint

package config

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// PasswordPolicy defines requirements for the plain text admin password.
type PasswordPolicy struct {
	MinLength                int
	RequireUppercase         bool
	RequireLowercase         bool
	RequireDigit             bool
	RequireSpecial           bool
	MaxConsecutiveRepeats    int // 0 = disabled
	ForbidUsernameSimilarity bool
}

// DefaultPasswordPolicy returns the admin password policy.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:                12,
		RequireUppercase:         true,
		RequireLowercase:         true,
		RequireDigit:             true,
		RequireSpecial:           true,
		MaxConsecutiveRepeats:    3,
		ForbidUsernameSimilarity: true,
	}
}

// Violations returns every rule the password breaks.
func (p PasswordPolicy) Violations(password, username string) []string {
	var out []string

	if n := len([]rune(password)); n < p.MinLength {
		out = append(out, fmt.Sprintf("password must be at least %d characters (got %d)", p.MinLength, n))
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if p.RequireUppercase && !upper {
		out = append(out, "password must contain at least one uppercase letter")
	}
	if p.RequireLowercase && !lower {
		out = append(out, "password must contain at least one lowercase letter")
	}
	if p.RequireDigit && !digit {
		out = append(out, "password must contain at least one digit")
	}
	if p.RequireSpecial && !special {
		out = append(out, "password must contain at least one special character")
	}

	if p.MaxConsecutiveRepeats > 0 && maxConsecutiveRepeats(password) > p.MaxConsecutiveRepeats {
		out = append(out, fmt.Sprintf("password cannot have more than %d consecutive repeated characters", p.MaxConsecutiveRepeats))
	}

	if p.ForbidUsernameSimilarity && username != "" && isSimilarToUsername(password, username) {
		out = append(out, "password is too similar to username")
	}

	return out
}

// ValidateWithError returns an error listing all violations, or nil.
func (p PasswordPolicy) ValidateWithError(password, username string) error {
	if v := p.Violations(password, username); len(v) > 0 {
		return errors.New(strings.Join(v, "; "))
	}
	return nil
}

func maxConsecutiveRepeats(password string) int {
	best, run := 0, 0
	var last rune
	for i, r := range password {
		if i > 0 && r == last {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
		last = r
	}
	return best
}

// isSimilarToUsername reports whether the password contains the username
// or its reverse, ignoring case.
func isSimilarToUsername(password, username string) bool {
	pw := strings.ToLower(password)
	user := strings.ToLower(username)
	if len(user) < 3 {
		return false
	}

	runes := []rune(user)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}

	return strings.Contains(pw, user) || strings.Contains(pw, string(runes))
}
