package services

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrWeakPassword is the base of every policy violation, so callers can
// classify without string matching.
var ErrWeakPassword = errors.New("password does not meet policy")

func policyError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrWeakPassword}, args...)...)
}

// PasswordPolicy validates new passwords on account creation and change.
type PasswordPolicy struct {
	MinLength int
	// MinCharClasses of: lowercase, uppercase, digit, symbol.
	MinCharClasses int
	Forbidden      []string
}

func NewPasswordPolicy(minLength int, forbidden []string) *PasswordPolicy {
	if minLength <= 0 {
		minLength = 10
	}
	return &PasswordPolicy{
		MinLength:      minLength,
		MinCharClasses: 3,
		Forbidden:      forbidden,
	}
}

// Validate returns a field-level error describing the first violated rule.
func (p *PasswordPolicy) Validate(username, password string) error {
	if len(password) < p.MinLength {
		return policyError("must be at least %d characters", p.MinLength)
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, ok := range []bool{lower, upper, digit, symbol} {
		if ok {
			classes++
		}
	}
	if classes < p.MinCharClasses {
		return policyError("must use at least %d of: lowercase, uppercase, digits, symbols", p.MinCharClasses)
	}

	if username != "" && strings.Contains(strings.ToLower(password), strings.ToLower(username)) {
		return policyError("must not contain the username")
	}

	lowered := strings.ToLower(password)
	for _, banned := range p.Forbidden {
		if banned != "" && strings.Contains(lowered, strings.ToLower(banned)) {
			return policyError("too common")
		}
	}

	return nil
}
