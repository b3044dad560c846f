package services

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/chatimage/backend/internal/apperrors"
)

// Password policy names accepted by ParsePasswordPolicy
const (
	PasswordPolicyStrict = "strict"
	PasswordPolicyBasic  = "basic"
)

// DefaultSpecialCharacters is the symbol set of the strict password policy
const DefaultSpecialCharacters = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?~`"

// MaxPasswordBytes is the longest password bcrypt accepts
const MaxPasswordBytes = 72

// emailRegex validates email shape: local@domain.tld
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	upperRegex = regexp.MustCompile(`[A-Z]`)
	digitRegex = regexp.MustCompile(`[0-9]`)
)

// PasswordPolicy describes the strength rules a signup password must satisfy
type PasswordPolicy struct {
	MinLength         int
	RequireUpper      bool
	RequireDigit      bool
	RequireSpecial    bool
	SpecialCharacters string
}

// StrictPasswordPolicy requires at least 8 characters, an uppercase letter, a digit and a symbol
func StrictPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:         8,
		RequireUpper:      true,
		RequireDigit:      true,
		RequireSpecial:    true,
		SpecialCharacters: DefaultSpecialCharacters,
	}
}

// BasicPasswordPolicy only requires a non-empty password
func BasicPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 1}
}

// ParsePasswordPolicy returns the policy registered under name
func ParsePasswordPolicy(name string) (PasswordPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PasswordPolicyStrict:
		return StrictPasswordPolicy(), nil
	case PasswordPolicyBasic:
		return BasicPasswordPolicy(), nil
	default:
		return PasswordPolicy{}, fmt.Errorf("unknown password policy: %s", name)
	}
}

// Validate checks password against the policy
func (p PasswordPolicy) Validate(password string) error {
	if len(password) > MaxPasswordBytes {
		return apperrors.Validation("password too long")
	}
	if utf8.RuneCountInString(password) < p.MinLength {
		return apperrors.Validation("weak password")
	}
	if p.RequireUpper && !upperRegex.MatchString(password) {
		return apperrors.Validation("weak password")
	}
	if p.RequireDigit && !digitRegex.MatchString(password) {
		return apperrors.Validation("weak password")
	}
	if p.RequireSpecial && !strings.ContainsAny(password, p.SpecialCharacters) {
		return apperrors.Validation("weak password")
	}
	return nil
}

// ValidateRequired fails if any of the fields is empty or whitespace only
func ValidateRequired(fields ...string) error {
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return apperrors.Validation("missing fields")
		}
	}
	return nil
}

// ValidateEmail checks the shape of an already normalized email
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return apperrors.Validation("invalid email format")
	}
	return nil
}

// NormalizeEmail lowercases and trims an email; the result is the uniqueness and lookup key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
