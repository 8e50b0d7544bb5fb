package domain

import (
	"strings"
	"time"
)

// DefaultRole is assigned to every user created through registration.
const DefaultRole = "USER"

type User struct {
	ID           string
	Email        string // unique, case-normalized
	PasswordHash string // argon2 encoded
	FirstName    string
	LastName     string
	Role         string
	LastLoginAt  *time.Time // nullable, set on each successful login
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail case-folds and trims an email so that lookups and the
// uniqueness constraint agree on a single canonical form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
