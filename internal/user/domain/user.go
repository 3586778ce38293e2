package domain

import "time"

// DefaultRole is assigned to every self-registered principal.
const DefaultRole = "USER"

// User is the principal record backing every identity token. Tokens are
// read-only snapshots: editing roles here never rewrites tokens already
// issued.
type User struct {
	ID           string
	Email        string
	Username     string
	PasswordHash string // argon2 encoded
	Roles        []string

	// IsActive gates login; operators flip it to suspend an account.
	IsActive bool
	// IsVerified flips exactly once, when the verification token is
	// redeemed.
	IsVerified bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
