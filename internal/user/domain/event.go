package domain

import "time"

// UserRegisteredEvent is published after a principal is created. The
// notification service consumes it and delivers the verification token
// out-of-band; the token never goes back to the API caller directly.
type UserRegisteredEvent struct {
	UserID            string    `json:"userId"`
	UserName          string    `json:"userName"`
	Email             string    `json:"email"`
	VerificationToken string    `json:"verificationToken"`
	Timestamp         time.Time `json:"timestamp"`
}
