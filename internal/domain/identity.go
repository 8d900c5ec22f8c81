package domain

import "time"

// Identity is an authentication record provisioned for a registrant.
// One exists per unique email.
type Identity struct {
	UID           string
	Email         string
	DisplayName   string
	PasswordHash  string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
