package dto

import (
	"encoding/json"
	"strings"
)

// RegisterRequest is the registration form submission. Apps stays raw: it
// arrives either as a list of app keys or as a per-app metadata mapping and
// is reconciled downstream.
type RegisterRequest struct {
	Email      string          `json:"email" validate:"required"`
	Name       string          `json:"name" validate:"required"`
	SalonName  string          `json:"salonName" validate:"required"`
	Prefecture string          `json:"prefecture" validate:"required"`
	Status     string          `json:"status" validate:"required"`
	Apps       json.RawMessage `json:"apps"`
}

// Normalize trims surrounding whitespace and lowercases the email so
// duplicate detection is consistent.
func (r *RegisterRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.SalonName = strings.TrimSpace(r.SalonName)
	r.Prefecture = strings.TrimSpace(r.Prefecture)
	r.Status = strings.TrimSpace(r.Status)
}

// ResetPasswordRequest is the operator password-reset payload.
type ResetPasswordRequest struct {
	Password string `json:"password" validate:"required,min=6"`
}
