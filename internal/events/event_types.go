package events

import (
	"time"

	"github.com/melcoco/registration-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventUserRegistered EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload carries everything the notification fan-out needs so
// handlers never have to read the store.
type UserRegisteredPayload struct {
	UID        string                     `json:"uid"`
	Email      string                     `json:"email"`
	Name       string                     `json:"name"`
	SalonName  string                     `json:"salon_name"`
	Prefecture string                     `json:"prefecture"`
	Trial      bool                       `json:"trial"`
	Apps       map[string]domain.AppUsage `json:"apps"`
}
