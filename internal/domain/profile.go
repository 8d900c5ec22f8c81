package domain

import (
	"strings"
	"time"
)

// StatusTrial is the one status literal that toggles trial behavior.
// Any other value is treated as a full registration.
const StatusTrial = "trial"

// IsTrial reports whether a registration status selects trial mode.
// Matching is case-insensitive.
func IsTrial(status string) bool {
	return strings.EqualFold(status, StatusTrial)
}

// AppUsage tracks per-app usage metadata for a registrant. Every key in a
// normalized apps mapping has all four fields populated; the counters are
// mutated by the client applications, never by this service.
type AppUsage struct {
	LoginCount     int    `json:"loginCount"`
	SwitchCount    int    `json:"switchCount"`
	TrialStartDate string `json:"trialStartDate"`
	DeviceID       string `json:"deviceId"`
}

// Profile is the persisted record describing a registrant, keyed by the
// provisioned identity's uid.
type Profile struct {
	UID            string
	Status         string
	Email          string
	DisplayName    string
	SalonName      string
	Prefecture     string
	Apps           map[string]AppUsage
	TrialStartDate string // set only for trial registrations, YYYY-MM-DD
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// DateString formats a timestamp the way trial start dates are stored.
func DateString(t time.Time) string {
	return t.Format("2006-01-02")
}
