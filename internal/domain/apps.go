package domain

import (
	"encoding/json"
	"time"
)

// appUsageInput mirrors AppUsage with pointer fields so absent keys can be
// told apart from zero values when reconciling partial payloads.
type appUsageInput struct {
	LoginCount     *int    `json:"loginCount"`
	SwitchCount    *int    `json:"switchCount"`
	TrialStartDate *string `json:"trialStartDate"`
	DeviceID       *string `json:"deviceId"`
}

// NormalizeApps reconciles the two payload shapes the registration form has
// produced over time into the canonical per-app mapping:
//
//   - a mapping from app key to (possibly partial) usage metadata: keys are
//     kept, missing fields are defaulted;
//   - an ordered list of app-key strings: each key gets zeroed metadata;
//   - anything else, including absent input: the configured default key set.
//
// For trial registrations any unset trialStartDate becomes the given date.
// Already-normalized input passes through unchanged.
func NormalizeApps(raw json.RawMessage, trial bool, now time.Time, defaultKeys []string) map[string]AppUsage {
	today := ""
	if trial {
		today = DateString(now)
	}

	if len(raw) > 0 {
		// The nil checks keep a JSON null out of both branches: null
		// unmarshals cleanly into either type but is neither shape.
		var byKey map[string]json.RawMessage
		if err := json.Unmarshal(raw, &byKey); err == nil && byKey != nil {
			return normalizeMapping(byKey, today)
		}

		var keys []string
		if err := json.Unmarshal(raw, &keys); err == nil && keys != nil {
			return normalizeKeys(keys, today)
		}
	}

	return normalizeKeys(defaultKeys, today)
}

func normalizeMapping(byKey map[string]json.RawMessage, today string) map[string]AppUsage {
	apps := make(map[string]AppUsage, len(byKey))
	for key, rawUsage := range byKey {
		var in appUsageInput
		// A non-object value still claims the key; its metadata is defaulted.
		_ = json.Unmarshal(rawUsage, &in)

		usage := AppUsage{}
		if in.LoginCount != nil {
			usage.LoginCount = *in.LoginCount
		}
		if in.SwitchCount != nil {
			usage.SwitchCount = *in.SwitchCount
		}
		if in.DeviceID != nil {
			usage.DeviceID = *in.DeviceID
		}
		if in.TrialStartDate != nil {
			usage.TrialStartDate = *in.TrialStartDate
		}
		if usage.TrialStartDate == "" {
			usage.TrialStartDate = today
		}
		apps[key] = usage
	}
	return apps
}

func normalizeKeys(keys []string, today string) map[string]AppUsage {
	apps := make(map[string]AppUsage, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		apps[key] = AppUsage{TrialStartDate: today}
	}
	return apps
}
