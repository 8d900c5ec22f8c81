package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

func TestNormalizeApps_ListInput(t *testing.T) {
	raw := json.RawMessage(`["agent","timer"]`)

	apps := NormalizeApps(raw, true, testNow, nil)

	require.Len(t, apps, 2)
	for _, key := range []string{"agent", "timer"} {
		usage, ok := apps[key]
		require.True(t, ok, key)
		require.Equal(t, 0, usage.LoginCount)
		require.Equal(t, 0, usage.SwitchCount)
		require.Equal(t, "", usage.DeviceID)
		require.Equal(t, "2025-06-15", usage.TrialStartDate)
	}
}

func TestNormalizeApps_ListInputNonTrial(t *testing.T) {
	raw := json.RawMessage(`["agent"]`)

	apps := NormalizeApps(raw, false, testNow, nil)

	require.Equal(t, "", apps["agent"].TrialStartDate)
}

func TestNormalizeApps_MappingFillsMissingFields(t *testing.T) {
	raw := json.RawMessage(`{"agent":{"loginCount":3},"timer":{}}`)

	apps := NormalizeApps(raw, true, testNow, nil)

	require.Len(t, apps, 2)
	require.Equal(t, 3, apps["agent"].LoginCount)
	require.Equal(t, 0, apps["agent"].SwitchCount)
	require.Equal(t, "2025-06-15", apps["agent"].TrialStartDate)
	require.Equal(t, "", apps["agent"].DeviceID)
	require.Equal(t, "2025-06-15", apps["timer"].TrialStartDate)
}

func TestNormalizeApps_MappingKeepsSuppliedTrialStartDate(t *testing.T) {
	raw := json.RawMessage(`{"agent":{"trialStartDate":"2024-01-01"}}`)

	apps := NormalizeApps(raw, true, testNow, nil)

	require.Equal(t, "2024-01-01", apps["agent"].TrialStartDate)
}

func TestNormalizeApps_MappingNonObjectValueClaimsKey(t *testing.T) {
	raw := json.RawMessage(`{"agent":"use it please"}`)

	apps := NormalizeApps(raw, false, testNow, nil)

	require.Len(t, apps, 1)
	require.Equal(t, AppUsage{}, apps["agent"])
}

func TestNormalizeApps_AbsentUsesDefaults(t *testing.T) {
	defaults := []string{"i-agent", "i-timer", "a-agent", "a-timer"}

	apps := NormalizeApps(nil, false, testNow, defaults)

	require.Len(t, apps, 4)
	for _, key := range defaults {
		require.Contains(t, apps, key)
	}
}

func TestNormalizeApps_NullUsesDefaults(t *testing.T) {
	defaults := []string{"i-agent", "i-timer"}

	apps := NormalizeApps(json.RawMessage(`null`), true, testNow, defaults)

	require.Len(t, apps, 2)
	require.Equal(t, "2025-06-15", apps["i-agent"].TrialStartDate)
	require.Equal(t, "2025-06-15", apps["i-timer"].TrialStartDate)
}

func TestNormalizeApps_EmptyListStaysEmpty(t *testing.T) {
	// An explicit empty list is a list shape, not absent input.
	apps := NormalizeApps(json.RawMessage(`[]`), false, testNow, []string{"agent"})

	require.Empty(t, apps)
}

func TestNormalizeApps_MalformedUsesDefaults(t *testing.T) {
	apps := NormalizeApps(json.RawMessage(`42`), true, testNow, []string{"agent"})

	require.Len(t, apps, 1)
	require.Equal(t, "2025-06-15", apps["agent"].TrialStartDate)
}

func TestNormalizeApps_IdempotentOnNormalizedInput(t *testing.T) {
	first := NormalizeApps(json.RawMessage(`["agent","timer"]`), true, testNow, nil)

	encoded, err := json.Marshal(first)
	require.NoError(t, err)

	second := NormalizeApps(encoded, true, testNow, nil)
	require.Equal(t, first, second)
}

func TestIsTrial(t *testing.T) {
	require.True(t, IsTrial("trial"))
	require.True(t, IsTrial("TRIAL"))
	require.True(t, IsTrial("Trial"))
	require.False(t, IsTrial("active"))
	require.False(t, IsTrial(""))
}
