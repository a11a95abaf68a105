package core

import (
	"testing"
	"time"

	"github.com/incontrol-io/incontrol/api"
	"github.com/stretchr/testify/assert"
)

func TestDateActive(t *testing.T) {
	now := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

	future := now.Add(time.Hour).Format(time.RFC3339)
	past := now.Add(-time.Hour).Format(time.RFC3339)

	assert.True(t, dateActive(map[string]string{"X": future}, "X", now))
	assert.False(t, dateActive(map[string]string{"X": past}, "X", now))

	// missing or malformed values fail closed
	assert.False(t, dateActive(map[string]string{}, "X", now))
	assert.False(t, dateActive(map[string]string{"X": "garbage"}, "X", now))
	assert.False(t, dateActive(map[string]string{"X": ""}, "X", now))
}

func TestDeriveTrackedStatusClimate(t *testing.T) {
	now := time.Now()

	ice := api.Status{Core: map[string]string{"VEHICLE_STATE_TYPE": "ENGINE_ON_REMOTE_START"}}
	assert.True(t, deriveTrackedStatus(api.EngineICE, ice, api.GuardianStatus{}, now).ClimateEngineActive)

	// the engine flag is meaningless for pure electric vehicles
	assert.False(t, deriveTrackedStatus(api.EngineBEV, ice, api.GuardianStatus{}, now).ClimateEngineActive)

	bev := api.Status{
		Core: map[string]string{},
		EV:   map[string]string{"EV_PRECONDITION_OPERATING_STATUS": "PRECLIM"},
	}
	assert.True(t, deriveTrackedStatus(api.EngineBEV, bev, api.GuardianStatus{}, now).ClimateElectricActive)

	bev.EV["EV_PRECONDITION_OPERATING_STATUS"] = "STARTUP"
	assert.True(t, deriveTrackedStatus(api.EngineBEV, bev, api.GuardianStatus{}, now).ClimateElectricActive)

	bev.EV["EV_PRECONDITION_OPERATING_STATUS"] = "OFF"
	assert.False(t, deriveTrackedStatus(api.EngineBEV, bev, api.GuardianStatus{}, now).ClimateElectricActive)
}

func TestDeriveTrackedStatusPrivacyInversion(t *testing.T) {
	now := time.Now()

	recording := api.Status{Core: map[string]string{"PRIVACY_SWITCH": "TRUE"}}
	assert.False(t, deriveTrackedStatus(api.EngineICE, recording, api.GuardianStatus{}, now).PrivacyModeEnabled)

	private := api.Status{Core: map[string]string{"PRIVACY_SWITCH": "FALSE"}}
	assert.True(t, deriveTrackedStatus(api.EngineICE, private, api.GuardianStatus{}, now).PrivacyModeEnabled)

	// missing switch counts as privacy enabled
	assert.True(t, deriveTrackedStatus(api.EngineICE, api.Status{Core: map[string]string{}}, api.GuardianStatus{}, now).PrivacyModeEnabled)
}

func TestDeriveTrackedStatusModes(t *testing.T) {
	now := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)

	status := api.Status{Core: map[string]string{
		"SERVICE_MODE_STOP":   now.Add(time.Hour).Format(time.RFC3339),
		"TRANSPORT_MODE_STOP": now.Add(-time.Hour).Format(time.RFC3339),
	}}

	tracked := deriveTrackedStatus(api.EngineICE, status, api.GuardianStatus{}, now)
	assert.True(t, tracked.ServiceModeEnabled)
	assert.False(t, tracked.TransportModeEnabled)
}

func TestDeriveTrackedStatusGuardianAndCharging(t *testing.T) {
	now := time.Now()

	status := api.Status{
		Core: map[string]string{},
		EV:   map[string]string{"EV_CHARGING_STATUS": "CHARGING"},
	}

	tracked := deriveTrackedStatus(api.EngineBEV, status, api.GuardianStatus{Status: "ACTIVE"}, now)
	assert.True(t, tracked.GuardianModeActive)
	assert.True(t, tracked.IsCharging)

	tracked = deriveTrackedStatus(api.EngineBEV, status, api.GuardianStatus{Status: "INACTIVE"}, now)
	assert.False(t, tracked.GuardianModeActive)
}

func TestShortInterval(t *testing.T) {
	assert.True(t, TrackedStatus{ClimateEngineActive: true}.ShortInterval())
	assert.True(t, TrackedStatus{ClimateElectricActive: true}.ShortInterval())
	assert.False(t, TrackedStatus{IsCharging: true}.ShortInterval())
}
