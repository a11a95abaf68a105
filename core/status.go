package core

import (
	"time"

	"github.com/incontrol-io/incontrol/api"
)

// TrackedStatus holds the derived flags recomputed from every status snapshot
type TrackedStatus struct {
	ClimateEngineActive   bool
	ClimateElectricActive bool
	GuardianModeActive    bool
	IsCharging            bool
	PrivacyModeEnabled    bool
	ServiceModeEnabled    bool
	TransportModeEnabled  bool
}

// ShortInterval reports whether climate activity warrants fast polling
func (t TrackedStatus) ShortInterval() bool {
	return t.ClimateEngineActive || t.ClimateElectricActive
}

func valueMatch(data map[string]string, key, value string) bool {
	return data[key] == value
}

var statusTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// dateActive reports whether the value at key parses as a timestamp that is
// still in the future. Missing or malformed values count as inactive.
func dateActive(data map[string]string, key string, now time.Time) bool {
	s, ok := data[key]
	if !ok || s == "" {
		return false
	}

	for _, layout := range statusTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.After(now)
		}
	}

	return false
}

// deriveTrackedStatus computes the tracked flags from a raw status snapshot
// and the guardian mode state
func deriveTrackedStatus(engine api.EngineType, status api.Status, guardian api.GuardianStatus, now time.Time) TrackedStatus {
	var res TrackedStatus

	if engine == api.EngineICE || engine == api.EnginePHEV {
		res.ClimateEngineActive = valueMatch(status.Core, "VEHICLE_STATE_TYPE", "ENGINE_ON_REMOTE_START")
	}

	if engine == api.EngineBEV || engine == api.EnginePHEV {
		// both PRECLIM and STARTUP count as running
		res.ClimateElectricActive = status.EV != nil && !valueMatch(status.EV, "EV_PRECONDITION_OPERATING_STATUS", "OFF")
	}

	res.GuardianModeActive = guardian.Status == "ACTIVE"
	res.IsCharging = status.EV != nil && valueMatch(status.EV, "EV_CHARGING_STATUS", "CHARGING")

	// the vendor switch is inverted: TRUE means journeys are recorded
	res.PrivacyModeEnabled = !valueMatch(status.Core, "PRIVACY_SWITCH", "TRUE")

	res.ServiceModeEnabled = dateActive(status.Core, "SERVICE_MODE_STOP", now)
	res.TransportModeEnabled = dateActive(status.Core, "TRANSPORT_MODE_STOP", now)

	return res
}
