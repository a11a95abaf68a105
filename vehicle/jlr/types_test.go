package jlr

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusResponseDecode(t *testing.T) {
	payload := `{
		"vehicleStatus": {
			"coreStatus": [
				{"key": "PRIVACY_SWITCH", "value": "TRUE"},
				{"key": "VEHICLE_STATE_TYPE", "value": "KEY_REMOVED"}
			],
			"evStatus": [
				{"key": "EV_CHARGING_STATUS", "value": "CHARGING"}
			]
		},
		"vehicleAlerts": [
			{"name": "DOOR_OPEN", "active": true, "lastUpdatedTime": "2022-06-01T10:00:00+0000"}
		],
		"lastUpdatedTime": "2022-06-01T10:05:00+0000"
	}`

	var res StatusResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &res))

	status := res.Decode()

	assert.Equal(t, "TRUE", status.Core["PRIVACY_SWITCH"])
	assert.Equal(t, "KEY_REMOVED", status.Core["VEHICLE_STATE_TYPE"])
	assert.Equal(t, "CHARGING", status.EV["EV_CHARGING_STATUS"])

	require.Len(t, status.Alerts, 1)
	assert.Equal(t, "DOOR_OPEN", status.Alerts[0].Name)
	assert.True(t, status.Alerts[0].Active)
	assert.False(t, status.Alerts[0].LastUpdated.IsZero())

	assert.Equal(t, time.Date(2022, 6, 1, 10, 5, 0, 0, time.UTC), status.LastUpdated.UTC())
}

func TestStatusResponseDecodeNoEv(t *testing.T) {
	payload := `{
		"vehicleStatus": {
			"coreStatus": [{"key": "PRIVACY_SWITCH", "value": "FALSE"}]
		}
	}`

	var res StatusResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &res))

	status := res.Decode()
	assert.Nil(t, status.EV)
	assert.True(t, status.LastUpdated.IsZero())
}

func TestEnsureVehicles(t *testing.T) {
	vehicles := []*Vehicle{
		{vin: "SALGA2EV9HA000001"},
		{vin: "SALGA2EV9HA000002"},
	}

	res, err := EnsureVehicles(vehicles, nil)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	res, err = EnsureVehicles(vehicles, []string{" salga2ev9ha000002 "})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "SALGA2EV9HA000002", res[0].VIN())

	_, err = EnsureVehicles(vehicles, []string{"SALGA2EV9HA000009"})
	require.Error(t, err)

	_, err = EnsureVehicles(nil, nil)
	require.Error(t, err)
}
