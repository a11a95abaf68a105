package core

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStatus(core map[string]string) api.Status {
	if core == nil {
		core = map[string]string{"PRIVACY_SWITCH": "FALSE"}
	}
	return api.Status{Core: core, LastUpdated: time.Now()}
}

func testStateVehicle(mock *mockVehicle, conn *mockConnection) *Vehicle {
	v := NewVehicle(util.NewLogger("test"), mock, conn, "1234")
	v.clock = clock.NewMock()
	return v
}

func TestUpdateThrottleGuard(t *testing.T) {
	mock := &mockVehicle{status: testStatus(nil)}
	v := testStateVehicle(mock, &mockConnection{})
	mockClock := v.clock.(*clock.Mock)

	require.NoError(t, v.Update())
	assert.Equal(t, 1, mock.statusCalls)

	// a refresh within the guard window is skipped entirely
	mockClock.Add(10 * time.Second)
	require.NoError(t, v.Update())
	assert.Equal(t, 1, mock.statusCalls)
	assert.Equal(t, 1, mock.positionCalls)

	mockClock.Add(statusGuard)
	require.NoError(t, v.Update())
	assert.Equal(t, 2, mock.statusCalls)
}

func TestUpdatePrivacyInvariant(t *testing.T) {
	mock := &mockVehicle{
		status: testStatus(map[string]string{"PRIVACY_SWITCH": "FALSE"}),
		trips:  []map[string]interface{}{{"id": float64(1)}},
	}
	v := testStateVehicle(mock, &mockConnection{})
	mockClock := v.clock.(*clock.Mock)

	require.NoError(t, v.Update())
	assert.NotNil(t, v.LastTrip())

	// once the privacy switch flips, stale trip data must not survive
	mock.status = testStatus(map[string]string{"PRIVACY_SWITCH": "TRUE"})
	mockClock.Add(statusGuard)

	require.NoError(t, v.Update())
	assert.Nil(t, v.LastTrip())
	assert.Equal(t, 1, mock.tripCalls)
}

func TestUpdateGeocodeOnlyOnPositionChange(t *testing.T) {
	mock := &mockVehicle{
		status:   testStatus(nil),
		position: &api.Position{Latitude: 52.5, Longitude: 13.4},
	}
	conn := &mockConnection{address: "Somewhere 1, Berlin"}
	v := testStateVehicle(mock, conn)
	mockClock := v.clock.(*clock.Mock)

	require.NoError(t, v.Update())
	assert.Equal(t, 1, conn.geocodeCalls)
	require.NotNil(t, v.Address())
	assert.Equal(t, "Somewhere 1, Berlin", v.Address().FormattedAddress)

	// unchanged position reuses the cached address
	mockClock.Add(statusGuard)
	require.NoError(t, v.Update())
	assert.Equal(t, 1, conn.geocodeCalls)

	// sub-precision jitter below 8 decimal places does not count as movement
	mock.position = &api.Position{Latitude: 52.5 + 1e-10, Longitude: 13.4}
	mockClock.Add(statusGuard)
	require.NoError(t, v.Update())
	assert.Equal(t, 1, conn.geocodeCalls)

	mock.position = &api.Position{Latitude: 52.6, Longitude: 13.4}
	mockClock.Add(statusGuard)
	require.NoError(t, v.Update())
	assert.Equal(t, 2, conn.geocodeCalls)
}

func TestUpdateUnknownAddress(t *testing.T) {
	mock := &mockVehicle{
		status:   testStatus(nil),
		position: &api.Position{Latitude: 0.1, Longitude: 0.1},
	}
	conn := &mockConnection{address: ""}
	v := testStateVehicle(mock, conn)

	require.NoError(t, v.Update())
	require.NotNil(t, v.Address())
	assert.Equal(t, "Unknown", v.Address().FormattedAddress)
}

func TestApplyStatusIdempotent(t *testing.T) {
	v := testStateVehicle(&mockVehicle{}, &mockConnection{})

	status := testStatus(map[string]string{
		"PRIVACY_SWITCH":     "TRUE",
		"VEHICLE_STATE_TYPE": "KEY_REMOVED",
	})

	v.applyStatus(status)
	first := v.TrackedStatus()

	v.applyStatus(status)
	assert.Equal(t, first, v.TrackedStatus())
}

func TestUpdateAttributes(t *testing.T) {
	mock := &mockVehicle{attributes: api.Attributes{
		Nickname:       "Disco",
		PowerTrainType: "PHEV",
		AvailableServices: []api.ServiceInfo{
			{ServiceType: "RDL", VehicleCapable: true, ServiceEnabled: true},
			{ServiceType: "ECC", VehicleCapable: true, ServiceEnabled: true},
			{ServiceType: "REON", VehicleCapable: true, ServiceEnabled: false},
		},
	}}
	v := testStateVehicle(mock, &mockConnection{})

	require.NoError(t, v.UpdateAttributes())

	assert.Equal(t, "Disco", v.Name())
	assert.Equal(t, api.EnginePHEV, v.EngineType())

	services := v.SupportedServices()
	assert.Contains(t, services, "RDL")
	assert.Contains(t, services, "ECC")
	assert.NotContains(t, services, "REON")

	// provisioning modes are always present, ECC implies both directions
	assert.Contains(t, services, "PM")
	assert.Contains(t, services, "SM")
	assert.Contains(t, services, "TM")
	assert.Contains(t, services, "ECCON")
	assert.Contains(t, services, "ECCOFF")
}

func TestDetectEngineTypeFallback(t *testing.T) {
	v := testStateVehicle(&mockVehicle{}, &mockConnection{})

	assert.Equal(t, api.EngineBEV, v.detectEngineType(api.Attributes{FuelType: "Electric"}))
	assert.Equal(t, api.EngineICE, v.detectEngineType(api.Attributes{FuelType: "Diesel"}))
	assert.Equal(t, api.EngineUnknown, v.detectEngineType(api.Attributes{}))

	v.status.EV = map[string]string{"EV_PHEV_RANGE_COMBINED_KM": "40"}
	assert.Equal(t, api.EnginePHEV, v.detectEngineType(api.Attributes{}))
}
