package core

import (
	"time"

	"github.com/incontrol-io/incontrol/api"
)

// mockVehicle implements api.Vehicle with canned responses and call counters
type mockVehicle struct {
	vin string

	attributes api.Attributes
	status     api.Status
	position   *api.Position
	trips      []map[string]interface{}
	guardian   api.GuardianStatus
	inflight   []api.ServiceStatus

	// serviceStates is consumed one entry per ServiceStatus poll
	serviceStates []string
	submitRes     *api.ServiceResponse
	submitErr     error

	positionErr error

	statusCalls   int
	positionCalls int
	tripCalls     int
	submitCalls   int
	pollCalls     int
}

var _ api.Vehicle = (*mockVehicle)(nil)

func (m *mockVehicle) VIN() string {
	if m.vin == "" {
		return "SALGA2EV9HA000001"
	}
	return m.vin
}

func (m *mockVehicle) Attributes() (api.Attributes, error) {
	return m.attributes, nil
}

func (m *mockVehicle) Status() (api.Status, error) {
	m.statusCalls++
	return m.status, nil
}

func (m *mockVehicle) Position() (*api.Position, error) {
	m.positionCalls++
	if m.positionErr != nil {
		return nil, m.positionErr
	}
	return m.position, nil
}

func (m *mockVehicle) Trips(count int) ([]map[string]interface{}, error) {
	m.tripCalls++
	return m.trips, nil
}

func (m *mockVehicle) GuardianModeStatus() (api.GuardianStatus, error) {
	return m.guardian, nil
}

func (m *mockVehicle) RccTargetValue() (string, error) {
	return "", api.ErrNotAvailable
}

func (m *mockVehicle) WakeupTime() (time.Time, error) {
	return time.Time{}, api.ErrNotAvailable
}

func (m *mockVehicle) Services() ([]api.ServiceStatus, error) {
	return m.inflight, nil
}

func (m *mockVehicle) ServiceStatus(id string) (api.ServiceStatus, error) {
	state := "Successful"
	if m.pollCalls < len(m.serviceStates) {
		state = m.serviceStates[m.pollCalls]
	}
	m.pollCalls++

	return api.ServiceStatus{
		Status:    state,
		ServiceID: id,
		VehicleID: m.VIN(),
	}, nil
}

func (m *mockVehicle) submit() (*api.ServiceResponse, error) {
	m.submitCalls++
	if m.submitErr != nil {
		return nil, m.submitErr
	}
	if m.submitRes != nil {
		return m.submitRes, nil
	}
	return &api.ServiceResponse{CustomerServiceID: "svc-0000000000000000000001"}, nil
}

func (m *mockVehicle) Lock(pin string) (*api.ServiceResponse, error)   { return m.submit() }
func (m *mockVehicle) Unlock(pin string) (*api.ServiceResponse, error) { return m.submit() }
func (m *mockVehicle) RemoteEngineStart(pin string, targetValue int) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) RemoteEngineStop(pin string) (*api.ServiceResponse, error) { return m.submit() }
func (m *mockVehicle) HonkBlink() (*api.ServiceResponse, error)                  { return m.submit() }
func (m *mockVehicle) ResetAlarm(pin string) (*api.ServiceResponse, error)       { return m.submit() }
func (m *mockVehicle) ChargingStart() (*api.ServiceResponse, error)              { return m.submit() }
func (m *mockVehicle) ChargingStop() (*api.ServiceResponse, error)               { return m.submit() }
func (m *mockVehicle) PreconditioningStart(targetTemp int) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) PreconditioningStop() (*api.ServiceResponse, error)      { return m.submit() }
func (m *mockVehicle) SetMaxSoc(level int) (*api.ServiceResponse, error)       { return m.submit() }
func (m *mockVehicle) SetOneOffMaxSoc(level int) (*api.ServiceResponse, error) { return m.submit() }
func (m *mockVehicle) AddDepartureTimer(departure time.Time) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) DeleteDepartureTimer() (*api.ServiceResponse, error) { return m.submit() }
func (m *mockVehicle) EnableGuardianMode(pin string, expiry int64) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) DisableGuardianMode(pin string) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) EnableServiceMode(pin string, expiry int64) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) DisableServiceMode(pin string) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) EnableTransportMode(pin string, expiry int64) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) DisableTransportMode(pin string) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) EnablePrivacyMode(pin string) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) DisablePrivacyMode(pin string) (*api.ServiceResponse, error) {
	return m.submit()
}
func (m *mockVehicle) HealthStatus(pin string) (*api.ServiceResponse, error) { return m.submit() }

// mockConnection implements api.Connection with a geocode call counter
type mockConnection struct {
	address      string
	geocodeCalls int
}

var _ api.Connection = (*mockConnection)(nil)

func (m *mockConnection) UserInfo() (api.UserInfo, error) {
	return api.UserInfo{}, nil
}

func (m *mockConnection) ReverseGeocode(lat, lon float64) (api.Address, error) {
	m.geocodeCalls++
	return api.Address{FormattedAddress: m.address}, nil
}
