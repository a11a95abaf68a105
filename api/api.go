package api

import (
	"errors"
	"time"
)

// EngineType is the vehicle powertrain type
type EngineType int

const (
	EngineUnknown EngineType = iota
	EngineICE
	EngineBEV
	EnginePHEV
)

func (t EngineType) String() string {
	switch t {
	case EngineICE:
		return "ICE"
	case EngineBEV:
		return "BEV"
	case EnginePHEV:
		return "PHEV"
	default:
		return "Unknown"
	}
}

var (
	// ErrNotAvailable indicates that a feature is not available on this vehicle
	ErrNotAvailable = errors.New("not available")

	// ErrMustRetry indicates that a rate-limited operation should be retried
	ErrMustRetry = errors.New("must retry")

	// ErrTimeout indicates that a service call did not complete in time
	ErrTimeout = errors.New("timeout")
)

// Alert is a single vehicle alert entry
type Alert struct {
	Name        string
	Active      bool
	LastUpdated time.Time
}

// Status is the full telemetry snapshot for a vehicle. It is replaced
// wholesale on every poll, never merged.
type Status struct {
	Core        map[string]string
	EV          map[string]string
	Alerts      []Alert
	LastUpdated time.Time
}

// Position is the reported vehicle position
type Position struct {
	Latitude  float64
	Longitude float64
	Speed     float64
	Heading   float64
}

// Address is a reverse geocoding result
type Address struct {
	FormattedAddress string
}

// GuardianStatus reflects the guardian mode state of a vehicle
type GuardianStatus struct {
	Capable bool
	Status  string
	Expiry  string
}

// ServiceInfo describes a single vendor service subscription
type ServiceInfo struct {
	ServiceType    string `json:"serviceType"`
	VehicleCapable bool   `json:"vehicleCapable"`
	ServiceEnabled bool   `json:"serviceEnabled"`
}

// Attributes is the slow-changing vehicle metadata
type Attributes struct {
	Nickname          string        `json:"nickname"`
	Registration      string        `json:"registrationNumber"`
	VehicleBrand      string        `json:"vehicleBrand"`
	VehicleType       string        `json:"vehicleType"`
	FuelType          string        `json:"fuelType"`
	PowerTrainType    string        `json:"powerTrainType"`
	AvailableServices []ServiceInfo `json:"availableServices"`
}

// ServiceResponse is the synchronous reply to a remote command submission
type ServiceResponse struct {
	CustomerServiceID string `json:"customerServiceId"`
	Status            string `json:"status"`
	ErrorLabel        string `json:"errorLabel"`
	ErrorDescription  string `json:"errorDescription"`
}

// Failed returns true if the response carries an explicit error marker
func (r *ServiceResponse) Failed() bool {
	return r != nil && r.ErrorLabel != ""
}

// ServiceStatus is the state of an asynchronous vendor-side service job
type ServiceStatus struct {
	Status        string `json:"status"`
	ServiceID     string `json:"customerServiceId"`
	VehicleID     string `json:"vehicleId"`
	ServiceType   string `json:"serviceType"`
	FailureReason string `json:"failureReason"`
	Active        bool   `json:"active"`
}

// UserInfo holds the account holder details and raw unit preferences
type UserInfo struct {
	FirstName          string
	MiddleName         string
	LastName           string
	UnitsOfMeasurement string
}

// Vehicle is the vendor operation surface for a single vehicle. The
// coordinator and service executor consume this interface only.
type Vehicle interface {
	VIN() string

	Attributes() (Attributes, error)
	Status() (Status, error)
	Position() (*Position, error)
	Trips(count int) ([]map[string]interface{}, error)
	GuardianModeStatus() (GuardianStatus, error)
	RccTargetValue() (string, error)
	WakeupTime() (time.Time, error)

	// Services returns the vendor-side jobs currently in flight
	Services() ([]ServiceStatus, error)
	ServiceStatus(id string) (ServiceStatus, error)

	Lock(pin string) (*ServiceResponse, error)
	Unlock(pin string) (*ServiceResponse, error)
	RemoteEngineStart(pin string, targetValue int) (*ServiceResponse, error)
	RemoteEngineStop(pin string) (*ServiceResponse, error)
	HonkBlink() (*ServiceResponse, error)
	ResetAlarm(pin string) (*ServiceResponse, error)
	ChargingStart() (*ServiceResponse, error)
	ChargingStop() (*ServiceResponse, error)
	PreconditioningStart(targetTemp int) (*ServiceResponse, error)
	PreconditioningStop() (*ServiceResponse, error)
	SetMaxSoc(level int) (*ServiceResponse, error)
	SetOneOffMaxSoc(level int) (*ServiceResponse, error)
	AddDepartureTimer(departure time.Time) (*ServiceResponse, error)
	DeleteDepartureTimer() (*ServiceResponse, error)
	EnableGuardianMode(pin string, expiry int64) (*ServiceResponse, error)
	DisableGuardianMode(pin string) (*ServiceResponse, error)
	EnableServiceMode(pin string, expiry int64) (*ServiceResponse, error)
	DisableServiceMode(pin string) (*ServiceResponse, error)
	EnableTransportMode(pin string, expiry int64) (*ServiceResponse, error)
	DisableTransportMode(pin string) (*ServiceResponse, error)
	EnablePrivacyMode(pin string) (*ServiceResponse, error)
	DisablePrivacyMode(pin string) (*ServiceResponse, error)
	HealthStatus(pin string) (*ServiceResponse, error)
}

// Connection is the account-level vendor surface
type Connection interface {
	UserInfo() (UserInfo, error)
	ReverseGeocode(lat, lon float64) (Address, error)
}
