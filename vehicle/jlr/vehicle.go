package jlr

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util/request"
)

// content types for the various service configuration endpoints
const (
	acceptHealthStatus  = "application/vnd.ngtp.org.if9.healthstatus-v3+json"
	acceptAttributes    = "application/vnd.ngtp.org.VehicleAttributes-v4+json"
	acceptTripList      = "application/vnd.ngtp.org.triplist-v2+json"
	acceptGuardianAlarm = "application/vnd.wirelesscar.ngtp.if9.GuardianStatus-v1+json"
	acceptWakeupTime    = "application/vnd.wirelesscar.ngtp.if9.VehicleWakeupTime-v2+json"
	acceptUserAuth      = "application/vnd.wirelesscar.ngtp.if9.AuthenticateResponse-v1+json"
	acceptServiceV4     = "application/vnd.wirelesscar.ngtp.if9.ServiceStatus-v4+json"

	contentServiceV2   = "application/vnd.wirelesscar.ngtp.if9.StartServiceConfiguration-v2+json"
	contentServiceV3   = "application/vnd.wirelesscar.ngtp.if9.StartServiceConfiguration-v3+json"
	contentPhevService = "application/vnd.wirelesscar.ngtp.if9.PhevService-v1+json"
)

// Vehicle implements the per-vehicle InControl api
type Vehicle struct {
	conn *Connection
	vin  string

	// cached getters for slow-changing settings
	attributesG func() (api.Attributes, error)
	rccG        func() (string, error)
}

var _ api.Vehicle = (*Vehicle)(nil)

// VIN returns the vehicle identification number
func (v *Vehicle) VIN() string {
	return v.vin
}

func (v *Vehicle) get(uri, accept string, res interface{}) error {
	headers := request.AcceptJSON
	if accept != "" {
		headers = map[string]string{"Accept": accept}
	}

	req, err := request.New(http.MethodGet, uri, nil, headers)
	if err == nil {
		err = v.conn.DoJSON(req, res)
	}
	return err
}

// Attributes returns the vehicle metadata
func (v *Vehicle) Attributes() (api.Attributes, error) {
	return v.attributesG()
}

func (v *Vehicle) attributes() (api.Attributes, error) {
	var res api.Attributes
	uri := fmt.Sprintf("%s/vehicles/%s/attributes", v.conn.baseURI, v.vin)
	err := v.get(uri, acceptAttributes, &res)
	return res, err
}

// Status returns the current telemetry snapshot
func (v *Vehicle) Status() (api.Status, error) {
	var res StatusResponse
	uri := fmt.Sprintf("%s/vehicles/%s/status?includeInactive=true", v.conn.baseURI, v.vin)
	err := v.get(uri, acceptHealthStatus, &res)
	return res.Decode(), err
}

// Position returns the last reported vehicle position
func (v *Vehicle) Position() (*api.Position, error) {
	var res PositionResponse
	uri := fmt.Sprintf("%s/vehicles/%s/position", v.conn.baseURI, v.vin)
	err := v.get(uri, "", &res)

	if err != nil || res.Position == nil {
		return nil, err
	}

	return &api.Position{
		Latitude:  res.Position.Latitude,
		Longitude: res.Position.Longitude,
		Speed:     res.Position.Speed,
		Heading:   res.Position.Heading,
	}, nil
}

// Trips returns the most recent trips
func (v *Vehicle) Trips(count int) ([]map[string]interface{}, error) {
	var res TripsResponse
	uri := fmt.Sprintf("%s/vehicles/%s/trips?count=%d", v.conn.baseURI, v.vin, count)
	err := v.get(uri, acceptTripList, &res)
	return res.Trips, err
}

// GuardianModeStatus returns the guardian mode state
func (v *Vehicle) GuardianModeStatus() (api.GuardianStatus, error) {
	var res GuardianStatusResponse
	uri := fmt.Sprintf("%s/vehicles/%s/gmalerts/protectionStrategyStatus", v.conn.baseURI, v.vin)
	err := v.get(uri, acceptGuardianAlarm, &res)

	return api.GuardianStatus{
		Capable: err == nil,
		Status:  res.Status,
		Expiry:  res.EndTime,
	}, err
}

// RccTargetValue returns the stored remote climate target setting
func (v *Vehicle) RccTargetValue() (string, error) {
	return v.rccG()
}

func (v *Vehicle) rccTargetValue() (string, error) {
	var res keyValue
	uri := fmt.Sprintf("%s/vehicles/%s/settings/ClimateControlRccTargetTemp", v.conn.baseURI, v.vin)
	err := v.get(uri, "", &res)
	return res.Value, err
}

// WakeupTime returns the next scheduled wakeup of the vehicle's telematics unit
func (v *Vehicle) WakeupTime() (time.Time, error) {
	var res struct {
		WakeupTime int64 `json:"wakeupTime"`
	}
	uri := fmt.Sprintf("%s/vehicles/%s/wakeuptime", v.conn.baseURI, v.vin)
	err := v.get(uri, acceptWakeupTime, &res)

	if err != nil || res.WakeupTime == 0 {
		return time.Time{}, err
	}
	return time.UnixMilli(res.WakeupTime), nil
}

// Services returns the vendor-side jobs currently in flight
func (v *Vehicle) Services() ([]api.ServiceStatus, error) {
	var res []api.ServiceStatus
	uri := fmt.Sprintf("%s/vehicles/%s/services", v.conn.baseURI, v.vin)
	err := v.get(uri, "", &res)
	return res, err
}

// ServiceStatus returns the state of an asynchronous service job
func (v *Vehicle) ServiceStatus(id string) (api.ServiceStatus, error) {
	var res api.ServiceStatus
	uri := fmt.Sprintf("%s/vehicles/%s/services/%s", v.conn.baseURI, v.vin, id)
	err := v.get(uri, acceptServiceV4, &res)
	return res, err
}

// authenticate requests a single-use service token for the given service
func (v *Vehicle) authenticate(service, pin string) (string, error) {
	uri := fmt.Sprintf("%s/vehicles/%s/users/%s/authenticate/%s",
		v.conn.baseURI, v.vin, v.conn.identity.UserID(), service)

	data := map[string]string{
		"serviceName": service,
		"pin":         pin,
	}

	req, err := request.New(http.MethodPost, uri, request.MarshalJSON(data), map[string]string{
		"Content-Type": request.JSONEncoding["Content-Type"],
		"Accept":       acceptUserAuth,
	})

	var res struct {
		Token string `json:"token"`
	}
	if err == nil {
		err = v.conn.DoJSON(req, &res)
	}

	return res.Token, err
}

// vinPin is the implicit pin for services authenticated with the VIN suffix
func (v *Vehicle) vinPin() string {
	return v.vin[len(v.vin)-4:]
}

// command submits a service configuration to the given endpoint
func (v *Vehicle) command(endpoint, contentType string, data interface{}) (*api.ServiceResponse, error) {
	uri := fmt.Sprintf("%s/vehicles/%s/%s", v.conn.baseURI, v.vin, endpoint)

	req, err := request.New(http.MethodPost, uri, request.MarshalJSON(data), map[string]string{
		"Content-Type": contentType,
		"Accept":       acceptServiceV4,
	})

	var res api.ServiceResponse
	if err == nil {
		err = v.conn.DoJSON(req, &res)
	}

	return &res, err
}

// tokenCommand authenticates the service and submits the token-only payload
func (v *Vehicle) tokenCommand(service, pin, endpoint, contentType string) (*api.ServiceResponse, error) {
	token, err := v.authenticate(service, pin)
	if err != nil {
		return nil, err
	}

	return v.command(endpoint, contentType, map[string]string{"token": token})
}

// Lock locks the vehicle
func (v *Vehicle) Lock(pin string) (*api.ServiceResponse, error) {
	return v.tokenCommand("RDL", pin, "lock", contentServiceV2)
}

// Unlock unlocks the vehicle
func (v *Vehicle) Unlock(pin string) (*api.ServiceResponse, error) {
	return v.tokenCommand("RDU", pin, "unlock", contentServiceV2)
}

// RemoteEngineStart starts the engine for remote climate. targetValue is the
// vendor-scale climate setpoint (31-57).
func (v *Vehicle) RemoteEngineStart(pin string, targetValue int) (*api.ServiceResponse, error) {
	if err := v.setRccTargetValue(pin, targetValue); err != nil {
		return nil, err
	}

	return v.tokenCommand("REON", pin, "engineOn", contentServiceV2)
}

// setRccTargetValue stores the remote climate setpoint ahead of engine start
func (v *Vehicle) setRccTargetValue(pin string, targetValue int) error {
	token, err := v.authenticate("PROV", pin)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"token": token,
		"serviceParameters": []keyValue{
			{Key: "ClimateControlRccTargetTemp", Value: strconv.Itoa(targetValue)},
		},
	}

	_, err = v.command("settings", contentPhevService, data)
	return err
}

// RemoteEngineStop stops a remotely started engine
func (v *Vehicle) RemoteEngineStop(pin string) (*api.ServiceResponse, error) {
	return v.tokenCommand("REOFF", pin, "engineOff", contentServiceV2)
}

// HonkBlink flashes the lights and sounds the horn
func (v *Vehicle) HonkBlink() (*api.ServiceResponse, error) {
	return v.tokenCommand("HBLF", v.vinPin(), "honkBlink", contentServiceV3)
}

// ResetAlarm silences a triggered alarm
func (v *Vehicle) ResetAlarm(pin string) (*api.ServiceResponse, error) {
	return v.tokenCommand("ALOFF", pin, "unlock", contentServiceV2)
}

// chargeProfile submits a charging profile parameter change
func (v *Vehicle) chargeProfile(params []keyValue) (*api.ServiceResponse, error) {
	token, err := v.authenticate("CP", v.vinPin())
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token":             token,
		"serviceParameters": params,
	}

	return v.command("chargeProfile", contentPhevService, data)
}

// ChargingStart forces charging to start
func (v *Vehicle) ChargingStart() (*api.ServiceResponse, error) {
	return v.chargeProfile([]keyValue{{Key: "CHARGE_NOW_SETTING", Value: "FORCE_ON"}})
}

// ChargingStop forces charging to stop
func (v *Vehicle) ChargingStop() (*api.ServiceResponse, error) {
	return v.chargeProfile([]keyValue{{Key: "CHARGE_NOW_SETTING", Value: "FORCE_OFF"}})
}

// preconditioning submits an electric climate preconditioning command
func (v *Vehicle) preconditioning(params []keyValue) (*api.ServiceResponse, error) {
	token, err := v.authenticate("ECC", v.vinPin())
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token":             token,
		"serviceParameters": params,
	}

	return v.command("preconditioning", contentPhevService, data)
}

// PreconditioningStart starts electric climate preconditioning. targetTemp is
// the vendor-scale setpoint in tenths of a degree (155-285).
func (v *Vehicle) PreconditioningStart(targetTemp int) (*api.ServiceResponse, error) {
	return v.preconditioning([]keyValue{
		{Key: "PRECONDITIONING", Value: "START"},
		{Key: "TARGET_TEMPERATURE_CELSIUS", Value: strconv.Itoa(targetTemp)},
	})
}

// PreconditioningStop stops electric climate preconditioning
func (v *Vehicle) PreconditioningStop() (*api.ServiceResponse, error) {
	return v.preconditioning([]keyValue{{Key: "PRECONDITIONING", Value: "STOP"}})
}

// SetMaxSoc sets the permanent maximum state of charge
func (v *Vehicle) SetMaxSoc(level int) (*api.ServiceResponse, error) {
	return v.chargeProfile([]keyValue{{Key: "SET_PERMANENT_MAX_SOC", Value: strconv.Itoa(level)}})
}

// SetOneOffMaxSoc sets the maximum state of charge for the current session only
func (v *Vehicle) SetOneOffMaxSoc(level int) (*api.ServiceResponse, error) {
	return v.chargeProfile([]keyValue{{Key: "SET_ONE_OFF_MAX_SOC", Value: strconv.Itoa(level)}})
}

// AddDepartureTimer schedules a single departure timer
func (v *Vehicle) AddDepartureTimer(departure time.Time) (*api.ServiceResponse, error) {
	token, err := v.authenticate("CP", v.vinPin())
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token": token,
		"departureTimerSetting": map[string]interface{}{
			"timers": []map[string]interface{}{
				{
					"timerIndex": 50,
					"timerType":  map[string]interface{}{"key": "BOTHCHARGEANDPRECONDITION", "value": true},
					"departureTime": map[string]int{
						"hour":   departure.Hour(),
						"minute": departure.Minute(),
					},
					"timerTarget": map[string]interface{}{
						"singleDay": map[string]int{
							"day":   departure.Day(),
							"month": int(departure.Month()),
							"year":  departure.Year(),
						},
					},
				},
			},
		},
	}

	return v.command("chargeProfile", contentPhevService, data)
}

// DeleteDepartureTimer removes the scheduled departure timer
func (v *Vehicle) DeleteDepartureTimer() (*api.ServiceResponse, error) {
	token, err := v.authenticate("CP", v.vinPin())
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token": token,
		"departureTimerSetting": map[string]interface{}{
			"timers": []map[string]interface{}{
				{"timerIndex": 50},
			},
		},
	}

	return v.command("chargeProfile", contentPhevService, data)
}

// EnableGuardianMode activates guardian mode until the given expiry (epoch ms)
func (v *Vehicle) EnableGuardianMode(pin string, expiry int64) (*api.ServiceResponse, error) {
	token, err := v.authenticate("GMCC", pin)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token":   token,
		"endTime": expiry,
		"status":  "ACTIVE",
	}

	return v.command("gmalerts", contentServiceV3, data)
}

// DisableGuardianMode deactivates guardian mode
func (v *Vehicle) DisableGuardianMode(pin string) (*api.ServiceResponse, error) {
	token, err := v.authenticate("GMCC", pin)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token":  token,
		"status": "INACTIVE",
	}

	return v.command("gmalerts", contentServiceV3, data)
}

// prov submits a provisioning command (privacy/service/transport modes)
func (v *Vehicle) prov(pin, command string, expiry int64) (*api.ServiceResponse, error) {
	token, err := v.authenticate("PROV", pin)
	if err != nil {
		return nil, err
	}

	data := map[string]interface{}{
		"token":          token,
		"serviceCommand": command,
		"startTime":      nil,
		"endTime":        nil,
	}
	if expiry != 0 {
		data["endTime"] = expiry
	}

	return v.command("prov", contentPhevService, data)
}

// EnableServiceMode suppresses alerts while the vehicle is serviced
func (v *Vehicle) EnableServiceMode(pin string, expiry int64) (*api.ServiceResponse, error) {
	return v.prov(pin, "protectionStrategy_serviceMode", expiry)
}

// DisableServiceMode ends service mode
func (v *Vehicle) DisableServiceMode(pin string) (*api.ServiceResponse, error) {
	return v.prov(pin, "protectionStrategy_default", 0)
}

// EnableTransportMode suppresses alerts while the vehicle is transported
func (v *Vehicle) EnableTransportMode(pin string, expiry int64) (*api.ServiceResponse, error) {
	return v.prov(pin, "protectionStrategy_transportMode", expiry)
}

// DisableTransportMode ends transport mode
func (v *Vehicle) DisableTransportMode(pin string) (*api.ServiceResponse, error) {
	return v.prov(pin, "protectionStrategy_default", 0)
}

// EnablePrivacyMode stops journey recording
func (v *Vehicle) EnablePrivacyMode(pin string) (*api.ServiceResponse, error) {
	return v.prov(pin, "privacySwitch_on", 0)
}

// DisablePrivacyMode resumes journey recording
func (v *Vehicle) DisablePrivacyMode(pin string) (*api.ServiceResponse, error) {
	return v.prov(pin, "privacySwitch_off", 0)
}

// HealthStatus requests a fresh status report from the vehicle itself
func (v *Vehicle) HealthStatus(pin string) (*api.ServiceResponse, error) {
	return v.tokenCommand("VHS", pin, "healthstatus", contentServiceV3)
}
