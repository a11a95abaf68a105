package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
	"github.com/incontrol-io/incontrol/util/request"
	"github.com/thoas/go-funk"
)

const (
	defaultPollInterval = 2 * time.Second
	defaultMaxPolls     = 60
)

// vendor service job states
const (
	statusStarted          = "Started"
	statusRunning          = "Running"
	statusSuccessful       = "Successful"
	statusMessageDelivered = "MessageDelivered"
)

// Params are the caller-supplied arguments of a remote service invocation.
// Temperatures are in the user's configured unit; datetimes use the
// "2006-01-02 15:04:05" layout in UTC.
type Params struct {
	Pin            string  `json:"pin,omitempty"`
	TargetValue    float64 `json:"targetValue,omitempty"`
	TargetTemp     float64 `json:"targetTemp,omitempty"`
	ExpirationTime string  `json:"expirationTime,omitempty"`
	DepartureTime  string  `json:"departureTime,omitempty"`
	MaxChargeLevel int     `json:"maxChargeLevel,omitempty"`
}

// Executor drives a single remote service call from validation through
// submission to a terminal job state
type Executor struct {
	log          *util.Logger
	clock        clock.Clock
	pollInterval time.Duration
	maxPolls     int
	tempUnit     func() string
}

// NewExecutor creates a service executor. tempUnit supplies the account's
// configured temperature unit for setpoint conversion.
func NewExecutor(log *util.Logger, tempUnit func() string) *Executor {
	return &Executor{
		log:          log,
		clock:        clock.New(),
		pollInterval: defaultPollInterval,
		maxPolls:     defaultMaxPolls,
		tempUnit:     tempUnit,
	}
}

// Execute runs the named service against the vehicle and reports whether the
// vendor confirmed success. All failure modes are logged, never propagated.
func (e *Executor) Execute(v *Vehicle, name string, params Params) bool {
	def, ok := Services[name]
	if !ok {
		e.log.ERROR.Printf("unknown service: %s", name)
		serviceCounter.WithLabelValues(name, "rejected").Inc()
		return false
	}

	if err := e.validate(v, def); err != nil {
		e.log.ERROR.Printf("cannot call %s on %s: %v", name, v.Name(), err)
		serviceCounter.WithLabelValues(name, "rejected").Inc()
		return false
	}

	args, err := e.convertParams(v, def, params)
	if err != nil {
		e.log.ERROR.Printf("invalid parameters for %s on %s: %v", name, v.Name(), err)
		serviceCounter.WithLabelValues(name, "rejected").Inc()
		return false
	}

	res, err := def.Call(v.API(), args)
	if err != nil {
		var se request.StatusError
		if errors.As(err, &se) && se.StatusCode() == http.StatusUnauthorized {
			e.log.WARN.Printf("not authorized to call %s on %s, check pin", name, v.Name())
			serviceCounter.WithLabelValues(name, "unauthorized").Inc()
		} else {
			e.log.ERROR.Printf("error calling %s on %s: %v", name, v.Name(), err)
			serviceCounter.WithLabelValues(name, "error").Inc()
		}
		return false
	}

	if res.Failed() {
		e.log.ERROR.Printf("service call %s to %s failed: %s (%s)",
			name, v.Name(), res.ErrorLabel, res.ErrorDescription)
		serviceCounter.WithLabelValues(name, "failed").Inc()
		return false
	}

	// some services complete synchronously without a trackable job
	if res == nil || res.CustomerServiceID == "" {
		serviceCounter.WithLabelValues(name, "success").Inc()
		return true
	}

	return e.monitor(v, name, res.CustomerServiceID)
}

// validate checks the vehicle capability and rejects the call while another
// vendor-side job is still in flight. The vendor queues at most one job per
// vehicle.
func (e *Executor) validate(v *Vehicle, def ServiceDef) error {
	if def.Code != serviceCodeNA && !funk.ContainsString(v.SupportedServices(), def.Code) {
		return fmt.Errorf("service %s not supported by vehicle", def.Code)
	}

	services, err := v.API().Services()
	if err != nil {
		return fmt.Errorf("cannot check for queued services: %w", err)
	}
	if len(services) > 0 {
		return fmt.Errorf("another service request is still processing")
	}

	return nil
}

// convertParams translates user-facing parameters into vendor-scale arguments
func (e *Executor) convertParams(v *Vehicle, def ServiceDef, params Params) (callArgs, error) {
	args := callArgs{
		pin:   params.Pin,
		level: params.MaxChargeLevel,
	}
	if args.pin == "" {
		args.pin = v.Pin()
	}

	switch def.Code {
	case "REON":
		args.target = convertTempValue(e.tempUnit(), def.Code, params.TargetValue)
	case "ECC":
		args.target = convertTempValue(e.tempUnit(), def.Code, params.TargetTemp)
	}

	if def.RequiresExpiry {
		expiry, err := convertDateTimeToEpoch(params.ExpirationTime)
		if err != nil {
			return args, err
		}
		args.expiry = expiry
	}

	if params.DepartureTime != "" {
		departure, err := parseDateTime(params.DepartureTime)
		if err != nil {
			return args, err
		}
		args.departure = departure
	}

	return args, nil
}

// monitor waits for the job to reach a terminal state and reports the outcome
func (e *Executor) monitor(v *Vehicle, name, id string) bool {
	status, err := e.poll(v, name, id)
	if err != nil {
		if errors.Is(err, api.ErrTimeout) {
			e.log.ERROR.Printf("service call %s to %s: %v", name, v.Name(), err)
			serviceCounter.WithLabelValues(name, "timeout").Inc()
		} else {
			e.log.ERROR.Printf("cannot monitor %s on %s: %v", name, v.Name(), err)
			serviceCounter.WithLabelValues(name, "error").Inc()
		}
		return false
	}

	if status.Status == statusSuccessful || status.Status == statusMessageDelivered {
		e.log.DEBUG.Printf("service call %s to %s was successful", name, v.Name())
		serviceCounter.WithLabelValues(name, "success").Inc()
		return true
	}

	e.log.ERROR.Printf("service call %s to %s failed: %s (vehicle: %s, service: %s)",
		name, v.Name(), status.FailureReason,
		util.Mask(status.VehicleID, 3, 2), util.Mask(status.ServiceID, 11, 9))
	serviceCounter.WithLabelValues(name, "failed").Inc()

	return false
}

// poll fetches the job status until it leaves the Started/Running states.
// Polling is bounded; exceeding the limit returns api.ErrTimeout.
func (e *Executor) poll(v *Vehicle, name, id string) (api.ServiceStatus, error) {
	status, err := v.API().ServiceStatus(id)
	if err != nil {
		return status, err
	}

	var polls int
	for status.Status == statusStarted || status.Status == statusRunning {
		e.log.DEBUG.Printf("service call %s to %s still %s", name, v.Name(), status.Status)

		if polls++; polls >= e.maxPolls {
			return status, api.ErrTimeout
		}

		e.clock.Sleep(e.pollInterval)

		if status, err = v.API().ServiceStatus(id); err != nil {
			return status, err
		}
	}

	return status, nil
}
