package core

import (
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
	"github.com/thoas/go-funk"
)

// statusGuard suppresses refreshes while the last snapshot is still fresh.
// Command-triggered refreshes can otherwise race the scheduled poll.
const statusGuard = 30 * time.Second

// defaultClimateTemp is used when the stored remote climate preference
// cannot be read
const defaultClimateTemp = 21.0

// service codes appended to the capability list regardless of the vendor's
// subscription data. Provisioning modes are always available, and the ECC
// subscription implies both directions.
var implicitServices = []string{"PM", "SM", "TM"}

// Vehicle is the per-vehicle state record. All mutation happens under the
// mutex; accessors hand out copies.
type Vehicle struct {
	mu    sync.Mutex
	log   *util.Logger
	clock clock.Clock

	api      api.Vehicle
	geocoder api.Connection

	vin  string
	name string
	pin  string

	attributes        api.Attributes
	engineType        api.EngineType
	supportedServices []string

	status        api.Status
	tracked       TrackedStatus
	position      *api.Position
	address       *api.Address
	guardian      api.GuardianStatus
	lastTrip      map[string]interface{}
	wakeupTime    time.Time
	climateTarget float64

	lastUpdated      time.Time // vendor-reported snapshot time
	lastStatusUpdate time.Time // local receive time

	shortInterval bool
}

// NewVehicle creates the state record for a single vehicle
func NewVehicle(log *util.Logger, vehicle api.Vehicle, geocoder api.Connection, pin string) *Vehicle {
	return &Vehicle{
		log:           log,
		clock:         clock.New(),
		api:           vehicle,
		geocoder:      geocoder,
		vin:           vehicle.VIN(),
		name:          util.Redact(vehicle.VIN()),
		pin:           pin,
		climateTarget: defaultClimateTemp,
	}
}

// VIN returns the vehicle identification number
func (v *Vehicle) VIN() string {
	return v.vin
}

// Name returns the vehicle nickname, or the redacted VIN before attributes
// have been loaded
func (v *Vehicle) Name() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.name
}

// Pin returns the configured command pin
func (v *Vehicle) Pin() string {
	return v.pin
}

// API returns the vendor operation surface
func (v *Vehicle) API() api.Vehicle {
	return v.api
}

// EngineType returns the detected powertrain type
func (v *Vehicle) EngineType() api.EngineType {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.engineType
}

// SupportedServices returns a copy of the resolved capability list
func (v *Vehicle) SupportedServices() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	res := make([]string, len(v.supportedServices))
	copy(res, v.supportedServices)
	return res
}

// Status returns the last telemetry snapshot
func (v *Vehicle) Status() api.Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.status
}

// TrackedStatus returns the derived status flags
func (v *Vehicle) TrackedStatus() TrackedStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tracked
}

// Position returns the last reported position, nil if unknown
func (v *Vehicle) Position() *api.Position {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.position
}

// Address returns the reverse-geocoded address of the last position
func (v *Vehicle) Address() *api.Address {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.address
}

// GuardianMode returns the guardian mode state
func (v *Vehicle) GuardianMode() api.GuardianStatus {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.guardian
}

// LastTrip returns the most recent trip record, nil while privacy mode is
// enabled
func (v *Vehicle) LastTrip() map[string]interface{} {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastTrip
}

// WakeupTime returns the next telematics wakeup, zero if unavailable
func (v *Vehicle) WakeupTime() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.wakeupTime
}

// ClimateTarget returns the stored remote climate setpoint in degrees
func (v *Vehicle) ClimateTarget() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.climateTarget
}

// LastUpdated returns the vendor-reported time of the current snapshot
func (v *Vehicle) LastUpdated() time.Time {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.lastUpdated
}

// ShortIntervalMonitor reports whether the vehicle should be polled at the
// short interval
func (v *Vehicle) ShortIntervalMonitor() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.shortInterval
}

// UpdateAttributes refreshes the slow-changing vehicle metadata and
// recomputes the capability list
func (v *Vehicle) UpdateAttributes() error {
	attributes, err := v.api.Attributes()
	if err != nil {
		return fmt.Errorf("cannot get attributes: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.attributes = attributes
	if attributes.Nickname != "" {
		v.name = attributes.Nickname
	}
	v.engineType = v.detectEngineType(attributes)

	var services []string
	for _, svc := range attributes.AvailableServices {
		if svc.VehicleCapable && svc.ServiceEnabled {
			services = append(services, svc.ServiceType)
		}
	}
	services = append(services, implicitServices...)
	if funk.ContainsString(services, "ECC") {
		services = append(services, "ECCON", "ECCOFF")
	}
	v.supportedServices = services

	v.log.DEBUG.Printf("%s supports: %v", v.name, services)

	return nil
}

// detectEngineType resolves the powertrain type. Older accounts lack the
// powerTrainType attribute, so fall back to fuel type and status hints.
func (v *Vehicle) detectEngineType(attributes api.Attributes) api.EngineType {
	switch attributes.PowerTrainType {
	case "INTERNAL_COMBUSTION":
		return api.EngineICE
	case "BEV":
		return api.EngineBEV
	case "PHEV":
		return api.EnginePHEV
	}

	if attributes.FuelType == "Electric" {
		return api.EngineBEV
	}
	if _, ok := v.status.EV["EV_PHEV_RANGE_COMBINED_KM"]; ok {
		return api.EnginePHEV
	}
	if attributes.FuelType != "" {
		return api.EngineICE
	}

	return api.EngineUnknown
}

// Update runs a full refresh cycle: position, guardian mode, status, trip.
// Any transport error aborts the cycle with state from earlier steps kept.
func (v *Vehicle) Update() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.lastStatusUpdate.IsZero() && v.clock.Since(v.lastStatusUpdate) < statusGuard {
		v.log.DEBUG.Printf("%s: skipping update, status is fresh", v.name)
		return nil
	}

	if err := v.updatePosition(); err != nil {
		return err
	}
	v.updateGuardianMode()
	if err := v.updateStatus(); err != nil {
		return err
	}
	if err := v.updateTrip(); err != nil {
		return err
	}

	v.log.INFO.Printf("received update for %s", v.name)

	return nil
}

// ApplyPushStatus replaces the status snapshot with push-delivered data
func (v *Vehicle) ApplyPushStatus(status api.Status) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.applyStatus(status)
}

func (v *Vehicle) updatePosition() error {
	last := v.position

	pos, err := v.api.Position()
	if err != nil {
		return fmt.Errorf("cannot get position: %w", err)
	}

	v.position = pos
	if pos == nil {
		v.log.DEBUG.Printf("%s: no position data", v.name)
		return nil
	}

	if samePosition(last, pos) {
		return nil
	}

	address, err := v.geocoder.ReverseGeocode(pos.Latitude, pos.Longitude)
	if err != nil {
		return fmt.Errorf("cannot resolve address: %w", err)
	}

	if address.FormattedAddress == "" {
		address.FormattedAddress = "Unknown"
	}
	v.address = &address

	return nil
}

// samePosition compares coordinates rounded to 8 decimal places
func samePosition(a, b *api.Position) bool {
	if a == nil || b == nil {
		return false
	}
	return roundCoord(a.Latitude) == roundCoord(b.Latitude) &&
		roundCoord(a.Longitude) == roundCoord(b.Longitude)
}

func roundCoord(v float64) float64 {
	return math.Round(v*1e8) / 1e8
}

func (v *Vehicle) updateGuardianMode() {
	if !funk.ContainsString(v.supportedServices, "GMCC") {
		return
	}

	guardian, err := v.api.GuardianModeStatus()
	if err != nil {
		// subscribed but not supported by this model year
		v.guardian = api.GuardianStatus{Capable: false, Status: "INACTIVE", Expiry: "0"}
		return
	}

	v.guardian = guardian
}

func (v *Vehicle) updateStatus() error {
	status, err := v.api.Status()
	if err != nil {
		return fmt.Errorf("cannot get status: %w", err)
	}

	if len(status.Core) == 0 {
		v.log.WARN.Printf("%s: empty status response", v.name)
		return nil
	}

	v.applyStatus(status)

	if v.engineType == api.EngineUnknown {
		v.engineType = v.detectEngineType(v.attributes)
	}

	v.updateClimateTarget()
	v.updateWakeup()

	return nil
}

// applyStatus replaces the snapshot wholesale and recomputes derived state
func (v *Vehicle) applyStatus(status api.Status) {
	v.identifyStatusChanges(status)

	v.status = status
	v.lastUpdated = status.LastUpdated
	v.lastStatusUpdate = v.clock.Now()

	v.tracked = deriveTrackedStatus(v.engineType, status, v.guardian, v.clock.Now())
	v.shortInterval = v.tracked.ShortInterval()
}

// identifyStatusChanges logs the delta between the previous and the new
// snapshot. Alerts are compared pairwise by name; alerts without a previous
// counterpart are skipped.
func (v *Vehicle) identifyStatusChanges(status api.Status) {
	for key, old := range v.status.Core {
		if val, ok := status.Core[key]; !ok {
			v.log.DEBUG.Printf("%s: %s no longer reported", v.name, key)
		} else if val != old {
			v.log.DEBUG.Printf("%s: %s changed %s -> %s", v.name, key, old, val)
		}
	}
	for key, old := range v.status.EV {
		if val, ok := status.EV[key]; !ok {
			v.log.DEBUG.Printf("%s: %s no longer reported", v.name, key)
		} else if val != old {
			v.log.DEBUG.Printf("%s: %s changed %s -> %s", v.name, key, old, val)
		}
	}

	if len(v.status.Alerts) == 0 {
		return
	}

	prev := make(map[string]api.Alert, len(v.status.Alerts))
	for _, alert := range v.status.Alerts {
		prev[alert.Name] = alert
	}

	for _, alert := range status.Alerts {
		old, ok := prev[alert.Name]
		if !ok {
			continue
		}
		if !alert.LastUpdated.Equal(old.LastUpdated) {
			if alert.Active {
				v.log.DEBUG.Printf("%s: alert %s is active", v.name, alert.Name)
			} else {
				v.log.DEBUG.Printf("%s: alert %s became inactive", v.name, alert.Name)
			}
		}
	}
}

// updateClimateTarget refreshes the stored remote climate preference. The
// setting does not exist on pure electric vehicles; failures keep the default.
func (v *Vehicle) updateClimateTarget() {
	if v.engineType != api.EngineICE && v.engineType != api.EnginePHEV {
		return
	}

	val, err := v.api.RccTargetValue()
	if err != nil {
		v.log.DEBUG.Printf("%s: climate target unavailable: %v", v.name, err)
		return
	}

	if raw, err := strconv.ParseFloat(val, 64); err == nil {
		v.climateTarget = raw / 2
	}
}

// updateWakeup refreshes the next telematics wakeup time, zeroing it when
// the vehicle does not support scheduled wakeups
func (v *Vehicle) updateWakeup() {
	wakeup, err := v.api.WakeupTime()
	if err != nil {
		v.log.DEBUG.Printf("%s: wakeup time unavailable: %v", v.name, err)
		v.wakeupTime = time.Time{}
		return
	}
	v.wakeupTime = wakeup
}

// updateTrip refreshes the most recent trip. Once the privacy switch is set
// the record is cleared rather than served stale.
func (v *Vehicle) updateTrip() error {
	if v.status.Core["PRIVACY_SWITCH"] == "TRUE" {
		v.log.DEBUG.Printf("%s: privacy mode enabled, skipping trip data", v.name)
		v.lastTrip = nil
		return nil
	}

	trips, err := v.api.Trips(1)
	if err != nil {
		return fmt.Errorf("cannot get trips: %w", err)
	}

	if len(trips) > 0 {
		v.lastTrip = trips[0]
	} else {
		v.lastTrip = nil
	}

	return nil
}
