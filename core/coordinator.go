package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/benbjohnson/clock"
	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/core/storage"
	"github.com/incontrol-io/incontrol/provider"
	"github.com/incontrol-io/incontrol/util"
)

const (
	topicUpdated = "updated"

	// fallbackRefreshDelay is the grace period after a command before a
	// poll is forced in case the push notification never arrives
	fallbackRefreshDelay = 15 * time.Second

	// shortPollInterval drives the fast-poll loop while climate is active
	shortPollInterval = time.Minute
)

// Config holds the coordinator settings
type Config struct {
	Interval       time.Duration // scheduled refresh interval
	HealthInterval time.Duration // vehicle-initiated health updates, 0 disables
}

// Coordinator owns all vehicle records and drives the poll and command flows
type Coordinator struct {
	log   *util.Logger
	clock clock.Clock
	bus   EventBus.Bus
	exec  *Executor

	interval       time.Duration
	healthInterval time.Duration

	mu       sync.Mutex
	vehicles []*Vehicle
	byVin    map[string]*Vehicle
	fallback map[string]*clock.Timer

	paramC chan<- util.Param
}

// NewCoordinator creates the coordinator for a set of vehicles
func NewCoordinator(log *util.Logger, exec *Executor, cfg Config) *Coordinator {
	return &Coordinator{
		log:            log,
		clock:          clock.New(),
		bus:            EventBus.New(),
		exec:           exec,
		interval:       cfg.Interval,
		healthInterval: cfg.HealthInterval,
		byVin:          make(map[string]*Vehicle),
		fallback:       make(map[string]*clock.Timer),
	}
}

// AddVehicle registers a vehicle with the coordinator
func (c *Coordinator) AddVehicle(v *Vehicle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vehicles = append(c.vehicles, v)
	c.byVin[v.VIN()] = v
}

// Vehicle returns the vehicle record for the given VIN
func (c *Coordinator) Vehicle(vin string) (*Vehicle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.byVin[vin]
	return v, ok
}

// Vehicles returns all registered vehicles
func (c *Coordinator) Vehicles() []*Vehicle {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]*Vehicle, len(c.vehicles))
	copy(res, c.vehicles)
	return res
}

// Subscribe registers a callback invoked once per completed refresh cycle
func (c *Coordinator) Subscribe(fn func()) error {
	return c.bus.Subscribe(topicUpdated, fn)
}

// Pipe attaches the value channel that refresh results are published to
func (c *Coordinator) Pipe(paramC chan<- util.Param) {
	c.paramC = paramC
}

// RefreshAll refreshes all vehicles in registration order. A failing vehicle
// aborts its own cycle; the next scheduled tick retries.
func (c *Coordinator) RefreshAll() bool {
	return c.refresh(c.Vehicles())
}

// RefreshMonitored refreshes only vehicles flagged for fast polling
func (c *Coordinator) RefreshMonitored() bool {
	var monitored []*Vehicle
	for _, v := range c.Vehicles() {
		if v.ShortIntervalMonitor() {
			monitored = append(monitored, v)
		}
	}
	if len(monitored) == 0 {
		return true
	}
	return c.refresh(monitored)
}

func (c *Coordinator) refresh(vehicles []*Vehicle) bool {
	for _, v := range vehicles {
		if err := v.Update(); err != nil {
			c.log.ERROR.Printf("cannot update %s: %v", v.Name(), err)
			updateCounter.WithLabelValues("error").Inc()
			return false
		}
		c.storeTrip(v)
	}

	updateCounter.WithLabelValues("success").Inc()
	c.notify()

	return true
}

// notify emits exactly one aggregate update notification per cycle
func (c *Coordinator) notify() {
	c.bus.Publish(topicUpdated)

	if c.paramC == nil {
		return
	}

	for _, v := range c.Vehicles() {
		vin := v.VIN()
		tracked := v.TrackedStatus()

		c.publish(vin, "name", v.Name())
		c.publish(vin, "engineType", v.EngineType().String())
		c.publish(vin, "lastUpdated", v.LastUpdated())
		c.publish(vin, "climateEngineActive", tracked.ClimateEngineActive)
		c.publish(vin, "climateElectricActive", tracked.ClimateElectricActive)
		c.publish(vin, "guardianModeActive", tracked.GuardianModeActive)
		c.publish(vin, "charging", tracked.IsCharging)
		c.publish(vin, "privacyMode", tracked.PrivacyModeEnabled)
		c.publish(vin, "serviceMode", tracked.ServiceModeEnabled)
		c.publish(vin, "transportMode", tracked.TransportModeEnabled)

		if pos := v.Position(); pos != nil {
			c.publish(vin, "latitude", pos.Latitude)
			c.publish(vin, "longitude", pos.Longitude)
		}
		if addr := v.Address(); addr != nil {
			c.publish(vin, "address", addr.FormattedAddress)
		}
	}
}

func (c *Coordinator) publish(vin, key string, val interface{}) {
	c.paramC <- util.Param{Vin: &vin, Key: key, Val: val}
}

// storeTrip persists the vehicle's latest trip if trip storage is enabled
func (c *Coordinator) storeTrip(v *Vehicle) {
	if !storage.Enabled() {
		return
	}

	trip := tripFromMap(v.VIN(), v.LastTrip())
	if trip == nil {
		return
	}

	if err := storage.Store(trip); err != nil {
		c.log.ERROR.Printf("cannot store trip for %s: %v", v.Name(), err)
	}
}

// tripFromMap extracts the storable fields from the vendor's trip document
func tripFromMap(vin string, data map[string]interface{}) *storage.Trip {
	if data == nil {
		return nil
	}

	id, ok := data["id"].(float64)
	if !ok {
		return nil
	}

	trip := storage.Trip{
		TripID: int64(id),
		Vin:    vin,
	}

	if details, ok := data["tripDetails"].(map[string]interface{}); ok {
		if v, ok := details["distance"].(float64); ok {
			trip.Distance = v
		}
		if v, ok := details["averageSpeed"].(float64); ok {
			trip.AverageSpeed = v
		}
		if v, ok := details["averageFuelConsumption"].(float64); ok {
			trip.FuelConsumed = v
		}
		if v, ok := details["startTime"].(string); ok {
			trip.StartTime = parseTripTime(v)
		}
		if v, ok := details["endTime"].(string); ok {
			trip.EndTime = parseTripTime(v)
		}
	}

	return &trip
}

func parseTripTime(s string) time.Time {
	for _, layout := range statusTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Execute runs a remote service and refreshes vehicle state on success
func (c *Coordinator) Execute(vin, service string, params Params) bool {
	v, ok := c.Vehicle(vin)
	if !ok {
		c.log.ERROR.Printf("no vehicle with vin %s", util.Redact(vin))
		return false
	}

	ok = c.exec.Execute(v, service, params)
	if ok {
		// the vendor state just changed; flush cached settings, refresh
		// promptly and arm the fallback in case the push notification is
		// dropped
		provider.ResetCached()
		c.scheduleFallback(vin)
		c.refresh([]*Vehicle{v})
	}

	return ok
}

// HandlePush applies a push-delivered status message. A push with payload
// replaces the snapshot directly; one without triggers a refresh.
func (c *Coordinator) HandlePush(vin string, status *api.Status) {
	v, ok := c.Vehicle(vin)
	if !ok {
		c.log.DEBUG.Printf("push for unknown vin %s", util.Redact(vin))
		return
	}

	c.cancelFallback(vin)

	if status != nil && len(status.Core) > 0 {
		v.ApplyPushStatus(*status)
		c.notify()
		return
	}

	if err := v.Update(); err != nil {
		c.log.ERROR.Printf("cannot update %s after push: %v", v.Name(), err)
		return
	}
	c.notify()
}

func (c *Coordinator) scheduleFallback(vin string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.fallback[vin]; ok {
		t.Stop()
	}

	c.fallback[vin] = c.clock.AfterFunc(fallbackRefreshDelay, func() {
		c.log.DEBUG.Printf("fallback refresh for %s", util.Redact(vin))
		if v, ok := c.Vehicle(vin); ok {
			if err := v.Update(); err != nil {
				c.log.ERROR.Printf("fallback refresh failed: %v", err)
				return
			}
			c.notify()
		}
	})
}

func (c *Coordinator) cancelFallback(vin string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if t, ok := c.fallback[vin]; ok {
		t.Stop()
		delete(c.fallback, vin)
	}
}

// Run drives the scheduled refresh loops until stopC is closed
func (c *Coordinator) Run(stopC <-chan struct{}) {
	ticker := c.clock.Ticker(c.interval)
	defer ticker.Stop()

	monitorTicker := c.clock.Ticker(shortPollInterval)
	defer monitorTicker.Stop()

	var healthC <-chan time.Time
	if c.healthInterval > 0 {
		healthTicker := c.clock.Ticker(c.healthInterval)
		defer healthTicker.Stop()
		healthC = healthTicker.C
	}

	c.RefreshAll()

	for {
		select {
		case <-stopC:
			return
		case <-ticker.C:
			c.RefreshAll()
		case <-monitorTicker.C:
			c.RefreshMonitored()
		case <-healthC:
			c.updateHealth()
		}
	}
}

// updateHealth asks each vehicle's telematics unit for a fresh report
func (c *Coordinator) updateHealth() {
	for _, v := range c.Vehicles() {
		if v.Pin() == "" {
			continue
		}
		c.log.DEBUG.Printf("requesting health update for %s", v.Name())
		c.Execute(v.VIN(), "update_health_status", Params{})
	}
}

// Validate verifies coordinator configuration at startup
func (cfg Config) Validate() error {
	if cfg.Interval < time.Minute {
		return fmt.Errorf("interval must be at least 1m: %v", cfg.Interval)
	}
	return nil
}
