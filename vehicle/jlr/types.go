package jlr

import (
	"time"

	"github.com/incontrol-io/incontrol/api"
)

// keyValue is the vendor's generic status entry
type keyValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type alertEntry struct {
	Name            string `json:"name"`
	Active          bool   `json:"active"`
	LastUpdatedTime string `json:"lastUpdatedTime"`
}

// StatusResponse is the /vehicles/<vin>/status reply
type StatusResponse struct {
	VehicleStatus struct {
		CoreStatus []keyValue `json:"coreStatus"`
		EvStatus   []keyValue `json:"evStatus"`
	} `json:"vehicleStatus"`
	VehicleAlerts   []alertEntry `json:"vehicleAlerts"`
	LastUpdatedTime string       `json:"lastUpdatedTime"`
}

// timeLayouts covers the timestamp formats observed in vendor payloads
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05Z0700",
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Decode transforms the wire status into the flat snapshot consumed by the core
func (s StatusResponse) Decode() api.Status {
	res := api.Status{
		Core:        make(map[string]string, len(s.VehicleStatus.CoreStatus)),
		LastUpdated: parseTime(s.LastUpdatedTime),
	}

	for _, kv := range s.VehicleStatus.CoreStatus {
		res.Core[kv.Key] = kv.Value
	}

	if len(s.VehicleStatus.EvStatus) > 0 {
		res.EV = make(map[string]string, len(s.VehicleStatus.EvStatus))
		for _, kv := range s.VehicleStatus.EvStatus {
			res.EV[kv.Key] = kv.Value
		}
	}

	for _, alert := range s.VehicleAlerts {
		res.Alerts = append(res.Alerts, api.Alert{
			Name:        alert.Name,
			Active:      alert.Active,
			LastUpdated: parseTime(alert.LastUpdatedTime),
		})
	}

	return res
}

// PositionResponse is the /vehicles/<vin>/position reply
type PositionResponse struct {
	Position *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Speed     float64 `json:"speed"`
		Heading   float64 `json:"heading"`
	} `json:"position"`
}

// TripsResponse is the /vehicles/<vin>/trips reply
type TripsResponse struct {
	Trips []map[string]interface{} `json:"trips"`
}

// GuardianStatusResponse is the guardian mode status reply
type GuardianStatusResponse struct {
	Status  string `json:"status"`
	EndTime string `json:"endTime"`
}

// VehiclesResponse is the /users/<id>/vehicles reply
type VehiclesResponse struct {
	Vehicles []struct {
		VIN  string `json:"vin"`
		Role string `json:"role"`
	} `json:"vehicles"`
}

// UserInfoResponse is the /users/<id> reply
type UserInfoResponse struct {
	Contact struct {
		FirstName       string `json:"firstName"`
		MiddleName      string `json:"middleName"`
		LastName        string `json:"lastName"`
		UserPreferences struct {
			UnitsOfMeasurement string `json:"unitsOfMeasurement"`
		} `json:"userPreferences"`
	} `json:"contact"`
}

// AddressResponse is the reverse geocode reply
type AddressResponse struct {
	FormattedAddress string `json:"formattedAddress"`
}
