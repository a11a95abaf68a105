package core

import (
	"fmt"
	"time"

	"github.com/incontrol-io/incontrol/api"
)

// serviceCodeNA marks services that bypass the capability check
const serviceCodeNA = "NA"

// callArgs are the converted, vendor-ready arguments of a service call
type callArgs struct {
	pin       string
	target    int
	level     int
	expiry    int64
	departure time.Time
}

// ServiceDef describes a single remote service: the capability code it
// requires and the concrete vendor call
type ServiceDef struct {
	Code           string
	RequiresExpiry bool
	Call           func(v api.Vehicle, args callArgs) (*api.ServiceResponse, error)
}

// Services is the registry of callable remote services. It is validated at
// package init so that a malformed entry fails at startup, not on first use.
var Services = map[string]ServiceDef{
	"update_health_status": {
		Code: "VHS",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.HealthStatus(a.pin)
		},
	},
	"lock_vehicle": {
		Code: "RDL",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.Lock(a.pin)
		},
	},
	"unlock_vehicle": {
		Code: "RDU",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.Unlock(a.pin)
		},
	},
	"reset_alarm": {
		Code: "ALOFF",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.ResetAlarm(a.pin)
		},
	},
	"honk_blink": {
		Code: "HBLF",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.HonkBlink()
		},
	},
	"start_vehicle": {
		Code: "REON",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.RemoteEngineStart(a.pin, a.target)
		},
	},
	"stop_vehicle": {
		Code: "REOFF",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.RemoteEngineStop(a.pin)
		},
	},
	"start_charging": {
		Code: "CP",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.ChargingStart()
		},
	},
	"stop_charging": {
		Code: "CP",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.ChargingStop()
		},
	},
	"start_preconditioning": {
		Code: "ECC",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.PreconditioningStart(a.target)
		},
	},
	"stop_preconditioning": {
		Code: "ECC",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.PreconditioningStop()
		},
	},
	"set_max_charge_level": {
		Code: "CP",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.SetMaxSoc(a.level)
		},
	},
	"set_one_off_max_charge_level": {
		Code: "CP",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.SetOneOffMaxSoc(a.level)
		},
	},
	"add_departure_timer": {
		Code: "CP",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.AddDepartureTimer(a.departure)
		},
	},
	"delete_departure_timer": {
		Code: "CP",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.DeleteDepartureTimer()
		},
	},
	"enable_guardian_mode": {
		Code:           "GMCC",
		RequiresExpiry: true,
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.EnableGuardianMode(a.pin, a.expiry)
		},
	},
	"disable_guardian_mode": {
		Code: "GMCC",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.DisableGuardianMode(a.pin)
		},
	},
	"enable_service_mode": {
		Code:           "SM",
		RequiresExpiry: true,
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.EnableServiceMode(a.pin, a.expiry)
		},
	},
	"disable_service_mode": {
		Code: "SM",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.DisableServiceMode(a.pin)
		},
	},
	"enable_transport_mode": {
		Code:           "TM",
		RequiresExpiry: true,
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.EnableTransportMode(a.pin, a.expiry)
		},
	},
	"disable_transport_mode": {
		Code: "TM",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.DisableTransportMode(a.pin)
		},
	},
	"enable_privacy_mode": {
		Code: "PM",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.EnablePrivacyMode(a.pin)
		},
	},
	"disable_privacy_mode": {
		Code: "PM",
		Call: func(v api.Vehicle, a callArgs) (*api.ServiceResponse, error) {
			return v.DisablePrivacyMode(a.pin)
		},
	},
}

func init() {
	for name, def := range Services {
		if def.Code == "" || def.Call == nil {
			panic(fmt.Sprintf("invalid service definition: %s", name))
		}
	}
}
