package jlr

import (
	"fmt"
	"strings"

	"github.com/thoas/go-funk"
)

// EnsureVehicles filters the account's vehicles to the configured VINs, or
// returns all vehicles if no VINs are configured
func EnsureVehicles(vehicles []*Vehicle, vins []string) ([]*Vehicle, error) {
	if len(vehicles) == 0 {
		return nil, fmt.Errorf("no vehicles found in account")
	}

	if len(vins) == 0 {
		return vehicles, nil
	}

	wanted := funk.Map(vins, func(vin string) string {
		return strings.ToUpper(strings.TrimSpace(vin))
	}).([]string)

	var res []*Vehicle
	for _, v := range vehicles {
		if funk.ContainsString(wanted, v.VIN()) {
			res = append(res, v)
		}
	}

	if len(res) != len(wanted) {
		available := funk.Map(vehicles, func(v *Vehicle) string { return v.VIN() }).([]string)
		return nil, fmt.Errorf("cannot find all configured vehicles: %v", available)
	}

	return res, nil
}
