package core

import (
	"fmt"
	"time"
)

// temperature unit strings as used in the vendor's unit preferences
const (
	UnitCelsius    = "Celsius"
	UnitFahrenheit = "Fahrenheit"
)

// vendor climate setpoint scales. Remote engine start uses half-degree steps
// (31 = LO, 57 = HI), preconditioning uses tenth-degree steps.
const (
	rccMin = 31
	rccMax = 57
	eccMin = 155
	eccMax = 285
)

func clamp(min, max, value int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// convertTempValue maps a user-facing temperature into the vendor's internal
// scale for the given service code. Values already on the vendor scale are
// passed through unchanged to support pre-converted callers.
func convertTempValue(tempUnit, serviceCode string, value float64) int {
	switch serviceCode {
	case "REON":
		if value >= rccMin && value <= rccMax {
			return int(value)
		}
		if tempUnit == UnitFahrenheit {
			return clamp(rccMin, rccMax, int(value)-27)
		}
		return clamp(rccMin, rccMax, int(value*2))

	case "ECC":
		if value >= eccMin && value <= eccMax {
			return int(value)
		}
		if tempUnit == UnitFahrenheit {
			return clamp(eccMin, eccMax, int((value-27)/2*10))
		}
		return clamp(eccMin, eccMax, int(value*10))
	}

	return int(value)
}

// expiryLayout is the caller-facing datetime format for mode expiry times
const expiryLayout = "2006-01-02 15:04:05"

// convertDateTimeToEpoch converts an expiry datetime string (UTC) into the
// vendor's epoch milliseconds
func convertDateTimeToEpoch(s string) (int64, error) {
	t, err := time.Parse(expiryLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	return t.UnixMilli(), nil
}

// parseDateTime converts a caller-facing datetime string into a time.Time
func parseDateTime(s string) (time.Time, error) {
	t, err := time.Parse(expiryLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	return t, nil
}
