package core

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/avast/retry-go/v3"
	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
)

// defaultUoms is the fallback unit preference string when neither the
// account nor the local cache provides one
const defaultUoms = "Km Litres Celsius DistPerVol kWhPer100Dist kWh"

var errIncompleteUserInfo = errors.New("incomplete user info")

// Units holds the account's unit-of-measurement preferences in the order the
// vendor reports them
type Units struct {
	Distance          string
	Fuel              string
	Temperature       string
	FuelEconomy       string
	EnergyConsumption string
	Energy            string
}

// User resolves and caches the account holder's profile and unit preferences
type User struct {
	log       *util.Logger
	conn      api.Connection
	cacheFile string

	FirstName string
	units     Units
}

// NewUser creates the account profile resolver. cacheFile persists the last
// known unit preferences across restarts.
func NewUser(log *util.Logger, conn api.Connection, cacheFile string) *User {
	return &User{
		log:       log,
		conn:      conn,
		cacheFile: cacheFile,
		units:     parseUnits(defaultUoms),
	}
}

// Update refreshes the account profile. The vendor intermittently returns
// the profile without unit preferences, so the call is retried and falls
// back to the cached or default preferences rather than failing.
func (u *User) Update() error {
	var info api.UserInfo

	err := retry.Do(func() error {
		var err error
		if info, err = u.conn.UserInfo(); err != nil {
			return err
		}
		if info.UnitsOfMeasurement == "" {
			return errIncompleteUserInfo
		}
		return nil
	},
		retry.Attempts(10),
		retry.Delay(200*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)

	u.FirstName = info.FirstName

	uoms := info.UnitsOfMeasurement
	if uoms == "" {
		if uoms = u.cachedUoms(); uoms != "" {
			u.log.DEBUG.Printf("using cached unit preferences")
		} else {
			uoms = defaultUoms
			u.log.WARN.Printf("no unit preferences available, using defaults: %v", err)
		}
	} else {
		u.saveUoms(uoms)
	}

	u.units = parseUnits(uoms)

	return nil
}

// Units returns the resolved unit preferences
func (u *User) Units() Units {
	return u.units
}

// TempUnit returns the configured temperature unit
func (u *User) TempUnit() string {
	return u.units.Temperature
}

// parseUnits splits the vendor's space-delimited preference string. Missing
// trailing fields keep their zero value.
func parseUnits(uoms string) Units {
	fields := strings.Fields(uoms)

	get := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	return Units{
		Distance:          get(0),
		Fuel:              get(1),
		Temperature:       get(2),
		FuelEconomy:       get(3),
		EnergyConsumption: get(4),
		Energy:            get(5),
	}
}

func (u *User) saveUoms(uoms string) {
	if u.cacheFile == "" {
		return
	}
	if err := os.WriteFile(u.cacheFile, []byte(uoms), 0o644); err != nil {
		u.log.DEBUG.Printf("cannot cache unit preferences: %v", err)
	}
}

func (u *User) cachedUoms() string {
	if u.cacheFile == "" {
		return ""
	}
	b, err := os.ReadFile(u.cacheFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}
