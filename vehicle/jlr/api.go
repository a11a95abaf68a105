package jlr

import (
	"fmt"
	"net/http"
	"time"

	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/provider"
	"github.com/incontrol-io/incontrol/util"
	"github.com/incontrol-io/incontrol/util/request"
	"github.com/incontrol-io/incontrol/util/transport"
	"golang.org/x/oauth2"
)

// Connection is the account-level InControl api.
// Based on https://github.com/ardevd/jlrpy and https://github.com/msp1974/aiojlrpy.
type Connection struct {
	*request.Helper
	log      *util.Logger
	identity *Identity
	baseURI  string
}

// NewConnection creates a new InControl account connection
func NewConnection(log *util.Logger, identity *Identity) *Connection {
	v := &Connection{
		Helper:   request.NewHelper(log),
		log:      log,
		identity: identity,
		baseURI:  identity.BaseURI(),
	}

	// decorate transport with device headers and oauth token
	v.Client.Transport = &oauth2.Transport{
		Source: identity,
		Base: &transport.Decorator{
			Decorator: transport.DecorateHeaders(map[string]string{
				"X-Device-Id":             identity.DeviceID(),
				"x-telematicsprogramtype": "jlrpy",
			}),
			Base: v.Client.Transport,
		},
	}

	return v
}

// Vehicles returns the vehicles registered to the account
func (c *Connection) Vehicles() ([]*Vehicle, error) {
	var res VehiclesResponse

	uri := fmt.Sprintf("%s/users/%s/vehicles?primaryOnly=true", c.baseURI, c.identity.UserID())
	err := c.GetJSON(uri, &res)

	var vehicles []*Vehicle
	for _, v := range res.Vehicles {
		vehicle := &Vehicle{
			conn: c,
			vin:  v.VIN,
		}

		// settings change rarely unless a command touches them
		vehicle.attributesG = provider.Cached(vehicle.attributes, time.Hour)
		vehicle.rccG = provider.Cached(vehicle.rccTargetValue, 10*time.Minute)

		vehicles = append(vehicles, vehicle)
	}

	return vehicles, err
}

// UserInfo returns the account holder details including raw unit preferences
func (c *Connection) UserInfo() (api.UserInfo, error) {
	var res UserInfoResponse

	uri := fmt.Sprintf("%s/users/%s", c.baseURI, c.identity.UserID())
	req, err := request.New(http.MethodGet, uri, nil, map[string]string{
		"Accept": "application/vnd.wirelesscar.ngtp.if9.User-v3+json",
	})
	if err == nil {
		err = c.DoJSON(req, &res)
	}

	return api.UserInfo{
		FirstName:          res.Contact.FirstName,
		MiddleName:         res.Contact.MiddleName,
		LastName:           res.Contact.LastName,
		UnitsOfMeasurement: res.Contact.UserPreferences.UnitsOfMeasurement,
	}, err
}

// ReverseGeocode resolves a position into a street address
func (c *Connection) ReverseGeocode(lat, lon float64) (api.Address, error) {
	var res AddressResponse

	uri := fmt.Sprintf("%s/geocode/reverse/%.8f/%.8f/en", c.baseURI, lat, lon)
	err := c.GetJSON(uri, &res)

	return api.Address{FormattedAddress: res.FormattedAddress}, err
}

var _ api.Connection = (*Connection)(nil)
