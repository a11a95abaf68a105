package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUnits(t *testing.T) {
	units := parseUnits("Miles Gallons Fahrenheit DistPerVol kWhPer100Dist kWh")
	assert.Equal(t, "Miles", units.Distance)
	assert.Equal(t, "Fahrenheit", units.Temperature)
	assert.Equal(t, "kWh", units.Energy)

	// short strings keep the missing fields empty
	units = parseUnits("Km Litres")
	assert.Equal(t, "Km", units.Distance)
	assert.Equal(t, "", units.Temperature)
}

type stubConnection struct {
	mockConnection
	uoms      string
	firstName string
	calls     int
}

func (s *stubConnection) UserInfo() (api.UserInfo, error) {
	s.calls++
	return api.UserInfo{FirstName: s.firstName, UnitsOfMeasurement: s.uoms}, nil
}

func TestUserUpdate(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "uoms")

	conn := &stubConnection{uoms: "Miles Gallons Fahrenheit DistPerVol kWhPer100Dist kWh", firstName: "Jane"}
	u := NewUser(util.NewLogger("test"), conn, cacheFile)

	require.NoError(t, u.Update())
	assert.Equal(t, "Jane", u.FirstName)
	assert.Equal(t, UnitFahrenheit, u.TempUnit())
	assert.Equal(t, 1, conn.calls)

	// preferences are cached for the next start
	b, err := os.ReadFile(cacheFile)
	require.NoError(t, err)
	assert.Equal(t, "Miles Gallons Fahrenheit DistPerVol kWhPer100Dist kWh", string(b))
}

func TestUserUpdateFallsBackToCache(t *testing.T) {
	cacheFile := filepath.Join(t.TempDir(), "uoms")
	require.NoError(t, os.WriteFile(cacheFile, []byte("Miles Gallons Fahrenheit DistPerVol kWhPer100Dist kWh"), 0o644))

	// the vendor keeps returning the profile without preferences
	conn := &stubConnection{uoms: ""}
	u := NewUser(util.NewLogger("test"), conn, cacheFile)

	require.NoError(t, u.Update())
	assert.Equal(t, UnitFahrenheit, u.TempUnit())
	assert.Equal(t, 10, conn.calls)
}

func TestUserUpdateDefaults(t *testing.T) {
	conn := &stubConnection{uoms: ""}
	u := NewUser(util.NewLogger("test"), conn, "")

	require.NoError(t, u.Update())
	assert.Equal(t, UnitCelsius, u.TempUnit())
}
