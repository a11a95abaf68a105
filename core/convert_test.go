package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertTempValueEngineStart(t *testing.T) {
	// celsius input is doubled onto the vendor scale
	assert.Equal(t, 42, convertTempValue(UnitCelsius, "REON", 21))

	// values already on the vendor scale pass through
	assert.Equal(t, 42, convertTempValue(UnitCelsius, "REON", 42))
	assert.Equal(t, 31, convertTempValue(UnitCelsius, "REON", 31))
	assert.Equal(t, 57, convertTempValue(UnitCelsius, "REON", 57))

	// out-of-range results are clamped
	assert.Equal(t, 31, convertTempValue(UnitCelsius, "REON", 5))
	assert.Equal(t, 57, convertTempValue(UnitCelsius, "REON", 70))

	// fahrenheit uses its own offset
	assert.Equal(t, 43, convertTempValue(UnitFahrenheit, "REON", 70))
}

func TestConvertTempValuePassthroughEquivalence(t *testing.T) {
	// a pre-converted in-range value must behave like direct conversion
	for c := 16; c <= 28; c++ {
		direct := convertTempValue(UnitCelsius, "REON", float64(c))
		pre := convertTempValue(UnitCelsius, "REON", float64(c*2))
		assert.Equal(t, direct, pre, "celsius %d", c)
	}
}

func TestConvertTempValuePreconditioning(t *testing.T) {
	assert.Equal(t, 210, convertTempValue(UnitCelsius, "ECC", 21))
	assert.Equal(t, 210, convertTempValue(UnitCelsius, "ECC", 210))
	assert.Equal(t, 155, convertTempValue(UnitCelsius, "ECC", 10))
	assert.Equal(t, 285, convertTempValue(UnitCelsius, "ECC", 40))
}

func TestConvertTempValueUnknownCode(t *testing.T) {
	assert.Equal(t, 21, convertTempValue(UnitCelsius, "RDL", 21))
}

func TestConvertDateTimeToEpoch(t *testing.T) {
	epoch, err := convertDateTimeToEpoch("2022-01-01 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, int64(1640995200000), epoch)

	_, err = convertDateTimeToEpoch("not a date")
	require.Error(t, err)
}
