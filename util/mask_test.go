package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMask(t *testing.T) {
	assert.Equal(t, "1HGxxxxxxxxxxxx52", Mask("1HGCM82633A004352", 3, 2))

	// values too short to mask are returned unchanged
	assert.Equal(t, "1234", Mask("1234", 3, 2))
	assert.Equal(t, "", Mask("", 3, 2))
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "SALxxxxxxxxxxxx01", Redact("SALGA2EV9HA000001"))

	old := RedactHook
	defer func() { RedactHook = old }()

	RedactHook = nil
	assert.Equal(t, "SALGA2EV9HA000001", Redact("SALGA2EV9HA000001"))
}
