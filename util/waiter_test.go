package util

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestWaiter(t *testing.T) {
	w := NewWaiter(time.Minute)
	mock := clock.NewMock()
	w.clock = mock

	// never updated is never overdue
	mock.Add(time.Hour)
	assert.Zero(t, w.Overdue())

	w.Update()
	assert.Zero(t, w.Overdue())

	mock.Add(30 * time.Second)
	assert.Zero(t, w.Overdue())

	mock.Add(time.Minute)
	assert.Equal(t, 90*time.Second, w.Overdue())

	w.Update()
	assert.Zero(t, w.Overdue())
}
