package core

import (
	"testing"
	"time"

	"github.com/incontrol-io/incontrol/api"
	"github.com/incontrol-io/incontrol/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecutor() *Executor {
	e := NewExecutor(util.NewLogger("test"), func() string { return UnitCelsius })
	e.pollInterval = time.Millisecond
	return e
}

func testVehicle(mock *mockVehicle, services ...string) *Vehicle {
	v := NewVehicle(util.NewLogger("test"), mock, &mockConnection{}, "1234")
	v.supportedServices = services
	return v
}

func TestExecuteLockSuccess(t *testing.T) {
	mock := &mockVehicle{serviceStates: []string{"Running", "Running", "Successful"}}
	v := testVehicle(mock, "RDL")

	ok := testExecutor().Execute(v, "lock_vehicle", Params{Pin: "1234"})
	require.True(t, ok)

	assert.Equal(t, 1, mock.submitCalls)
	assert.Equal(t, 3, mock.pollCalls)
}

func TestExecuteUnsupportedService(t *testing.T) {
	mock := &mockVehicle{}
	v := testVehicle(mock, "RDU")

	ok := testExecutor().Execute(v, "lock_vehicle", Params{Pin: "1234"})
	require.False(t, ok)

	assert.Equal(t, 0, mock.submitCalls)
}

func TestExecuteUnknownService(t *testing.T) {
	mock := &mockVehicle{}
	v := testVehicle(mock, "RDL")

	ok := testExecutor().Execute(v, "fly_vehicle", Params{})
	require.False(t, ok)

	assert.Equal(t, 0, mock.submitCalls)
}

func TestExecuteQueuedServiceRejected(t *testing.T) {
	mock := &mockVehicle{
		inflight: []api.ServiceStatus{{Status: "Running", ServiceType: "RDL"}},
	}
	v := testVehicle(mock, "RDL")

	ok := testExecutor().Execute(v, "lock_vehicle", Params{Pin: "1234"})
	require.False(t, ok)

	assert.Equal(t, 0, mock.submitCalls)
}

func TestExecuteSynchronousCompletion(t *testing.T) {
	// an empty response body means the service completed synchronously
	mock := &mockVehicle{submitRes: &api.ServiceResponse{}}
	v := testVehicle(mock, "RDL")

	ok := testExecutor().Execute(v, "lock_vehicle", Params{Pin: "1234"})
	require.True(t, ok)

	assert.Equal(t, 1, mock.submitCalls)
	assert.Equal(t, 0, mock.pollCalls)
}

func TestExecuteVendorFailure(t *testing.T) {
	mock := &mockVehicle{serviceStates: []string{"Started", "Failed"}}
	v := testVehicle(mock, "RDL")

	ok := testExecutor().Execute(v, "lock_vehicle", Params{Pin: "1234"})
	require.False(t, ok)
}

func TestExecuteErrorResponse(t *testing.T) {
	mock := &mockVehicle{submitRes: &api.ServiceResponse{
		ErrorLabel:       "InvalidCredentials",
		ErrorDescription: "pin incorrect",
	}}
	v := testVehicle(mock, "RDL")

	ok := testExecutor().Execute(v, "lock_vehicle", Params{Pin: "0000"})
	require.False(t, ok)
	assert.Equal(t, 0, mock.pollCalls)
}

func TestExecuteTimeout(t *testing.T) {
	mock := &mockVehicle{serviceStates: []string{
		"Running", "Running", "Running", "Running", "Running", "Running",
	}}
	v := testVehicle(mock, "RDL")

	e := testExecutor()
	e.maxPolls = 3

	ok := e.Execute(v, "lock_vehicle", Params{Pin: "1234"})
	require.False(t, ok)

	// initial fetch plus bounded number of re-polls
	assert.Equal(t, 3, mock.pollCalls)
}

func TestPollTimeoutSentinel(t *testing.T) {
	mock := &mockVehicle{serviceStates: []string{
		"Running", "Running", "Running", "Running", "Running", "Running",
	}}
	v := testVehicle(mock, "RDL")

	e := testExecutor()
	e.maxPolls = 3

	_, err := e.poll(v, "lock_vehicle", "svc-0000000000000000000001")
	assert.ErrorIs(t, err, api.ErrTimeout)
}

func TestExecuteExpiryValidation(t *testing.T) {
	mock := &mockVehicle{}
	v := testVehicle(mock, "SM")

	e := testExecutor()

	ok := e.Execute(v, "enable_service_mode", Params{Pin: "1234", ExpirationTime: "garbage"})
	require.False(t, ok)
	assert.Equal(t, 0, mock.submitCalls)

	ok = e.Execute(v, "enable_service_mode", Params{Pin: "1234", ExpirationTime: "2032-01-01 00:00:00"})
	require.True(t, ok)
	assert.Equal(t, 1, mock.submitCalls)
}

func TestExecutePinFallback(t *testing.T) {
	mock := &mockVehicle{}
	v := testVehicle(mock, "RDL")

	e := testExecutor()

	args, err := e.convertParams(v, Services["lock_vehicle"], Params{})
	require.NoError(t, err)
	assert.Equal(t, "1234", args.pin)

	args, err = e.convertParams(v, Services["lock_vehicle"], Params{Pin: "9999"})
	require.NoError(t, err)
	assert.Equal(t, "9999", args.pin)
}

func TestExecuteTemperatureConversion(t *testing.T) {
	e := testExecutor()
	v := testVehicle(&mockVehicle{}, "REON", "ECC")

	args, err := e.convertParams(v, Services["start_vehicle"], Params{TargetValue: 21})
	require.NoError(t, err)
	assert.Equal(t, 42, args.target)

	args, err = e.convertParams(v, Services["start_preconditioning"], Params{TargetTemp: 21})
	require.NoError(t, err)
	assert.Equal(t, 210, args.target)
}
