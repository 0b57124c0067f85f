package gateway

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_OK(t *testing.T) {
	r := OK([]int{1, 2})
	assert.True(t, r.OK())
	assert.Equal(t, KindOK, r.Kind())
	assert.Equal(t, []int{1, 2}, r.Value())
	assert.Empty(t, r.Message())
	assert.NoError(t, r.Err())
}

func TestFail_Classifies(t *testing.T) {
	app := Fail[int](&AppError{Endpoint: "login", Message: "Invalid credentials"})
	assert.Equal(t, KindAppError, app.Kind())
	assert.Equal(t, "Invalid credentials", app.Message())

	silent := Fail[int](&AppError{Endpoint: "login"})
	assert.Equal(t, GenericAppMessage, silent.Message())

	tr := Fail[int](&TransportError{Endpoint: "latest_products", Err: errors.New("dial tcp: refused")})
	assert.Equal(t, KindTransportError, tr.Kind())
	assert.Equal(t, GenericTransportMessage, tr.Message())

	plain := Fail[int](errors.New("boom"))
	assert.Equal(t, KindTransportError, plain.Kind())
	var tErr *TransportError
	require.ErrorAs(t, plain.Err(), &tErr)
}

func TestResult_Unwrap(t *testing.T) {
	v, err := OK("x").Unwrap()
	assert.Equal(t, "x", v)
	assert.NoError(t, err)

	v, err = Fail[string](&AppError{Message: "no"}).Unwrap()
	assert.Empty(t, v)
	var appErr *AppError
	assert.ErrorAs(t, err, &appErr)
}

func TestMap(t *testing.T) {
	doubled := Map(OK(21), func(n int) int { return n * 2 })
	assert.Equal(t, 42, doubled.Value())

	failed := Map(Fail[int](&AppError{Message: "nope"}), func(n int) string { return "unused" })
	assert.Equal(t, KindAppError, failed.Kind())
	assert.Equal(t, "nope", failed.Message())
}

func TestTransportError_UnwrapsCause(t *testing.T) {
	cause := errors.New("timeout")
	err := &TransportError{Endpoint: "products", Status: http.StatusBadGateway, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "status 502")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "ok", KindOK.String())
	assert.Equal(t, "app_error", KindAppError.String())
	assert.Equal(t, "transport_error", KindTransportError.String())
	assert.Equal(t, "kind(9)", Kind(9).String())
}
