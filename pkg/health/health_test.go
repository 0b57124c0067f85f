package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h http.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLiveness(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(context.Context) error { return errors.New("down") })

	rec, resp := serve(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadiness_AllUp(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(context.Context) error { return nil })
	h.Register("kafka", func(context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
	assert.Equal(t, StatusUp, resp.Checks["kafka"].Status)
}

func TestReadiness_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(context.Context) error { return nil })
	h.Register("redis", func(context.Context) error { return errors.New("connection refused") })

	rec, resp := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["redis"].Status)
	assert.Equal(t, "connection refused", resp.Checks["redis"].Error)
	assert.Equal(t, StatusUp, resp.Checks["storage"].Status)
}

func TestReadiness_RegisterReplaces(t *testing.T) {
	h := NewHandler()
	h.Register("storage", func(context.Context) error { return errors.New("down") })
	h.Register("storage", func(context.Context) error { return nil })

	rec, _ := serve(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, rec.Code)
}
