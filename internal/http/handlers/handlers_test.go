package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testlog "courier-dispatch/internal/testutil"
)

func TestHandlers_Ping(t *testing.T) {
	t.Parallel()

	h := New(nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	h.Ping(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "pong", body["message"])
}

func TestHandlers_HealthcheckHead(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	New(nil).HealthcheckHead(rr, httptest.NewRequest(http.MethodHead, "/healthcheck", nil))

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestHandlers_NotFound_LogsWarn(t *testing.T) {
	t.Parallel()

	rec := testlog.New()
	rr := httptest.NewRecorder()
	New(rec.Logger()).NotFound(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"error":"route not found"}`, rr.Body.String())
	require.Len(t, rec.Find("warn", "http error"), 1)
}
