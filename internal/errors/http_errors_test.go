package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) HTTPError {
	t.Helper()
	var httpErr HTTPError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&httpErr))
	return httpErr
}

func TestHandleHTTPError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"validation", NewValidationError("amount must be positive"), http.StatusBadRequest},
		{"unsupported funding type", NewUnsupportedFundingTypeError("crypto"), http.StatusBadRequest},
		{"unauthorized", NewUnauthorizedError("order belongs to another user"), http.StatusForbidden},
		{"not found", NewNotFoundError("order"), http.StatusNotFound},
		{"duplicate order", NewDuplicateOrderError("order_1"), http.StatusConflict},
		{"already settled", NewAlreadySettledError("order_1"), http.StatusConflict},
		{"provider unavailable", NewProviderUnavailableError(errors.New("connection refused")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleHTTPError(rec, tc.err)

			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tc.code, decode(t, rec).Code)
		})
	}
}

func TestUnknownErrorDoesNotLeakDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleHTTPError(rec, errors.New("pq: connection reset"))

	assert.Equal(t, "Internal server error", decode(t, rec).Message)
}
