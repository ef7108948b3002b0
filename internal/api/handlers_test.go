package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/printhub/realtime-api/pkg/errors"
	"github.com/printhub/realtime-api/pkg/logger"
)

func testServer() *Server {
	return &Server{logger: logger.NewLogger("error")}
}

func TestHealthCheckHandler(t *testing.T) {
	server := testServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec := httptest.NewRecorder()

	server.healthCheckHandler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ApiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "ok", data["status"])
}

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "validation", err: apperrors.NewValidationError("customer name is required"), wantCode: http.StatusBadRequest},
		{name: "missing_files", err: apperrors.NewMissingFilesError("at least one file is required"), wantCode: http.StatusBadRequest},
		{name: "not_found", err: apperrors.NewNotFoundError("order not found"), wantCode: http.StatusNotFound},
		{name: "invalid_transition", err: apperrors.NewInvalidTransitionError("cannot move from new to ready"), wantCode: http.StatusConflict},
		{name: "terminal_order", err: apperrors.NewOrderTerminalError("order is completed"), wantCode: http.StatusConflict},
		{name: "persistence", err: apperrors.NewPersistenceError("write failed"), wantCode: http.StatusInternalServerError},
		{name: "empty_message", err: apperrors.NewEmptyMessageError("message body is required"), wantCode: http.StatusBadRequest},
	}

	server := testServer()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			server.respondWithServiceError(rec, tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)

			var resp ApiResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestValidRoom(t *testing.T) {
	tests := []struct {
		room string
		want bool
	}{
		{room: "shop-7", want: true},
		{room: "order-wi-1a2b3c4d", want: true},
		{room: "shop-", want: true},
		{room: "lobby", want: false},
		{room: "", want: false},
		{room: "SHOP-7", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.room, func(t *testing.T) {
			assert.Equal(t, tt.want, validRoom(tt.room))
		})
	}
}

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want int
	}{
		{name: "absent_uses_default", url: "/orders", want: 50},
		{name: "valid_value", url: "/orders?limit=10", want: 10},
		{name: "non_numeric_uses_default", url: "/orders?limit=ten", want: 50},
		{name: "negative_uses_default", url: "/orders?limit=-5", want: 50},
		{name: "zero_is_allowed", url: "/orders?limit=0", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.want, queryInt(req, "limit", 50))
		})
	}
}
