package response_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"parkspot/shared/constant"
	"parkspot/shared/failure"
	"parkspot/transport/http/response"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    int
		wantMessage string
		wantDetails map[string]any
	}{
		{
			name:        "conflict keeps its message",
			err:         failure.Conflict("slot already booked"),
			wantCode:    http.StatusConflict,
			wantMessage: "slot already booked",
		},
		{
			name:        "validation carries details",
			err:         failure.Validation("invalid request", map[string]any{"end_at": "must be after start_at"}),
			wantCode:    http.StatusBadRequest,
			wantMessage: "invalid request",
			wantDetails: map[string]any{"end_at": "must be after start_at"},
		},
		{
			name:        "unknown errors are masked",
			err:         errors.New("pq: relation bookings does not exist"),
			wantCode:    http.StatusInternalServerError,
			wantMessage: http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			response.WithError(recorder, tt.err)

			var body struct {
				Error   string         `json:"error"`
				Details map[string]any `json:"details"`
			}

			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.Equal(t, constant.ContentTypeJSON, recorder.Header().Get(constant.RequestHeaderContentType))
			assert.Equal(t, tt.wantMessage, body.Error)
			assert.Equal(t, tt.wantDetails, body.Details)
		})
	}
}

func TestWithJSON(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusCreated, map[string]any{"id": "booking-1"})

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.JSONEq(t, `{"data":{"id":"booking-1"}}`, recorder.Body.String())
}

func TestWithJSON_Unencodable(t *testing.T) {
	recorder := httptest.NewRecorder()

	response.WithJSON(recorder, http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"error":"Internal Server Error"}`, recorder.Body.String())
}

func TestCannedMessages(t *testing.T) {
	tests := []struct {
		name     string
		write    func(http.ResponseWriter)
		wantCode int
		wantBody string
	}{
		{
			name:     "accepted",
			write:    func(w http.ResponseWriter) { response.WithAccepted(w, "event queued") },
			wantCode: http.StatusAccepted,
			wantBody: `{"message":"event queued"}`,
		},
		{
			name:     "rate limited",
			write:    response.WithRequestLimitExceeded,
			wantCode: http.StatusTooManyRequests,
			wantBody: `{"message":"` + constant.ResponseErrorRequestLimitExceeded + `"}`,
		},
		{
			name:     "shutting down",
			write:    response.WithPreparingShutdown,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"message":"` + constant.ResponseErrorPrepareShutdown + `"}`,
		},
		{
			name:     "unhealthy",
			write:    response.WithUnhealthy,
			wantCode: http.StatusServiceUnavailable,
			wantBody: `{"message":"` + constant.ResponseErrorUnhealthy + `"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()

			tt.write(recorder)

			assert.Equal(t, tt.wantCode, recorder.Code)
			assert.JSONEq(t, tt.wantBody, recorder.Body.String())
		})
	}
}
