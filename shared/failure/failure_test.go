package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"parkspot/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad request from string", err: failure.BadRequestFromString("invalid interval"), code: http.StatusBadRequest, message: "invalid interval"},
		{name: "bad request from error", err: failure.BadRequest(errors.New("decode failed")), code: http.StatusBadRequest, message: "decode failed"},
		{name: "validation", err: failure.Validation("slots not hour-aligned", map[string]any{"field": "start_at"}), code: http.StatusBadRequest, message: "slots not hour-aligned"},
		{name: "unauthorized", err: failure.Unauthorized("missing token"), code: http.StatusUnauthorized, message: "missing token"},
		{name: "forbidden", err: failure.Forbidden("not the spot owner"), code: http.StatusForbidden, message: "not the spot owner"},
		{name: "not found", err: failure.NotFound("booking not found"), code: http.StatusNotFound, message: "booking not found"},
		{name: "conflict", err: failure.Conflict("slot already booked"), code: http.StatusConflict, message: "slot already booked"},
		{name: "state", err: failure.State("deposit not held"), code: http.StatusConflict, message: "deposit not held"},
		{name: "internal", err: failure.InternalError(errors.New("boom")), code: http.StatusInternalServerError, message: "boom"},
		{name: "unimplemented", err: failure.Unimplemented("Refund"), code: http.StatusNotImplemented, message: "Refund"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilErrorConstructors(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestPredefinedFailures(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, failure.InvalidPageParam.Code)
	assert.Equal(t, http.StatusBadRequest, failure.InvalidLimitParam.Code)
	assert.Equal(t, http.StatusForbidden, failure.ForbiddenError.Code)
	assert.Equal(t, http.StatusForbidden, failure.ResourceRestrictedError.Code)
}

func TestGetCode(t *testing.T) {
	wrapped := fmt.Errorf("approve booking: %w", failure.Forbidden("not the spot owner"))

	assert.Equal(t, http.StatusForbidden, failure.GetCode(wrapped))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("plain")))
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(nil))
}

func TestGetDetails(t *testing.T) {
	details := map[string]any{"field": "end_at"}
	err := fmt.Errorf("wrap: %w", failure.Validation("invalid interval", details))

	assert.Equal(t, details, failure.GetDetails(err))
	assert.Nil(t, failure.GetDetails(failure.NotFound("spot not found")))
	assert.Nil(t, failure.GetDetails(errors.New("plain")))
}
