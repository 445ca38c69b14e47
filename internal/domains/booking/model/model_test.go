package model_test

import (
	"net/http"
	"testing"
	"time"

	"parkspot/internal/domains/booking/model"
	"parkspot/shared/failure"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransition(t *testing.T) {
	tests := []struct {
		from    model.Status
		to      model.Status
		wantMsg string
	}{
		{from: model.StatusPending, to: model.StatusApproved},
		{from: model.StatusPending, to: model.StatusDeclined},
		{from: model.StatusPending, to: model.StatusCancelled},
		{from: model.StatusApproved, to: model.StatusCancelled},
		{from: model.StatusApproved, to: model.StatusApproved, wantMsg: model.MsgNotPending},
		{from: model.StatusApproved, to: model.StatusDeclined, wantMsg: model.MsgNotPending},
		{from: model.StatusCancelled, to: model.StatusCancelled, wantMsg: model.MsgAlreadyCancelled},
		{from: model.StatusDeclined, to: model.StatusCancelled, wantMsg: model.MsgAlreadyDeclined},
		{from: model.StatusDeclined, to: model.StatusApproved, wantMsg: model.MsgNotPending},
		{from: model.StatusCancelled, to: model.StatusPending, wantMsg: model.MsgInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := tt.from.Transition(tt.to)
			if tt.wantMsg == "" {
				assert.NoError(t, err)
				assert.True(t, tt.from.CanTransitionTo(tt.to))

				return
			}

			assert.EqualError(t, err, tt.wantMsg)
			assert.Equal(t, http.StatusConflict, failure.GetCode(err))
		})
	}
}

func TestStatusActive(t *testing.T) {
	assert.True(t, model.StatusPending.Active())
	assert.True(t, model.StatusApproved.Active())
	assert.False(t, model.StatusDeclined.Active())
	assert.False(t, model.StatusCancelled.Active())
}

func TestOverlapFilter(t *testing.T) {
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	filter := model.OverlapFilter("spot-1", start, end)
	where, args := filter.GetWhereClause()

	assert.Equal(t, "(bookings.spot_id = :spot_id AND bookings.status IN (:status_0, :status_1)  AND bookings.start_at < :window_end AND bookings.end_at > :window_start)", where)
	assert.Equal(t, map[string]any{
		"spot_id":      "spot-1",
		"status_0":     model.StatusPending,
		"status_1":     model.StatusApproved,
		"window_end":   end,
		"window_start": start,
	}, args)
}
