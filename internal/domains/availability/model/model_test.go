package model_test

import (
	"testing"
	"time"

	"parkspot/internal/domains/availability/model"
	"parkspot/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2026, 5, 16, 0, 0, 0, 0, time.UTC)

func at(hour int) time.Time {
	return day.Add(time.Duration(hour) * time.Hour)
}

func TestSlots_FullDay(t *testing.T) {
	slots := model.Slots(day.Add(13*time.Hour), nil)

	require.Len(t, slots, model.SlotsPerDay)
	assert.Equal(t, at(0), slots[0].Start)
	assert.Equal(t, at(24), slots[23].End)
}

func TestSlots_SubtractsBusy(t *testing.T) {
	busy := []model.Interval{
		{Start: at(9), End: at(12)},
		{Start: at(14).Add(30 * time.Minute), End: at(15)},
		{Start: day.Add(-2 * time.Hour), End: at(1)},
		{Start: at(23), End: at(30)},
	}

	slots := model.Slots(day, busy)

	starts := make([]int, 0, len(slots))
	for i, s := range slots {
		starts = append(starts, s.Start.Hour())

		if i > 0 {
			assert.True(t, slots[i-1].Start.Before(s.Start), "slots must ascend")
		}

		for _, b := range busy {
			assert.False(t, b.Overlaps(s.Start, s.End))
		}
	}

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 12, 13, 15, 16, 17, 18, 19, 20, 21, 22}, starts)
}

func TestValidateWindow(t *testing.T) {
	now := time.Date(2026, 5, 1, 8, 17, 0, 0, time.UTC)

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		message string
	}{
		{name: "valid", start: at(10), end: at(13)},
		{name: "minutes", start: at(10).Add(time.Minute), end: at(13), message: model.MsgNotHourAligned},
		{name: "subseconds", start: at(10), end: at(13).Add(time.Millisecond), message: model.MsgNotHourAligned},
		{name: "reversed", start: at(13), end: at(10), message: model.MsgInvalidInterval},
		{name: "empty", start: at(10), end: at(10), message: model.MsgInvalidInterval},
		{name: "beyond horizon", start: at(10).AddDate(1, 0, 0), end: at(11).AddDate(1, 0, 0), message: model.MsgHorizonExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := model.ValidateWindow(tt.start, tt.end, now, 12)
			if tt.message == "" {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, 400, failure.GetCode(err))
		})
	}
}

func TestHours(t *testing.T) {
	assert.Equal(t, 3, model.Hours(at(18), at(21)))
	assert.Equal(t, 0, model.Hours(at(18), at(18)))
}
