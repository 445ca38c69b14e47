package model

import (
	"time"

	"parkspot/shared/failure"
)

const (
	SlotsPerDay    = 24
	DefaultHorizon = 12

	MsgNotHourAligned      = "slots not hour-aligned"
	MsgInvalidInterval     = "invalid interval"
	MsgHorizonExceeded     = "booking horizon exceeded"
	MsgNonPositiveDuration = "non-positive duration"
	MsgSpotNotBookable     = "spot not bookable"
)

// Slot is a bookable one hour interval [Start, End) in UTC.
type Slot struct {
	Start time.Time `json:"start_at"`
	End   time.Time `json:"end_at"`
}

// Interval is a busy period, either a booking or a blackout.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(start, end time.Time) bool {
	return i.Start.Before(end) && start.Before(i.End)
}

// Slots returns the hours of day that intersect none of busy, in ascending order.
func Slots(day time.Time, busy []Interval) []Slot {
	y, m, d := day.UTC().Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	slots := make([]Slot, 0, SlotsPerDay)

	for h := range SlotsPerDay {
		start := midnight.Add(time.Duration(h) * time.Hour)
		end := start.Add(time.Hour)

		free := true

		for _, b := range busy {
			if b.Overlaps(start, end) {
				free = false

				break
			}
		}

		if free {
			slots = append(slots, Slot{Start: start, End: end})
		}
	}

	return slots
}

func isHourAligned(t time.Time) bool {
	u := t.UTC()

	return u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0
}

// ValidateWindow checks a candidate booking window against now. The returned
// failure carries the offending fields in its details.
func ValidateWindow(start, end, now time.Time, horizonMonths int) error {
	if horizonMonths <= 0 {
		horizonMonths = DefaultHorizon
	}

	if !isHourAligned(start) || !isHourAligned(end) {
		return failure.Validation(MsgNotHourAligned, map[string]any{"start_at": start, "end_at": end})
	}

	if !start.Before(end) {
		return failure.Validation(MsgInvalidInterval, map[string]any{"start_at": start, "end_at": end})
	}

	if end.After(now.AddDate(0, horizonMonths, 0)) {
		return failure.Validation(MsgHorizonExceeded, map[string]any{"end_at": end, "horizon_months": horizonMonths})
	}

	if Hours(start, end) <= 0 {
		return failure.Validation(MsgNonPositiveDuration, map[string]any{"hours": Hours(start, end)})
	}

	return nil
}

// Hours is the whole number of hours in [start, end).
func Hours(start, end time.Time) int {
	return int(end.Sub(start) / time.Hour)
}
