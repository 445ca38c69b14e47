package dto

import (
	"time"

	"parkspot/internal/domains/availability/model"
)

type AvailabilityResponse struct {
	SpotID string       `json:"spot_id"`
	Date   string       `json:"date"`
	Slots  []model.Slot `json:"slots"`
}

func (r *AvailabilityResponse) FromSlots(spotID string, day time.Time, slots []model.Slot) {
	r.SpotID = spotID
	r.Date = day.UTC().Format(time.DateOnly)
	r.Slots = slots

	if r.Slots == nil {
		r.Slots = []model.Slot{}
	}
}
