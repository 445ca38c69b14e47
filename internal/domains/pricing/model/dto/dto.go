package dto

import (
	"time"

	"parkspot/internal/domains/pricing/model"
)

type QuoteRequest struct {
	StartAt          time.Time `json:"start_at"                    validate:"required"`
	EndAt            time.Time `json:"end_at"                      validate:"required"`
	DemandMultiplier *float64  `json:"demand_multiplier,omitempty" validate:"omitempty,gt=0"`
}

type QuoteResponse struct {
	SpotID  string      `json:"spot_id"`
	StartAt time.Time   `json:"start_at"`
	EndAt   time.Time   `json:"end_at"`
	Quote   model.Quote `json:"quote"`
}
