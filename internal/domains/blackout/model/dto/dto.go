package dto

import (
	"time"

	"parkspot/internal/domains/blackout/model"
	gDto "parkspot/shared/dto"
	gModel "parkspot/shared/model"
	"parkspot/shared/timezone"

	"github.com/google/uuid"
)

type CreateBlackoutRequest struct {
	StartsAt time.Time `json:"starts_at"        validate:"required"`
	EndsAt   time.Time `json:"ends_at"          validate:"required,gtfield=StartsAt"`
	Reason   *string   `json:"reason,omitempty" validate:"omitempty,max=255"`
}

func (c *CreateBlackoutRequest) ToModel(spotID, actor string) model.Blackout {
	return model.Blackout{
		ID:       uuid.NewString(),
		SpotID:   spotID,
		StartsAt: c.StartsAt.UTC(),
		EndsAt:   c.EndsAt.UTC(),
		Reason:   c.Reason,
		Metadata: gModel.NewMetadata(actor, timezone.Now()),
	}
}

type BlackoutResponse struct {
	ID       string  `json:"id"`
	SpotID   string  `json:"spot_id"`
	StartsAt string  `json:"starts_at"`
	EndsAt   string  `json:"ends_at"`
	Reason   *string `json:"reason,omitempty"`
	gDto.Metadata
}

func (r *BlackoutResponse) FromModel(m model.Blackout) {
	r.ID = m.ID
	r.SpotID = m.SpotID
	r.StartsAt = gDto.FormatUTC(m.StartsAt)
	r.EndsAt = gDto.FormatUTC(m.EndsAt)
	r.Reason = m.Reason
	r.Metadata.FromModel(m.Metadata)
}

type GetBlackoutsResponse struct {
	Blackouts []BlackoutResponse `json:"blackouts"`
}

func (r *GetBlackoutsResponse) FromModels(models []model.Blackout) {
	r.Blackouts = make([]BlackoutResponse, len(models))
	for i, m := range models {
		r.Blackouts[i].FromModel(m)
	}
}
