package dto

import (
	"parkspot/internal/domains/moderation/model"
	"parkspot/shared"
	gDto "parkspot/shared/dto"
)

type OverrideRequest struct {
	Status model.Status `json:"status" validate:"required,oneof=APPROVED REJECTED"`
	Notes  string       `json:"notes"  validate:"required,max=1000"`
}

type OverrideResponse struct {
	EntityType   model.EntityType `json:"entity_type"`
	EntityID     string           `json:"entity_id"`
	StatusBefore model.Status     `json:"status_before"`
	Status       model.Status     `json:"status"`
	Decision     model.Decision   `json:"decision"`
}

type RescoreResponse struct {
	SpotID       string       `json:"spot_id"`
	StatusBefore model.Status `json:"status_before"`
	Result       model.Result `json:"result"`
}

type LogResponse struct {
	ID           string           `json:"id"`
	EntityType   model.EntityType `json:"entity_type"`
	EntityID     string           `json:"entity_id"`
	Decision     model.Decision   `json:"decision"`
	StatusBefore model.Status     `json:"status_before"`
	StatusAfter  model.Status     `json:"status_after"`
	Auto         bool             `json:"auto"`
	ReviewerID   *string          `json:"reviewer_id,omitempty"`
	Notes        string           `json:"notes"`
	Score        *int             `json:"score,omitempty"`
	Issues       []string         `json:"issues"`
	CreatedAt    string           `json:"created_at"`
}

func (r *LogResponse) FromModel(m model.Log) {
	r.ID = m.ID
	r.EntityType = m.EntityType
	r.EntityID = m.EntityID
	r.Decision = m.Decision
	r.StatusBefore = m.StatusBefore
	r.StatusAfter = m.StatusAfter
	r.Auto = m.Auto
	r.ReviewerID = m.ReviewerID
	r.Notes = m.Notes
	r.CreatedAt = gDto.FormatUTC(m.CreatedAt)
	r.Issues = []string{}

	// A row with unreadable metadata is still returned, just without score and issues.
	if meta, err := m.DecodeMetadata(); err == nil {
		r.Score = meta.Score

		if meta.Issues != nil {
			r.Issues = meta.Issues
		}
	}
}

type HistoryResponse struct {
	Logs      []LogResponse `json:"logs"`
	TotalPage int           `json:"total_page"`
	TotalData int           `json:"total_data"`
}

func (r *HistoryResponse) FromModels(models []model.Log, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Logs = make([]LogResponse, len(models))
	for i, m := range models {
		r.Logs[i].FromModel(m)
	}
}
