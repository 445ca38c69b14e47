package dto

import (
	"time"

	"parkspot/shared/constant"
	"parkspot/shared/model"
	"parkspot/shared/timezone"
)

type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

// FromModel renders audit stamps in the application timezone.
func (m *Metadata) FromModel(metadata model.Metadata) {
	m.CreatedAt = timezone.Format(metadata.CreatedAt, constant.DateFormat)
	m.ModifiedAt = timezone.Format(metadata.ModifiedAt, constant.DateFormat)
	m.CreatedBy = metadata.CreatedBy
	m.ModifiedBy = metadata.ModifiedBy
}

// FormatUTC renders a booking or deposit instant. Those are always shown in UTC.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(constant.DateFormat)
}

// FormatOptionalUTC is FormatUTC for nullable columns.
func FormatOptionalUTC(t *time.Time) *string {
	if t == nil {
		return nil
	}

	s := FormatUTC(*t)

	return &s
}
