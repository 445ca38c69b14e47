package model

import (
	"time"

	"parkspot/shared/dto"
	"parkspot/shared/model"
)

const (
	TableName  = "blackout_blocks"
	EntityName = "blackout"

	FieldID       = "id"
	FieldSpotID   = "spot_id"
	FieldStartsAt = "starts_at"
	FieldEndsAt   = "ends_at"
)

// Blackout is an owner-declared [StartsAt, EndsAt) window during which the spot cannot be booked.
type Blackout struct {
	ID       string    `db:"id"`
	SpotID   string    `db:"spot_id"`
	StartsAt time.Time `db:"starts_at"`
	EndsAt   time.Time `db:"ends_at"`
	Reason   *string   `db:"reason"`
	model.Metadata
}

// OverlapFilter selects the blackouts of spotID intersecting [start, end).
func OverlapFilter(spotID string, start, end time.Time) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: FieldSpotID, Value: spotID, Operator: dto.FilterOperatorEq, Table: TableName},
			dto.Filter{Field: FieldStartsAt, Value: end, Operator: dto.FilterOperatorLess, Table: TableName, ArgName: "window_end"},
			dto.Filter{Field: FieldEndsAt, Value: start, Operator: dto.FilterOperatorGreater, Table: TableName, ArgName: "window_start"},
		},
	}
}
