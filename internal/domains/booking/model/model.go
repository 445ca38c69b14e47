package model

import (
	"slices"
	"time"

	depositModel "parkspot/internal/domains/deposit/model"
	"parkspot/shared/dto"
	"parkspot/shared/failure"
	"parkspot/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID                = "id"
	FieldSpotID            = "spot_id"
	FieldRenterID          = "renter_id"
	FieldStartAt           = "start_at"
	FieldEndAt             = "end_at"
	FieldStatus            = "status"
	FieldDepositAmount     = "deposit_amount"
	FieldDepositStatus     = "deposit_status"
	FieldPenaltyAmount     = "penalty_amount"
	FieldPenaltyReason     = "penalty_reason"
	FieldRefundAmount      = "refund_amount"
	FieldDisputeOpenedAt   = "dispute_opened_at"
	FieldDisputeResolvedAt = "dispute_resolved_at"
	FieldCancelledAt       = "cancelled_at"
	FieldCancelledBy       = "cancelled_by"
	FieldCancelReason      = "cancellation_reason"
)

const (
	MsgNotPending        = "booking is not pending"
	MsgAlreadyCancelled  = "already cancelled"
	MsgAlreadyDeclined   = "already declined"
	MsgSlotUnavailable   = "requested window is not available"
	MsgInvalidTransition = "invalid booking status transition"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusDeclined  Status = "DECLINED"
	StatusCancelled Status = "CANCELLED"
)

// ActiveStatuses are the statuses that occupy a spot's calendar.
var ActiveStatuses = []Status{StatusPending, StatusApproved}

var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDeclined, StatusCancelled},
	StatusApproved: {StatusCancelled},
}

func (s Status) Active() bool {
	return slices.Contains(ActiveStatuses, s)
}

func (s Status) CanTransitionTo(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// Transition returns a state failure when next is not reachable from s.
func (s Status) Transition(next Status) error {
	if s.CanTransitionTo(next) {
		return nil
	}

	switch {
	case next == StatusCancelled && s == StatusCancelled:
		return failure.State(MsgAlreadyCancelled)
	case next == StatusCancelled && s == StatusDeclined:
		return failure.State(MsgAlreadyDeclined)
	case next == StatusApproved, next == StatusDeclined:
		return failure.State(MsgNotPending)
	default:
		return failure.State(MsgInvalidTransition)
	}
}

type Booking struct {
	ID                string              `db:"id"`
	SpotID            string              `db:"spot_id"`
	RenterID          string              `db:"renter_id"`
	StartAt           time.Time           `db:"start_at"`
	EndAt             time.Time           `db:"end_at"`
	Status            Status              `db:"status"`
	TotalPrice        int64               `db:"total_price"`
	CommissionAmount  int64               `db:"commission_amount"`
	OwnerAmount       int64               `db:"owner_amount"`
	DepositAmount     int64               `db:"deposit_amount"`
	DepositStatus     depositModel.Status `db:"deposit_status"`
	PenaltyAmount     int64               `db:"penalty_amount"`
	PenaltyReason     *string             `db:"penalty_reason"`
	RefundAmount      *int64              `db:"refund_amount"`
	DisputeOpenedAt   *time.Time          `db:"dispute_opened_at"`
	DisputeResolvedAt *time.Time          `db:"dispute_resolved_at"`
	CancelledAt       *time.Time          `db:"cancelled_at"`
	CancelledBy       *string             `db:"cancelled_by"`
	CancelReason      *string             `db:"cancellation_reason"`
	model.Metadata
}

// OverlapFilter selects the active bookings of spotID intersecting [start, end).
func OverlapFilter(spotID string, start, end time.Time) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{Field: FieldSpotID, Value: spotID, Operator: dto.FilterOperatorEq, Table: TableName},
			dto.Filter{Field: FieldStatus, Value: ActiveStatuses, Operator: dto.FilterOperatorIn, Table: TableName},
			dto.Filter{Field: FieldStartAt, Value: end, Operator: dto.FilterOperatorLess, Table: TableName, ArgName: "window_end"},
			dto.Filter{Field: FieldEndAt, Value: start, Operator: dto.FilterOperatorGreater, Table: TableName, ArgName: "window_start"},
		},
	}
}
