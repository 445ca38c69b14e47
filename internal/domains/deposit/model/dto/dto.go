package dto

import (
	bookingModel "parkspot/internal/domains/booking/model"
	"parkspot/internal/domains/deposit/model"
	gDto "parkspot/shared/dto"
)

type HoldRequest struct {
	Amount *int64  `json:"amount,omitempty" validate:"omitempty,gte=0"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type PartialReleaseRequest struct {
	Amount int64   `json:"amount"           validate:"required,gt=0"`
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type ReleaseRequest struct {
	Reason *string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

type ForfeitRequest struct {
	PenaltyAmount *int64  `json:"penalty_amount,omitempty" validate:"omitempty,gte=0"`
	Reason        *string `json:"reason,omitempty"         validate:"omitempty,max=500"`
}

type DepositResponse struct {
	BookingID         string       `json:"booking_id"`
	DepositAmount     int64        `json:"deposit_amount"`
	DepositStatus     model.Status `json:"deposit_status"`
	PenaltyAmount     int64        `json:"penalty_amount"`
	PenaltyReason     *string      `json:"penalty_reason,omitempty"`
	DisputeOpenedAt   *string      `json:"dispute_opened_at,omitempty"`
	DisputeResolvedAt *string      `json:"dispute_resolved_at,omitempty"`
}

func (r *DepositResponse) FromBooking(b bookingModel.Booking) {
	r.BookingID = b.ID
	r.DepositAmount = b.DepositAmount
	r.DepositStatus = b.DepositStatus
	r.PenaltyAmount = b.PenaltyAmount
	r.PenaltyReason = b.PenaltyReason

	r.DisputeOpenedAt = gDto.FormatOptionalUTC(b.DisputeOpenedAt)
	r.DisputeResolvedAt = gDto.FormatOptionalUTC(b.DisputeResolvedAt)
}

type TransactionResponse struct {
	ID          string                `json:"id"`
	Type        model.TransactionType `json:"type"`
	Amount      int64                 `json:"amount"`
	Description *string               `json:"description,omitempty"`
	ActorID     string                `json:"actor_id"`
	CreatedAt   string                `json:"created_at"`
}

type HistoryResponse struct {
	BookingID    string                `json:"booking_id"`
	Status       model.Status          `json:"deposit_status"`
	Transactions []TransactionResponse `json:"transactions"`
	Summary      model.Summary         `json:"summary"`
}

func (r *HistoryResponse) FromLedger(b bookingModel.Booking, ledger model.Ledger) {
	r.BookingID = b.ID
	r.Status = b.DepositStatus
	r.Summary = ledger.Summary()

	sorted := ledger.Sorted()

	r.Transactions = make([]TransactionResponse, len(sorted))
	for i, tx := range sorted {
		r.Transactions[i] = TransactionResponse{
			ID:          tx.ID,
			Type:        tx.Type,
			Amount:      tx.Amount,
			Description: tx.Description,
			ActorID:     tx.ActorID,
			CreatedAt:   gDto.FormatUTC(tx.CreatedAt),
		}
	}
}
