package dto

import (
	"time"

	"parkspot/internal/domains/booking/model"
	depositModel "parkspot/internal/domains/deposit/model"
	pricingModel "parkspot/internal/domains/pricing/model"
	refundModel "parkspot/internal/domains/refund/model"
	"parkspot/shared"
	gDto "parkspot/shared/dto"
	gModel "parkspot/shared/model"
	"parkspot/shared/timezone"

	"github.com/google/uuid"
)

type CreateBookingRequest struct {
	SpotID           string    `json:"spot_id"                     validate:"required,uuid"`
	StartAt          time.Time `json:"start_at"                    validate:"required"`
	EndAt            time.Time `json:"end_at"                      validate:"required"`
	DemandMultiplier *float64  `json:"demand_multiplier,omitempty" validate:"omitempty,gt=0"`
}

func (c *CreateBookingRequest) ToModel(renter string, quote pricingModel.Quote) model.Booking {
	return model.Booking{
		ID:               uuid.NewString(),
		SpotID:           c.SpotID,
		RenterID:         renter,
		StartAt:          c.StartAt.UTC(),
		EndAt:            c.EndAt.UTC(),
		Status:           model.StatusPending,
		TotalPrice:       quote.TotalPrice,
		CommissionAmount: quote.CommissionAmount,
		OwnerAmount:      quote.OwnerAmount,
		DepositAmount:    quote.DepositAmount,
		DepositStatus:    depositModel.InitialStatus(quote.DepositAmount),
		Metadata:         gModel.NewMetadata(renter, timezone.Now()),
	}
}

// UpdateStatusRequest is the column set written by approve and decline.
type UpdateStatusRequest struct {
	Status model.Status `db:"status"`
}

type BookingResponse struct {
	ID                string              `json:"id"`
	SpotID            string              `json:"spot_id"`
	RenterID          string              `json:"renter_id"`
	StartAt           string              `json:"start_at"`
	EndAt             string              `json:"end_at"`
	Status            model.Status        `json:"status"`
	TotalPrice        int64               `json:"total_price"`
	CommissionAmount  int64               `json:"commission_amount"`
	OwnerAmount       int64               `json:"owner_amount"`
	DepositAmount     int64               `json:"deposit_amount"`
	DepositStatus     depositModel.Status `json:"deposit_status"`
	PenaltyAmount     int64               `json:"penalty_amount"`
	PenaltyReason     *string             `json:"penalty_reason,omitempty"`
	RefundAmount      *int64              `json:"refund_amount,omitempty"`
	DisputeOpenedAt   *string             `json:"dispute_opened_at,omitempty"`
	DisputeResolvedAt *string             `json:"dispute_resolved_at,omitempty"`
	CancelledAt       *string             `json:"cancelled_at,omitempty"`
	CancelledBy       *string             `json:"cancelled_by,omitempty"`
	CancelReason      *string             `json:"cancellation_reason,omitempty"`
	gDto.Metadata
}

func (r *BookingResponse) FromModel(m model.Booking) {
	r.ID = m.ID
	r.SpotID = m.SpotID
	r.RenterID = m.RenterID
	r.StartAt = gDto.FormatUTC(m.StartAt)
	r.EndAt = gDto.FormatUTC(m.EndAt)
	r.Status = m.Status
	r.TotalPrice = m.TotalPrice
	r.CommissionAmount = m.CommissionAmount
	r.OwnerAmount = m.OwnerAmount
	r.DepositAmount = m.DepositAmount
	r.DepositStatus = m.DepositStatus
	r.PenaltyAmount = m.PenaltyAmount
	r.PenaltyReason = m.PenaltyReason
	r.RefundAmount = m.RefundAmount
	r.DisputeOpenedAt = gDto.FormatOptionalUTC(m.DisputeOpenedAt)
	r.DisputeResolvedAt = gDto.FormatOptionalUTC(m.DisputeResolvedAt)
	r.CancelledAt = gDto.FormatOptionalUTC(m.CancelledAt)
	r.CancelledBy = m.CancelledBy
	r.CancelReason = m.CancelReason
	r.Metadata.FromModel(m.Metadata)
}

type GetBookingsResponse struct {
	Bookings  []BookingResponse `json:"bookings"`
	TotalPage int               `json:"total_page"`
	TotalData int               `json:"total_data"`
}

func (r *GetBookingsResponse) FromModels(models []model.Booking, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Bookings = make([]BookingResponse, len(models))
	for i, m := range models {
		r.Bookings[i].FromModel(m)
	}
}

type CreateBookingResponse struct {
	Booking BookingResponse    `json:"booking"`
	Quote   pricingModel.Quote `json:"quote"`
}

type CancelBookingResponse struct {
	Booking BookingResponse    `json:"booking"`
	Refund  refundModel.Result `json:"refund"`
}
