package service

import (
	"context"
	"fmt"
	"time"

	"parkspot/infras/otel"
	"parkspot/internal/domains/availability/model"
	"parkspot/internal/domains/availability/model/dto"
	blackoutModel "parkspot/internal/domains/blackout/model"
	blackoutRepo "parkspot/internal/domains/blackout/repository"
	bookingModel "parkspot/internal/domains/booking/model"
	bookingRepo "parkspot/internal/domains/booking/repository"
	spotModel "parkspot/internal/domains/spot/model"
	spotRepo "parkspot/internal/domains/spot/repository"
	"parkspot/shared"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"

	"github.com/rs/zerolog/log"
)

// Availability answers which hours of a day are still free on a spot.
// Results are computed on every call and never cached.
type Availability interface {
	AvailableSlots(ctx context.Context, spotID string, day time.Time) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	spotRepo     spotRepo.Spot
	bookingRepo  bookingRepo.Booking
	blackoutRepo blackoutRepo.Blackout
	otel         otel.Otel
}

func New(spotRepo spotRepo.Spot, bookingRepo bookingRepo.Booking, blackoutRepo blackoutRepo.Blackout, otel otel.Otel) Availability {
	return &serviceImpl{
		spotRepo:     spotRepo,
		bookingRepo:  bookingRepo,
		blackoutRepo: blackoutRepo,
		otel:         otel,
	}
}

func (s *serviceImpl) AvailableSlots(ctx context.Context, spotID string, day time.Time) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AvailableSlots")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	spot, err := s.spotRepo.Get(ctx, shared.FilterByID(spotID, spotModel.FieldID, spotModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to get spot")

		return res, fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return res, failure.NotFound("spot not found")
	}

	if !spot.Bookable() {
		return res, failure.State(model.MsgSpotNotBookable)
	}

	y, m, d := day.UTC().Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	to := from.Add(model.SlotsPerDay * time.Hour)

	bookings, err := s.bookingRepo.GetAll(ctx, gDto.QueryParams{}, bookingModel.OverlapFilter(spot.ID, from, to))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to get bookings for availability")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	blackouts, err := s.blackoutRepo.GetAll(ctx, gDto.QueryParams{}, blackoutModel.OverlapFilter(spot.ID, from, to))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to get blackouts for availability")

		return res, fmt.Errorf("failed to get blackouts: %w", err)
	}

	busy := make([]model.Interval, 0, len(bookings)+len(blackouts))
	for _, b := range bookings {
		busy = append(busy, model.Interval{Start: b.StartAt, End: b.EndAt})
	}

	for _, b := range blackouts {
		busy = append(busy, model.Interval{Start: b.StartsAt, End: b.EndsAt})
	}

	res.FromSlots(spot.ID, from, model.Slots(from, busy))

	return res, nil
}
