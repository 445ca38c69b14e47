package service

import (
	"context"
	"fmt"

	"parkspot/config"
	"parkspot/infras/otel"
	availabilityModel "parkspot/internal/domains/availability/model"
	"parkspot/internal/domains/pricing/model"
	"parkspot/internal/domains/pricing/model/dto"
	spotModel "parkspot/internal/domains/spot/model"
	spotRepo "parkspot/internal/domains/spot/repository"
	"parkspot/shared"
	"parkspot/shared/constant"
	"parkspot/shared/failure"
	"parkspot/shared/timezone"

	"github.com/rs/zerolog/log"
)

// Pricing quotes a candidate window without reserving it.
type Pricing interface {
	Quote(ctx context.Context, spotID string, req dto.QuoteRequest) (dto.QuoteResponse, error)
}

type serviceImpl struct {
	spotRepo spotRepo.Spot
	cfg      *config.Config
	otel     otel.Otel
}

func New(spotRepo spotRepo.Spot, cfg *config.Config, otel otel.Otel) Pricing {
	return &serviceImpl{
		spotRepo: spotRepo,
		cfg:      cfg,
		otel:     otel,
	}
}

func (s *serviceImpl) Quote(ctx context.Context, spotID string, req dto.QuoteRequest) (res dto.QuoteResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Quote")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	start, end := req.StartAt.UTC(), req.EndAt.UTC()

	if err = availabilityModel.ValidateWindow(start, end, timezone.NowUTC(), s.cfg.App.Booking.HorizonMonths); err != nil {
		return res, err
	}

	spot, err := s.spotRepo.Get(ctx, shared.FilterByID(spotID, spotModel.FieldID, spotModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to get spot")

		return res, fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return res, failure.NotFound("spot not found")
	}

	if !spot.Bookable() {
		return res, failure.State(availabilityModel.MsgSpotNotBookable)
	}

	demand := s.cfg.App.Booking.DemandMultiplier
	if req.DemandMultiplier != nil {
		demand = *req.DemandMultiplier
	}

	res.SpotID = spot.ID
	res.StartAt = start
	res.EndAt = end
	res.Quote = model.Calculate(model.Input{
		Hours:             availabilityModel.Hours(start, end),
		PricePerHour:      spot.PricePerHour,
		StartAt:           start,
		CommissionPercent: s.cfg.App.Booking.CommissionPercent,
		DemandMultiplier:  demand,
		Deposit:           spot.Deposit(),
	})

	return res, nil
}
