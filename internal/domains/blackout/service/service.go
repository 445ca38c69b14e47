package service

import (
	"context"
	"fmt"

	"parkspot/infras/otel"
	"parkspot/internal/domains/blackout/model"
	"parkspot/internal/domains/blackout/model/dto"
	"parkspot/internal/domains/blackout/repository"
	spotModel "parkspot/internal/domains/spot/model"
	spotRepo "parkspot/internal/domains/spot/repository"
	"parkspot/shared"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"

	"github.com/rs/zerolog/log"
)

const (
	msgSpotAbsent     = "spot not found"
	msgBlackoutAbsent = "blackout not found"
	msgNotSpotOwner   = "only the spot owner can manage blackouts"
	msgEmptyWindow    = "blackout must end after it starts"
)

type Blackout interface {
	Create(ctx context.Context, spotID string, req dto.CreateBlackoutRequest) (dto.BlackoutResponse, error)
	GetAll(ctx context.Context, spotID string) (dto.GetBlackoutsResponse, error)
	Delete(ctx context.Context, spotID, id string) error
}

type serviceImpl struct {
	repo     repository.Blackout
	spotRepo spotRepo.Spot
	otel     otel.Otel
}

func New(repo repository.Blackout, spotRepo spotRepo.Spot, otel otel.Otel) Blackout {
	return &serviceImpl{
		repo:     repo,
		spotRepo: spotRepo,
		otel:     otel,
	}
}

// Create blocks [StartsAt, EndsAt) for new bookings. Bookings already in the window are kept.
func (s *serviceImpl) Create(ctx context.Context, spotID string, req dto.CreateBlackoutRequest) (res dto.BlackoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if !req.StartsAt.Before(req.EndsAt) {
		return res, failure.BadRequestFromString(msgEmptyWindow)
	}

	actor, _ := shared.Principal(ctx)

	if err = s.authorize(ctx, spotID, actor); err != nil {
		return res, err
	}

	blackout := req.ToModel(spotID, actor)
	if err = s.repo.Insert(ctx, blackout); err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to create blackout")

		return res, fmt.Errorf("failed to create blackout: %w", err)
	}

	res.FromModel(blackout)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, spotID string) (res dto.GetBlackoutsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	if err = s.authorize(ctx, spotID, actor); err != nil {
		return res, err
	}

	params := gDto.QueryParams{SortBy: model.FieldStartsAt, SortDir: gDto.SortDirAsc}

	models, err := s.repo.GetAll(ctx, params, shared.FilterByField(model.FieldSpotID, spotID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to get blackouts")

		return res, fmt.Errorf("failed to get blackouts: %w", err)
	}

	res.FromModels(models)

	return res, nil
}

func (s *serviceImpl) Delete(ctx context.Context, spotID, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	if err = s.authorize(ctx, spotID, actor); err != nil {
		return err
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldSpotID, Value: spotID, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	blackout, err := s.repo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("blackout_id", id).Msg("failed to get blackout")

		return fmt.Errorf("failed to get blackout: %w", err)
	}

	if blackout.ID == constant.Empty {
		return failure.NotFound(msgBlackoutAbsent)
	}

	if err = s.repo.Delete(ctx, filter); err != nil {
		log.Error().Err(err).Str("blackout_id", id).Msg("failed to delete blackout")

		return fmt.Errorf("failed to delete blackout: %w", err)
	}

	return nil
}

func (s *serviceImpl) authorize(ctx context.Context, spotID, actor string) error {
	spot, err := s.spotRepo.Get(ctx, shared.FilterByID(spotID, spotModel.FieldID, spotModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to get spot")

		return fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return failure.NotFound(msgSpotAbsent)
	}

	if spot.OwnerID != actor {
		return failure.Forbidden(msgNotSpotOwner)
	}

	return nil
}
