package service

import (
	"context"
	"errors"
	"fmt"

	"parkspot/infras/otel"
	"parkspot/internal/domains/moderation/model"
	"parkspot/internal/domains/moderation/model/dto"
	"parkspot/internal/domains/moderation/repository"
	spotModel "parkspot/internal/domains/spot/model"
	spotRepo "parkspot/internal/domains/spot/repository"
	userModel "parkspot/internal/domains/user/model"
	userRepo "parkspot/internal/domains/user/repository"
	verificationModel "parkspot/internal/domains/verification/model"
	verificationRepo "parkspot/internal/domains/verification/repository"
	"parkspot/shared"
	"parkspot/shared/cache"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"
	gRepo "parkspot/shared/repository"
	"parkspot/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	msgAdminOnly      = "only an admin can override moderation decisions"
	msgOwnerOnly      = "only the spot owner can request a rescore"
	msgHistoryDenied  = "moderation history is restricted to the entity owner and admins"
	msgManualDecision = "spot was reviewed manually and cannot be rescored"
	msgUnknownEntity  = "unknown moderation entity"
)

type Moderation interface {
	Override(ctx context.Context, entity model.EntityType, id string, req dto.OverrideRequest) (dto.OverrideResponse, error)
	Rescore(ctx context.Context, spotID string) (dto.RescoreResponse, error)
	History(ctx context.Context, entity model.EntityType, id string, req gDto.QueryParams) (dto.HistoryResponse, error)
}

type serviceImpl struct {
	transactor       gRepo.Transactor
	repo             repository.Log
	spotRepo         spotRepo.Spot
	photoRepo        spotRepo.Photo
	verificationRepo verificationRepo.Verification
	userRepo         userRepo.User
	cache            cache.RedisCache
	otel             otel.Otel
}

func New(
	transactor gRepo.Transactor,
	repo repository.Log,
	spotRepo spotRepo.Spot,
	photoRepo spotRepo.Photo,
	verificationRepo verificationRepo.Verification,
	userRepo userRepo.User,
	cache cache.RedisCache,
	otel otel.Otel,
) Moderation {
	return &serviceImpl{
		transactor:       transactor,
		repo:             repo,
		spotRepo:         spotRepo,
		photoRepo:        photoRepo,
		verificationRepo: verificationRepo,
		userRepo:         userRepo,
		cache:            cache,
		otel:             otel,
	}
}

// Override replaces the current status of a spot or a verification with an administrator decision.
func (s *serviceImpl) Override(ctx context.Context, entity model.EntityType, id string, req dto.OverrideRequest) (res dto.OverrideResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Override")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	reviewer, role := shared.Principal(ctx)
	if role != constant.RoleAdmin {
		return res, failure.Forbidden(msgAdminOnly)
	}

	decision, err := model.OverrideDecision(req.Status)
	if err != nil {
		return res, failure.Validation(err.Error(), map[string]any{"status": req.Status})
	}

	res.EntityType = entity
	res.EntityID = id
	res.Status = req.Status
	res.Decision = decision

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		var err error

		switch entity {
		case model.EntitySpot:
			res.StatusBefore, err = s.overrideSpot(ctx, tx, id, req.Status, reviewer)
		case model.EntityVerification:
			res.StatusBefore, err = s.overrideVerification(ctx, tx, id, req.Status, reviewer)
		default:
			return failure.BadRequestFromString(msgUnknownEntity)
		}

		if err != nil {
			return err
		}

		entry := model.NewManualLog(entity, id, res.StatusBefore, req.Status, decision, reviewer, req.Notes, timezone.NowUTC())
		if err = s.repo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Str("entity_id", id).Msg("failed to append moderation log")

			return fmt.Errorf("failed to append moderation log: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	if entity == model.EntitySpot {
		s.invalidateSpot(ctx, id)
	}

	return res, nil
}

func (s *serviceImpl) overrideSpot(ctx context.Context, tx *sqlx.Tx, id string, status model.Status, reviewer string) (model.Status, error) {
	filter := shared.FilterByID(id, spotModel.FieldID, spotModel.TableName)

	spot, err := s.spotRepo.GetForUpdateTx(ctx, tx, filter)
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to lock spot")

		return constant.Empty, fmt.Errorf("failed to lock spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return constant.Empty, failure.NotFound("spot not found")
	}

	if err = s.spotRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{spotModel.FieldStatus: status}, reviewer), filter); err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to update spot status")

		return constant.Empty, fmt.Errorf("failed to update spot status: %w", err)
	}

	return spot.Status, nil
}

// overrideVerification also keeps users.is_verified in line with the decision.
func (s *serviceImpl) overrideVerification(ctx context.Context, tx *sqlx.Tx, id string, status model.Status, reviewer string) (model.Status, error) {
	filter := shared.FilterByID(id, verificationModel.FieldID, verificationModel.TableName)

	verification, err := s.verificationRepo.GetForUpdateTx(ctx, tx, filter)
	if err != nil {
		log.Error().Err(err).Str("verification_id", id).Msg("failed to lock verification")

		return constant.Empty, fmt.Errorf("failed to lock verification: %w", err)
	}

	if verification.ID == constant.Empty {
		return constant.Empty, failure.NotFound("verification not found")
	}

	if err = s.verificationRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{verificationModel.FieldStatus: status}, reviewer), filter); err != nil {
		log.Error().Err(err).Str("verification_id", id).Msg("failed to update verification status")

		return constant.Empty, fmt.Errorf("failed to update verification status: %w", err)
	}

	verified := shared.WithModified(map[string]any{userModel.FieldIsVerified: status.Approved()}, reviewer)
	if err = s.userRepo.UpdateTx(ctx, tx, verified, shared.FilterByID(verification.UserID, userModel.FieldID, userModel.TableName)); err != nil {
		log.Error().Err(err).Str("user_id", verification.UserID).Msg("failed to update user verification flag")

		return constant.Empty, fmt.Errorf("failed to update user verification flag: %w", err)
	}

	return verification.Status, nil
}

// Rescore runs the scorer again on the current listing, typically after new photos were added.
func (s *serviceImpl) Rescore(ctx context.Context, spotID string) (res dto.RescoreResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Rescore")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		filter := shared.FilterByID(spotID, spotModel.FieldID, spotModel.TableName)

		spot, err := s.spotRepo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			log.Error().Err(err).Str("spot_id", spotID).Msg("failed to lock spot")

			return fmt.Errorf("failed to lock spot: %w", err)
		}

		if spot.ID == constant.Empty {
			return failure.NotFound("spot not found")
		}

		if spot.OwnerID != actor {
			return failure.Forbidden(msgOwnerOnly)
		}

		if spot.Status == model.StatusApproved || spot.Status == model.StatusRejected {
			return failure.State(msgManualDecision)
		}

		photos, err := s.photoRepo.Count(ctx, shared.FilterByField(spotModel.PhotoFieldSpotID, spot.ID, spotModel.PhotoTableName))
		if err != nil {
			log.Error().Err(err).Str("spot_id", spotID).Msg("failed to count spot photos")

			return fmt.Errorf("failed to count spot photos: %w", err)
		}

		result := model.ScoreSpot(spot.Submission(photos))

		if err = s.spotRepo.UpdateTx(ctx, tx, shared.WithModified(map[string]any{spotModel.FieldStatus: result.Status}, actor), filter); err != nil {
			log.Error().Err(err).Str("spot_id", spotID).Msg("failed to update spot status")

			return fmt.Errorf("failed to update spot status: %w", err)
		}

		if err = s.repo.InsertTx(ctx, tx, model.NewAutoLog(model.EntitySpot, spot.ID, spot.Status, result, timezone.NowUTC())); err != nil {
			log.Error().Err(err).Str("spot_id", spotID).Msg("failed to append moderation log")

			return fmt.Errorf("failed to append moderation log: %w", err)
		}

		res.SpotID = spot.ID
		res.StatusBefore = spot.Status
		res.Result = result

		return nil
	})
	if err != nil {
		return res, err
	}

	s.invalidateSpot(ctx, spotID)

	return res, nil
}

func (s *serviceImpl) History(ctx context.Context, entity model.EntityType, id string, req gDto.QueryParams) (res dto.HistoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".History")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = s.authorizeHistory(ctx, entity, id); err != nil {
		return res, err
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldEntityType, Value: entity, Operator: gDto.FilterOperatorEq, Table: model.TableName},
			gDto.Filter{Field: model.FieldEntityID, Value: id, Operator: gDto.FilterOperatorEq, Table: model.TableName},
		},
	}

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Str("entity_id", id).Msg("failed to count moderation logs")

		return res, fmt.Errorf("failed to count moderation logs: %w", err)
	}

	// The log reads oldest first unless the caller asked otherwise.
	if req.SortBy == constant.Empty {
		req.SortBy, req.SortDir = model.FieldCreatedAt, gDto.SortDirAsc
	}

	logs, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Str("entity_id", id).Msg("failed to get moderation logs")

		return res, fmt.Errorf("failed to get moderation logs: %w", err)
	}

	res.FromModels(logs, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) authorizeHistory(ctx context.Context, entity model.EntityType, id string) error {
	actor, role := shared.Principal(ctx)

	var owner string

	switch entity {
	case model.EntitySpot:
		spot, err := s.spotRepo.Get(ctx, shared.FilterByID(id, spotModel.FieldID, spotModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("spot_id", id).Msg("failed to get spot")

			return fmt.Errorf("failed to get spot: %w", err)
		}

		if spot.ID == constant.Empty {
			return failure.NotFound("spot not found")
		}

		owner = spot.OwnerID
	case model.EntityVerification:
		verification, err := s.verificationRepo.Get(ctx, shared.FilterByID(id, verificationModel.FieldID, verificationModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("verification_id", id).Msg("failed to get verification")

			return fmt.Errorf("failed to get verification: %w", err)
		}

		if verification.ID == constant.Empty {
			return failure.NotFound("verification not found")
		}

		owner = verification.UserID
	default:
		return failure.BadRequestFromString(msgUnknownEntity)
	}

	if role != constant.RoleAdmin && actor != owner {
		return failure.Forbidden(msgHistoryDenied)
	}

	return nil
}

func (s *serviceImpl) invalidateSpot(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(spotModel.CacheGetSpot, id)); err != nil && !errors.Is(err, cache.Nil) {
			log.Error().Err(err).Str("spot_id", id).Msg("failed to delete spot from cache")
		}

		shared.InvalidateCaches(c, s.cache, spotModel.CacheGetAllSpot)
		shared.InvalidateCaches(c, s.cache, spotModel.CacheCountSpot)
	}()
}
