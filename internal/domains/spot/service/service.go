package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"parkspot/config"
	"parkspot/infras/otel"
	"parkspot/infras/s3"
	moderationModel "parkspot/internal/domains/moderation/model"
	moderationRepo "parkspot/internal/domains/moderation/repository"
	"parkspot/internal/domains/spot/model"
	"parkspot/internal/domains/spot/model/dto"
	"parkspot/internal/domains/spot/repository"
	"parkspot/shared"
	"parkspot/shared/base64"
	"parkspot/shared/cache"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"
	gRepo "parkspot/shared/repository"
	"parkspot/shared/timezone"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	msgSpotAbsent   = "spot not found"
	msgNotSpotOwner = "only the spot owner can do this"
	msgEmptyUpdate  = "nothing to update"
)

type Spot interface {
	Create(ctx context.Context, req dto.CreateSpotRequest) (dto.CreateSpotResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetSpotsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.SpotResponse, error)
	Update(ctx context.Context, req dto.UpdateSpotRequest, id string) error
	UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest, id string) (dto.PhotoResponse, error)
}

type serviceImpl struct {
	transactor gRepo.Transactor
	repo       repository.Spot
	photoRepo  repository.Photo
	logRepo    moderationRepo.Log
	cfg        *config.Config
	cache      cache.RedisCache
	otel       otel.Otel
	s3         s3.S3
}

func New(
	transactor gRepo.Transactor,
	repo repository.Spot,
	photoRepo repository.Photo,
	logRepo moderationRepo.Log,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	s3 s3.S3,
) Spot {
	return &serviceImpl{
		transactor: transactor,
		repo:       repo,
		photoRepo:  photoRepo,
		logRepo:    logRepo,
		cfg:        cfg,
		cache:      cache,
		otel:       otel,
		s3:         s3,
	}
}

// Create stores the listing with its photos, scores it and records the first moderation
// decision in one transaction.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateSpotRequest) (res dto.CreateSpotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, _ := shared.Principal(ctx)

	spot := req.ToModel(owner)
	photos := req.ToPhotos(spot.ID, owner)
	before := spot.Status
	result := moderationModel.ScoreSpot(spot.Submission(len(photos)))

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, spot); err != nil {
			log.Error().Err(err).Str("owner_id", owner).Msg("failed to create spot")

			return fmt.Errorf("failed to create spot: %w", err)
		}

		for _, photo := range photos {
			if err := s.photoRepo.InsertTx(ctx, tx, photo); err != nil {
				log.Error().Err(err).Str("spot_id", spot.ID).Msg("failed to save spot photo")

				return fmt.Errorf("failed to save spot photo: %w", err)
			}
		}

		filter := shared.FilterByID(spot.ID, model.FieldID, model.TableName)
		fields := shared.WithModified(map[string]any{model.FieldStatus: result.Status}, owner)

		if err := s.repo.UpdateTx(ctx, tx, fields, filter); err != nil {
			log.Error().Err(err).Str("spot_id", spot.ID).Msg("failed to store spot status")

			return fmt.Errorf("failed to store spot status: %w", err)
		}

		entry := moderationModel.NewAutoLog(moderationModel.EntitySpot, spot.ID, before, result, timezone.NowUTC())
		if err := s.logRepo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Str("spot_id", spot.ID).Msg("failed to append moderation log")

			return fmt.Errorf("failed to append moderation log: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	spot.Status = result.Status

	res.Spot.FromModel(spot)
	res.Spot.WithPhotos(photos)
	res.Moderation = result

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, model.CacheGetAllSpot)
		shared.InvalidateCaches(c, s.cache, model.CacheCountSpot)
	}()

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetSpotsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(model.CacheGetAllSpot, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for spots")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		return res, err
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get spots")

		return res, fmt.Errorf("failed to get spots: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save spots to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (total int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Count")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKeyWithQuery(model.CacheCountSpot, req, filter)

	if err = s.cache.Get(ctx, cacheKey, &total); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for spot count")

		return total, nil
	}

	total, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count spots")

		return total, fmt.Errorf("failed to count spots: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, total, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save spot count to cache")
		}
	}()

	return total, nil
}

// Get returns the spot with its photo urls in upload order.
func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.SpotResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	cacheKey := shared.BuildCacheKey(model.CacheGetSpot, id)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for spot")

		return res, nil
	}

	spot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to get spot")

		return res, fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return res, failure.NotFound(msgSpotAbsent)
	}

	params := gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirAsc}

	photos, err := s.photoRepo.GetAll(ctx, params, shared.FilterByField(model.PhotoFieldSpotID, id, model.PhotoTableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to get spot photos")

		return res, fmt.Errorf("failed to get spot photos: %w", err)
	}

	res.FromModel(spot)
	res.WithPhotos(photos)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save spot to cache")
		}
	}()

	return res, nil
}

// Update applies owner edits. Edits to price, description or rules run the scorer again,
// replacing any earlier decision; the owner never sets the status directly.
func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateSpotRequest, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if req.IsEmpty() {
		return failure.BadRequestFromString(msgEmptyUpdate)
	}

	actor, _ := shared.Principal(ctx)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	spot, err := s.owned(ctx, id, actor)
	if err != nil {
		return err
	}

	fields := shared.TransformFields(req, actor)

	if !req.Rescores() {
		if err = s.repo.Update(ctx, fields, filter); err != nil {
			log.Error().Err(err).Str("spot_id", id).Msg("failed to update spot")

			return fmt.Errorf("failed to update spot: %w", err)
		}

		s.invalidate(ctx, id)

		return nil
	}

	photos, err := s.photoRepo.Count(ctx, shared.FilterByField(model.PhotoFieldSpotID, id, model.PhotoTableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to count spot photos")

		return fmt.Errorf("failed to count spot photos: %w", err)
	}

	result := moderationModel.ScoreSpot(req.Apply(spot).Submission(photos))
	fields[model.FieldStatus] = result.Status

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.UpdateTx(ctx, tx, fields, filter); err != nil {
			log.Error().Err(err).Str("spot_id", id).Msg("failed to update spot")

			return fmt.Errorf("failed to update spot: %w", err)
		}

		entry := moderationModel.NewAutoLog(moderationModel.EntitySpot, id, spot.Status, result, timezone.NowUTC())
		if err := s.logRepo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Str("spot_id", id).Msg("failed to append moderation log")

			return fmt.Errorf("failed to append moderation log: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, id)

	return nil
}

// UploadPhoto stores a data URI image in the object store and attaches it to the spot.
func (s *serviceImpl) UploadPhoto(ctx context.Context, req dto.UploadPhotoRequest, id string) (res dto.PhotoResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".UploadPhoto")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	if _, err = s.owned(ctx, id, actor); err != nil {
		return res, err
	}

	data, contentType, err := base64.Decode(req.Image)
	if err != nil {
		return res, failure.BadRequest(err)
	}

	bucketName := s.cfg.External.S3.BucketName
	directory := path.Join(model.TableName, id)
	fileName := uuid.NewString() + base64.Extension(contentType)

	url, err := s.s3.Upload(ctx, bucketName, directory, fileName, contentType, data)
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to upload spot photo")

		return res, fmt.Errorf("failed to upload spot photo: %w", err)
	}

	photo := dto.NewPhoto(id, url, actor)
	if err = s.photoRepo.Insert(ctx, photo); err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to save spot photo")

		if delErr := s.s3.Delete(ctx, bucketName, directory, fileName); delErr != nil {
			log.Error().Err(delErr).Str("file_name", fileName).Msg("failed to delete orphaned spot photo")
		}

		return res, fmt.Errorf("failed to save spot photo: %w", err)
	}

	res.FromModel(photo)

	s.invalidate(ctx, id)

	return res, nil
}

func (s *serviceImpl) owned(ctx context.Context, id, actor string) (model.Spot, error) {
	spot, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to get spot")

		return spot, fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return spot, failure.NotFound(msgSpotAbsent)
	}

	if spot.OwnerID != actor {
		return spot, failure.Forbidden(msgNotSpotOwner)
	}

	return spot, nil
}

func (s *serviceImpl) invalidate(ctx context.Context, id string) {
	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(model.CacheGetSpot, id)); err != nil && !errors.Is(err, cache.Nil) {
			log.Error().Err(err).Str("spot_id", id).Msg("failed to delete spot from cache")
		}

		shared.InvalidateCaches(c, s.cache, model.CacheGetAllSpot)
		shared.InvalidateCaches(c, s.cache, model.CacheCountSpot)
	}()
}
