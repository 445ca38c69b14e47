package service

import (
	"context"
	"fmt"

	"parkspot/infras/otel"
	moderationModel "parkspot/internal/domains/moderation/model"
	moderationRepo "parkspot/internal/domains/moderation/repository"
	userModel "parkspot/internal/domains/user/model"
	userRepo "parkspot/internal/domains/user/repository"
	"parkspot/internal/domains/verification/model"
	"parkspot/internal/domains/verification/model/dto"
	"parkspot/internal/domains/verification/repository"
	"parkspot/shared"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"
	gRepo "parkspot/shared/repository"
	"parkspot/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type Verification interface {
	Submit(ctx context.Context, req dto.SubmitVerificationRequest) (dto.SubmitVerificationResponse, error)
	Mine(ctx context.Context) (dto.GetVerificationsResponse, error)
}

type serviceImpl struct {
	transactor gRepo.Transactor
	repo       repository.Verification
	logRepo    moderationRepo.Log
	userRepo   userRepo.User
	otel       otel.Otel
}

func New(transactor gRepo.Transactor, repo repository.Verification, logRepo moderationRepo.Log, userRepo userRepo.User, otel otel.Otel) Verification {
	return &serviceImpl{
		transactor: transactor,
		repo:       repo,
		logRepo:    logRepo,
		userRepo:   userRepo,
		otel:       otel,
	}
}

// Submit persists the submission, scores it and records the decision in one transaction.
// An approved submission marks the account as verified.
func (s *serviceImpl) Submit(ctx context.Context, req dto.SubmitVerificationRequest) (res dto.SubmitVerificationResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Submit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	user, err := s.userRepo.Get(ctx, shared.FilterByID(actor, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("user_id", actor).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if user.ID == constant.Empty {
		return res, failure.Unauthorized("user not found")
	}

	verification := req.ToModel(actor)
	before := verification.Status
	result := moderationModel.ScoreVerification(verification.Submission(user.Name()))

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		if err := s.repo.InsertTx(ctx, tx, verification); err != nil {
			log.Error().Err(err).Str("user_id", actor).Msg("failed to create verification")

			return fmt.Errorf("failed to create verification: %w", err)
		}

		filter := shared.FilterByID(verification.ID, model.FieldID, model.TableName)
		fields := shared.WithModified(map[string]any{model.FieldStatus: result.Status}, actor)

		if err := s.repo.UpdateTx(ctx, tx, fields, filter); err != nil {
			log.Error().Err(err).Str("verification_id", verification.ID).Msg("failed to store verification status")

			return fmt.Errorf("failed to store verification status: %w", err)
		}

		entry := moderationModel.NewAutoLog(moderationModel.EntityVerification, verification.ID, before, result, timezone.NowUTC())
		if err := s.logRepo.InsertTx(ctx, tx, entry); err != nil {
			log.Error().Err(err).Str("verification_id", verification.ID).Msg("failed to append moderation log")

			return fmt.Errorf("failed to append moderation log: %w", err)
		}

		if !result.Status.Approved() {
			return nil
		}

		verified := shared.WithModified(map[string]any{userModel.FieldIsVerified: true}, actor)
		if err := s.userRepo.UpdateTx(ctx, tx, verified, shared.FilterByID(actor, userModel.FieldID, userModel.TableName)); err != nil {
			log.Error().Err(err).Str("user_id", actor).Msg("failed to mark user verified")

			return fmt.Errorf("failed to mark user verified: %w", err)
		}

		return nil
	})
	if err != nil {
		return res, err
	}

	verification.Status = result.Status

	res.Verification.FromModel(verification)
	res.Moderation = result

	return res, nil
}

func (s *serviceImpl) Mine(ctx context.Context) (res dto.GetVerificationsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Mine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	params := gDto.QueryParams{SortBy: constant.FieldCreatedAt, SortDir: gDto.SortDirDesc}

	models, err := s.repo.GetAll(ctx, params, shared.FilterByField(model.FieldUserID, actor, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("user_id", actor).Msg("failed to get verifications")

		return res, fmt.Errorf("failed to get verifications: %w", err)
	}

	res.FromModels(models)

	return res, nil
}
