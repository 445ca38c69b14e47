package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"parkspot/infras/otel"
	bookingModel "parkspot/internal/domains/booking/model"
	bookingRepo "parkspot/internal/domains/booking/repository"
	"parkspot/internal/domains/deposit/model"
	"parkspot/internal/domains/deposit/model/dto"
	"parkspot/internal/domains/deposit/repository"
	spotModel "parkspot/internal/domains/spot/model"
	spotRepo "parkspot/internal/domains/spot/repository"
	"parkspot/shared"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"
	gRepo "parkspot/shared/repository"
	"parkspot/shared/timezone"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

const (
	msgOwnerOnly     = "only the spot owner can manage the deposit"
	msgHistoryDenied = "only the renter, the spot owner or an admin can view the deposit history"
	descImplicitHold = "implicit hold before forfeit"
)

// Deposit is the deposit lifecycle manager. Every transition runs in one transaction
// that locks the booking row, checks the guard, updates the booking and appends to the ledger.
type Deposit interface {
	Hold(ctx context.Context, bookingID string, req dto.HoldRequest) (dto.DepositResponse, error)
	PartialRelease(ctx context.Context, bookingID string, req dto.PartialReleaseRequest) (dto.DepositResponse, error)
	Release(ctx context.Context, bookingID string, req dto.ReleaseRequest) (dto.DepositResponse, error)
	Forfeit(ctx context.Context, bookingID string, req dto.ForfeitRequest) (dto.DepositResponse, error)
	History(ctx context.Context, bookingID string) (dto.HistoryResponse, error)
}

type serviceImpl struct {
	transactor  gRepo.Transactor
	repo        repository.Transaction
	bookingRepo bookingRepo.Booking
	spotRepo    spotRepo.Spot
	otel        otel.Otel
}

func New(transactor gRepo.Transactor, repo repository.Transaction, bookingRepo bookingRepo.Booking, spotRepo spotRepo.Spot, otel otel.Otel) Deposit {
	return &serviceImpl{
		transactor:  transactor,
		repo:        repo,
		bookingRepo: bookingRepo,
		spotRepo:    spotRepo,
		otel:        otel,
	}
}

// transition is one guarded read-modify-write on a locked booking. apply returns the
// booking columns to update and the ledger entries to append.
type transition func(b bookingModel.Booking, ledger model.Ledger, actor string) (map[string]any, []model.Transaction, error)

func (s *serviceImpl) run(ctx context.Context, bookingID string, apply transition) (res dto.DepositResponse, err error) {
	actor, _ := shared.Principal(ctx)

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		filter := shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName)

		booking, err := s.bookingRepo.GetForUpdateTx(ctx, tx, filter)
		if err != nil {
			log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to lock booking")

			return fmt.Errorf("failed to lock booking: %w", err)
		}

		if booking.ID == constant.Empty {
			return failure.NotFound("booking not found")
		}

		if err = s.authorizeOwner(ctx, booking, actor); err != nil {
			return err
		}

		ledger, err := s.repo.GetAllTx(ctx, tx, gDto.QueryParams{}, shared.FilterByField(model.FieldBookingID, bookingID, model.TableName))
		if err != nil {
			log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to load deposit ledger")

			return fmt.Errorf("failed to load deposit ledger: %w", err)
		}

		fields, entries, err := apply(booking, ledger, actor)
		if err != nil {
			return err
		}

		if err = s.bookingRepo.UpdateTx(ctx, tx, shared.WithModified(fields, actor), filter); err != nil {
			log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to update deposit")

			return fmt.Errorf("failed to update deposit: %w", err)
		}

		for _, entry := range entries {
			if err = s.repo.InsertTx(ctx, tx, entry); err != nil {
				log.Error().Err(err).Str("booking_id", bookingID).Str("type", string(entry.Type)).Msg("failed to append ledger entry")

				return fmt.Errorf("failed to append ledger entry: %w", err)
			}
		}

		res.FromBooking(applyFields(booking, fields))

		return nil
	})

	return res, err
}

func (s *serviceImpl) authorizeOwner(ctx context.Context, booking bookingModel.Booking, actor string) error {
	spot, err := s.spotRepo.Get(ctx, shared.FilterByID(booking.SpotID, spotModel.FieldID, spotModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", booking.SpotID).Msg("failed to get spot")

		return fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return failure.NotFound("spot not found")
	}

	if spot.OwnerID != actor {
		return failure.Forbidden(msgOwnerOnly)
	}

	return nil
}

func (s *serviceImpl) Hold(ctx context.Context, bookingID string, req dto.HoldRequest) (res dto.DepositResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Hold")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.run(ctx, bookingID, func(b bookingModel.Booking, _ model.Ledger, actor string) (map[string]any, []model.Transaction, error) {
		now := timezone.NowUTC()

		amount := b.DepositAmount
		if req.Amount != nil {
			amount = *req.Amount
		}

		if b.DepositStatus.Terminal() {
			log.Warn().Str("booking_id", b.ID).Str("deposit_status", string(b.DepositStatus)).Msg("re-holding a settled deposit")
		}

		fields := map[string]any{
			bookingModel.FieldDepositAmount:     amount,
			bookingModel.FieldDepositStatus:     model.StatusNotRequired,
			bookingModel.FieldDisputeOpenedAt:   now,
			bookingModel.FieldDisputeResolvedAt: nil,
		}

		if amount <= 0 {
			return fields, nil, nil
		}

		fields[bookingModel.FieldDepositStatus] = model.StatusHeld

		return fields, []model.Transaction{model.NewTransaction(b.ID, model.TransactionHold, amount, req.Reason, actor, now)}, nil
	})
}

func (s *serviceImpl) PartialRelease(ctx context.Context, bookingID string, req dto.PartialReleaseRequest) (res dto.DepositResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".PartialRelease")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.run(ctx, bookingID, func(b bookingModel.Booking, ledger model.Ledger, actor string) (map[string]any, []model.Transaction, error) {
		if !b.DepositStatus.CanRelease() {
			return nil, nil, failure.State(model.MsgNotHeld)
		}

		balance := ledger.Balance()
		if req.Amount <= 0 || req.Amount >= balance {
			return nil, nil, failure.Validation(model.MsgInvalidPartial, map[string]any{"amount": req.Amount, "balance": balance})
		}

		fields := map[string]any{
			bookingModel.FieldDepositStatus: model.StatusPartiallyReleased,
		}

		return fields, []model.Transaction{
			model.NewTransaction(b.ID, model.TransactionRelease, req.Amount, req.Reason, actor, timezone.NowUTC()),
		}, nil
	})
}

func (s *serviceImpl) Release(ctx context.Context, bookingID string, req dto.ReleaseRequest) (res dto.DepositResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Release")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.run(ctx, bookingID, func(b bookingModel.Booking, ledger model.Ledger, actor string) (map[string]any, []model.Transaction, error) {
		if !b.DepositStatus.CanRelease() {
			return nil, nil, failure.State(model.MsgNotHeld)
		}

		now := timezone.NowUTC()

		fields := map[string]any{
			bookingModel.FieldDepositStatus:     model.StatusReleased,
			bookingModel.FieldPenaltyAmount:     int64(0),
			bookingModel.FieldPenaltyReason:     nil,
			bookingModel.FieldDisputeResolvedAt: now,
		}

		return fields, []model.Transaction{
			model.NewTransaction(b.ID, model.TransactionRelease, ledger.Balance(), req.Reason, actor, now),
		}, nil
	})
}

func (s *serviceImpl) Forfeit(ctx context.Context, bookingID string, req dto.ForfeitRequest) (res dto.DepositResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Forfeit")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.run(ctx, bookingID, func(b bookingModel.Booking, ledger model.Ledger, actor string) (map[string]any, []model.Transaction, error) {
		if !b.DepositStatus.CanForfeit() {
			return nil, nil, failure.State(model.MsgCannotForfeit)
		}

		now := timezone.NowUTC()

		var entries []model.Transaction

		if b.DepositStatus == model.StatusPending {
			log.Warn().Str("booking_id", b.ID).Msg("forfeiting a deposit that was never held")

			if b.DepositAmount > 0 {
				desc := descImplicitHold
				hold := model.NewTransaction(b.ID, model.TransactionHold, b.DepositAmount, &desc, actor, now)
				entries = append(entries, hold)
				ledger = append(ledger, hold)
			}
		}

		balance := ledger.Balance()
		penalty := model.ClampPenalty(req.PenaltyAmount, b.DepositAmount, balance)

		// A forfeit settles the deposit with a single entry; an unforfeited remainder stays as balance.
		entries = append(entries, model.NewTransaction(b.ID, model.TransactionForfeit, penalty, req.Reason, actor, now))

		fields := map[string]any{
			bookingModel.FieldDepositStatus:     model.StatusForfeited,
			bookingModel.FieldPenaltyAmount:     penalty,
			bookingModel.FieldPenaltyReason:     req.Reason,
			bookingModel.FieldDisputeResolvedAt: now,
		}

		return fields, entries, nil
	})
}

func (s *serviceImpl) History(ctx context.Context, bookingID string) (res dto.HistoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".History")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.bookingRepo.Get(ctx, shared.FilterByID(bookingID, bookingModel.FieldID, bookingModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found")
	}

	actor, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && actor != booking.RenterID {
		if err = s.authorizeOwner(ctx, booking, actor); err != nil {
			if failure.GetCode(err) == http.StatusForbidden {
				return res, failure.Forbidden(msgHistoryDenied)
			}

			return res, err
		}
	}

	ledger, err := s.repo.GetAll(ctx, gDto.QueryParams{}, shared.FilterByField(model.FieldBookingID, bookingID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", bookingID).Msg("failed to load deposit ledger")

		return res, fmt.Errorf("failed to load deposit ledger: %w", err)
	}

	res.FromLedger(booking, ledger)

	return res, nil
}

// applyFields mirrors a committed update onto the in-memory booking for the response.
func applyFields(b bookingModel.Booking, fields map[string]any) bookingModel.Booking {
	for key, value := range fields {
		switch key {
		case bookingModel.FieldDepositAmount:
			b.DepositAmount, _ = value.(int64)
		case bookingModel.FieldDepositStatus:
			b.DepositStatus, _ = value.(model.Status)
		case bookingModel.FieldPenaltyAmount:
			b.PenaltyAmount, _ = value.(int64)
		case bookingModel.FieldPenaltyReason:
			b.PenaltyReason, _ = value.(*string)
		case bookingModel.FieldDisputeOpenedAt:
			if t, ok := value.(time.Time); ok {
				b.DisputeOpenedAt = &t
			}
		case bookingModel.FieldDisputeResolvedAt:
			if t, ok := value.(time.Time); ok {
				b.DisputeResolvedAt = &t
			} else {
				b.DisputeResolvedAt = nil
			}
		}
	}

	return b
}
