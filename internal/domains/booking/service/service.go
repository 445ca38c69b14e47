package service

import (
	"context"
	"fmt"
	"maps"
	"time"

	"parkspot/config"
	"parkspot/infras/notifier"
	"parkspot/infras/otel"
	availabilityModel "parkspot/internal/domains/availability/model"
	blackoutModel "parkspot/internal/domains/blackout/model"
	blackoutRepo "parkspot/internal/domains/blackout/repository"
	"parkspot/internal/domains/booking/model"
	"parkspot/internal/domains/booking/model/dto"
	"parkspot/internal/domains/booking/repository"
	pricingModel "parkspot/internal/domains/pricing/model"
	refundModel "parkspot/internal/domains/refund/model"
	spotModel "parkspot/internal/domains/spot/model"
	spotRepo "parkspot/internal/domains/spot/repository"
	userModel "parkspot/internal/domains/user/model"
	userRepo "parkspot/internal/domains/user/repository"
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
	msgOwnerOnly     = "only the spot owner can review the booking"
	msgCancelDenied  = "only the renter or the spot owner can cancel the booking"
	msgViewDenied    = "only the renter, the spot owner or an admin can view the booking"
	msgOwnBooking    = "owners cannot book their own spot"
	msgBookingAbsent = "booking not found"
	msgSpotAbsent    = "spot not found"
)

// Booking drives the booking lifecycle: creation with availability and pricing,
// owner review and cancellation with refund.
type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	GetForOwner(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error)
	Approve(ctx context.Context, id string) (dto.BookingResponse, error)
	Decline(ctx context.Context, id string) (dto.BookingResponse, error)
	Cancel(ctx context.Context, id string) (dto.CancelBookingResponse, error)
}

type serviceImpl struct {
	transactor   gRepo.Transactor
	repo         repository.Booking
	spotRepo     spotRepo.Spot
	blackoutRepo blackoutRepo.Blackout
	userRepo     userRepo.User
	notifier     notifier.Notifier
	cfg          *config.Config
	otel         otel.Otel
}

func New(
	transactor gRepo.Transactor,
	repo repository.Booking,
	spotRepo spotRepo.Spot,
	blackoutRepo blackoutRepo.Blackout,
	userRepo userRepo.User,
	notifier notifier.Notifier,
	cfg *config.Config,
	otel otel.Otel,
) Booking {
	return &serviceImpl{
		transactor:   transactor,
		repo:         repo,
		spotRepo:     spotRepo,
		blackoutRepo: blackoutRepo,
		userRepo:     userRepo,
		notifier:     notifier,
		cfg:          cfg,
		otel:         otel,
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	renter, _ := shared.Principal(ctx)
	start, end := req.StartAt.UTC(), req.EndAt.UTC()

	if err = availabilityModel.ValidateWindow(start, end, timezone.NowUTC(), s.cfg.App.Booking.HorizonMonths); err != nil {
		return res, err
	}

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		// The spot row lock serializes concurrent check-and-insert on the same spot.
		spot, err := s.spotRepo.GetForUpdateTx(ctx, tx, shared.FilterByID(req.SpotID, spotModel.FieldID, spotModel.TableName))
		if err != nil {
			log.Error().Err(err).Str("spot_id", req.SpotID).Msg("failed to lock spot")

			return fmt.Errorf("failed to lock spot: %w", err)
		}

		if spot.ID == constant.Empty {
			return failure.NotFound(msgSpotAbsent)
		}

		if !spot.Bookable() {
			return failure.State(availabilityModel.MsgSpotNotBookable)
		}

		if spot.OwnerID == renter {
			return failure.Forbidden(msgOwnBooking)
		}

		if err = s.ensureFree(ctx, tx, spot.ID, start, end); err != nil {
			return err
		}

		quote := pricingModel.Calculate(pricingModel.Input{
			Hours:             availabilityModel.Hours(start, end),
			PricePerHour:      spot.PricePerHour,
			StartAt:           start,
			CommissionPercent: s.cfg.App.Booking.CommissionPercent,
			DemandMultiplier:  s.demand(req.DemandMultiplier),
			Deposit:           spot.Deposit(),
		})

		booking := req.ToModel(renter, quote)

		if err = s.repo.InsertTx(ctx, tx, booking); err != nil {
			log.Error().Err(err).Str("spot_id", spot.ID).Msg("failed to create booking")

			return fmt.Errorf("failed to create booking: %w", err)
		}

		res.Booking.FromModel(booking)
		res.Quote = quote

		return nil
	})

	return res, err
}

func (s *serviceImpl) ensureFree(ctx context.Context, tx *sqlx.Tx, spotID string, start, end time.Time) error {
	bookings, err := s.repo.GetAllTx(ctx, tx, gDto.QueryParams{}, model.OverlapFilter(spotID, start, end))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to check overlapping bookings")

		return fmt.Errorf("failed to check overlapping bookings: %w", err)
	}

	if len(bookings) > 0 {
		return failure.Conflict(model.MsgSlotUnavailable)
	}

	blackouts, err := s.blackoutRepo.GetAllTx(ctx, tx, gDto.QueryParams{}, blackoutModel.OverlapFilter(spotID, start, end))
	if err != nil {
		log.Error().Err(err).Str("spot_id", spotID).Msg("failed to check overlapping blackouts")

		return fmt.Errorf("failed to check overlapping blackouts: %w", err)
	}

	if len(blackouts) > 0 {
		return failure.Conflict(model.MsgSlotUnavailable)
	}

	return nil
}

func (s *serviceImpl) demand(requested *float64) float64 {
	if requested != nil {
		return *requested
	}

	return s.cfg.App.Booking.DemandMultiplier
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("booking_id", id).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound(msgBookingAbsent)
	}

	actor, role := shared.Principal(ctx)
	if role != constant.RoleAdmin && actor != booking.RenterID {
		spot, err := s.spot(ctx, booking.SpotID)
		if err != nil {
			return res, err
		}

		if spot.OwnerID != actor {
			return res, failure.Forbidden(msgViewDenied)
		}
	}

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	return res, nil
}

func (s *serviceImpl) GetMine(ctx context.Context, req gDto.QueryParams) (dto.GetBookingsResponse, error) {
	renter, _ := shared.Principal(ctx)

	return s.GetAll(ctx, req, shared.FilterByField(model.FieldRenterID, renter, model.TableName))
}

func (s *serviceImpl) GetForOwner(ctx context.Context, req gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetForOwner")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	owner, _ := shared.Principal(ctx)

	spots, err := s.spotRepo.GetAll(ctx, gDto.QueryParams{}, shared.FilterByField(spotModel.FieldOwnerID, owner, spotModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("owner_id", owner).Msg("failed to get owner spots")

		return res, fmt.Errorf("failed to get owner spots: %w", err)
	}

	if len(spots) == 0 {
		res.FromModels(nil, 0, req.Limit)

		return res, nil
	}

	ids := make([]string, len(spots))
	for i, spot := range spots {
		ids[i] = spot.ID
	}

	filter := gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{Field: model.FieldSpotID, Value: ids, Operator: gDto.FilterOperatorIn, Table: model.TableName},
		},
	}

	return s.GetAll(ctx, req, filter)
}

func (s *serviceImpl) Approve(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Approve")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.review(ctx, id, model.StatusApproved)
	if err != nil {
		return res, err
	}

	s.notify(ctx, notifier.KindBookingApproved, booking, nil, booking.RenterID)

	res.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) Decline(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Decline")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.review(ctx, id, model.StatusDeclined)
	if err != nil {
		return res, err
	}

	s.notify(ctx, notifier.KindBookingDeclined, booking, nil, booking.RenterID)

	res.FromModel(booking)

	return res, nil
}

// review applies an owner decision to a pending booking under a row lock.
func (s *serviceImpl) review(ctx context.Context, id string, next model.Status) (booking model.Booking, err error) {
	actor, _ := shared.Principal(ctx)

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		filter := shared.FilterByID(id, model.FieldID, model.TableName)

		booking, err = s.lock(ctx, tx, filter)
		if err != nil {
			return err
		}

		spot, err := s.spot(ctx, booking.SpotID)
		if err != nil {
			return err
		}

		if spot.OwnerID != actor {
			return failure.Forbidden(msgOwnerOnly)
		}

		if booking.Status != model.StatusPending {
			return failure.State(model.MsgNotPending)
		}

		if err = booking.Status.Transition(next); err != nil {
			return err
		}

		update := dto.UpdateStatusRequest{Status: next}
		if err = s.repo.UpdateTx(ctx, tx, shared.TransformFields(update, actor), filter); err != nil {
			log.Error().Err(err).Str("booking_id", id).Str("status", string(next)).Msg("failed to update booking status")

			return fmt.Errorf("failed to update booking status: %w", err)
		}

		booking.Status = next
		booking.ModifiedBy = actor

		return nil
	})

	return booking, err
}

func (s *serviceImpl) Cancel(ctx context.Context, id string) (res dto.CancelBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Cancel")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, _ := shared.Principal(ctx)

	var (
		booking model.Booking
		spot    spotModel.Spot
	)

	err = s.transactor.WithTx(ctx, func(ctx context.Context, tx *sqlx.Tx) error {
		filter := shared.FilterByID(id, model.FieldID, model.TableName)

		booking, err = s.lock(ctx, tx, filter)
		if err != nil {
			return err
		}

		spot, err = s.spot(ctx, booking.SpotID)
		if err != nil {
			return err
		}

		if actor != booking.RenterID && actor != spot.OwnerID {
			return failure.Forbidden(msgCancelDenied)
		}

		if err = booking.Status.Transition(model.StatusCancelled); err != nil {
			return err
		}

		now := timezone.NowUTC()
		policy, hours := spot.Policy(s.defaultPolicy())

		res.Refund = refundModel.Calculate(refundModel.Input{
			TotalPrice:    booking.TotalPrice,
			DepositAmount: booking.DepositAmount,
			StartAt:       booking.StartAt,
			CreatedAt:     booking.CreatedAt,
			CancelledAt:   now,
			Policy:        policy,
			DeadlineHours: hours,
		})

		reason := res.Refund.Reason
		refund := res.Refund.RefundAmount
		penalty := res.Refund.Penalty

		// Deposit columns stay untouched: the deposit is settled separately by the owner.
		fields := map[string]any{
			model.FieldStatus:       model.StatusCancelled,
			model.FieldRefundAmount:  refund,
			model.FieldPenaltyAmount: penalty,
			model.FieldPenaltyReason: reason,
			model.FieldCancelReason:  reason,
			model.FieldCancelledAt:   now,
			model.FieldCancelledBy:   actor,
		}

		if err = s.repo.UpdateTx(ctx, tx, shared.WithModified(fields, actor), filter); err != nil {
			log.Error().Err(err).Str("booking_id", id).Msg("failed to cancel booking")

			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		booking.Status = model.StatusCancelled
		booking.RefundAmount = &refund
		booking.PenaltyAmount = penalty
		booking.PenaltyReason = &reason
		booking.CancelReason = &reason
		booking.CancelledAt = &now
		booking.CancelledBy = &actor
		booking.ModifiedBy = actor

		return nil
	})
	if err != nil {
		return res, err
	}

	s.notify(ctx, notifier.KindBookingCancelled, booking, map[string]any{
		"reason":         res.Refund.Reason,
		"refund_amount":  res.Refund.RefundAmount,
		"deposit_refund": res.Refund.DepositRefund,
		"cancelled_by":   actor,
	}, booking.RenterID, spot.OwnerID)

	res.Booking.FromModel(booking)

	return res, nil
}

func (s *serviceImpl) defaultPolicy() (refundModel.Policy, int) {
	policy, ok := refundModel.ParsePolicy(s.cfg.App.Booking.DefaultPolicy)
	if !ok {
		policy = refundModel.DefaultPolicy
	}

	hours := s.cfg.App.Booking.DefaultDeadlineHours
	if hours <= 0 {
		hours = refundModel.DefaultDeadlineHours
	}

	return policy, hours
}

func (s *serviceImpl) lock(ctx context.Context, tx *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error) {
	booking, err := s.repo.GetForUpdateTx(ctx, tx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to lock booking")

		return booking, fmt.Errorf("failed to lock booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return booking, failure.NotFound(msgBookingAbsent)
	}

	return booking, nil
}

func (s *serviceImpl) spot(ctx context.Context, id string) (spotModel.Spot, error) {
	spot, err := s.spotRepo.Get(ctx, shared.FilterByID(id, spotModel.FieldID, spotModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("spot_id", id).Msg("failed to get spot")

		return spot, fmt.Errorf("failed to get spot: %w", err)
	}

	if spot.ID == constant.Empty {
		return spot, failure.NotFound(msgSpotAbsent)
	}

	return spot, nil
}

// notify runs after commit. Delivery problems are logged and never reach the caller.
func (s *serviceImpl) notify(ctx context.Context, kind notifier.Kind, booking model.Booking, extra map[string]any, userIDs ...string) {
	go func() {
		c := context.WithoutCancel(ctx)

		data := map[string]any{
			"booking_id": booking.ID,
			"spot_id":    booking.SpotID,
			"start_at":   booking.StartAt,
			"end_at":     booking.EndAt,
			"status":     booking.Status,
		}
		maps.Copy(data, extra)

		for _, userID := range userIDs {
			user, err := s.userRepo.Get(c, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
			if err != nil || user.ID == constant.Empty {
				log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("failed to resolve notification recipient")

				continue
			}

			if err = s.notifier.Notify(c, kind, user.Email, data); err != nil {
				log.Error().Err(err).Str("user_id", userID).Str("kind", string(kind)).Msg("failed to send notification")
			}
		}
	}()
}
