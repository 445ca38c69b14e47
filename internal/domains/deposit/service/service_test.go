package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"parkspot/infras/otel/mocks"
	bookingMocks "parkspot/internal/domains/booking/mocks"
	bookingModel "parkspot/internal/domains/booking/model"
	depositMocks "parkspot/internal/domains/deposit/mocks"
	"parkspot/internal/domains/deposit/model"
	"parkspot/internal/domains/deposit/model/dto"
	"parkspot/internal/domains/deposit/service"
	spotMocks "parkspot/internal/domains/spot/mocks"
	spotModel "parkspot/internal/domains/spot/model"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"
	gRepo "parkspot/shared/repository"
	repoMocks "parkspot/shared/repository/mocks"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	ownerID  = "owner-1"
	renterID = "renter-1"
)

// store plays the database: one booking row and its ledger.
type store struct {
	booking bookingModel.Booking
	ledger  model.Ledger
}

func (s *store) apply(fields map[string]any) {
	for key, value := range fields {
		switch key {
		case bookingModel.FieldDepositAmount:
			s.booking.DepositAmount = value.(int64)
		case bookingModel.FieldDepositStatus:
			s.booking.DepositStatus = value.(model.Status)
		case bookingModel.FieldPenaltyAmount:
			s.booking.PenaltyAmount = value.(int64)
		}
	}
}

func newService(t *testing.T, st *store) service.Deposit {
	t.Helper()

	ctrl := gomock.NewController(t)

	transactor := repoMocks.NewMockTransactor(ctrl)
	ledgerRepo := depositMocks.NewMockTransaction(ctrl)
	bookingRepo := bookingMocks.NewMockBooking(ctrl)
	spotRepo := spotMocks.NewMockSpot(ctrl)

	// Entries are staged and only become visible when the transaction commits.
	var staged model.Ledger

	transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn gRepo.TxFunc) error {
			snapshot := st.booking
			staged = nil

			if err := fn(ctx, nil); err != nil {
				st.booking = snapshot

				return err
			}

			st.ledger = append(st.ledger, staged...)

			return nil
		}).AnyTimes()

	bookingRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *sqlx.Tx, gDto.FilterGroup) (bookingModel.Booking, error) {
			return st.booking, nil
		}).AnyTimes()
	bookingRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, gDto.FilterGroup, ...string) (bookingModel.Booking, error) {
			return st.booking, nil
		}).AnyTimes()
	bookingRepo.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
			st.apply(fields)

			return nil
		}).AnyTimes()

	spotRepo.EXPECT().Get(gomock.Any(), gomock.Any()).
		Return(spotModel.Spot{ID: "spot-1", OwnerID: ownerID}, nil).AnyTimes()

	ledgerRepo.EXPECT().GetAllTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, *sqlx.Tx, gDto.QueryParams, gDto.FilterGroup) ([]model.Transaction, error) {
			return append(model.Ledger{}, st.ledger...), nil
		}).AnyTimes()
	ledgerRepo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, gDto.QueryParams, gDto.FilterGroup, ...string) ([]model.Transaction, error) {
			return st.ledger, nil
		}).AnyTimes()
	ledgerRepo.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *sqlx.Tx, tx model.Transaction) error {
			staged = append(staged, tx)

			return nil
		}).AnyTimes()

	return service.New(transactor, ledgerRepo, bookingRepo, spotRepo, mocks.NewOtel())
}

func asOwner() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, ownerID)

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleOwner)
}

func newStore(status model.Status, amount int64) *store {
	return &store{booking: bookingModel.Booking{
		ID:            "booking-1",
		SpotID:        "spot-1",
		RenterID:      renterID,
		Status:        bookingModel.StatusApproved,
		DepositAmount: amount,
		DepositStatus: status,
	}}
}

func ptr[T any](v T) *T { return &v }

func assertReconciles(t *testing.T, ledger model.Ledger) {
	t.Helper()

	s := ledger.Summary()
	assert.LessOrEqual(t, s.Released+s.Forfeited, s.Held, "release plus forfeit must never exceed holds")
}

func TestDepositService_Hold(t *testing.T) {
	tests := []struct {
		name       string
		req        dto.HoldRequest
		wantStatus model.Status
		wantLedger int
	}{
		{name: "holds the booking deposit", req: dto.HoldRequest{}, wantStatus: model.StatusHeld, wantLedger: 1},
		{name: "holds an explicit amount", req: dto.HoldRequest{Amount: ptr(int64(2500))}, wantStatus: model.StatusHeld, wantLedger: 1},
		{name: "zero amount is not required", req: dto.HoldRequest{Amount: ptr(int64(0))}, wantStatus: model.StatusNotRequired, wantLedger: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := newStore(model.StatusPending, 1000)
			svc := newService(t, st)

			res, err := svc.Hold(asOwner(), "booking-1", tt.req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, res.DepositStatus)
			assert.NotNil(t, res.DisputeOpenedAt)
			assert.Len(t, st.ledger, tt.wantLedger)
		})
	}
}

func TestDepositService_ForfeitThenReleaseFails(t *testing.T) {
	st := newStore(model.StatusPending, 1000)
	svc := newService(t, st)
	ctx := asOwner()

	_, err := svc.Hold(ctx, "booking-1", dto.HoldRequest{})
	require.NoError(t, err)

	res, err := svc.Forfeit(ctx, "booking-1", dto.ForfeitRequest{PenaltyAmount: ptr(int64(400)), Reason: ptr("scratched gate")})
	require.NoError(t, err)
	assert.Equal(t, model.StatusForfeited, res.DepositStatus)
	assert.Equal(t, int64(400), res.PenaltyAmount)

	_, err = svc.Release(ctx, "booking-1", dto.ReleaseRequest{})
	assert.EqualError(t, err, model.MsgNotHeld)
	assert.Equal(t, http.StatusConflict, failure.GetCode(err))

	_, err = svc.Forfeit(ctx, "booking-1", dto.ForfeitRequest{})
	assert.EqualError(t, err, model.MsgCannotForfeit)

	_, err = svc.PartialRelease(ctx, "booking-1", dto.PartialReleaseRequest{Amount: 10})
	assert.EqualError(t, err, model.MsgNotHeld)

	assert.Equal(t, model.Summary{Held: 1000, Forfeited: 400, Balance: 600}, st.ledger.Summary())
	require.Len(t, st.ledger, 2)

	sorted := st.ledger.Sorted()
	assert.Equal(t, model.TransactionHold, sorted[0].Type)
	assert.Equal(t, model.TransactionForfeit, sorted[1].Type)
	assertReconciles(t, st.ledger)
}

func TestDepositService_ReleaseThenForfeitFails(t *testing.T) {
	st := newStore(model.StatusPending, 1000)
	svc := newService(t, st)
	ctx := asOwner()

	_, err := svc.Hold(ctx, "booking-1", dto.HoldRequest{})
	require.NoError(t, err)

	res, err := svc.Release(ctx, "booking-1", dto.ReleaseRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusReleased, res.DepositStatus)
	assert.Zero(t, res.PenaltyAmount)

	_, err = svc.Forfeit(ctx, "booking-1", dto.ForfeitRequest{})
	assert.EqualError(t, err, model.MsgCannotForfeit)

	// A new hold re-opens the lifecycle.
	_, err = svc.Hold(ctx, "booking-1", dto.HoldRequest{Amount: ptr(int64(300))})
	require.NoError(t, err)

	_, err = svc.Forfeit(ctx, "booking-1", dto.ForfeitRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.Summary{Held: 1300, Released: 1000, Forfeited: 300}, st.ledger.Summary())
	assertReconciles(t, st.ledger)
}

func TestDepositService_PartialRelease(t *testing.T) {
	st := newStore(model.StatusPending, 1000)
	svc := newService(t, st)
	ctx := asOwner()

	_, err := svc.PartialRelease(ctx, "booking-1", dto.PartialReleaseRequest{Amount: 100})
	assert.EqualError(t, err, model.MsgNotHeld)

	_, err = svc.Hold(ctx, "booking-1", dto.HoldRequest{})
	require.NoError(t, err)

	for _, amount := range []int64{1000, 5000} {
		_, err = svc.PartialRelease(ctx, "booking-1", dto.PartialReleaseRequest{Amount: amount})
		assert.EqualError(t, err, model.MsgInvalidPartial)
		assert.Equal(t, http.StatusBadRequest, failure.GetCode(err))
	}

	res, err := svc.PartialRelease(ctx, "booking-1", dto.PartialReleaseRequest{Amount: 300})
	require.NoError(t, err)
	assert.Equal(t, model.StatusPartiallyReleased, res.DepositStatus)

	_, err = svc.PartialRelease(ctx, "booking-1", dto.PartialReleaseRequest{Amount: 200})
	require.NoError(t, err)

	res, err = svc.Forfeit(ctx, "booking-1", dto.ForfeitRequest{PenaltyAmount: ptr(int64(900))})
	require.NoError(t, err)
	assert.Equal(t, int64(500), res.PenaltyAmount, "penalty is clamped to the open balance")

	assert.Equal(t, model.Summary{Held: 1000, Released: 500, Forfeited: 500}, st.ledger.Summary())
	assertReconciles(t, st.ledger)
}

func TestDepositService_ForfeitFromPending(t *testing.T) {
	st := newStore(model.StatusPending, 800)
	svc := newService(t, st)

	res, err := svc.Forfeit(asOwner(), "booking-1", dto.ForfeitRequest{})
	require.NoError(t, err)
	assert.Equal(t, model.StatusForfeited, res.DepositStatus)
	assert.Equal(t, int64(800), res.PenaltyAmount)

	require.Len(t, st.ledger, 2)
	assert.Equal(t, model.TransactionHold, st.ledger.Sorted()[0].Type)
	assertReconciles(t, st.ledger)
}

func TestDepositService_Guards(t *testing.T) {
	tests := []struct {
		name     string
		status   model.Status
		ctx      context.Context
		call     func(svc service.Deposit, ctx context.Context) error
		wantCode int
		wantMsg  string
	}{
		{
			name:   "release of a deposit that was never held",
			status: model.StatusNotRequired,
			ctx:    asOwner(),
			call: func(svc service.Deposit, ctx context.Context) error {
				_, err := svc.Release(ctx, "booking-1", dto.ReleaseRequest{})

				return err
			},
			wantCode: http.StatusConflict,
			wantMsg:  model.MsgNotHeld,
		},
		{
			name:   "forfeit of a deposit that is not required",
			status: model.StatusNotRequired,
			ctx:    asOwner(),
			call: func(svc service.Deposit, ctx context.Context) error {
				_, err := svc.Forfeit(ctx, "booking-1", dto.ForfeitRequest{})

				return err
			},
			wantCode: http.StatusConflict,
			wantMsg:  model.MsgCannotForfeit,
		},
		{
			name:   "renter cannot hold",
			status: model.StatusPending,
			ctx:    context.WithValue(context.Background(), constant.ContextKeyUserID, renterID),
			call: func(svc service.Deposit, ctx context.Context) error {
				_, err := svc.Hold(ctx, "booking-1", dto.HoldRequest{})

				return err
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:   "stranger cannot read the history",
			status: model.StatusHeld,
			ctx:    context.WithValue(context.Background(), constant.ContextKeyUserID, "stranger"),
			call: func(svc service.Deposit, ctx context.Context) error {
				_, err := svc.History(ctx, "booking-1")

				return err
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newService(t, newStore(tt.status, 1000))

			err := tt.call(svc, tt.ctx)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, failure.GetCode(err))

			if tt.wantMsg != "" {
				assert.EqualError(t, err, tt.wantMsg)
			}
		})
	}
}

func TestDepositService_History(t *testing.T) {
	st := newStore(model.StatusPending, 1000)
	svc := newService(t, st)

	_, err := svc.Hold(asOwner(), "booking-1", dto.HoldRequest{})
	require.NoError(t, err)

	renterCtx := context.WithValue(context.Background(), constant.ContextKeyUserID, renterID)

	res, err := svc.History(renterCtx, "booking-1")
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 1)
	assert.Equal(t, int64(1000), res.Summary.Balance)
	assert.Equal(t, model.StatusHeld, res.Status)
}

func TestDepositService_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)

	transactor := repoMocks.NewMockTransactor(ctrl)
	bookingRepo := bookingMocks.NewMockBooking(ctrl)
	svc := service.New(transactor, depositMocks.NewMockTransaction(ctrl), bookingRepo, spotMocks.NewMockSpot(ctrl), mocks.NewOtel())

	transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn gRepo.TxFunc) error { return fn(ctx, nil) }).Times(2)

	bookingRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, nil)
	bookingRepo.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(bookingModel.Booking{}, errors.New("db down"))

	_, err := svc.Release(asOwner(), "missing", dto.ReleaseRequest{})
	assert.Equal(t, http.StatusNotFound, failure.GetCode(err))

	_, err = svc.Release(asOwner(), "missing", dto.ReleaseRequest{})
	assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
}
