package service_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"parkspot/infras/otel/mocks"
	moderationMocks "parkspot/internal/domains/moderation/mocks"
	"parkspot/internal/domains/moderation/model"
	"parkspot/internal/domains/moderation/model/dto"
	"parkspot/internal/domains/moderation/service"
	spotMocks "parkspot/internal/domains/spot/mocks"
	spotModel "parkspot/internal/domains/spot/model"
	userMocks "parkspot/internal/domains/user/mocks"
	userModel "parkspot/internal/domains/user/model"
	verificationMocks "parkspot/internal/domains/verification/mocks"
	verificationModel "parkspot/internal/domains/verification/model"
	cacheMocks "parkspot/shared/cache/mocks"
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

var testTime = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	logs          *moderationMocks.MockLog
	spots         *spotMocks.MockSpot
	photos        *spotMocks.MockPhoto
	verifications *verificationMocks.MockVerification
	users         *userMocks.MockUser
	svc           service.Moderation
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	transactor := repoMocks.NewMockTransactor(ctrl)
	redis := cacheMocks.NewMockRedisCache(ctrl)

	f := &fixture{
		logs:          moderationMocks.NewMockLog(ctrl),
		spots:         spotMocks.NewMockSpot(ctrl),
		photos:        spotMocks.NewMockPhoto(ctrl),
		verifications: verificationMocks.NewMockVerification(ctrl),
		users:         userMocks.NewMockUser(ctrl),
	}

	transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn gRepo.TxFunc) error { return fn(ctx, nil) }).AnyTimes()
	redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	redis.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(transactor, f.logs, f.spots, f.photos, f.verifications, f.users, redis, mocks.NewOtel())

	return f
}

func withUser(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func TestModerationService_Override(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		entity    model.EntityType
		req       dto.OverrideRequest
		setupMock func(t *testing.T, f *fixture)
		wantCode  int
		want      dto.OverrideResponse
	}{
		{
			name:   "admin approves a flagged spot",
			ctx:    withUser("admin-1", constant.RoleAdmin),
			entity: model.EntitySpot,
			req:    dto.OverrideRequest{Status: model.StatusApproved, Notes: "photos checked by phone"},
			setupMock: func(t *testing.T, f *fixture) {
				f.spots.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(spotModel.Spot{ID: "entity-1", Status: model.StatusPendingReview}, nil)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, l model.Log) error {
						assert.False(t, l.Auto)
						require.NotNil(t, l.ReviewerID)
						assert.Equal(t, "admin-1", *l.ReviewerID)
						assert.Equal(t, model.DecisionManualApproved, l.Decision)
						assert.Equal(t, model.StatusPendingReview, l.StatusBefore)

						return nil
					})
			},
			want: dto.OverrideResponse{
				EntityType:   model.EntitySpot,
				EntityID:     "entity-1",
				StatusBefore: model.StatusPendingReview,
				Status:       model.StatusApproved,
				Decision:     model.DecisionManualApproved,
			},
		},
		{
			name:   "admin rejects an auto-approved verification and revokes the flag",
			ctx:    withUser("admin-1", constant.RoleAdmin),
			entity: model.EntityVerification,
			req:    dto.OverrideRequest{Status: model.StatusRejected, Notes: "document forged"},
			setupMock: func(t *testing.T, f *fixture) {
				f.verifications.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(verificationModel.Verification{ID: "entity-1", UserID: "user-9", Status: model.StatusAutoApproved}, nil)
				f.verifications.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.users.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, false, fields[userModel.FieldIsVerified])

						return nil
					})
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			want: dto.OverrideResponse{
				EntityType:   model.EntityVerification,
				EntityID:     "entity-1",
				StatusBefore: model.StatusAutoApproved,
				Status:       model.StatusRejected,
				Decision:     model.DecisionManualRejected,
			},
		},
		{
			name:      "owners cannot override",
			ctx:       withUser("owner-1", constant.RoleOwner),
			entity:    model.EntitySpot,
			req:       dto.OverrideRequest{Status: model.StatusApproved, Notes: "trust me"},
			setupMock: func(*testing.T, *fixture) {},
			wantCode:  http.StatusForbidden,
		},
		{
			name:      "target must be a manual status",
			ctx:       withUser("admin-1", constant.RoleAdmin),
			entity:    model.EntitySpot,
			req:       dto.OverrideRequest{Status: model.StatusAutoApproved, Notes: "n/a"},
			setupMock: func(*testing.T, *fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:   "unknown spot",
			ctx:    withUser("admin-1", constant.RoleAdmin),
			entity: model.EntitySpot,
			req:    dto.OverrideRequest{Status: model.StatusRejected, Notes: "spam"},
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(spotModel.Spot{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(t, f)

			res, err := f.svc.Override(tt.ctx, tt.entity, "entity-1", tt.req)

			if tt.wantCode != 0 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, res)
		})
	}
}

func TestModerationService_Rescore(t *testing.T) {
	flagged := spotModel.Spot{
		ID:           "spot-1",
		OwnerID:      "owner-1",
		PricePerHour: 5000,
		Description:  strings.Repeat("Covered bay behind a locked gate, close to the tram. ", 4),
		Rules:        "No overnight parking of trailers.",
		Latitude:     52.37,
		Longitude:    4.89,
		Status:       model.StatusPendingReview,
	}

	t.Run("new photos lift a flagged listing", func(t *testing.T) {
		f := newFixture(t)

		f.spots.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(flagged, nil)
		f.photos.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
		f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, model.StatusAutoApproved, fields[spotModel.FieldStatus])

				return nil
			})
		f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, _ *sqlx.Tx, l model.Log) error {
				assert.True(t, l.Auto)
				assert.Equal(t, model.StatusPendingReview, l.StatusBefore)

				return nil
			})

		res, err := f.svc.Rescore(withUser("owner-1", constant.RoleOwner), "spot-1")
		require.NoError(t, err)
		assert.Equal(t, model.StatusPendingReview, res.StatusBefore)
		assert.Equal(t, model.StatusAutoApproved, res.Result.Status)
		assert.Empty(t, res.Result.Issues)
	})

	t.Run("manual decisions stick", func(t *testing.T) {
		f := newFixture(t)

		rejected := flagged
		rejected.Status = model.StatusRejected
		f.spots.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(rejected, nil)

		_, err := f.svc.Rescore(withUser("owner-1", constant.RoleOwner), "spot-1")
		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("only the owner", func(t *testing.T) {
		f := newFixture(t)

		f.spots.EXPECT().GetForUpdateTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(flagged, nil)

		_, err := f.svc.Rescore(withUser("owner-2", constant.RoleOwner), "spot-1")
		assert.Equal(t, http.StatusForbidden, failure.GetCode(err))
	})
}

func TestModerationService_History(t *testing.T) {
	score := 15
	entry := model.NewAutoLog(model.EntitySpot, "spot-1", model.StatusPendingVerification,
		model.Result{Status: model.StatusPendingReview, Decision: model.DecisionAutoFlagged, Score: score, Issues: []string{model.IssueSpotPhotos}}, testTime)

	tests := []struct {
		name      string
		ctx       context.Context
		setupMock func(f *fixture)
		wantCode  int
	}{
		{
			name: "owner reads the log oldest first",
			ctx:  withUser("owner-1", constant.RoleOwner),
			setupMock: func(f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(spotModel.Spot{ID: "spot-1", OwnerID: "owner-1"}, nil)
				f.logs.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
				f.logs.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, params gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Log, error) {
						assert.Equal(t, model.FieldCreatedAt, params.SortBy)
						assert.Equal(t, gDto.SortDirAsc, params.SortDir)

						return []model.Log{entry}, nil
					})
			},
		},
		{
			name: "admin",
			ctx:  withUser("admin-1", constant.RoleAdmin),
			setupMock: func(f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(spotModel.Spot{ID: "spot-1", OwnerID: "owner-1"}, nil)
				f.logs.EXPECT().Count(gomock.Any(), gomock.Any()).Return(1, nil)
				f.logs.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Log{entry}, nil)
			},
		},
		{
			name: "another owner",
			ctx:  withUser("owner-2", constant.RoleOwner),
			setupMock: func(f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(spotModel.Spot{ID: "spot-1", OwnerID: "owner-1"}, nil)
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.History(tt.ctx, model.EntitySpot, "spot-1", gDto.QueryParams{})

			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			require.Len(t, res.Logs, 1)
			require.NotNil(t, res.Logs[0].Score)
			assert.Equal(t, score, *res.Logs[0].Score)
			assert.Equal(t, []string{model.IssueSpotPhotos}, res.Logs[0].Issues)
			assert.True(t, res.Logs[0].Auto)
		})
	}
}
