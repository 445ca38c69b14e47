package service_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"parkspot/config"
	"parkspot/infras/otel/mocks"
	s3Mocks "parkspot/infras/s3/mocks"
	moderationMocks "parkspot/internal/domains/moderation/mocks"
	moderationModel "parkspot/internal/domains/moderation/model"
	spotMocks "parkspot/internal/domains/spot/mocks"
	"parkspot/internal/domains/spot/model"
	"parkspot/internal/domains/spot/model/dto"
	"parkspot/internal/domains/spot/service"
	"parkspot/shared/cache"
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

var errDB = errors.New("db down")

type fixture struct {
	transactor *repoMocks.MockTransactor
	spots      *spotMocks.MockSpot
	photos     *spotMocks.MockPhoto
	logs       *moderationMocks.MockLog
	redis      *cacheMocks.MockRedisCache
	s3         *s3Mocks.MockS3
	svc        service.Spot
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60
	cfg.External.S3.BucketName = "parkspot"

	f := &fixture{
		transactor: repoMocks.NewMockTransactor(ctrl),
		spots:      spotMocks.NewMockSpot(ctrl),
		photos:     spotMocks.NewMockPhoto(ctrl),
		logs:       moderationMocks.NewMockLog(ctrl),
		redis:      cacheMocks.NewMockRedisCache(ctrl),
		s3:         s3Mocks.NewMockS3(ctrl),
	}

	f.transactor.EXPECT().WithTx(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, fn gRepo.TxFunc) error { return fn(ctx, nil) }).AnyTimes()
	f.redis.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.redis.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.transactor, f.spots, f.photos, f.logs, cfg, f.redis, mocks.NewOtel(), f.s3)

	return f
}

func (f *fixture) cacheMiss() {
	f.redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
}

func asOwner() context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "owner-1")

	return context.WithValue(ctx, constant.ContextKeyUserRole, constant.RoleOwner)
}

func createRequest() dto.CreateSpotRequest {
	return dto.CreateSpotRequest{
		Title:        "Gated driveway near the station",
		Description:  strings.Repeat("quiet street, easy access, ", 5),
		Rules:        "no trailers, no overnight idling",
		PricePerHour: 5000,
		LengthCM:     500,
		WidthCM:      250,
		AccessType:   model.AccessPrivateGate,
		Latitude:     -6.2,
		Longitude:    106.8,
	}
}

func TestSpotService_Create(t *testing.T) {
	bare := dto.CreateSpotRequest{Title: "Spot", PricePerHour: 1000, LengthCM: 400, WidthCM: 200, AccessType: model.AccessStreet}

	tests := []struct {
		name       string
		req        dto.CreateSpotRequest
		setupMock  func(t *testing.T, f *fixture)
		wantCode   int
		wantStatus moderationModel.Status
		wantPhotos int
	}{
		{
			name: "complete listing without photos is flagged for review",
			req:  createRequest(),
			setupMock: func(t *testing.T, f *fixture) {
				f.spots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, m model.Spot) error {
						assert.Equal(t, "owner-1", m.OwnerID)
						assert.Equal(t, moderationModel.StatusPendingVerification, m.Status)

						return nil
					})
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, moderationModel.StatusPendingReview, fields[model.FieldStatus])

						return nil
					})
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, l moderationModel.Log) error {
						assert.True(t, l.Auto)
						assert.Equal(t, moderationModel.EntitySpot, l.EntityType)
						assert.Equal(t, moderationModel.StatusPendingVerification, l.StatusBefore)
						assert.Equal(t, moderationModel.DecisionAutoFlagged, l.Decision)

						return nil
					})
			},
			wantCode:   http.StatusOK,
			wantStatus: moderationModel.StatusPendingReview,
		},
		{
			name: "complete listing with photos is approved",
			req: func() dto.CreateSpotRequest {
				req := createRequest()
				req.Photos = []string{"https://cdn.parkspot.test/a.jpg", "https://cdn.parkspot.test/b.jpg", "https://cdn.parkspot.test/c.jpg"}

				return req
			}(),
			setupMock: func(t *testing.T, f *fixture) {
				var spotID string

				f.spots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, m model.Spot) error {
						spotID = m.ID

						return nil
					})
				f.photos.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, p model.Photo) error {
						assert.Equal(t, spotID, p.SpotID)
						assert.Equal(t, "owner-1", p.CreatedBy)

						return nil
					}).Times(3)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, moderationModel.StatusAutoApproved, fields[model.FieldStatus])

						return nil
					})
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, l moderationModel.Log) error {
						assert.Equal(t, moderationModel.DecisionAutoApproved, l.Decision)

						return nil
					})
			},
			wantCode:   http.StatusOK,
			wantStatus: moderationModel.StatusAutoApproved,
			wantPhotos: 3,
		},
		{
			name: "photo failure aborts the transaction",
			req: func() dto.CreateSpotRequest {
				req := createRequest()
				req.Photos = []string{"https://cdn.parkspot.test/a.jpg"}

				return req
			}(),
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.photos.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errDB)
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "bare listing is rejected",
			req:  bare,
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode:   http.StatusOK,
			wantStatus: moderationModel.StatusAutoRejected,
		},
		{
			name: "log failure aborts the transaction",
			req:  createRequest(),
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errDB)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(t, f)

			res, err := f.svc.Create(asOwner(), tt.req)
			if tt.wantCode != http.StatusOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Spot.Status)
			assert.Equal(t, tt.wantStatus, res.Moderation.Status)
			assert.NotEmpty(t, res.Spot.ID)
			assert.Len(t, res.Spot.Photos, tt.wantPhotos)
		})
	}
}

func TestSpotService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
		want      dto.SpotResponse
	}{
		{
			name: "cache hit skips the database",
			setupMock: func(f *fixture) {
				f.redis.EXPECT().Get(gomock.Any(), "spot:get:spot-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						*value.(*dto.SpotResponse) = dto.SpotResponse{ID: "spot-1", Title: "cached"}

						return nil
					})
			},
			wantCode: http.StatusOK,
			want:     dto.SpotResponse{ID: "spot-1", Title: "cached"},
		},
		{
			name: "loads spot and photos",
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(model.Spot{ID: "spot-1", OwnerID: "owner-1", Title: "Driveway", Status: moderationModel.StatusApproved}, nil)
				f.photos.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
					Return([]model.Photo{{ID: "p-1", SpotID: "spot-1", URL: "https://cdn/a.png"}}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "unknown spot",
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "database error",
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{}, errDB)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), "spot-1")
			if tt.wantCode != http.StatusOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)

			if tt.want.ID != constant.Empty {
				assert.Equal(t, tt.want, res)

				return
			}

			assert.Equal(t, "Driveway", res.Title)
			assert.Equal(t, []string{"https://cdn/a.png"}, res.Photos)
		})
	}
}

func TestSpotService_GetAll(t *testing.T) {
	f := newFixture(t)
	f.cacheMiss()

	params := gDto.QueryParams{Page: 1, Limit: 2}
	filter := gDto.FilterGroup{Filters: []any{
		gDto.Filter{Field: model.FieldStatus, Value: moderationModel.StatusApproved, Operator: gDto.FilterOperatorEq, Table: model.TableName},
	}}

	f.spots.EXPECT().Count(gomock.Any(), filter).Return(3, nil)
	f.spots.EXPECT().GetAll(gomock.Any(), params, filter).
		Return([]model.Spot{{ID: "spot-1"}, {ID: "spot-2"}}, nil)

	res, err := f.svc.GetAll(context.Background(), params, filter)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
	assert.Len(t, res.Spots, 2)
}

func TestSpotService_Update(t *testing.T) {
	base := createRequest()
	approved := base.ToModel("owner-1")
	approved.ID = "spot-1"
	approved.Status = moderationModel.StatusAutoApproved

	tests := []struct {
		name      string
		req       dto.UpdateSpotRequest
		setupMock func(t *testing.T, f *fixture)
		wantCode  int
	}{
		{
			name: "title edit keeps the status",
			req:  dto.UpdateSpotRequest{Title: "Covered driveway"},
			setupMock: func(t *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(approved, nil)
				f.spots.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, "Covered driveway", fields["title"])
						assert.NotContains(t, fields, model.FieldStatus)

						return nil
					})
			},
			wantCode: http.StatusOK,
		},
		{
			name: "price hike sends an approved listing back to review",
			req:  dto.UpdateSpotRequest{PricePerHour: 250000},
			setupMock: func(t *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(approved, nil)
				f.photos.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, int64(250000), fields["price_per_hour"])
						assert.Equal(t, moderationModel.StatusPendingReview, fields[model.FieldStatus])

						return nil
					})
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, l moderationModel.Log) error {
						assert.True(t, l.Auto)
						assert.Equal(t, moderationModel.StatusAutoApproved, l.StatusBefore)
						assert.Equal(t, moderationModel.StatusPendingReview, l.StatusAfter)

						return nil
					})
			},
			wantCode: http.StatusOK,
		},
		{
			name: "rule edit on a clean listing stays approved",
			req:  dto.UpdateSpotRequest{Rules: "no trailers, quiet after ten pm"},
			setupMock: func(t *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(approved, nil)
				f.photos.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, _ *sqlx.Tx, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, moderationModel.StatusAutoApproved, fields[model.FieldStatus])

						return nil
					})
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "log failure aborts the rescore",
			req:  dto.UpdateSpotRequest{Description: strings.Repeat("wide bay, ", 10)},
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(approved, nil)
				f.photos.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
				f.spots.EXPECT().UpdateTx(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
				f.logs.EXPECT().InsertTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(errDB)
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name:      "empty update",
			req:       dto.UpdateSpotRequest{},
			setupMock: func(_ *testing.T, _ *fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name: "someone else's spot",
			req:  dto.UpdateSpotRequest{Title: "Mine now"},
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{ID: "spot-1", OwnerID: "owner-2"}, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name: "unknown spot",
			req:  dto.UpdateSpotRequest{Title: "Driveway"},
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(t, f)

			err := f.svc.Update(asOwner(), tt.req, "spot-1")
			if tt.wantCode != http.StatusOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestSpotService_UploadPhoto(t *testing.T) {
	image := dto.UploadPhotoRequest{Image: "data:image/png;base64,aGVsbG8="}

	tests := []struct {
		name      string
		req       dto.UploadPhotoRequest
		setupMock func(t *testing.T, f *fixture)
		wantCode  int
	}{
		{
			name: "uploads and attaches the photo",
			req:  image,
			setupMock: func(t *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{ID: "spot-1", OwnerID: "owner-1"}, nil)
				f.s3.EXPECT().Upload(gomock.Any(), "parkspot", "spots/spot-1", gomock.Any(), "image/png", []byte("hello")).
					DoAndReturn(func(_ context.Context, _, directory, fileName, _ string, _ []byte) (string, error) {
						assert.True(t, strings.HasSuffix(fileName, ".png"))

						return "https://cdn/" + directory + "/" + fileName, nil
					})
				f.photos.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "malformed data uri",
			req:  dto.UploadPhotoRequest{Image: "not-an-image"},
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{ID: "spot-1", OwnerID: "owner-1"}, nil)
			},
			wantCode: http.StatusBadRequest,
		},
		{
			name: "insert failure removes the uploaded object",
			req:  image,
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{ID: "spot-1", OwnerID: "owner-1"}, nil)
				f.s3.EXPECT().Upload(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return("https://cdn/x.png", nil)
				f.photos.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errDB)
				f.s3.EXPECT().Delete(gomock.Any(), "parkspot", "spots/spot-1", gomock.Any()).Return(nil)
			},
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "not the owner",
			req:  image,
			setupMock: func(_ *testing.T, f *fixture) {
				f.spots.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Spot{ID: "spot-1", OwnerID: "owner-2"}, nil)
			},
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(t, f)

			res, err := f.svc.UploadPhoto(asOwner(), tt.req, "spot-1")
			if tt.wantCode != http.StatusOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, "spot-1", res.SpotID)
			assert.True(t, strings.HasPrefix(res.URL, "https://cdn/spots/spot-1/"))
		})
	}
}
