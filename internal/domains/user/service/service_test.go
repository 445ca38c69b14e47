package service_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"parkspot/config"
	"parkspot/infras/otel/mocks"
	userMocks "parkspot/internal/domains/user/mocks"
	"parkspot/internal/domains/user/model"
	"parkspot/internal/domains/user/model/dto"
	"parkspot/internal/domains/user/service"
	"parkspot/shared/cache"
	cacheMocks "parkspot/shared/cache/mocks"
	"parkspot/shared/constant"
	gDto "parkspot/shared/dto"
	"parkspot/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var errDB = errors.New("db down")

type fixture struct {
	repo  *userMocks.MockUser
	redis *cacheMocks.MockRedisCache
	svc   service.User
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)

	f := &fixture{
		repo:  userMocks.NewMockUser(ctrl),
		redis: cacheMocks.NewMockRedisCache(ctrl),
	}

	f.redis.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.redis.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.redis.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	f.svc = service.New(f.repo, &config.Config{}, f.redis, mocks.NewOtel())

	return f
}

func (f *fixture) cacheMiss() {
	f.redis.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(cache.Nil).AnyTimes()
}

func as(id, role string) context.Context {
	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, id)

	return context.WithValue(ctx, constant.ContextKeyUserRole, role)
}

func ptr[T any](v T) *T {
	return &v
}

func TestUserService_Get(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(f *fixture)
		wantCode  int
		wantEmail string
	}{
		{
			name: "cache hit",
			setupMock: func(f *fixture) {
				f.redis.EXPECT().Get(gomock.Any(), "user:get:user-1", gomock.Any()).
					DoAndReturn(func(_ context.Context, _ string, value any) error {
						*value.(*dto.UserResponse) = dto.UserResponse{ID: "user-1", Email: "cached@parkspot.test"}

						return nil
					})
			},
			wantCode:  http.StatusOK,
			wantEmail: "cached@parkspot.test",
		},
		{
			name: "loaded from the database",
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).
					Return(model.User{ID: "user-1", Email: "renter@parkspot.test", Role: constant.RoleRenter}, nil)
			},
			wantCode:  http.StatusOK,
			wantEmail: "renter@parkspot.test",
		},
		{
			name: "unknown user",
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "database error",
			setupMock: func(f *fixture) {
				f.cacheMiss()
				f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.User{}, errDB)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(f)

			res, err := f.svc.Get(context.Background(), "user-1")
			if tt.wantCode != http.StatusOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantEmail, res.Email)
		})
	}
}

func TestUserService_GetAll(t *testing.T) {
	f := newFixture(t)
	f.cacheMiss()

	params := gDto.QueryParams{Page: 1, Limit: 1}

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), params, gomock.Any()).
		Return([]model.User{{ID: "user-1", Role: constant.RoleOwner}}, nil)

	res, err := f.svc.GetAll(context.Background(), params, gDto.FilterGroup{})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 3, res.TotalPage)
}

func TestUserService_Update(t *testing.T) {
	tests := []struct {
		name      string
		ctx       context.Context
		id        string
		req       dto.UpdateUserRequest
		setupMock func(t *testing.T, f *fixture)
		wantCode  int
	}{
		{
			name: "admin verifies an owner",
			ctx:  as("admin-1", constant.RoleAdmin),
			id:   "owner-1",
			req:  dto.UpdateUserRequest{IsVerified: ptr(true)},
			setupMock: func(t *testing.T, f *fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
						assert.Equal(t, true, fields[model.FieldIsVerified])
						assert.Equal(t, "admin-1", fields[constant.FieldModifiedBy])

						return nil
					})
			},
			wantCode: http.StatusOK,
		},
		{
			name:      "empty edit",
			ctx:       as("admin-1", constant.RoleAdmin),
			id:        "owner-1",
			setupMock: func(_ *testing.T, _ *fixture) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "admin demotes themselves",
			ctx:       as("admin-1", constant.RoleAdmin),
			id:        "admin-1",
			req:       dto.UpdateUserRequest{Role: ptr(constant.RoleOwner)},
			setupMock: func(_ *testing.T, _ *fixture) {},
			wantCode:  http.StatusConflict,
		},
		{
			name:      "admin deactivates themselves",
			ctx:       as("admin-1", constant.RoleAdmin),
			id:        "admin-1",
			req:       dto.UpdateUserRequest{Active: ptr(false)},
			setupMock: func(_ *testing.T, _ *fixture) {},
			wantCode:  http.StatusConflict,
		},
		{
			name: "admin renames themselves",
			ctx:  as("admin-1", constant.RoleAdmin),
			id:   "admin-1",
			req:  dto.UpdateUserRequest{FullName: ptr("Site Admin")},
			setupMock: func(_ *testing.T, f *fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name: "unknown user",
			ctx:  as("admin-1", constant.RoleAdmin),
			id:   "ghost",
			req:  dto.UpdateUserRequest{Active: ptr(false)},
			setupMock: func(_ *testing.T, f *fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)
			},
			wantCode: http.StatusNotFound,
		},
		{
			name: "update error",
			ctx:  as("admin-1", constant.RoleAdmin),
			id:   "owner-1",
			req:  dto.UpdateUserRequest{Active: ptr(false)},
			setupMock: func(_ *testing.T, f *fixture) {
				f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
				f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).Return(errDB)
			},
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			tt.setupMock(t, f)

			err := f.svc.Update(tt.ctx, tt.req, tt.id)
			if tt.wantCode != http.StatusOK {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, failure.GetCode(err))

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("anonymous caller", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.UpdateProfile(context.Background(), dto.UpdateProfileRequest{FullName: ptr("Rina")})
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, failure.GetCode(err))
	})

	t.Run("renames the caller", func(t *testing.T) {
		f := newFixture(t)
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
		f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
				assert.Equal(t, "Rina", fields[model.FieldFullName])

				return nil
			})

		require.NoError(t, f.svc.UpdateProfile(as("renter-1", constant.RoleRenter), dto.UpdateProfileRequest{FullName: ptr("Rina")}))
	})
}
