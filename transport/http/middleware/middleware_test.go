package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"parkspot/config"
	"parkspot/infras/jwt"
	jwtMocks "parkspot/infras/jwt/mocks"
	"parkspot/infras/otel/mocks"
	"parkspot/permissions"
	"parkspot/shared/constant"
	"parkspot/shared/limiter"
	"parkspot/transport/http/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testPermissions = `{
  "endpoints": [
    {"path": "/v1/spots", "method": "GET", "skip": true},
    {"path": "/v1/spots/{id}/moderation/override", "method": "POST", "roles": ["ADMIN"]},
    {"path": "/v1/webhooks/payments", "method": "POST", "skip": true}
  ]
}`

func newRouter(t *testing.T, jwtService jwt.JWT, lim limiter.Limiter) http.Handler {
	t.Helper()

	perms, err := permissions.Parse([]byte(testPermissions))
	require.NoError(t, err)

	cfg := &config.Config{}
	cfg.App.APIKey = "internal-key"
	cfg.App.RateLimiter.Enable = lim != nil

	app := middleware.NewAppMiddleware(mocks.NewOtel(), cfg, lim)
	authRole := middleware.NewAuthRoleMiddleware(jwtService, mocks.NewOtel(), perms, cfg)

	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

	router := chi.NewRouter()
	router.Use(app.Tracing, app.RateLimit, authRole.APIKey, authRole.Auth, authRole.RBAC)
	router.Route("/v1", func(r chi.Router) {
		r.Get("/spots", ok)
		r.Post("/spots/{id}/moderation/override", ok)
		r.With(authRole.RequireAPIKey).Post("/webhooks/payments", ok)
	})

	return router
}

func TestAuthRole(t *testing.T) {
	tests := []struct {
		name      string
		method    string
		path      string
		headers   map[string]string
		setupMock func(m *jwtMocks.MockJWT)
		wantCode  int
	}{
		{
			name:      "public route without token",
			method:    http.MethodGet,
			path:      "/v1/spots",
			setupMock: func(_ *jwtMocks.MockJWT) {},
			wantCode:  http.StatusOK,
		},
		{
			name:      "missing token",
			method:    http.MethodPost,
			path:      "/v1/spots/spot-1/moderation/override",
			setupMock: func(_ *jwtMocks.MockJWT) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:    "expired token",
			method:  http.MethodPost,
			path:    "/v1/spots/spot-1/moderation/override",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer stale"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "stale", jwt.AccessToken).Return(nil, jwt.ErrExpiredToken)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:    "role not allowed",
			method:  http.MethodPost,
			path:    "/v1/spots/spot-1/moderation/override",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer owner"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "owner", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "owner-1", Role: constant.RoleOwner}, nil)
			},
			wantCode: http.StatusForbidden,
		},
		{
			name:    "admin allowed",
			method:  http.MethodPost,
			path:    "/v1/spots/spot-1/moderation/override",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer admin"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "admin", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "admin-1", Role: constant.RoleAdmin}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:    "token without role claim",
			method:  http.MethodPost,
			path:    "/v1/spots/spot-1/moderation/override",
			headers: map[string]string{constant.RequestHeaderAuthorization: "Bearer partial"},
			setupMock: func(m *jwtMocks.MockJWT) {
				m.EXPECT().ValidateToken(gomock.Any(), "partial", jwt.AccessToken).
					Return(&jwt.Claims{UserID: "user-1"}, nil)
			},
			wantCode: http.StatusUnauthorized,
		},
		{
			name:      "webhook without api key",
			method:    http.MethodPost,
			path:      "/v1/webhooks/payments",
			setupMock: func(_ *jwtMocks.MockJWT) {},
			wantCode:  http.StatusUnauthorized,
		},
		{
			name:      "webhook with wrong api key",
			method:    http.MethodPost,
			path:      "/v1/webhooks/payments",
			headers:   map[string]string{constant.RequestHeaderAPIKey: "guess"},
			setupMock: func(_ *jwtMocks.MockJWT) {},
			wantCode:  http.StatusForbidden,
		},
		{
			name:      "webhook with api key",
			method:    http.MethodPost,
			path:      "/v1/webhooks/payments",
			headers:   map[string]string{constant.RequestHeaderAPIKey: "internal-key"},
			setupMock: func(_ *jwtMocks.MockJWT) {},
			wantCode:  http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			jwtService := jwtMocks.NewMockJWT(ctrl)
			tt.setupMock(jwtService)

			req := httptest.NewRequest(tt.method, tt.path, nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			rec := httptest.NewRecorder()
			newRouter(t, jwtService, nil).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRateLimit(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	lim := limiter.NewMemoryLimiter(2, time.Minute, func() time.Time { return now })

	router := newRouter(t, jwtMocks.NewMockJWT(gomock.NewController(t)), lim)

	hit := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/spots", nil)
		req.RemoteAddr = ip + ":41000"

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		return rec
	}

	assert.Equal(t, http.StatusOK, hit("203.0.113.7").Code)

	second := hit("203.0.113.7")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "0", second.Header().Get(constant.RequestHeaderRateLimitRemaining))

	assert.Equal(t, http.StatusTooManyRequests, hit("203.0.113.7").Code)
	assert.Equal(t, http.StatusOK, hit("198.51.100.2").Code, "other clients keep their own window")
}

func TestRateLimit_IgnoresForwardedFor(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	lim := limiter.NewMemoryLimiter(1, time.Minute, func() time.Time { return now })

	router := newRouter(t, jwtMocks.NewMockJWT(gomock.NewController(t)), lim)

	codes := make([]int, 0, 3)

	for _, forwarded := range []string{"192.0.2.1", "192.0.2.2", "192.0.2.3"} {
		req := httptest.NewRequest(http.MethodGet, "/v1/spots", nil)
		req.RemoteAddr = "203.0.113.7:41000"
		req.Header.Set(constant.RequestHeaderForwardedFor, forwarded)

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
}
