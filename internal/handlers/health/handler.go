package health

import (
	"context"
	"net/http"
	"time"

	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/shared/constant"
	"parkspot/transport/http/response"

	"github.com/go-chi/chi/v5"
	goRedis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const pingTimeout = 2 * time.Second

type Handler struct {
	db    *postgres.Connection
	redis *goRedis.Client
	otel  otel.Otel
}

func New(db *postgres.Connection, redis *goRedis.Client, otel otel.Otel) Handler {
	return Handler{
		db:    db,
		redis: redis,
		otel:  otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Get("/health", handler.Health)
}

// Health reports whether the database and cache answer.
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} response.Message
// @Failure 503 {object} response.Message
// @Router /health [get]
func (handler *Handler) Health(writer http.ResponseWriter, request *http.Request) {
	ctx, scope := handler.otel.NewScope(request.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Health")
	defer scope.End()

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	checks := map[string]func(context.Context) error{
		"postgres_write": func(ctx context.Context) error { return handler.db.Write.PingContext(ctx) },
		"postgres_read":  func(ctx context.Context) error { return handler.db.Read.PingContext(ctx) },
		"redis":          func(ctx context.Context) error { return handler.redis.Ping(ctx).Err() },
	}

	for name, check := range checks {
		if err := check(ctx); err != nil {
			scope.TraceError(err)
			log.Error().Err(err).Str("dependency", name).Msg("health check failed")

			response.WithUnhealthy(writer)

			return
		}
	}

	response.WithMessage(writer, http.StatusOK, "OK")
}
