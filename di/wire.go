//go:build wireinject
// +build wireinject

package di

import (
	"parkspot/config"
	"parkspot/infras/jwt"
	"parkspot/infras/notifier"
	"parkspot/infras/otel"
	"parkspot/infras/postgres"
	"parkspot/infras/redis"
	"parkspot/infras/s3"
	"parkspot/permissions"
	"parkspot/shared/cache"
	"parkspot/shared/limiter"
	gRepo "parkspot/shared/repository"
	"parkspot/transport/http"
	"parkspot/transport/http/middleware"
	"parkspot/transport/http/router"

	authService "parkspot/internal/domains/auth/service"
	availabilityService "parkspot/internal/domains/availability/service"
	blackoutRepository "parkspot/internal/domains/blackout/repository"
	blackoutService "parkspot/internal/domains/blackout/service"
	bookingRepository "parkspot/internal/domains/booking/repository"
	bookingService "parkspot/internal/domains/booking/service"
	depositRepository "parkspot/internal/domains/deposit/repository"
	depositService "parkspot/internal/domains/deposit/service"
	moderationRepository "parkspot/internal/domains/moderation/repository"
	moderationService "parkspot/internal/domains/moderation/service"
	pricingService "parkspot/internal/domains/pricing/service"
	spotRepository "parkspot/internal/domains/spot/repository"
	spotService "parkspot/internal/domains/spot/service"
	userRepository "parkspot/internal/domains/user/repository"
	userService "parkspot/internal/domains/user/service"
	verificationRepository "parkspot/internal/domains/verification/repository"
	verificationService "parkspot/internal/domains/verification/service"

	authHandler "parkspot/internal/handlers/auth"
	bookingHandler "parkspot/internal/handlers/booking"
	healthHandler "parkspot/internal/handlers/health"
	spotHandler "parkspot/internal/handlers/spot"
	userHandler "parkspot/internal/handlers/user"
	verificationHandler "parkspot/internal/handlers/verification"
	webhookHandler "parkspot/internal/handlers/webhook"

	"github.com/google/wire"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	s3.New,
	notifier.New,
)

var middlewares = wire.NewSet(
	limiter.New,
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
	gRepo.NewTransactor,
)

var repositories = wire.NewSet(
	userRepository.New,
	spotRepository.New,
	spotRepository.NewPhoto,
	bookingRepository.New,
	depositRepository.New,
	blackoutRepository.New,
	moderationRepository.New,
	verificationRepository.New,
)

var domains = wire.NewSet(
	authService.New,
	userService.New,
	spotService.New,
	pricingService.New,
	availabilityService.New,
	blackoutService.New,
	bookingService.New,
	depositService.New,
	moderationService.New,
	verificationService.New,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	healthHandler.New,
	authHandler.New,
	userHandler.New,
	spotHandler.New,
	bookingHandler.New,
	verificationHandler.New,
	webhookHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		repositories,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
