package main

import (
	"parkspot/config"
	_ "parkspot/docs"
	"parkspot/di"
	"parkspot/helper"
	"parkspot/shared/logger"

	"github.com/rs/zerolog/log"
)

// @title ParkSpot API
// @version 1.0
// @description Booking and trust engine for the ParkSpot parking marketplace.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the access token.
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	cfg := config.Get()

	logger.InitLogger()

	logger.SetLogLevel(cfg)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply database migrations")
		}
	}

	http := di.InitializeService()
	http.Serve()
}
