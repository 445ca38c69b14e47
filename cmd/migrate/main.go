package main

import (
	"os"

	"parkspot/config"
	"parkspot/helper"
	"parkspot/shared/logger"

	"github.com/rs/zerolog/log"
)

const argLength = 2

func main() {
	logger.InitLogger()

	if len(os.Args) < argLength {
		log.Fatal().Msg("Migration action is required: up, down, drop, step-up, version or force <version>")
	}

	cfg := config.Get()

	logger.SetLogLevel(cfg)

	if err := helper.Runner(cfg, helper.Action(os.Args[1]), os.Args[2:]...); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
