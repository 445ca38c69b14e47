package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"parkspot/config"
	"parkspot/infras/postgres"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

type Action string

const (
	ActionUp      Action = "up"
	ActionDown    Action = "down"
	ActionDrop    Action = "drop"
	ActionStepUp  Action = "step-up"
	ActionVersion Action = "version"
	ActionForce   Action = "force"
)

var ErrUnknownAction = errors.New("unknown migration action")

// databaseURL targets the write endpoint. golang-migrate strips the x- parameters before connecting.
func databaseURL(config *config.Config) string {
	extra := url.Values{}
	if config.DB.Postgres.MigrationTable != "" {
		extra.Set("x-migrations-table", config.DB.Postgres.MigrationTable)
	}

	return postgres.DSN(config, config.DB.Postgres.Write, extra)
}

func getConnection(config *config.Config) (*migrate.Migrate, error) {
	mig, err := migrate.New("file://"+config.DB.Postgres.MigrationPath, databaseURL(config))
	if err != nil {
		return nil, fmt.Errorf("error creating migrate instance: %w", err)
	}

	return mig, nil
}

// Runner applies action to the write database. args carries the target version for ActionForce.
func Runner(config *config.Config, action Action, args ...string) error {
	mig, err := getConnection(config)
	if err != nil {
		return err
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Error().AnErr("source", srcErr).AnErr("database", dbErr).Msg("failed to close migrate instance")
		}
	}()

	switch action {
	case ActionUp:
		err = mig.Up()
	case ActionDown:
		err = mig.Steps(-1)
	case ActionStepUp:
		err = mig.Steps(1)
	case ActionDrop:
		err = mig.Drop()
	case ActionForce:
		if len(args) == 0 {
			return fmt.Errorf("%w: force needs a version", ErrUnknownAction)
		}

		version, convErr := strconv.Atoi(args[0])
		if convErr != nil {
			return fmt.Errorf("invalid force version %q: %w", args[0], convErr)
		}

		err = mig.Force(version)
	case ActionVersion:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("error running %s migration: %w", action, err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("error reading migration version: %w", err)
	}

	log.Info().Str("action", string(action)).Uint("version", version).Bool("dirty", dirty).Msg("Database migration finished")

	return nil
}

func Up(config *config.Config) error {
	return Runner(config, ActionUp)
}

func Down(config *config.Config) error {
	return Runner(config, ActionDown)
}
