package postgres

//nolint:revive
import (
	"fmt"
	"net"
	"net/url"
	"time"

	"parkspot/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName = "postgres"

	maxIdleConnection  = 10
	maxOpenConnection  = 10
	connectionLifetime = 30 * time.Minute
)

// Connection splits traffic between the primary (Write) and a replica (Read).
// Booking transactions always run on Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	return &Connection{
		Read:  connect(cfg, "read", cfg.DB.Postgres.Read),
		Write: connect(cfg, "write", cfg.DB.Postgres.Write),
	}
}

// DatabaseName applies the optional DB_POSTGRES_PREFIX.
func DatabaseName(cfg *config.Config, name string) string {
	return cfg.DB.Postgres.Prefix + name
}

// DSN builds a postgres URL for endpoint. Extra query parameters are merged in, which is
// how the migrator passes x-migrations-table.
func DSN(cfg *config.Config, endpoint config.PostgresEndpoint, extra url.Values) string {
	query := url.Values{}
	query.Set("sslmode", endpoint.SSLMode)

	if endpoint.Timezone != "" {
		query.Set("timezone", endpoint.Timezone)
	}

	for key, values := range extra {
		for _, value := range values {
			query.Add(key, value)
		}
	}

	dsn := url.URL{
		Scheme:   driverName,
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     DatabaseName(cfg, endpoint.Name),
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func connect(cfg *config.Config, name string, endpoint config.PostgresEndpoint) *sqlx.DB {
	dsn := DSN(cfg, endpoint, nil)
	wait := time.Duration(cfg.DB.Postgres.RetryWaitTime) * time.Second
	attempts := max(cfg.DB.Postgres.MaxRetry, 1)

	logger := log.With().
		Str("name", name).
		Str("host", endpoint.Host).
		Str("port", endpoint.Port).
		Str("dbName", DatabaseName(cfg, endpoint.Name)).
		Logger()

	var err error

	for attempt := 1; attempt <= attempts; attempt++ {
		var db *sqlx.DB

		db, err = sqlx.Connect(driverName, dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnection)
			db.SetMaxOpenConns(maxOpenConnection)
			db.SetConnMaxLifetime(connectionLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	logger.Fatal().Err(fmt.Errorf("after %d attempts: %w", attempts, err)).Msg("Could not connect to database")

	return nil
}
