package postgres_test

import (
	"net/url"
	"testing"

	"parkspot/config"
	"parkspot/infras/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Postgres.Prefix = "test_"

	endpoint := config.PostgresEndpoint{
		Host:     "db.internal",
		Port:     "5432",
		Username: "parkspot",
		Password: "p@ss/word",
		Name:     "parkspot",
		Timezone: "UTC",
		SSLMode:  "disable",
	}

	raw := postgres.DSN(cfg, endpoint, url.Values{"x-migrations-table": {"schema_migrations"}})

	parsed, err := url.Parse(raw)
	require.NoError(t, err)

	password, _ := parsed.User.Password()

	assert.Equal(t, "postgres", parsed.Scheme)
	assert.Equal(t, "parkspot", parsed.User.Username())
	assert.Equal(t, "p@ss/word", password)
	assert.Equal(t, "db.internal:5432", parsed.Host)
	assert.Equal(t, "/test_parkspot", parsed.Path)
	assert.Equal(t, "disable", parsed.Query().Get("sslmode"))
	assert.Equal(t, "UTC", parsed.Query().Get("timezone"))
	assert.Equal(t, "schema_migrations", parsed.Query().Get("x-migrations-table"))
}
