package permissions_test

import (
	"net/http"
	"testing"

	"parkspot/permissions"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Find(t *testing.T) {
	data, err := permissions.Parse([]byte(`{"endpoints":[{"path":"/v1/bookings/{id}/approve","method":"POST","roles":["OWNER"]}]}`))
	require.NoError(t, err)

	found := data.Find("/v1/bookings/{id}/approve", "post")
	assert.Equal(t, []string{"OWNER"}, found.Roles)

	assert.Empty(t, data.Find("/v1/bookings/{id}/approve", http.MethodGet).Roles)

	_, err = permissions.Parse([]byte(`{`))
	assert.Error(t, err)
}

func TestGet_Embedded(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	assert.True(t, data.Find("/health", http.MethodGet).Skip)
	assert.True(t, data.Find("/v1/spots", http.MethodGet).Skip)
	assert.True(t, data.Find("/v1/webhooks/payments", http.MethodPost).Skip)
	assert.Equal(t, []string{"ADMIN"}, data.Find("/v1/spots/{id}/moderation/override", http.MethodPost).Roles)
	assert.False(t, data.Find("/v1/bookings", http.MethodPost).Skip)
}
