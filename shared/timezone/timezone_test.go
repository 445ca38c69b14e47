package timezone_test

import (
	"testing"
	"time"

	"parkspot/shared/timezone"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNowUTC(t *testing.T) {
	assert.Equal(t, time.UTC, timezone.NowUTC().Location())
	assert.NotNil(t, timezone.GetLocation())
	assert.False(t, timezone.Now().IsZero())
}

func TestParseDay(t *testing.T) {
	day, err := timezone.ParseDay("2026-03-14")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), day)

	_, err = timezone.ParseDay("14/03/2026")
	assert.Error(t, err)
}

func TestFormatRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

	parsed, err := timezone.Parse(time.RFC3339, timezone.Format(at, time.RFC3339))
	require.NoError(t, err)
	assert.True(t, at.Equal(parsed))
}
