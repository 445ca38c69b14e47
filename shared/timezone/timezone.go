package timezone

import (
	"time"

	"parkspot/config"

	"github.com/rs/zerolog/log"
)

var appLocation = time.UTC

func init() {
	name := config.Get().App.Timezone
	if name == "" {
		log.Warn().Msg("no timezone configured, using UTC")

		return
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Error().Err(err).Str("timezone", name).Msg("failed to load timezone, falling back to UTC")

		return
	}

	appLocation = loc
}

// Now returns the current time in the application timezone. It is used for
// metadata stamps and display only; booking windows are always evaluated in UTC.
func Now() time.Time {
	return time.Now().In(appLocation)
}

// NowUTC is the clock the booking engine runs on.
func NowUTC() time.Time {
	return time.Now().UTC()
}

func ToAppTime(t time.Time) time.Time {
	return t.In(appLocation)
}

func GetLocation() *time.Location {
	return appLocation
}

// Parse parses value in the application timezone.
func Parse(layout, value string) (time.Time, error) {
	return time.ParseInLocation(layout, value, appLocation)
}

// ParseDay parses a YYYY-MM-DD calendar day as UTC midnight.
func ParseDay(value string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, value, time.UTC)
}

func Format(t time.Time, layout string) string {
	return ToAppTime(t).Format(layout)
}
