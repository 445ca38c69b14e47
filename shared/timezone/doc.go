// Package timezone holds the application clock.
//
// The display timezone is read from APP_TIMEZONE (IANA names such as "UTC" or
// "Europe/Warsaw") when the package is imported and defaults to UTC. Slot and
// booking arithmetic never depends on it: use NowUTC and ParseDay for that.
package timezone
