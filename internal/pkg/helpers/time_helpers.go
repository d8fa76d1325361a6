package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a configured duration, falling back to defaultDuration
// with a warning when the value is malformed.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}
