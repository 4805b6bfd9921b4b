package utils

import (
	"time"

	"github.com/rs/zerolog"
)

// OperationTimer provides a defer-friendly way to measure operation duration.
// Operations slower than slow are logged at warn level.
//
// Usage:
//
//	defer utils.OperationTimer("ledger_backup", 30*time.Second, log)()
func OperationTimer(operation string, slow time.Duration, log zerolog.Logger) func() time.Duration {
	start := time.Now()

	return func() time.Duration {
		duration := time.Since(start)

		log.Debug().
			Str("operation", operation).
			Dur("duration_ms", duration).
			Msg("Operation completed")

		if slow > 0 && duration > slow {
			log.Warn().
				Str("operation", operation).
				Dur("duration", duration).
				Dur("threshold", slow).
				Msg("Slow operation detected")
		}
		return duration
	}
}
