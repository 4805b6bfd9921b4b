package clientdata

import "github.com/rs/zerolog"

// Prune removes expired entries from every cache table and logs what went.
// Called once at startup; there is no background scheduler.
func Prune(repo *Repository, log zerolog.Logger) error {
	log = log.With().Str("job", "client_data_prune").Logger()

	results, err := repo.DeleteAllExpired()
	if err != nil {
		log.Error().Err(err).Msg("Failed to delete expired client data")
		return err
	}

	var total int64
	for table, count := range results {
		if count > 0 {
			log.Debug().Str("table", table).Int64("deleted", count).Msg("Cleaned up expired cache entries")
			total += count
		}
	}

	if total > 0 {
		log.Info().Int64("total_deleted", total).Msg("Client data prune completed")
	}

	return nil
}
