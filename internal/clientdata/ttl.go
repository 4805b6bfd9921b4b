package clientdata

import "time"

// TTL constants for cached data.
// These are added to now when storing to calculate expires_at.
const (
	// TTLQuote keeps brapi quotes for the duration of a typical session.
	TTLQuote = 10 * time.Minute

	// TableQuotes caches brapi quotes keyed by ticker.
	TableQuotes = "brapi_quotes"
)
