package constants

import "time"

const (
	CommanderCacheTTL    = 30 * 24 * time.Hour
	CommanderFlushDelay  = 250 * time.Millisecond
	CommanderLookupLimit = 6
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
)

// Scryfall asks clients to stay around 10 requests per second.
const (
	ScryfallRequestInterval = 100 * time.Millisecond
	ScryfallUserAgent       = "commander-league/1.0"
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DeckDefinitionsFile = "deck-definitions.json"
	CombinationsFile    = "combinations.json"
)

// SeasonFile names the match document for a season year.
func SeasonFile(year string) string {
	return "matches-" + year + ".json"
}

func LegacyPlayersFile(year string) string {
	return "players-" + year + ".json"
}

func LegacyDecksFile(year string) string {
	return "decks-" + year + ".json"
}
