package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultPort          = "8080"
	DefaultDatabasePath  = "data/moviweb.sqlite3"
	DefaultOMDBBaseURL   = "https://www.omdbapi.com"
	DefaultLookupTimeout = 10 * time.Second
)

// Settings holds the runtime configuration for the server. Each field maps to
// one environment variable; an optional .env file is honored.
type Settings struct {
	Port          string        // PORT
	DatabasePath  string        // DATABASE_PATH
	OMDBAPIKey    string        // OMDB_API_KEY, empty disables enrichment
	OMDBBaseURL   string        // OMDB_BASE_URL, override for tests/proxies
	LookupTimeout time.Duration // OMDB_TIMEOUT_SECONDS
	LogFile       string        // LOG_FILE, empty logs to stderr
}

// Load reads settings from the environment, applying defaults for anything
// unset. A .env file in the working directory is loaded first if present.
func Load() (*Settings, error) {
	_ = godotenv.Load()

	s := &Settings{
		Port:          getenv("PORT", DefaultPort),
		DatabasePath:  getenv("DATABASE_PATH", DefaultDatabasePath),
		OMDBAPIKey:    os.Getenv("OMDB_API_KEY"),
		OMDBBaseURL:   getenv("OMDB_BASE_URL", DefaultOMDBBaseURL),
		LookupTimeout: DefaultLookupTimeout,
		LogFile:       os.Getenv("LOG_FILE"),
	}

	if v := os.Getenv("OMDB_TIMEOUT_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid OMDB_TIMEOUT_SECONDS %q", v)
		}
		s.LookupTimeout = time.Duration(secs) * time.Second
	}

	return s, nil
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
