package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
)

// Config holds everything the server needs to start. Values come from
// flags, with environment variables as fallback for deploy settings.
type Config struct {
	// GamePort is the websocket port players connect to.
	GamePort int
	// APIPort serves the status and results API.
	APIPort int
	// LogLevel is one of error, warn, info, debug, trace.
	LogLevel string
	// DatabaseURL selects the Postgres repository when set.
	DatabaseURL string
	// SQLitePath selects the SQLite repository when set and no
	// Postgres URL is given.
	SQLitePath string
	// ResultsBuffer is the match result channel depth.
	ResultsBuffer int
}

const (
	DefaultGamePort      = 8080
	DefaultAPIPort       = 8081
	DefaultLogLevel      = "info"
	DefaultResultsBuffer = 256
)

// Parse reads configuration from the given command line arguments.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	cfg := &Config{}
	fs.IntVar(&cfg.GamePort, "game-port", DefaultGamePort, "Websocket port to listen on")
	fs.IntVar(&cfg.APIPort, "api-port", DefaultAPIPort, "Status API port to listen on")
	fs.StringVar(&cfg.LogLevel, "log-level", DefaultLogLevel, "Log level")
	fs.StringVar(&cfg.DatabaseURL, "database-url", "", "Postgres connection string (or DATABASE_URL)")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "", "SQLite database path (or SQLITE_PATH)")
	fs.IntVar(&cfg.ResultsBuffer, "results-buffer", DefaultResultsBuffer, "Match result channel depth")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("failed to parse flags: %v", err)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = os.Getenv("SQLITE_PATH")
	}
	if raw := os.Getenv("GAME_PORT"); raw != "" && !flagSet(fs, "game-port") {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid GAME_PORT: %v", err)
		}
		cfg.GamePort = port
	}
	if raw := os.Getenv("API_PORT"); raw != "" && !flagSet(fs, "api-port") {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid API_PORT: %v", err)
		}
		cfg.APIPort = port
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.GamePort < 1 || c.GamePort > 65535 {
		return fmt.Errorf("invalid game port: %d", c.GamePort)
	}
	if c.APIPort < 1 || c.APIPort > 65535 {
		return fmt.Errorf("invalid api port: %d", c.APIPort)
	}
	if c.GamePort == c.APIPort {
		return fmt.Errorf("game port and api port must differ")
	}
	if c.ResultsBuffer < 1 {
		return fmt.Errorf("invalid results buffer: %d", c.ResultsBuffer)
	}
	return nil
}

func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
