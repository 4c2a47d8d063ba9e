package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StageProd = "prod"
	StageDev  = "dev"
)

type Config struct {
	Stage       string `env:"STAGE" envDefault:"dev"`
	Port        int    `env:"PORT" envDefault:"8000"`
	DatabaseURL string `env:"DATABASE_URL"`
	// When DATABASE_URL is set, migrations are read from here.
	MigrationDir string `env:"MIGRATION_DIR" envDefault:"file://db/migration"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	// "record" undoes one attack record, "turn" also undoes the shot the
	// computer answered.
	RollbackPolicy string `env:"ROLLBACK_POLICY" envDefault:"record"`
	// Zero means seed from the runtime.
	RandomSeed uint64 `env:"RANDOM_SEED"`

	MatchMaxAge     time.Duration `env:"MATCH_MAX_AGE" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"20m"`
}

// Load reads .env outside production and parses the environment.
func Load() (Config, error) {
	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load .env: %w", err)
		}
	}
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Stage != StageProd && cfg.Stage != StageDev {
		return Config{}, fmt.Errorf("stage must be either dev or prod, got: %s", cfg.Stage)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}
