package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Entry store backends.
const (
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Environment string `env:"ENV" envDefault:"development"`
	LogLevel    int    `env:"LOG_LEVEL" envDefault:"0"`
	// CORS: comma separated; must include the production frontend origin
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	// Bare hostname checked in production; empty disables the check
	AllowedHost string `env:"ALLOWED_HOST"`

	EntryBackend string `env:"ENTRY_BACKEND" envDefault:"mongo"`
	MongoURI     string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/aura"`
	PostgresURI  string `env:"POSTGRES_URI" envDefault:"postgres://localhost:5432/aura?sslmode=disable"`
	SQLitePath   string `env:"SQLITE_PATH" envDefault:"aura.db"`
	RedisURI     string `env:"REDIS_URI" envDefault:"redis://localhost:6379/0"`

	Gemini Gemini `envPrefix:"GEMINI_"`

	StoreTimeout    time.Duration `env:"STORE_TIMEOUT" envDefault:"5s"`
	AnalysisTimeout time.Duration `env:"ANALYSIS_TIMEOUT" envDefault:"20s"`
	ClientIdleTTL   time.Duration `env:"CLIENT_IDLE_TTL" envDefault:"30m"`
}

// Gemini holds analysis provider credentials.
type Gemini struct {
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL" envDefault:"gemini-3-flash-preview"`
}

// Load parses configuration from the environment.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.Environment = strings.ToLower(strings.TrimSpace(cfg.Environment))
	cfg.EntryBackend = strings.ToLower(strings.TrimSpace(cfg.EntryBackend))

	switch cfg.EntryBackend {
	case BackendMongo, BackendPostgres, BackendSQLite:
	default:
		return nil, fmt.Errorf("unknown ENTRY_BACKEND %q", cfg.EntryBackend)
	}

	origins := cfg.AllowedOrigins[:0]
	for _, o := range cfg.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	cfg.AllowedOrigins = origins
	cfg.AllowedHost = strings.TrimSpace(cfg.AllowedHost)

	return &cfg, nil
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
