package config

import (
	"errors"
	"time"

	"github.com/hashicorp/go-multierror"
)

type Config struct {
	Port           int      `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://127.0.0.1:3000"`
	TrustProxies   []string `env:"TRUST_PROXIES"`

	// CatalogPath is the JSON file the question catalog is loaded from.
	CatalogPath string `env:"CATALOG_PATH" envDefault:"questions.json"`

	Runner  RunnerConfig  `envPrefix:"RUNNER_"`
	Judge   JudgeConfig   `envPrefix:"JUDGE_"`
	Redis   RedisConfig   `envPrefix:"REDIS_"`
	History HistoryConfig `envPrefix:"HISTORY_"`
	PostHog PostHogConfig `envPrefix:"POSTHOG_"`
}

func (c Config) Validate() error {
	var result *multierror.Error

	if err := c.Runner.Validate(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := c.Judge.Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

// RunnerMode selects how student and reference queries are executed.
const (
	RunnerModeRPC      = "rpc"      // Supabase-style rpc_sql over HTTP
	RunnerModePostgres = "postgres" // direct Postgres connection
)

type RunnerConfig struct {
	Mode string `env:"MODE" envDefault:"rpc"`

	// Endpoints maps a database slug to its Supabase project URL (rpc mode).
	Endpoints map[string]string `env:"ENDPOINTS" envKeyValSeparator:"=" envSeparator:","`
	// Keys maps a database slug to its Supabase service key (rpc mode).
	Keys map[string]string `env:"KEYS" envKeyValSeparator:"=" envSeparator:","`
	// DSNs maps a database slug to a Postgres DSN (postgres mode).
	DSNs map[string]string `env:"DSNS" envKeyValSeparator:"=" envSeparator:","`

	// MaxRows caps the rows returned for display. 0 means unlimited.
	MaxRows int `env:"MAX_ROWS" envDefault:"20"`
	// Retries is the attempt budget for transient transport failures.
	Retries int           `env:"RETRIES" envDefault:"3"`
	Backoff time.Duration `env:"BACKOFF" envDefault:"1s"`
}

func (c RunnerConfig) Validate() error {
	var result *multierror.Error

	switch c.Mode {
	case RunnerModeRPC:
		if len(c.Endpoints) == 0 {
			result = multierror.Append(result, errors.New("RUNNER_ENDPOINTS is required in rpc mode"))
		}
		for slug := range c.Endpoints {
			if c.Keys[slug] == "" {
				result = multierror.Append(result, errors.New("RUNNER_KEYS is missing an entry for "+slug))
			}
		}
	case RunnerModePostgres:
		if len(c.DSNs) == 0 {
			result = multierror.Append(result, errors.New("RUNNER_DSNS is required in postgres mode"))
		}
	default:
		result = multierror.Append(result, errors.New("RUNNER_MODE must be 'rpc' or 'postgres'"))
	}

	if c.Retries < 1 {
		result = multierror.Append(result, errors.New("RUNNER_RETRIES must be at least 1"))
	}

	return result.ErrorOrNil()
}

type JudgeConfig struct {
	URL    string `env:"URL"`
	APIKey string `env:"API_KEY"`
	Model  string `env:"MODEL"`

	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

// Enabled reports whether the semantic judge is configured at all.
// Without it, inconclusive gradings resolve to a mismatch.
func (c JudgeConfig) Enabled() bool {
	return c.URL != ""
}

func (c JudgeConfig) Validate() error {
	if !c.Enabled() {
		return nil
	}

	var result *multierror.Error
	if c.APIKey == "" {
		result = multierror.Append(result, errors.New("JUDGE_API_KEY is required"))
	}
	if c.Model == "" {
		result = multierror.Append(result, errors.New("JUDGE_MODEL is required"))
	}

	return result.ErrorOrNil()
}

type RedisConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"6379"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Enabled reports whether the reference-result cache is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type HistoryConfig struct {
	// Path is the SQLite file the grading history is stored in.
	Path string `env:"PATH" envDefault:"history.db"`
}

type PostHogConfig struct {
	APIKey   string `env:"API_KEY"`
	Endpoint string `env:"ENDPOINT" envDefault:"https://us.i.posthog.com"`
}

func (c PostHogConfig) Enabled() bool {
	return c.APIKey != ""
}

type ExporterConfig struct {
	Port int `env:"EXPORTER_PORT" envDefault:"9090"`

	History HistoryConfig `envPrefix:"HISTORY_"`
}
