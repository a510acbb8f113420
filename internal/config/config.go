// Package config provides application configuration with multi-source
// priority.
//
// Sources (highest to lowest):
//  1. Environment variables (a .env file is loaded first if present)
//  2. Config file (./config.yaml)
//  3. Default values
//
// Missing database URI or API key is deliberately non-fatal: the process
// starts and the affected features degrade to advisory messages at request
// time. Sensitive values are masked in MarshalJSON/String.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var (
	// ErrInvalidTemperature indicates a temperature outside [0, 2].
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrNoModels indicates an empty candidate model list.
	ErrNoModels = errors.New("no candidate models configured")

	// ErrInvalidSummaryLimit indicates a non-positive summary record limit.
	ErrInvalidSummaryLimit = errors.New("invalid summary limit")
)

// DefaultModels mirrors the dispatcher's preference order.
var DefaultModels = []string{
	"gemini-1.5-flash",
	"gemini-1.5-flash-8b",
	"gemini-2.0-flash",
	"gemini-2.0-flash-lite",
	"gemini-2.0-flash-exp",
	"gemini-1.5-pro",
}

// Config stores application configuration.
// SECURITY: Sensitive fields are masked in MarshalJSON; update it when
// adding new secrets.
type Config struct {
	// MongoURI is the document store connection string. Bound to
	// DATABASE_URL first, then MONGODB_URI (first present wins).
	MongoURI string `mapstructure:"mongo_uri" json:"mongo_uri"` // SENSITIVE: masked in MarshalJSON

	// MongoDBName is used when the URI path carries no database name.
	MongoDBName string `mapstructure:"mongo_db_name" json:"mongo_db_name"`

	// GeminiAPIKey authenticates against the model provider.
	GeminiAPIKey string `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON

	// Models is the ordered candidate list for the dispatcher.
	Models []string `mapstructure:"models" json:"models"`

	// DirectiveTemperature is used for directive generation.
	DirectiveTemperature float32 `mapstructure:"directive_temperature" json:"directive_temperature"`

	// SummaryTemperature is used for result summarization.
	SummaryTemperature float32 `mapstructure:"summary_temperature" json:"summary_temperature"`

	// SummaryLimit caps the records shown to the summarizer.
	SummaryLimit int `mapstructure:"summary_limit" json:"summary_limit"`

	// Addr is the HTTP listen address.
	Addr string `mapstructure:"addr" json:"addr"`

	// CORSOrigins lists origins allowed by the CORS middleware.
	CORSOrigins []string `mapstructure:"cors_origins" json:"cors_origins"`
}

// Load loads configuration. A .env file in the working directory is applied
// to the environment first; absence is not an error.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded environment from .env")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env cover everything.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mongo_db_name", "bank")
	v.SetDefault("models", DefaultModels)
	v.SetDefault("directive_temperature", 0.7)
	v.SetDefault("summary_temperature", 0.3)
	v.SetDefault("summary_limit", 10)
	v.SetDefault("addr", "127.0.0.1:8000")
	v.SetDefault("cors_origins", []string{"*"})
}

// bindEnvVariables binds environment variables explicitly.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a failure here is a bug.
	mustBind := func(key string, envVars ...string) {
		if err := v.BindEnv(append([]string{key}, envVars...)...); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q: %v", key, err))
		}
	}

	// Two accepted names for the connection string, checked in order.
	mustBind("mongo_uri", "DATABASE_URL", "MONGODB_URI")
	mustBind("mongo_db_name", "MONGO_DB_NAME")
	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("addr", "BANKQL_ADDR")
	mustBind("models", "BANKQL_MODELS")
	mustBind("cors_origins", "BANKQL_CORS_ORIGINS")
}

// Validate checks value ranges. Absent MongoURI or GeminiAPIKey is valid:
// both are detected lazily at request time.
func (c *Config) Validate() error {
	if c.DirectiveTemperature < 0 || c.DirectiveTemperature > 2 {
		return fmt.Errorf("%w: directive_temperature %v not in [0, 2]", ErrInvalidTemperature, c.DirectiveTemperature)
	}
	if c.SummaryTemperature < 0 || c.SummaryTemperature > 2 {
		return fmt.Errorf("%w: summary_temperature %v not in [0, 2]", ErrInvalidTemperature, c.SummaryTemperature)
	}
	if len(c.Models) == 0 {
		return ErrNoModels
	}
	if c.SummaryLimit <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidSummaryLimit, c.SummaryLimit)
	}
	return nil
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging: short secrets are fully
// masked, longer ones keep two characters on each side for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON masks sensitive fields. The Mongo URI may embed credentials,
// so it is masked whole.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.MongoURI = maskSecret(a.MongoURI)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
