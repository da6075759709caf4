package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"github.com/elilinden/Support-bot/internal/facts"
	"github.com/elilinden/Support-bot/internal/llm"
	"github.com/elilinden/Support-bot/internal/prompts"
)

// EnvPrefix prefixes environment overrides. A double underscore addresses
// a nested key: OPCOACH_SERVER__PORT sets server.port.
const EnvPrefix = "OPCOACH_"

// Load reads configuration from the given YAML file, then overlays a .env
// file next to it, OPCOACH_* environment variables and the legacy
// variables (MOCK_LLM, GEMINI_MODEL).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Start from defaults.
	cfg := DefaultConfig()

	if err := loadDotEnv(filepath.Join(filepath.Dir(path), ".env")); err != nil {
		return nil, err
	}

	// Load YAML file if it exists.
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	applyLegacyEnv(cfg)
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// loadDotEnv sets variables from path without overriding the ones already
// in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

func applyLegacyEnv(cfg *Config) {
	switch strings.ToLower(os.Getenv("MOCK_LLM")) {
	case "1", "true", "yes":
		cfg.MockLLM = true
	}
	if m := os.Getenv("GEMINI_MODEL"); m != "" && cfg.Provider == ProviderGoogle {
		cfg.Model = m
	}
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderGoogle: true,
	ProviderOpenAI: true,
	ProviderMock:   true,
}

var validBackends = map[StoreBackend]bool{
	StoreSQLite:   true,
	StoreMemory:   true,
	StoreRedis:    true,
	StorePostgres: true,
}

var validLogFormats = map[string]bool{"json": true, "console": true}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of google, openai, mock", c.Provider)
	}
	if c.Provider == ProviderOpenAI && c.Model == "" {
		return fmt.Errorf("model is required for provider openai")
	}
	if c.MaxOutputTokens < 0 {
		return fmt.Errorf("max_output_tokens must be non-negative")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature %.2f out of range [0, 2]", c.Temperature)
	}
	if c.Retry.Attempts < 1 {
		return fmt.Errorf("retry.attempts must be at least 1")
	}
	if c.Retry.BaseDelay < 0 {
		return fmt.Errorf("retry.base_delay must be non-negative")
	}
	if c.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must be non-negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("invalid store.backend %q: must be one of sqlite, memory, redis, postgres", c.Store.Backend)
	}
	if c.Store.Backend == StoreRedis && c.Store.RedisURL == "" {
		return fmt.Errorf("store.redis_url is required for the redis backend")
	}
	if c.Store.Backend == StorePostgres && c.Store.PostgresURL == "" {
		return fmt.Errorf("store.postgres_url is required for the postgres backend")
	}
	if c.Store.Backend == StoreSQLite && c.DataDir == "" {
		return fmt.Errorf("data_dir is required for the sqlite backend")
	}
	if c.Store.CacheSize < 0 {
		return fmt.Errorf("store.cache_size must be non-negative")
	}

	if c.Upload.MaxChars < 0 {
		return fmt.Errorf("upload.max_chars must be non-negative")
	}
	if c.Audit.Retention < 0 {
		return fmt.Errorf("audit.retention must be non-negative")
	}
	if c.Audit.Retention > 0 && c.Audit.SweepInterval <= 0 {
		return fmt.Errorf("audit.sweep_interval must be positive when audit.retention is set")
	}
	if c.DefaultTone != "" && !prompts.Tone(c.DefaultTone).Valid() {
		return fmt.Errorf("invalid default_tone %q: must be plain or formal", c.DefaultTone)
	}
	if !facts.ValidCounty(c.DefaultCounty) {
		return fmt.Errorf("default_county %q is not a New York county", c.DefaultCounty)
	}
	if c.Log.Format != "" && !validLogFormats[c.Log.Format] {
		return fmt.Errorf("invalid log.format %q: must be json or console", c.Log.Format)
	}
	return nil
}

// DBPath is the SQLite database file inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "opcoach.db")
}

// LLMOptions builds the model collaborator options, reading API keys from
// the environment.
func (c *Config) LLMOptions() llm.Options {
	google, openAI := llm.APIKeysFromEnv()
	return llm.Options{
		Provider:       string(c.Provider),
		Model:          c.Model,
		Mock:           c.MockLLM,
		GoogleAPIKey:   google,
		OpenAIAPIKey:   openAI,
		RetryAttempts:  c.Retry.Attempts,
		RetryBaseDelay: c.Retry.BaseDelay,
		RateLimitRPM:   c.RateLimitRPM,
	}
}

// APIKeyEnvVar returns the environment variable holding the API key of the
// given provider.
func APIKeyEnvVar(provider ProviderType) string {
	switch provider {
	case ProviderGoogle:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}
