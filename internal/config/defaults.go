package config

import (
	"slices"
	"time"

	"github.com/elilinden/Support-bot/internal/session"
	"github.com/elilinden/Support-bot/internal/upload"
)

// DefaultPath is where the config file is looked for and saved.
const DefaultPath = ".opcoach.yml"

// defaultModels maps each provider to the model used when none is set.
var defaultModels = map[ProviderType]string{
	ProviderGoogle: "gemini-2.5-flash",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderMock:   "mock",
}

// DefaultModel returns the model for provider, falling back to Gemini.
func DefaultModel(provider ProviderType) string {
	if m, ok := defaultModels[provider]; ok {
		return m
	}
	return defaultModels[ProviderGoogle]
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:        ProviderGoogle,
		Model:           DefaultModel(ProviderGoogle),
		MaxOutputTokens: 4096,
		Temperature:     0.7,
		Retry: RetryConfig{
			Attempts:  3,
			BaseDelay: time.Second,
		},
		Server: ServerConfig{
			Port:           8080,
			RequestTimeout: 60 * time.Second,
		},
		Store: StoreConfig{
			Backend:   StoreSQLite,
			CacheSize: session.DefaultCacheSize,
		},
		DataDir: ".opcoach",
		Upload: UploadConfig{
			MaxChars:        upload.DefaultMaxChars,
			AllowedPatterns: slices.Clone(upload.DefaultAllowedPatterns),
		},
		Audit: AuditConfig{
			Retention:     90 * 24 * time.Hour,
			SweepInterval: time.Hour,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		DefaultTone: "plain",
	}
}
