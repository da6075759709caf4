package config

import "time"

// ProviderType identifies the model collaborator.
type ProviderType string

const (
	ProviderGoogle ProviderType = "google"
	ProviderOpenAI ProviderType = "openai"
	ProviderMock   ProviderType = "mock"
)

// StoreBackend selects where case sessions are kept.
type StoreBackend string

const (
	StoreSQLite   StoreBackend = "sqlite"
	StoreMemory   StoreBackend = "memory"
	StoreRedis    StoreBackend = "redis"
	StorePostgres StoreBackend = "postgres"
)

// Config is the top-level opcoach configuration, corresponding to .opcoach.yml.
// API keys are never stored here; they are read from the environment.
type Config struct {
	Provider        ProviderType `yaml:"provider" koanf:"provider"`
	Model           string       `yaml:"model" koanf:"model"`
	MockLLM         bool         `yaml:"mock_llm" koanf:"mock_llm"`
	MaxOutputTokens int          `yaml:"max_output_tokens" koanf:"max_output_tokens"`
	Temperature     float64      `yaml:"temperature" koanf:"temperature"`
	Retry           RetryConfig  `yaml:"retry" koanf:"retry"`
	RateLimitRPM    int          `yaml:"rate_limit_rpm" koanf:"rate_limit_rpm"`
	Server          ServerConfig `yaml:"server" koanf:"server"`
	Store           StoreConfig  `yaml:"store" koanf:"store"`
	DataDir         string       `yaml:"data_dir" koanf:"data_dir"`
	Upload          UploadConfig `yaml:"upload" koanf:"upload"`
	Audit           AuditConfig  `yaml:"audit" koanf:"audit"`
	Log             LogConfig    `yaml:"log" koanf:"log"`
	DefaultTone     string       `yaml:"default_tone" koanf:"default_tone"`
	DefaultCounty   string       `yaml:"default_county" koanf:"default_county"`
}

// RetryConfig controls retries of failed model calls.
type RetryConfig struct {
	Attempts  int           `yaml:"attempts" koanf:"attempts"`
	BaseDelay time.Duration `yaml:"base_delay" koanf:"base_delay"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port" koanf:"port"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	RequestTimeout  time.Duration `yaml:"request_timeout" koanf:"request_timeout"`
}

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend     StoreBackend `yaml:"backend" koanf:"backend"`
	RedisURL    string       `yaml:"redis_url,omitempty" koanf:"redis_url"`
	PostgresURL string       `yaml:"postgres_url,omitempty" koanf:"postgres_url"`
	// CacheSize is the number of sessions kept in memory in front of the
	// backend. Zero disables the cache.
	CacheSize int `yaml:"cache_size" koanf:"cache_size"`
}

type UploadConfig struct {
	MaxChars        int      `yaml:"max_chars" koanf:"max_chars"`
	AllowedPatterns []string `yaml:"allowed_patterns" koanf:"allowed_patterns"`
}

// AuditConfig controls how long turn audit entries are kept.
type AuditConfig struct {
	// Retention is the age after which entries are deleted. Zero keeps
	// them forever.
	Retention     time.Duration `yaml:"retention" koanf:"retention"`
	SweepInterval time.Duration `yaml:"sweep_interval" koanf:"sweep_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level" koanf:"level"`
	Format string `yaml:"format" koanf:"format"` // "json" or "console"
}
