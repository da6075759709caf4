package llm

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// Options selects and tunes the model collaborator.
type Options struct {
	Provider       string // "google", "openai" or "mock"
	Model          string
	Mock           bool
	GoogleAPIKey   string
	OpenAIAPIKey   string
	RetryAttempts  int
	RetryBaseDelay time.Duration
	RateLimitRPM   int
}

// DefaultGoogleModel is used when no model is configured for Gemini.
const DefaultGoogleModel = "gemini-2.5-flash"

// APIKeysFromEnv reads provider credentials. GEMINI_API_KEY takes
// precedence over GOOGLE_API_KEY.
func APIKeysFromEnv() (google, openAI string) {
	google = os.Getenv("GEMINI_API_KEY")
	if google == "" {
		google = os.Getenv("GOOGLE_API_KEY")
	}
	return google, os.Getenv("OPENAI_API_KEY")
}

// NewProvider builds the configured provider wrapped with rate limiting and
// retry. A provider without a credential is still returned; its calls fail
// with ErrNotConfigured so the process can start and report its health.
func NewProvider(opts Options, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var base Provider
	switch {
	case opts.Mock || opts.Provider == "mock":
		// The mock never fails, so it is not worth wrapping.
		return NewMockProvider(), nil
	case opts.Provider == "" || opts.Provider == "google":
		model := opts.Model
		if model == "" {
			model = DefaultGoogleModel
		}
		base = NewGoogleProvider(opts.GoogleAPIKey, model)
	case opts.Provider == "openai":
		base = NewOpenAIProvider(opts.OpenAIAPIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}

	limited := NewRateLimitedProvider(base, opts.RateLimitRPM)
	return NewRetryingProvider(limited, opts.RetryAttempts, opts.RetryBaseDelay, logger.Named("llm")), nil
}

// CheckHealth reports the collaborator's configuration without calling it.
func CheckHealth(opts Options) Health {
	if opts.Mock || opts.Provider == "mock" {
		return Health{Provider: "mock", Status: HealthMock, Model: "mock", Mock: true}
	}
	h := Health{Provider: opts.Provider, Status: HealthOK, Model: opts.Model}
	switch opts.Provider {
	case "openai":
		if opts.OpenAIAPIKey == "" {
			h.Status = HealthMissingKey
		}
	default:
		h.Provider = "google"
		if h.Model == "" {
			h.Model = DefaultGoogleModel
		}
		if opts.GoogleAPIKey == "" {
			h.Status = HealthMissingKey
		}
	}
	return h
}
