package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/elilinden/Support-bot/internal/facts"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to opcoach! Let's set up your coaching server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Provider selection.
	providerPrompt := promptui.Select{
		Label: "Select model provider",
		Items: []string{"google", "openai", "mock"},
	}
	_, providerStr, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	cfg.Provider = ProviderType(providerStr)

	// 2. Model.
	if cfg.Provider != ProviderMock {
		modelPrompt := promptui.Prompt{
			Label:   "Model",
			Default: DefaultModel(cfg.Provider),
		}
		if cfg.Model, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
	} else {
		cfg.Model = DefaultModel(ProviderMock)
	}

	// 3. Session store.
	storePrompt := promptui.Select{
		Label: "Where should case sessions be stored?",
		Items: []string{
			"sqlite   — a local database file",
			"memory   — lost on restart",
			"redis    — shared Redis server",
			"postgres — shared Postgres database",
		},
	}
	storeIdx, _, err := storePrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("store selection: %w", err)
	}
	backends := []StoreBackend{StoreSQLite, StoreMemory, StoreRedis, StorePostgres}
	cfg.Store.Backend = backends[storeIdx]

	switch cfg.Store.Backend {
	case StoreRedis:
		if cfg.Store.RedisURL, err = promptURL("Redis URL", "redis://localhost:6379/0"); err != nil {
			return nil, err
		}
	case StorePostgres:
		if cfg.Store.PostgresURL, err = promptURL("Postgres URL", "postgres://localhost:5432/opcoach"); err != nil {
			return nil, err
		}
	}

	// 4. Default county.
	countyPrompt := promptui.Prompt{
		Label: "Default county (leave blank for none)",
		Validate: func(s string) error {
			if !facts.ValidCounty(s) {
				return fmt.Errorf("%q is not a New York county", s)
			}
			return nil
		},
	}
	county, err := countyPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("county: %w", err)
	}
	cfg.DefaultCounty = strings.TrimSpace(county)

	// 5. Upload patterns.
	uploadPrompt := promptui.Prompt{
		Label:   "Accepted upload files (comma-separated globs)",
		Default: strings.Join(cfg.Upload.AllowedPatterns, ","),
	}
	patterns, err := uploadPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("upload patterns: %w", err)
	}
	if p := splitAndTrim(patterns); len(p) > 0 {
		cfg.Upload.AllowedPatterns = p
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Check for API key.
	if envVar := APIKeyEnvVar(cfg.Provider); envVar != "" && os.Getenv(envVar) == "" {
		fmt.Printf("\nNote: Set %s in your environment (or .env) before running opcoach server.\n", envVar)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func promptURL(label, def string) (string, error) {
	p := promptui.Prompt{
		Label:   label,
		Default: def,
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("a URL is required")
			}
			return nil
		},
	}
	v, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("%s: %w", strings.ToLower(label), err)
	}
	return strings.TrimSpace(v), nil
}

// splitAndTrim splits a comma-separated string and trims whitespace.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
