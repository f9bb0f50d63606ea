// Package config resolves process configuration: the required
// genai.base-path setting and per-provider LM credentials, following the
// env-wins layering used throughout the engine.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

// Config is the resolved process configuration.
type Config struct {
	// BasePath is the root directory containing the agents/ and
	// workflows/ subtrees (genai.base-path).
	BasePath string

	// Credentials maps a normalized provider name to its API key,
	// populated from the environment. A missing entry surfaces only on
	// first use of the affected provider, never at load time.
	Credentials map[string]string

	// OllamaBaseURL overrides the default Ollama endpoint.
	OllamaBaseURL string

	// AzureEndpoint is required when the azure/azure-openai provider is used.
	AzureEndpoint string
}

const envPrefix = "GENAI_"

// providerEnvKeys maps a normalized provider name to the environment
// variable its API key is read from. These are intentionally unprefixed
// so the same key shared with the provider SDKs works here.
var providerEnvKeys = map[string]string{
	"openai":       "OPENAI_API_KEY",
	"anthropic":    "ANTHROPIC_API_KEY",
	"claude":       "ANTHROPIC_API_KEY",
	"google":       "GOOGLE_API_KEY",
	"googleai":     "GOOGLE_API_KEY",
	"gemini":       "GEMINI_API_KEY",
	"groq":         "GROQ_API_KEY",
	"deepseek":     "DEEPSEEK_API_KEY",
	"azure":        "AZURE_OPENAI_API_KEY",
	"azure-openai": "AZURE_OPENAI_API_KEY",
}

// Load resolves configuration from the process environment. basePath, when
// non-empty, overrides GENAI_BASE_PATH.
func Load(basePath string) (*Config, error) {
	k := koanf.New(".")
	opt := env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			return strings.TrimPrefix(k, envPrefix), v
		},
	}
	if err := k.Load(env.Provider(".", opt), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment configuration: %w", err)
	}
	cfg := &Config{
		BasePath:      basePath,
		Credentials:   map[string]string{},
		OllamaBaseURL: k.String("OLLAMA_BASE_URL"),
		AzureEndpoint: k.String("AZURE_OPENAI_ENDPOINT"),
	}
	if cfg.BasePath == "" {
		cfg.BasePath = k.String("BASE_PATH")
	}
	if cfg.BasePath == "" {
		return nil, fmt.Errorf("genai.base-path is required")
	}
	if cfg.OllamaBaseURL == "" {
		cfg.OllamaBaseURL = "http://localhost:11434"
	}
	for provider, envKey := range providerEnvKeys {
		if v := os.Getenv(envKey); v != "" {
			cfg.Credentials[provider] = v
		}
	}
	return cfg, nil
}

// Credential returns the API key configured for provider, and whether one
// was found.
func (c *Config) Credential(provider string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.Credentials[strings.ToLower(provider)]
	return v, ok
}
