// Package model builds and caches chat-model clients for every provider the
// orchestration engine supports, on top of tmc/langchaingo.
package model

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/flowmesh/orchestrator/engine/core"
	"github.com/flowmesh/orchestrator/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// openAITimeout is the fixed per-call timeout for OpenAI-family clients
// (openai, deepseek, groq all ride the OpenAI-compatible SDK).
const openAITimeout = 60 * time.Second

// ChatModel is the subset of langchaingo's llms.Model the engine invokes.
type ChatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error)
}

// cacheKey identifies a constructed client by its provider, model name and
// temperature; identical agents sharing a model configuration share a client.
type cacheKey struct {
	provider    string
	name        string
	temperature float64
}

// Factory builds and caches ChatModel clients per provider.
type Factory struct {
	cfg *config.Config

	mu    sync.RWMutex
	cache map[cacheKey]ChatModel
}

// NewFactory returns a Factory that resolves provider credentials from cfg.
func NewFactory(cfg *config.Config) *Factory {
	return &Factory{
		cfg:   cfg,
		cache: make(map[cacheKey]ChatModel),
	}
}

// Get returns the cached ChatModel for (provider, name, temperature),
// constructing and caching it on first use.
func (f *Factory) Get(provider, name string, temperature float64) (ChatModel, error) {
	key := cacheKey{provider: provider, name: name, temperature: temperature}

	f.mu.RLock()
	if cm, ok := f.cache[key]; ok {
		f.mu.RUnlock()
		return cm, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()
	if cm, ok := f.cache[key]; ok {
		return cm, nil
	}

	cm, err := f.build(provider, name, temperature)
	if err != nil {
		return nil, err
	}
	f.cache[key] = cm
	return cm, nil
}

func (f *Factory) build(provider, name string, temperature float64) (ChatModel, error) {
	switch strings.ToLower(provider) {
	case "openai":
		return f.buildOpenAICompatible(provider, name, "")
	case "anthropic", "claude":
		return f.buildAnthropic(name)
	case "googleai", "google", "gemini":
		return f.buildGoogleAI(provider, name)
	case "ollama":
		return f.buildOllama(name)
	case "deepseek":
		return f.buildOpenAICompatible(provider, name, "https://api.deepseek.com/v1")
	case "groq":
		return f.buildOpenAICompatible(provider, name, "https://api.groq.com/openai/v1")
	case "azure", "azure-openai":
		return f.buildAzure(name)
	default:
		return nil, core.NewError(
			fmt.Errorf("unsupported provider: %s", provider),
			core.KindUnsupportedProvider,
			map[string]any{"provider": provider},
		)
	}
}

func (f *Factory) credential(provider string) (string, error) {
	token, ok := f.cfg.Credential(provider)
	if !ok || token == "" {
		return "", core.NewError(
			fmt.Errorf("missing credential for provider: %s", provider),
			core.KindMissingCredential,
			map[string]any{"provider": provider},
		)
	}
	return token, nil
}

func (f *Factory) buildOpenAICompatible(provider, name, defaultBaseURL string) (ChatModel, error) {
	token, err := f.credential(providerCredentialAlias(provider))
	if err != nil {
		return nil, err
	}
	opts := []openai.Option{
		openai.WithModel(name),
		openai.WithToken(token),
		openai.WithHTTPClient(&http.Client{Timeout: openAITimeout}),
	}
	if defaultBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(defaultBaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, core.NewError(err, core.KindProviderHTTP, map[string]any{"provider": provider})
	}
	return llm, nil
}

func (f *Factory) buildAnthropic(name string) (ChatModel, error) {
	token, err := f.credential("anthropic")
	if err != nil {
		return nil, err
	}
	llm, err := anthropic.New(anthropic.WithModel(name), anthropic.WithToken(token))
	if err != nil {
		return nil, core.NewError(err, core.KindProviderHTTP, map[string]any{"provider": "anthropic"})
	}
	return llm, nil
}

func (f *Factory) buildGoogleAI(provider, name string) (ChatModel, error) {
	token, err := f.credential(provider)
	if err != nil {
		return nil, err
	}
	llm, err := googleai.New(context.Background(), googleai.WithAPIKey(token), googleai.WithDefaultModel(name))
	if err != nil {
		return nil, core.NewError(err, core.KindProviderHTTP, map[string]any{"provider": provider})
	}
	return llm, nil
}

func (f *Factory) buildOllama(name string) (ChatModel, error) {
	opts := []ollama.Option{ollama.WithModel(name)}
	if f.cfg.OllamaBaseURL != "" {
		opts = append(opts, ollama.WithServerURL(f.cfg.OllamaBaseURL))
	}
	llm, err := ollama.New(opts...)
	if err != nil {
		return nil, core.NewError(err, core.KindProviderHTTP, map[string]any{"provider": "ollama"})
	}
	return llm, nil
}

func (f *Factory) buildAzure(name string) (ChatModel, error) {
	token, err := f.credential("azure")
	if err != nil {
		return nil, err
	}
	if f.cfg.AzureEndpoint == "" {
		return nil, core.NewError(
			fmt.Errorf("azure provider requires an endpoint"),
			core.KindMissingCredential,
			map[string]any{"provider": "azure"},
		)
	}
	opts := []openai.Option{
		openai.WithModel(name),
		openai.WithToken(token),
		openai.WithBaseURL(f.cfg.AzureEndpoint),
		openai.WithAPIType(openai.APITypeAzure),
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, core.NewError(err, core.KindProviderHTTP, map[string]any{"provider": "azure"})
	}
	return llm, nil
}

// providerCredentialAlias maps an OpenAI-compatible provider name to the
// credential key under which its token is resolved.
func providerCredentialAlias(provider string) string {
	return provider
}
