package ai

import (
	"errors"

	"pookal/internal/config"
)

// ErrNoProvider is returned when no inference backend can be selected.
// Callers degrade to canned persona responses rather than failing the turn.
var ErrNoProvider = errors.New("no inference provider available")

// Select picks an inference provider from config. With no explicit
// preference it probes Ollama first (local, free) and falls back to OpenAI
// when an API key is configured.
func Select(cfg config.ProviderConfig) (Provider, error) {
	switch cfg.Prefer {
	case "ollama":
		return NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	case "openai":
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("provider.openai.api_key not configured")
		}
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	}

	if CheckOllamaAvailable(cfg.Ollama.BaseURL) {
		return NewOllamaProvider(cfg.Ollama.BaseURL, cfg.Ollama.Model), nil
	}
	if cfg.OpenAI.APIKey != "" {
		return NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.Model), nil
	}
	return nil, ErrNoProvider
}
