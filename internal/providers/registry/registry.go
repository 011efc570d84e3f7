package registry

import (
	"github.com/polychat/polychat/internal/config"
	"github.com/polychat/polychat/internal/core"
)

const (
	// DefaultProviderID is the free, credential-less provider every
	// unresolvable request falls back to.
	DefaultProviderID = "free"
	// DefaultMarker in a request selects the default provider explicitly.
	DefaultMarker = "default"
)

// Registry holds the built-in provider catalog. Built-ins are fixed at
// process start; caller-supplied descriptors are merged per request and
// never cached, since the caller may edit them between calls.
type Registry struct {
	builtins []core.ProviderDescriptor
}

func NewRegistry(cfg *config.ProvidersConfig) *Registry {
	return &Registry{
		builtins: []core.ProviderDescriptor{
			{
				ID:          DefaultProviderID,
				DisplayName: "Free (Pollinations)",
				EndpointURL: cfg.FreeEndpoint,
				Capability:  core.CapabilityBoth,
				Dialect:     core.DialectRawPrompt,
				Enabled:     true,
			},
			{
				ID:          "openai",
				DisplayName: "OpenAI",
				EndpointURL: "https://api.openai.com",
				Capability:  core.CapabilityText,
				Dialect:     core.DialectOpenAIChat,
				Credential:  cfg.OpenAIAPIKey,
				NeedsAPIKey: true,
				Enabled:     true,
			},
			{
				ID:          "anthropic",
				DisplayName: "Anthropic",
				EndpointURL: "https://api.anthropic.com",
				Capability:  core.CapabilityText,
				Dialect:     core.DialectAnthropicMessages,
				Credential:  cfg.AnthropicAPIKey,
				NeedsAPIKey: true,
				Enabled:     true,
			},
			{
				ID:          "mistral",
				DisplayName: "Mistral",
				EndpointURL: "https://api.mistral.ai",
				Capability:  core.CapabilityText,
				Dialect:     core.DialectMistralChat,
				Credential:  cfg.MistralAPIKey,
				NeedsAPIKey: true,
				Enabled:     true,
			},
			{
				ID:          "ollama",
				DisplayName: "Ollama (local)",
				EndpointURL: cfg.OllamaBaseURL,
				Capability:  core.CapabilityText,
				Dialect:     core.DialectOllamaGenerate,
				Enabled:     true,
			},
		},
	}
}

// Default returns the fallback provider descriptor.
func (r *Registry) Default() core.ProviderDescriptor {
	d, _ := r.Resolve(DefaultProviderID, nil)
	return d
}

// Resolve finds an enabled descriptor by exact id: built-ins first, then the
// caller-supplied extras.
func (r *Registry) Resolve(id string, extra []core.ProviderDescriptor) (core.ProviderDescriptor, bool) {
	for _, d := range r.builtins {
		if d.ID == id && d.Enabled {
			return d, true
		}
	}
	for _, d := range extra {
		if d.ID == id && d.Enabled {
			return d, true
		}
	}
	return core.ProviderDescriptor{}, false
}

// List returns the catalog with credentials redacted, optionally filtered by
// capability. A "both" provider matches either filter.
func (r *Registry) List(filter core.Capability, extra []core.ProviderDescriptor) []core.ProviderDescriptor {
	out := make([]core.ProviderDescriptor, 0, len(r.builtins)+len(extra))
	for _, d := range r.builtins {
		if matches(d.Capability, filter) {
			out = append(out, d.Redacted())
		}
	}
	for _, d := range extra {
		if matches(d.Capability, filter) {
			out = append(out, d.Redacted())
		}
	}
	return out
}

func matches(have, want core.Capability) bool {
	if want == "" || want == core.CapabilityBoth {
		return true
	}
	return have == want || have == core.CapabilityBoth
}
