package llm

import (
	"fmt"

	"github.com/polychat/polychat/internal/core"
)

// Option defaults applied when the caller leaves them unset.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// BuildInput is the dialect-independent shape of one generation request,
// prompt already context-augmented.
type BuildInput struct {
	Prompt      string
	ModelHint   string
	Seed        string
	Temperature *float64
	MaxTokens   *int
}

// Plan is a fully built wire request for one provider, ready to dispatch.
type Plan struct {
	Provider core.ProviderDescriptor
	URL      string
	Headers  map[string]string
	Body     map[string]any
	Model    string
}

type requestBuilder func(d core.ProviderDescriptor, in BuildInput) *Plan

type responseExtractor func(payload map[string]any) (string, bool)

type dialectSpec struct {
	build   requestBuilder
	extract responseExtractor
}

// dialects is the wire-format strategy table, registered once at init.
// Adding a provider family means adding one entry here.
var dialects = map[core.Dialect]dialectSpec{
	core.DialectOpenAIChat: {
		build:   messagesBuilder("/v1/chat/completions", "gpt-4o-mini", bearerAuth, true),
		extract: extractChatChoice,
	},
	core.DialectMistralChat: {
		build:   messagesBuilder("/v1/chat/completions", "mistral-small-latest", bearerAuth, true),
		extract: extractChatChoice,
	},
	core.DialectAnthropicMessages: {
		build:   messagesBuilder("/v1/messages", "claude-3-5-haiku-latest", anthropicAuth, false),
		extract: extractAnthropicContent,
	},
	core.DialectOllamaGenerate: {
		build:   buildOllamaGenerate,
		extract: extractOllamaResponse,
	},
	core.DialectRawPrompt: {
		build:   flatPromptBuilder("/generate"),
		extract: extractAnyText,
	},
	core.DialectCustomJSON: {
		build:   flatPromptBuilder(""),
		extract: extractAnyText,
	},
}

// BuildPlan builds the provider-specific wire request for the descriptor's
// dialect. Unknown dialects are a caller error.
func BuildPlan(d core.ProviderDescriptor, in BuildInput) (*Plan, error) {
	spec, ok := dialects[d.Dialect]
	if !ok {
		return nil, fmt.Errorf("%w: unknown dialect %q", core.ErrInvalidRequest, d.Dialect)
	}
	return spec.build(d, in), nil
}
