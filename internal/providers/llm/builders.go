package llm

import (
	"github.com/polychat/polychat/internal/core"
)

func bearerAuth(d core.ProviderDescriptor) map[string]string {
	headers := make(map[string]string)
	if d.Credential != "" {
		headers["Authorization"] = "Bearer " + d.Credential
	}
	return headers
}

func anthropicAuth(d core.ProviderDescriptor) map[string]string {
	return map[string]string{
		"x-api-key":         d.Credential,
		"anthropic-version": "2023-06-01",
	}
}

func resolveModel(hint, fallback string) string {
	if hint != "" {
		return hint
	}
	return fallback
}

func temperatureOrDefault(in BuildInput) float64 {
	if in.Temperature != nil {
		return *in.Temperature
	}
	return DefaultTemperature
}

func maxTokensOrDefault(in BuildInput) int {
	if in.MaxTokens != nil {
		return *in.MaxTokens
	}
	return DefaultMaxTokens
}

// messagesBuilder covers the messages-array family (OpenAI, Mistral,
// Anthropic): one user message carrying the augmented prompt. withSeed is
// false for dialects that reject a seed field.
func messagesBuilder(path, defaultModel string, auth func(core.ProviderDescriptor) map[string]string, withSeed bool) requestBuilder {
	return func(d core.ProviderDescriptor, in BuildInput) *Plan {
		model := resolveModel(in.ModelHint, defaultModel)
		body := map[string]any{
			"model": model,
			"messages": []map[string]any{
				{"role": "user", "content": in.Prompt},
			},
			"temperature": temperatureOrDefault(in),
			"max_tokens":  maxTokensOrDefault(in),
		}
		if withSeed && in.Seed != "" {
			body["seed"] = in.Seed
		}
		return &Plan{
			Provider: d,
			URL:      d.EndpointURL + path,
			Headers:  auth(d),
			Body:     body,
			Model:    model,
		}
	}
}

// buildOllamaGenerate uses the single-string-prompt form with a nested
// options object; the token budget travels under num_predict.
func buildOllamaGenerate(d core.ProviderDescriptor, in BuildInput) *Plan {
	model := resolveModel(in.ModelHint, "llama3.2")
	options := map[string]any{
		"temperature": temperatureOrDefault(in),
		"num_predict": maxTokensOrDefault(in),
	}
	if in.Seed != "" {
		options["seed"] = in.Seed
	}
	return &Plan{
		Provider: d,
		URL:      d.EndpointURL + "/api/generate",
		Headers:  bearerAuth(d),
		Body: map[string]any{
			"model":   model,
			"prompt":  in.Prompt,
			"stream":  false,
			"options": options,
		},
		Model: model,
	}
}

// flatPromptBuilder covers raw-prompt and custom-json: a flat body with
// prompt plus pass-through options. custom-json uses the declared endpoint
// verbatim (empty path).
func flatPromptBuilder(path string) requestBuilder {
	return func(d core.ProviderDescriptor, in BuildInput) *Plan {
		model := in.ModelHint
		body := map[string]any{
			"prompt": in.Prompt,
		}
		if model != "" {
			body["model"] = model
		}
		if in.Seed != "" {
			body["seed"] = in.Seed
		}
		if in.Temperature != nil {
			body["temperature"] = *in.Temperature
		}
		if in.MaxTokens != nil {
			body["max_tokens"] = *in.MaxTokens
		}
		if model == "" {
			model = d.ID
		}
		return &Plan{
			Provider: d,
			URL:      d.EndpointURL + path,
			Headers:  bearerAuth(d),
			Body:     body,
			Model:    model,
		}
	}
}
