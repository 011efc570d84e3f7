package llm

import (
	"encoding/json"

	"github.com/polychat/polychat/internal/core"
)

// Normalize maps a successful provider payload to plain text using the
// dialect's extractor. It never fails: an unexpected or unparseable shape
// degrades to the payload serialized as text, so no response is silently
// dropped. Transport-level failures are handled before this point.
func Normalize(dialect core.Dialect, payload []byte) string {
	spec, ok := dialects[dialect]
	if !ok {
		return string(payload)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return string(payload)
	}

	if text, ok := spec.extract(decoded); ok {
		return text
	}
	return string(payload)
}

// extractChatChoice reads choices[0].message.content (OpenAI, Mistral).
func extractChatChoice(payload map[string]any) (string, bool) {
	choices, ok := payload["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	message, ok := choice["message"].(map[string]any)
	if !ok {
		return "", false
	}
	return stringField(message, "content")
}

// extractAnthropicContent reads content[0].text.
func extractAnthropicContent(payload map[string]any) (string, bool) {
	blocks, ok := payload["content"].([]any)
	if !ok || len(blocks) == 0 {
		return "", false
	}
	block, ok := blocks[0].(map[string]any)
	if !ok {
		return "", false
	}
	return stringField(block, "text")
}

// extractOllamaResponse reads response, then text.
func extractOllamaResponse(payload map[string]any) (string, bool) {
	if text, ok := stringField(payload, "response"); ok {
		return text, true
	}
	return stringField(payload, "text")
}

// extractAnyText tries the generic field names in fixed order. The order is
// load-bearing: several dialects overload these names.
func extractAnyText(payload map[string]any) (string, bool) {
	if text, ok := extractChatChoice(payload); ok {
		return text, true
	}
	if text, ok := stringField(payload, "content"); ok {
		return text, true
	}
	return stringField(payload, "response")
}

func stringField(m map[string]any, key string) (string, bool) {
	v, ok := m[key].(string)
	return v, ok
}
