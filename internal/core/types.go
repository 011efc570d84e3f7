package core

import "time"

const (
	AppName    = "polychat"
	AppVersion = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one immutable message within a session.
type Turn struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// Capability describes what a provider can generate.
type Capability string

const (
	CapabilityText  Capability = "text"
	CapabilityImage Capability = "image"
	CapabilityBoth  Capability = "both"
)

// Dialect is the wire-format family a provider speaks.
type Dialect string

const (
	DialectOpenAIChat        Dialect = "openai-chat"
	DialectAnthropicMessages Dialect = "anthropic-messages"
	DialectMistralChat       Dialect = "mistral-chat"
	DialectOllamaGenerate    Dialect = "ollama-generate"
	DialectRawPrompt         Dialect = "raw-prompt"
	DialectCustomJSON        Dialect = "custom-json"
)

// ProviderDescriptor describes one upstream generation endpoint and how to
// speak to it. Credential is never serialized.
type ProviderDescriptor struct {
	ID          string     `json:"id"`
	DisplayName string     `json:"display_name"`
	EndpointURL string     `json:"endpoint_url"`
	Capability  Capability `json:"capability"`
	Dialect     Dialect    `json:"dialect"`
	Credential  string     `json:"-"`
	NeedsAPIKey bool       `json:"needs_api_key"`
	Enabled     bool       `json:"enabled"`
}

// Redacted returns a copy safe to hand to callers.
func (d ProviderDescriptor) Redacted() ProviderDescriptor {
	d.Credential = ""
	return d
}

// Attachment is a file the caller wants folded into the prompt. Only textual
// content travels in TextContent; binary attachments carry metadata only.
type Attachment struct {
	Name        string `json:"name"`
	MimeType    string `json:"mime_type"`
	TextContent string `json:"text_content,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// GenerateRequest is one logical generation request from the caller.
type GenerateRequest struct {
	Prompt      string       `json:"prompt"`
	ProviderID  string       `json:"provider_id,omitempty"`
	ModelHint   string       `json:"model_hint,omitempty"`
	Seed        string       `json:"seed,omitempty"`
	Temperature *float64     `json:"temperature,omitempty"`
	MaxTokens   *int         `json:"max_tokens,omitempty"`
	SessionID   string       `json:"session_id,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Result is the canonical shape every provider response is normalized to.
type Result struct {
	Text       string    `json:"text"`
	ProviderID string    `json:"provider_id"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id"`
}
