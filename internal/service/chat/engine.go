package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/internal/providers/registry"
	"github.com/polychat/polychat/internal/service/memory"
	"github.com/polychat/polychat/internal/service/router"
)

// Engine is the single entry point the UI talks to: it ties session memory,
// provider routing, and response normalization into one request/response
// contract.
type Engine struct {
	memory   *memory.Manager
	router   *router.Router
	registry *registry.Registry
}

func NewEngine(mem *memory.Manager, rt *router.Router, reg *registry.Registry) *Engine {
	return &Engine{
		memory:   mem,
		router:   rt,
		registry: reg,
	}
}

// Generate runs one logical generation request end to end. The extra catalog
// holds the caller's custom/local provider descriptors for this request only.
//
// A failed generation never corrupts history: the user turn stays, and no
// assistant turn is written for a failed attempt.
func (e *Engine) Generate(ctx context.Context, req core.GenerateRequest, extra []core.ProviderDescriptor) (*core.Result, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, fmt.Errorf("%w: empty prompt", core.ErrInvalidRequest)
	}
	prompt = foldAttachments(prompt, req.Attachments)

	sessionID := e.memory.Open(req.SessionID)

	// Prior context only: the turn being made now is not part of it.
	contextBlock := e.memory.ContextFor(ctx, sessionID)
	e.memory.Append(ctx, sessionID, core.RoleUser, prompt)

	routed := req
	routed.Prompt = router.AugmentPrompt(contextBlock, prompt)

	outcome, err := e.router.Execute(ctx, routed, extra)
	if err != nil {
		return nil, err
	}

	e.memory.Append(ctx, sessionID, core.RoleAssistant, outcome.Text)

	return &core.Result{
		Text:       outcome.Text,
		ProviderID: outcome.ProviderID,
		Model:      outcome.Model,
		Timestamp:  time.Now(),
		SessionID:  sessionID,
	}, nil
}

// HistoryResult is the full ordered history of one session.
type HistoryResult struct {
	SessionID string      `json:"session_id"`
	Turns     []core.Turn `json:"turns"`
	Count     int         `json:"count"`
}

func (e *Engine) History(ctx context.Context, sessionID string) *HistoryResult {
	sessionID = e.memory.Open(sessionID)
	turns := e.memory.All(ctx, sessionID)
	return &HistoryResult{
		SessionID: sessionID,
		Turns:     turns,
		Count:     len(turns),
	}
}

// ClearHistory deletes the session's turns and returns the session id it
// acted on. Idempotent.
func (e *Engine) ClearHistory(ctx context.Context, sessionID string) string {
	sessionID = e.memory.Open(sessionID)
	e.memory.Clear(ctx, sessionID)
	return sessionID
}

// Providers lists the catalog with credentials redacted.
func (e *Engine) Providers(filter core.Capability, extra []core.ProviderDescriptor) []core.ProviderDescriptor {
	return e.registry.List(filter, extra)
}
