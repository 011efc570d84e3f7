package router

import (
	"context"
	"errors"

	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/internal/providers/llm"
	"github.com/polychat/polychat/internal/providers/registry"
	"github.com/polychat/polychat/pkg/log"
)

// Router resolves a logical generation request to one provider, dispatches
// it, and normalizes the reply. Routing never blocks generation while a
// usable default exists: an unresolvable provider id falls back to the
// default, and a failed dispatch gets exactly one fallback attempt against
// the default with the same augmented prompt.
type Router struct {
	registry   *registry.Registry
	dispatcher llm.Dispatcher
}

func NewRouter(reg *registry.Registry, dispatcher llm.Dispatcher) *Router {
	return &Router{
		registry:   reg,
		dispatcher: dispatcher,
	}
}

// Outcome is the normalized reply of one routed request.
type Outcome struct {
	Text       string
	ProviderID string
	Model      string
}

// AugmentPrompt prepends the formatted prior context, when any, plus an
// instruction to stay consistent with it. Computed once per request; the
// same augmented prompt is reused on fallback.
func AugmentPrompt(contextBlock, prompt string) string {
	if contextBlock == "" {
		return prompt
	}
	return contextBlock + "\nContinue the conversation and stay consistent with the turns above.\n\n" + prompt
}

// Execute runs the full routing sequence for an already-validated request.
// The prompt inside req must be the augmented one.
func (r *Router) Execute(ctx context.Context, req core.GenerateRequest, extra []core.ProviderDescriptor) (*Outcome, error) {
	provider := r.resolve(ctx, req.ProviderID, extra)

	if err := r.checkCredential(&provider, extra); err != nil {
		return nil, err
	}

	in := llm.BuildInput{
		Prompt:      req.Prompt,
		ModelHint:   req.ModelHint,
		Seed:        req.Seed,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	outcome, err := r.dispatch(ctx, provider, in)
	if err == nil {
		return outcome, nil
	}

	// One fallback to the default provider on upstream failure, never more.
	fallback := r.registry.Default()
	if provider.ID == fallback.ID || !isUpstreamFailure(err) {
		return nil, err
	}

	log.FromCtx(ctx).Warn().Err(err).
		Str("provider", provider.ID).
		Str("fallback", fallback.ID).
		Msg("provider failed, retrying against default")

	return r.dispatch(ctx, fallback, in)
}

// resolve picks the provider for the request. Missing id, the default
// marker, or an unknown id all land on the default provider; the unknown
// case is logged as degraded service, not surfaced as an error.
func (r *Router) resolve(ctx context.Context, providerID string, extra []core.ProviderDescriptor) core.ProviderDescriptor {
	if providerID == "" || providerID == registry.DefaultMarker {
		return r.registry.Default()
	}

	provider, ok := r.registry.Resolve(providerID, extra)
	if !ok {
		log.FromCtx(ctx).Warn().
			Str("provider", providerID).
			Msg("provider unresolved, degrading to default")
		return r.registry.Default()
	}
	return provider
}

// checkCredential enforces the credential gate before any dispatch. A key
// supplied by the caller for the same provider id overrides the one the
// descriptor already carries.
func (r *Router) checkCredential(provider *core.ProviderDescriptor, extra []core.ProviderDescriptor) error {
	for _, d := range extra {
		if d.ID == provider.ID && d.Credential != "" {
			provider.Credential = d.Credential
			break
		}
	}

	if provider.NeedsAPIKey && provider.Credential == "" {
		return &core.MissingCredentialError{ProviderID: provider.ID}
	}
	return nil
}

func (r *Router) dispatch(ctx context.Context, provider core.ProviderDescriptor, in llm.BuildInput) (*Outcome, error) {
	plan, err := llm.BuildPlan(provider, in)
	if err != nil {
		return nil, err
	}

	payload, err := r.dispatcher.Dispatch(ctx, plan)
	if err != nil {
		return nil, err
	}

	return &Outcome{
		Text:       llm.Normalize(provider.Dialect, payload),
		ProviderID: provider.ID,
		Model:      plan.Model,
	}, nil
}

func isUpstreamFailure(err error) bool {
	var provErr *core.ProviderError
	var transErr *core.TransportError
	return errors.As(err, &provErr) || errors.As(err, &transErr)
}
