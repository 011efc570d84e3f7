package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychat/polychat/internal/config"
	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/internal/providers/llm"
	"github.com/polychat/polychat/internal/providers/registry"
)

// fakeDispatcher records plans and returns canned payloads or errors per
// provider id.
type fakeDispatcher struct {
	calls    []*llm.Plan
	payloads map[string][]byte
	errs     map[string]error
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		payloads: make(map[string][]byte),
		errs:     make(map[string]error),
	}
}

func (f *fakeDispatcher) Dispatch(ctx context.Context, plan *llm.Plan) ([]byte, error) {
	f.calls = append(f.calls, plan)
	if err := f.errs[plan.Provider.ID]; err != nil {
		return nil, err
	}
	if payload, ok := f.payloads[plan.Provider.ID]; ok {
		return payload, nil
	}
	return []byte(`{"response":"default reply"}`), nil
}

func testRouter(dispatcher llm.Dispatcher) *Router {
	reg := registry.NewRegistry(&config.ProvidersConfig{
		OllamaBaseURL: "http://localhost:11434",
		FreeEndpoint:  "https://text.pollinations.ai",
	})
	return NewRouter(reg, dispatcher)
}

func TestExecute_DefaultMarkerSelectsDefault(t *testing.T) {
	disp := newFakeDispatcher()
	r := testRouter(disp)

	for _, id := range []string{"", "default"} {
		disp.calls = nil
		out, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi", ProviderID: id}, nil)
		require.NoError(t, err)
		assert.Equal(t, registry.DefaultProviderID, out.ProviderID)
		require.Len(t, disp.calls, 1)
	}
}

func TestExecute_UnknownProviderFallsBackWithoutError(t *testing.T) {
	disp := newFakeDispatcher()
	r := testRouter(disp)

	out, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi", ProviderID: "no-such-provider"}, nil)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultProviderID, out.ProviderID)
	assert.Equal(t, "default reply", out.Text)
}

func TestExecute_MissingCredentialBlocksDispatch(t *testing.T) {
	disp := newFakeDispatcher()
	r := testRouter(disp) // registry built without any API keys

	_, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi", ProviderID: "openai"}, nil)

	var credErr *core.MissingCredentialError
	require.True(t, errors.As(err, &credErr))
	assert.Equal(t, "openai", credErr.ProviderID)
	assert.Empty(t, disp.calls, "credential gate must reject before any dispatch")
}

func TestExecute_CallerCredentialOverride(t *testing.T) {
	disp := newFakeDispatcher()
	disp.payloads["openai"] = []byte(`{"choices":[{"message":{"content":"from openai"}}]}`)
	r := testRouter(disp)

	extra := []core.ProviderDescriptor{{ID: "openai", Credential: "sk-caller"}}
	out, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi", ProviderID: "openai"}, extra)
	require.NoError(t, err)

	assert.Equal(t, "from openai", out.Text)
	require.Len(t, disp.calls, 1)
	assert.Equal(t, "Bearer sk-caller", disp.calls[0].Headers["Authorization"])
}

func TestExecute_UpstreamFailureFallsBackOnce(t *testing.T) {
	disp := newFakeDispatcher()
	disp.errs["ollama"] = &core.ProviderError{ProviderID: "ollama", Status: 500, Body: "boom"}
	disp.payloads[registry.DefaultProviderID] = []byte(`{"response":"rescued"}`)
	r := testRouter(disp)

	out, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi", ProviderID: "ollama"}, nil)
	require.NoError(t, err)

	assert.Equal(t, "rescued", out.Text)
	assert.Equal(t, registry.DefaultProviderID, out.ProviderID)
	require.Len(t, disp.calls, 2)
	// same augmented prompt reused on fallback
	assert.Equal(t, disp.calls[0].Body["prompt"], disp.calls[1].Body["prompt"])
}

func TestExecute_DefaultFailureIsSurfaced(t *testing.T) {
	disp := newFakeDispatcher()
	disp.errs[registry.DefaultProviderID] = &core.ProviderError{ProviderID: registry.DefaultProviderID, Status: 503, Body: "down"}
	r := testRouter(disp)

	_, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi"}, nil)

	var provErr *core.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, 503, provErr.Status)
	assert.Len(t, disp.calls, 1, "the default has no further fallback")
}

func TestExecute_FallbackFailureIsSurfaced(t *testing.T) {
	disp := newFakeDispatcher()
	disp.errs["ollama"] = &core.TransportError{ProviderID: "ollama", Err: errors.New("refused")}
	disp.errs[registry.DefaultProviderID] = &core.ProviderError{ProviderID: registry.DefaultProviderID, Status: 502, Body: "bad"}
	r := testRouter(disp)

	_, err := r.Execute(context.Background(), core.GenerateRequest{Prompt: "hi", ProviderID: "ollama"}, nil)

	var provErr *core.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Len(t, disp.calls, 2, "exactly one fallback attempt")
}

func TestAugmentPrompt(t *testing.T) {
	assert.Equal(t, "hello", AugmentPrompt("", "hello"))

	augmented := AugmentPrompt("[Conversation so far]\nUSER: hi\n[End of conversation]", "next question")
	assert.Contains(t, augmented, "[Conversation so far]")
	assert.Contains(t, augmented, "stay consistent")
	assert.Contains(t, augmented, "next question")
}
