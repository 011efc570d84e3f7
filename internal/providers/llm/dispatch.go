package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/polychat/polychat/internal/core"
)

// Dispatcher performs the single outbound call for a built plan and returns
// the raw success payload. No retries: fallback policy lives in the router.
type Dispatcher interface {
	Dispatch(ctx context.Context, plan *Plan) ([]byte, error)
}

type HTTPDispatcher struct {
	client *http.Client
}

func NewHTTPDispatcher(timeout time.Duration) *HTTPDispatcher {
	return &HTTPDispatcher{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (h *HTTPDispatcher) Dispatch(ctx context.Context, plan *Plan) ([]byte, error) {
	data, err := json.Marshal(plan.Body)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, plan.URL, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range plan.Headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &core.TransportError{ProviderID: plan.Provider.ID, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &core.TransportError{ProviderID: plan.Provider.ID, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &core.ProviderError{
			ProviderID: plan.Provider.ID,
			Status:     resp.StatusCode,
			Body:       string(body),
		}
	}

	return body, nil
}
