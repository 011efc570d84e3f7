package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/pkg/conv"
	"github.com/polychat/polychat/pkg/log"
)

// generatePayload is the wire shape of one generation call from the UI:
// the logical request plus the caller's custom/local provider descriptors.
type generatePayload struct {
	core.GenerateRequest
	Providers []callerProvider `json:"providers,omitempty"`
}

// callerProvider mirrors core.ProviderDescriptor but accepts the credential
// from the caller; descriptors going out are always redacted.
type callerProvider struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	EndpointURL string `json:"endpoint_url"`
	Capability  string `json:"capability"`
	Dialect     string `json:"dialect"`
	Credential  string `json:"credential,omitempty"`
	NeedsAPIKey bool   `json:"needs_api_key"`
	Enabled     bool   `json:"enabled"`
}

func (p callerProvider) descriptor() core.ProviderDescriptor {
	return core.ProviderDescriptor{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		EndpointURL: p.EndpointURL,
		Capability:  core.Capability(p.Capability),
		Dialect:     core.Dialect(p.Dialect),
		Credential:  p.Credential,
		NeedsAPIKey: p.NeedsAPIKey,
		Enabled:     p.Enabled,
	}
}

// generateResponse is the canonical result plus presentation shapes the UI
// renders directly.
type generateResponse struct {
	core.Result
	Blocks []conv.Block `json:"blocks,omitempty"`
	HTML   string       `json:"html,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var payload generatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	extra := make([]core.ProviderDescriptor, 0, len(payload.Providers))
	for _, p := range payload.Providers {
		extra = append(extra, p.descriptor())
	}

	result, err := s.engine.Generate(r.Context(), payload.GenerateRequest, extra)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{
		Result: *result,
		Blocks: conv.TextToBlocks(result.Text),
		HTML:   conv.ToSafeHTML(result.Text),
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	hist := s.engine.History(r.Context(), r.URL.Query().Get("session_id"))
	writeJSON(w, http.StatusOK, hist)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := s.engine.ClearHistory(r.Context(), r.URL.Query().Get("session_id"))
	writeJSON(w, http.StatusOK, map[string]string{"session_id": sessionID})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	filter := core.Capability(r.URL.Query().Get("capability"))
	providers := s.engine.Providers(filter, nil)
	writeJSON(w, http.StatusOK, providers)
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	var credErr *core.MissingCredentialError
	var provErr *core.ProviderError
	var transErr *core.TransportError

	switch {
	case errors.Is(err, core.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &credErr):
		writeError(w, http.StatusUnauthorized, credErr.Error())
	case errors.As(err, &provErr):
		writeError(w, http.StatusBadGateway, provErr.Error())
	case errors.As(err, &transErr):
		writeError(w, http.StatusBadGateway, transErr.Error())
	default:
		log.FromCtx(r.Context()).Error().Err(err).Msg("generation failed")
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
