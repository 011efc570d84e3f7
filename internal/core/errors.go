package core

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest rejects malformed input before any side effect.
var ErrInvalidRequest = errors.New("invalid request")

// MissingCredentialError means the resolved provider needs an API key and
// none was supplied by the caller, the descriptor, or process config.
type MissingCredentialError struct {
	ProviderID string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("provider %s requires an api key and none was supplied", e.ProviderID)
}

// ProviderError carries an upstream non-success status and body.
type ProviderError struct {
	ProviderID string
	Status     int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: http %d: %s", e.ProviderID, e.Status, e.Body)
}

// TransportError wraps a network or timeout failure reaching upstream.
type TransportError struct {
	ProviderID string
	Err        error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("provider %s unreachable: %v", e.ProviderID, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
