package core

import "context"

// WindowPolicy selects which end of the history a bounded read keeps.
type WindowPolicy string

const (
	// WindowEarliest keeps the first N turns of the session. This matches
	// the historical behavior of the original client: early context is
	// retained as the conversation grows past the limit.
	WindowEarliest WindowPolicy = "earliest"
	// WindowLatest keeps the most recent N turns (a sliding window).
	WindowLatest WindowPolicy = "latest"
)

// TurnsRepository is the persistence contract for session history.
// Turns are append-only; retrieval order always equals insertion order,
// regardless of which window a bounded read selects.
type TurnsRepository interface {
	AddTurn(ctx context.Context, sessionID, role, content string) error
	// GetTurns returns up to limit turns oldest-first. limit <= 0 means all.
	GetTurns(ctx context.Context, sessionID string, limit int, window WindowPolicy) ([]Turn, error)
	DeleteTurns(ctx context.Context, sessionID string) error
}
