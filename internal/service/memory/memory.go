package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/polychat/polychat/internal/config"
	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/pkg/log"
)

const (
	contextHeader = "[Conversation so far]"
	contextFooter = "[End of conversation]"
)

// Manager owns session identity and the rolling conversation history.
// Storage failures degrade to empty results and are logged, never returned:
// losing memory must not block generation.
type Manager struct {
	cfg  *config.AppConfig
	repo core.TurnsRepository

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewManager(cfg *config.AppConfig, repo core.TurnsRepository) *Manager {
	return &Manager{
		cfg:   cfg,
		repo:  repo,
		locks: make(map[string]*sync.Mutex),
	}
}

// Open returns the given session id, or mints a fresh one when empty.
// Minted ids combine a time component with a random suffix so collisions
// are practically impossible.
func (m *Manager) Open(sessionID string) string {
	if sessionID != "" {
		return sessionID
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix)
}

// Append writes one immutable turn. Best-effort: a failed write is logged
// and the conversation goes on without it.
func (m *Manager) Append(ctx context.Context, sessionID, role, content string) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.repo.AddTurn(ctx, sessionID, role, content); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("memory degraded: append failed")
	}
}

// Recent returns up to limit turns oldest-first. Which end of the history
// the window keeps is governed by the configured window policy; the default
// keeps the earliest turns (see core.WindowEarliest).
func (m *Manager) Recent(ctx context.Context, sessionID string, limit int) []core.Turn {
	turns, err := m.repo.GetTurns(ctx, sessionID, limit, m.windowPolicy())
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("memory degraded: read failed")
		return nil
	}
	return turns
}

// All returns the full ordered history for a session.
func (m *Manager) All(ctx context.Context, sessionID string) []core.Turn {
	turns, err := m.repo.GetTurns(ctx, sessionID, 0, core.WindowEarliest)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("memory degraded: read failed")
		return nil
	}
	return turns
}

// Clear deletes all turns for the session. Idempotent; failures are logged.
func (m *Manager) Clear(ctx context.Context, sessionID string) {
	lock := m.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	if err := m.repo.DeleteTurns(ctx, sessionID); err != nil {
		log.FromCtx(ctx).Warn().Err(err).Str("session", sessionID).Msg("memory degraded: clear failed")
	}
}

// ContextFor assembles the injectable context block for a new request:
// the configured window of prior turns, trimmed to the token budget,
// rendered with FormatInjection. Empty string means nothing to inject.
func (m *Manager) ContextFor(ctx context.Context, sessionID string) string {
	turns := m.Recent(ctx, sessionID, m.cfg.ContextWindowSize)
	turns = m.trimToBudget(ctx, turns)
	return FormatInjection(turns)
}

// FormatInjection renders turns as ROLE: content lines inside a labeled
// block. Pure: identical turns always produce byte-identical output.
func FormatInjection(turns []core.Turn) string {
	if len(turns) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(contextHeader)
	sb.WriteString("\n")
	for _, t := range turns {
		sb.WriteString(strings.ToUpper(t.Role))
		sb.WriteString(": ")
		sb.WriteString(t.Content)
		sb.WriteString("\n")
	}
	sb.WriteString(contextFooter)
	return sb.String()
}

func (m *Manager) windowPolicy() core.WindowPolicy {
	if m.cfg.ContextWindow == string(core.WindowLatest) {
		return core.WindowLatest
	}
	return core.WindowEarliest
}

func (m *Manager) sessionLock(sessionID string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()

	lock, ok := m.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[sessionID] = lock
	}
	return lock
}
