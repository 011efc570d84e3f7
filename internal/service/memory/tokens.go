package memory

import (
	"context"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/polychat/polychat/internal/core"
	"github.com/polychat/polychat/pkg/log"
)

var (
	tk     *tiktoken.Tiktoken
	tkErr  error
	tkOnce sync.Once
)

func getTokenizer() (*tiktoken.Tiktoken, error) {
	tkOnce.Do(func() {
		tk, tkErr = tiktoken.GetEncoding("cl100k_base")
	})
	return tk, tkErr
}

func countTokens(text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	tokenizer, err := getTokenizer()
	if err != nil {
		return 0, err
	}
	return len(tokenizer.Encode(text, nil, nil)), nil
}

// trimToBudget drops turns from the tail of the window until the rendered
// context fits ContextTokenBudget. A budget of 0 disables trimming. When the
// tokenizer cannot be loaded the window is passed through untrimmed.
func (m *Manager) trimToBudget(ctx context.Context, turns []core.Turn) []core.Turn {
	budget := m.cfg.ContextTokenBudget
	if budget <= 0 || len(turns) == 0 {
		return turns
	}

	for len(turns) > 0 {
		n, err := countTokens(FormatInjection(turns))
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("tokenizer unavailable, skipping context budget")
			return turns
		}
		if n <= budget {
			return turns
		}
		turns = turns[:len(turns)-1]
	}
	return turns
}
