package tag

import "context"

// Suggester proposes tags for a draft question. Implementations are
// black boxes: callers only see the contract, never the scoring.
type Suggester interface {
	Suggest(ctx context.Context, title, description string) ([]string, error)
}
