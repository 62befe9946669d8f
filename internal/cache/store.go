// Package cache persists LLM verdicts keyed by username so interrupted runs
// resume without re-spending tokens. The store is written after every batch,
// so at most one batch of work is ever lost.
package cache

import (
	"context"

	"github.com/festivaldir/curator/internal/models"
)

// VerdictStore is the username to verdict map the arbitrator resumes from.
// Tagging has no store: the approved set is small and re-tagging is cheap.
type VerdictStore interface {
	Load(ctx context.Context) (map[string]models.Verdict, error)
	Save(ctx context.Context, verdicts map[string]models.Verdict) error
	Clear(ctx context.Context) error
}
