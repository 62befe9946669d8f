package curator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/llm"
	"github.com/festivaldir/curator/internal/metrics"
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/pkg/retry"
)

// tagLine is one element of the tagging response array.
type tagLine struct {
	Username   string   `json:"username"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// taggerTemperature is slightly above the arbitrator's; tagging benefits
// from a little variety in tag wording.
const taggerTemperature = 0.1

// Tagger assigns directory categories and search tags to approved vendors.
// Shares the arbitrator's batching and retry shape but needs no cache: the
// tagged set is small and re-tagging is cheap.
type Tagger struct {
	completer  llm.Completer
	categories []string
	allowed    map[string]struct{}
	batchSize  int
	retryCfg   retry.Config
	batchDelay time.Duration
	logger     *zap.Logger
}

type TaggerOptions struct {
	Categories []string
	BatchSize  int
	Retry      retry.Config
	BatchDelay time.Duration
	Logger     *zap.Logger
}

func NewTagger(completer llm.Completer, opts TaggerOptions) *Tagger {
	categories := opts.Categories
	if len(categories) == 0 {
		categories = DefaultCategories
	}
	allowed := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		allowed[c] = struct{}{}
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tagger{
		completer:  completer,
		categories: categories,
		allowed:    allowed,
		batchSize:  batchSize,
		retryCfg:   opts.Retry,
		batchDelay: opts.BatchDelay,
		logger:     logger,
	}
}

// Run tags every finally-approved record. A failed batch falls back to the
// default category rather than leaving vendors uncategorized.
func (t *Tagger) Run(ctx context.Context, records []*models.ScoredRecord) error {
	var approved []*models.ScoredRecord
	for _, sr := range records {
		if sr.FinalClassification == models.ClassYes {
			approved = append(approved, sr)
		}
	}
	if len(approved) == 0 {
		t.logger.Info("No vendors to categorize")
		return nil
	}

	t.logger.Info("Categorizing approved vendors", zap.Int("vendors", len(approved)))

	batches := batchRecords(approved, t.batchSize)
	for i, batch := range batches {
		if i > 0 && t.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(t.batchDelay):
			}
		}

		lines := make([]string, len(batch))
		for j, sr := range batch {
			lines[j] = formatVendorLine(sr.Record)
		}

		results, err := retry.DoWithResult(ctx, t.retryCfg, func() ([]tagLine, error) {
			resp, err := t.completer.Complete(ctx, llm.CompletionRequest{
				SystemPrompt: taggerSystemPrompt(t.categories),
				UserPrompt:   taggerUserPrompt(numberLines(lines)),
				Temperature:  taggerTemperature,
			})
			if err != nil {
				return nil, err
			}
			metrics.LLMTokensUsed.WithLabelValues("prompt").Add(float64(resp.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues("completion").Add(float64(resp.CompletionTokens))
			return llm.DecodeBatch[tagLine](resp.Content)
		})
		if err != nil {
			metrics.LLMBatches.WithLabelValues("tagger", "failed").Inc()
			t.logger.Error("Tagging batch failed, applying fallback category",
				zap.Int("batch", i+1),
				zap.Error(err),
			)
			results = nil
		} else {
			metrics.LLMBatches.WithLabelValues("tagger", "ok").Inc()
		}

		byUsername := make(map[string]tagLine, len(results))
		for _, r := range results {
			byUsername[normalizeUsername(r.Username)] = r
		}

		for _, sr := range batch {
			r := byUsername[normalizeUsername(sr.Record.Username)]
			sr.Categories = t.validCategories(r.Categories)
			sr.Tags = r.Tags
			if len(sr.Tags) > maxTagsPerVendor {
				sr.Tags = sr.Tags[:maxTagsPerVendor]
			}
			for _, c := range sr.Categories {
				metrics.CategoriesAssigned.WithLabelValues(c).Inc()
			}
		}
	}

	return nil
}

// validCategories keeps only taxonomy members, substituting the fallback
// when nothing survives.
func (t *Tagger) validCategories(raw []string) []string {
	var valid []string
	for _, c := range raw {
		if _, ok := t.allowed[c]; ok {
			valid = append(valid, c)
		}
	}
	if len(valid) == 0 {
		return []string{FallbackCategory}
	}
	if len(valid) > 2 {
		valid = valid[:2]
	}
	return valid
}
