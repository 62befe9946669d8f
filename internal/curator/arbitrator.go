// Package curator holds the LLM-backed stages of the pipeline: the batch
// arbitrator for escalated records, the post-LLM validation gate, and the
// category tagger for approved vendors.
package curator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/cache"
	"github.com/festivaldir/curator/internal/llm"
	"github.com/festivaldir/curator/internal/metrics"
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/pkg/retry"
)

// verdictLine is one element of the arbitration response array. Sub-verdict
// fields only appear in v2 responses.
type verdictLine struct {
	Username          string  `json:"username"`
	Score             float64 `json:"score"`
	Reason            string  `json:"reason"`
	SellsProducts     *bool   `json:"sells_products,omitempty"`
	HasShop           *bool   `json:"has_shop,omitempty"`
	FestivalAesthetic *bool   `json:"festival_aesthetic,omitempty"`
}

// Arbitrator batches escalated records through the LLM, resuming from the
// verdict store and persisting it after every batch so an interrupted run
// loses at most one batch of spend.
type Arbitrator struct {
	completer  llm.Completer
	store      cache.VerdictStore
	mode       models.Mode
	batchSize  int
	retryCfg   retry.Config
	batchDelay time.Duration
	logger     *zap.Logger
}

type ArbitratorOptions struct {
	Mode       models.Mode
	BatchSize  int
	Retry      retry.Config
	BatchDelay time.Duration
	Logger     *zap.Logger
}

func NewArbitrator(completer llm.Completer, store cache.VerdictStore, opts ArbitratorOptions) *Arbitrator {
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = 5
		if opts.Mode == models.ModeV1 {
			batchSize = 10
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Arbitrator{
		completer:  completer,
		store:      store,
		mode:       opts.Mode,
		batchSize:  batchSize,
		retryCfg:   opts.Retry,
		batchDelay: opts.BatchDelay,
		logger:     logger,
	}
}

// neutralScore is applied when the model omits a username from its response.
// Neither an approval nor a rejection; in v2 the default sits below the gate
// threshold so an omitted record can never slip through.
func (a *Arbitrator) neutralScore() float64 {
	if a.mode == models.ModeV1 {
		return 0.5
	}
	return 0.3
}

// Run scores every escalated record, from cache where possible, through the
// LLM otherwise. A batch that fails after all retries is skipped: its records
// keep their rules score and no verdict is cached for them.
func (a *Arbitrator) Run(ctx context.Context, records []*models.ScoredRecord) error {
	var escalated []*models.ScoredRecord
	for _, sr := range records {
		if sr.Escalated() {
			escalated = append(escalated, sr)
		}
	}
	if len(escalated) == 0 {
		a.logger.Info("No records to arbitrate")
		return nil
	}

	verdicts, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	var pending []*models.ScoredRecord
	for _, sr := range escalated {
		if v, ok := verdicts[sr.Record.Username]; ok {
			sr.ApplyVerdict(v)
			metrics.CacheHits.Inc()
		} else {
			pending = append(pending, sr)
			metrics.CacheMisses.Inc()
		}
	}

	a.logger.Info("Arbitrating escalated records",
		zap.Int("escalated", len(escalated)),
		zap.Int("cached", len(escalated)-len(pending)),
		zap.Int("pending", len(pending)),
	)

	batches := batchRecords(pending, a.batchSize)
	for i, batch := range batches {
		if i > 0 && a.batchDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(a.batchDelay):
			}
		}

		lines := make([]string, len(batch))
		for j, sr := range batch {
			lines[j] = formatAccountLine(sr, a.mode)
		}

		results, err := retry.DoWithResult(ctx, a.retryCfg, func() ([]verdictLine, error) {
			resp, err := a.completer.Complete(ctx, llm.CompletionRequest{
				SystemPrompt: arbitratorSystemPrompt(a.mode),
				UserPrompt:   arbitratorUserPrompt(a.mode, numberLines(lines)),
			})
			if err != nil {
				return nil, err
			}
			metrics.LLMTokensUsed.WithLabelValues("prompt").Add(float64(resp.PromptTokens))
			metrics.LLMTokensUsed.WithLabelValues("completion").Add(float64(resp.CompletionTokens))
			return llm.DecodeBatch[verdictLine](resp.Content)
		})
		if err != nil {
			// Skipped, not fatal: these records keep their rules score
			// and will be retried on the next run.
			metrics.LLMBatches.WithLabelValues("arbitrator", "failed").Inc()
			a.logger.Error("Arbitration batch failed, skipping",
				zap.Int("batch", i+1),
				zap.Int("batches", len(batches)),
				zap.Int("records", len(batch)),
				zap.Error(err),
			)
			continue
		}
		metrics.LLMBatches.WithLabelValues("arbitrator", "ok").Inc()

		byUsername := make(map[string]verdictLine, len(results))
		for _, r := range results {
			byUsername[normalizeUsername(r.Username)] = r
		}

		for _, sr := range batch {
			v := a.verdictFor(byUsername, sr.Record.Username)
			sr.ApplyVerdict(v)
			verdicts[sr.Record.Username] = v
		}

		if err := a.store.Save(ctx, verdicts); err != nil {
			return err
		}

		a.logger.Info("Arbitration batch complete",
			zap.Int("batch", i+1),
			zap.Int("batches", len(batches)),
		)
	}

	return nil
}

func (a *Arbitrator) verdictFor(byUsername map[string]verdictLine, username string) models.Verdict {
	r, ok := byUsername[normalizeUsername(username)]
	if !ok {
		v := models.Verdict{Score: a.neutralScore(), Reason: "not returned by LLM"}
		if a.mode == models.ModeV2 {
			f := false
			v.SellsProducts, v.HasShop, v.FestivalAesthetic = &f, &f, &f
		}
		return v
	}

	v := models.Verdict{Score: r.Score, Reason: r.Reason}
	if a.mode == models.ModeV2 {
		v.SellsProducts = boolOrFalse(r.SellsProducts)
		v.HasShop = boolOrFalse(r.HasShop)
		v.FestivalAesthetic = boolOrFalse(r.FestivalAesthetic)
	}
	return v
}

func boolOrFalse(p *bool) *bool {
	if p == nil {
		f := false
		return &f
	}
	return p
}

func batchRecords(records []*models.ScoredRecord, size int) [][]*models.ScoredRecord {
	if size <= 0 || len(records) == 0 {
		if len(records) == 0 {
			return nil
		}
		return [][]*models.ScoredRecord{records}
	}
	var batches [][]*models.ScoredRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}
