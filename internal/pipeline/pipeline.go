// Package pipeline sequences the curation stages: load, rules, arbitration,
// validation gate, tagging, persistence and export.
package pipeline

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/curator"
	"github.com/festivaldir/curator/internal/metrics"
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/rules"
	"github.com/festivaldir/curator/internal/signals"
	"github.com/festivaldir/curator/internal/storage/sqlite"
)

// Options toggles the expensive stages for one run.
type Options struct {
	// SkipLLM leaves escalated records unresolved; nothing is approved.
	SkipLLM bool
	// SkipCategories skips tagging; approved vendors keep empty categories.
	SkipCategories bool
}

// Summary is the run report, logged and persisted with the run ID.
type Summary struct {
	RunID             string
	Mode              models.Mode
	Total             int
	RulesDistribution map[models.Classification]int
	RulesRejections   map[string]int
	Escalated         int
	Arbitrated        int
	GateRejections    map[string]int
	Approved          int
	Elapsed           time.Duration
}

// Pipeline wires the stages together. The arbitrator and tagger may be nil
// for offline runs; the sqlite store may be nil when persistence is not
// wanted.
type Pipeline struct {
	mode       models.Mode
	extractor  *signals.Extractor
	engine     *rules.Engine
	arbitrator *curator.Arbitrator
	gate       *curator.Gate
	tagger     *curator.Tagger
	db         *sqlite.Client
	outputDir  string
	logger     *zap.Logger
}

type Deps struct {
	Mode       models.Mode
	Extractor  *signals.Extractor
	Engine     *rules.Engine
	Arbitrator *curator.Arbitrator
	Gate       *curator.Gate
	Tagger     *curator.Tagger
	DB         *sqlite.Client
	OutputDir  string
	Logger     *zap.Logger
}

func New(deps Deps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		mode:       deps.Mode,
		extractor:  deps.Extractor,
		engine:     deps.Engine,
		arbitrator: deps.Arbitrator,
		gate:       deps.Gate,
		tagger:     deps.Tagger,
		db:         deps.DB,
		outputDir:  deps.OutputDir,
		logger:     logger,
	}
}

// Run processes loaded records through every enabled stage and writes the
// exports. The input slice is scored in place via the returned ScoredRecords.
func (p *Pipeline) Run(ctx context.Context, records []*models.ProfileRecord, inputPath string, opts Options) (*Summary, []*models.ScoredRecord, error) {
	start := time.Now()
	runID := uuid.New().String()

	summary := &Summary{
		RunID:             runID,
		Mode:              p.mode,
		Total:             len(records),
		RulesDistribution: map[models.Classification]int{},
		RulesRejections:   map[string]int{},
		GateRejections:    map[string]int{},
	}

	p.logger.Info("Pipeline run started",
		zap.String("run_id", runID),
		zap.String("mode", string(p.mode)),
		zap.Int("records", len(records)),
	)

	// Stage 1: signals + rules.
	scored := make([]*models.ScoredRecord, 0, len(records))
	for _, rec := range records {
		sig := p.extractor.Extract(rec)
		res := p.engine.Score(rec, sig)

		sr := &models.ScoredRecord{
			Record:              rec,
			Signals:             sig,
			Rules:               res,
			FinalScore:          res.Score,
			FinalClassification: res.Classification,
		}
		scored = append(scored, sr)

		summary.RulesDistribution[res.Classification]++
		metrics.RecordsProcessed.WithLabelValues(string(res.Classification)).Inc()
		if res.RejectedBy != "" {
			summary.RulesRejections[res.RejectedBy]++
			metrics.RulesRejections.WithLabelValues(res.RejectedBy).Inc()
		}
		if sr.Escalated() {
			summary.Escalated++
		}
	}

	p.logger.Info("Rules stage complete",
		zap.Any("distribution", summary.RulesDistribution),
		zap.Int("escalated", summary.Escalated),
	)

	// Stage 2: arbitration.
	if !opts.SkipLLM && p.arbitrator != nil {
		if err := p.arbitrator.Run(ctx, scored); err != nil {
			return nil, nil, fmt.Errorf("arbitration failed: %w", err)
		}
	} else {
		p.logger.Info("LLM stage skipped")
	}

	// Stage 3: merge and gate.
	p.merge(scored, summary)

	// Stage 4: tagging.
	if !opts.SkipLLM && !opts.SkipCategories && p.tagger != nil {
		if err := p.tagger.Run(ctx, scored); err != nil {
			return nil, nil, fmt.Errorf("tagging failed: %w", err)
		}
	} else {
		p.logger.Info("Tagging stage skipped")
	}

	for _, sr := range scored {
		if sr.FinalClassification == models.ClassYes {
			summary.Approved++
		}
	}
	summary.Elapsed = time.Since(start)

	if err := p.export(scored); err != nil {
		return nil, nil, err
	}

	if p.db != nil {
		if err := p.db.SaveVendors(runID, scored); err != nil {
			return nil, nil, err
		}
		if err := p.db.SaveRun(sqlite.RunStats{
			ID:              runID,
			Mode:            p.mode,
			InputPath:       inputPath,
			TotalRecords:    summary.Total,
			RejectedByRules: summary.RulesDistribution[models.ClassNo],
			Escalated:       summary.Escalated,
			Approved:        summary.Approved,
			Duration:        summary.Elapsed,
		}); err != nil {
			return nil, nil, err
		}
	}

	metrics.PipelineDuration.WithLabelValues(string(p.mode)).Observe(summary.Elapsed.Seconds())

	p.logger.Info("Pipeline run complete",
		zap.String("run_id", runID),
		zap.Int("records", summary.Total),
		zap.Int("escalated", summary.Escalated),
		zap.Int("arbitrated", summary.Arbitrated),
		zap.Int("approved", summary.Approved),
		zap.Any("gate_rejections", summary.GateRejections),
		zap.Float64("approval_rate", approvalRate(summary)),
		zap.Duration("elapsed", summary.Elapsed),
	)

	return summary, scored, nil
}

// merge resolves final score and classification per record. Confident rules
// verdicts are never overwritten; the LLM score only replaces the final
// score for escalated records.
func (p *Pipeline) merge(scored []*models.ScoredRecord, summary *Summary) {
	for _, sr := range scored {
		if !sr.Escalated() {
			continue
		}

		if sr.LLMScore == nil {
			// Skipped LLM stage or a failed batch. The record stays
			// unresolved rather than silently rejected.
			if p.mode == models.ModeV2 {
				sr.FinalClassification = models.ClassReviewPending
			}
			continue
		}
		summary.Arbitrated++

		if p.mode == models.ModeV1 {
			sr.FinalScore = *sr.LLMScore
			if sr.FinalScore >= p.engine.Thresholds().FinalInclusion {
				sr.FinalClassification = models.ClassYes
			} else {
				sr.FinalClassification = models.ClassNo
			}
			continue
		}

		if p.gate != nil {
			if check := p.gate.Apply(sr); check != "" {
				summary.GateRejections[check]++
				metrics.GateRejections.WithLabelValues(check).Inc()
			}
			continue
		}

		// Gate disabled: threshold only.
		sr.FinalScore = *sr.LLMScore
		if sr.FinalScore >= p.engine.Thresholds().LLMYesThreshold {
			sr.FinalClassification = models.ClassYes
		} else {
			sr.FinalClassification = models.ClassNo
		}
	}
}

// curatedVendor is the JSON export shape consumed by the directory website.
type curatedVendor struct {
	Username           string   `json:"username"`
	Biography          string   `json:"biography"`
	Followers          int      `json:"followers"`
	IsBusiness         bool     `json:"is_business"`
	ExternalURL        string   `json:"external_url"`
	Domain             string   `json:"domain"`
	ProfileURL         string   `json:"profile_url"`
	WebsiteTitle       string   `json:"website_title"`
	WebsiteDescription string   `json:"website_description"`
	ConfidenceScore    float64  `json:"confidence_score"`
	Categories         []string `json:"categories"`
	Tags               []string `json:"tags"`
	LLMReason          string   `json:"llm_reason"`
}

func (p *Pipeline) export(scored []*models.ScoredRecord) error {
	if p.outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := p.exportFullCSV(filepath.Join(p.outputDir, "full_scored.csv"), scored); err != nil {
		return err
	}

	approved := make([]*models.ScoredRecord, 0)
	for _, sr := range scored {
		if sr.FinalClassification == models.ClassYes {
			approved = append(approved, sr)
		}
	}
	sort.SliceStable(approved, func(i, j int) bool {
		return approved[i].FinalScore > approved[j].FinalScore
	})

	return p.exportCuratedJSON(filepath.Join(p.outputDir, "curated_vendors.json"), approved)
}

func (p *Pipeline) exportFullCSV(path string, scored []*models.ScoredRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"username", "biography", "followers", "is_business", "external_url",
		"domain", "url_type", "rules_score", "rules_classification",
		"rejected_by", "llm_score", "llm_reason", "final_score",
		"final_classification", "categories", "tags",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, sr := range scored {
		llmScore := ""
		if sr.LLMScore != nil {
			llmScore = strconv.FormatFloat(*sr.LLMScore, 'f', 3, 64)
		}
		row := []string{
			sr.Record.Username,
			sr.Record.Biography,
			strconv.Itoa(sr.Record.Followers),
			strconv.FormatBool(sr.Record.IsBusiness),
			sr.Record.ExternalURL,
			sr.Record.Domain,
			string(sr.Signals.URLType),
			strconv.FormatFloat(sr.Rules.Score, 'f', 3, 64),
			string(sr.Rules.Classification),
			sr.Rules.RejectedBy,
			llmScore,
			sr.LLMReason,
			strconv.FormatFloat(sr.FinalScore, 'f', 3, 64),
			string(sr.FinalClassification),
			strings.Join(sr.Categories, ";"),
			strings.Join(sr.Tags, ";"),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func (p *Pipeline) exportCuratedJSON(path string, approved []*models.ScoredRecord) error {
	vendors := make([]curatedVendor, 0, len(approved))
	for _, sr := range approved {
		categories := sr.Categories
		if len(categories) == 0 {
			categories = []string{curator.FallbackCategory}
		}
		tags := sr.Tags
		if tags == nil {
			tags = []string{}
		}
		vendors = append(vendors, curatedVendor{
			Username:           sr.Record.Username,
			Biography:          sr.Record.Biography,
			Followers:          sr.Record.Followers,
			IsBusiness:         sr.Record.IsBusiness,
			ExternalURL:        sr.Record.ExternalURL,
			Domain:             sr.Record.Domain,
			ProfileURL:         sr.Record.ProfileURL,
			WebsiteTitle:       sr.Record.WebsiteTitle,
			WebsiteDescription: sr.Record.WebsiteDescription,
			ConfidenceScore:    sr.FinalScore,
			Categories:         categories,
			Tags:               tags,
			LLMReason:          sr.LLMReason,
		})
	}

	data, err := json.MarshalIndent(vendors, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal curated vendors: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func approvalRate(s *Summary) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Approved) / float64(s.Total) * 100
}
