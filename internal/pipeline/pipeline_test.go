package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/festivaldir/curator/internal/cache"
	"github.com/festivaldir/curator/internal/curator"
	"github.com/festivaldir/curator/internal/llm"
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/rules"
	"github.com/festivaldir/curator/internal/signals"
	"github.com/festivaldir/curator/pkg/retry"
)

type scriptedCompleter struct {
	responses []string
	calls     int
}

func (s *scriptedCompleter) Complete(_ context.Context, _ llm.CompletionRequest) (*llm.CompletionResponse, error) {
	content := "[]"
	if s.calls < len(s.responses) {
		content = s.responses[s.calls]
	}
	s.calls++
	return &llm.CompletionResponse{Content: content}, nil
}

func testRecords() []*models.ProfileRecord {
	records := []*models.ProfileRecord{
		{
			Username:    "badinka",
			Biography:   "rave wear worldwide",
			Followers:   135038,
			ExternalURL: "https://badinka.com",
			Domain:      "badinka.com",
		},
		{
			Username:    "dnbeadz",
			Biography:   "handmade kandi and beadwork | dm for orders",
			Followers:   8139,
			ExternalURL: "https://dnbeadz.bigcartel.com",
			Domain:      "dnbeadz.bigcartel.com",
		},
		{
			Username:    "ticketpusher",
			Biography:   "handmade merch, dm for orders at our events",
			Followers:   9000,
			ExternalURL: "https://dice.fm/ticketpusher",
			Domain:      "dice.fm",
		},
	}
	for _, r := range records {
		r.RecomputeCombinedText()
	}
	return records
}

func newTestPipeline(t *testing.T, completer llm.Completer, outputDir string) *Pipeline {
	t.Helper()

	kw := signals.DefaultKeywordsV2()
	ex := signals.NewExtractor(kw)
	th := rules.DefaultThresholds(models.ModeV2)
	eng := rules.NewEngine(models.ModeV2, th, ex)

	var arb *curator.Arbitrator
	var tagger *curator.Tagger
	if completer != nil {
		arb = curator.NewArbitrator(completer, cache.NewFileStore(filepath.Join(t.TempDir(), "cache.json")), curator.ArbitratorOptions{
			Mode:  models.ModeV2,
			Retry: retry.Config{MaxAttempts: 1},
		})
		tagger = curator.NewTagger(completer, curator.TaggerOptions{
			Retry: retry.Config{MaxAttempts: 1},
		})
	}

	return New(Deps{
		Mode:       models.ModeV2,
		Extractor:  ex,
		Engine:     eng,
		Arbitrator: arb,
		Gate:       curator.NewGate(th.LLMYesThreshold, ex),
		Tagger:     tagger,
		OutputDir:  outputDir,
	})
}

func TestPipelineEndToEnd(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		// Arbitration: both escalated records in one batch.
		`[{"username":"dnbeadz","score":0.85,"reason":"handmade kandi with shop","sells_products":true,"has_shop":true,"festival_aesthetic":true},
		  {"username":"ticketpusher","score":0.8,"reason":"sells merch","sells_products":true,"has_shop":true,"festival_aesthetic":true}]`,
		// Tagging for the one approved vendor.
		`[{"username":"dnbeadz","categories":["Jewelry & Accessories"],"tags":["kandi bracelets","beadwork"]}]`,
	}}
	outputDir := t.TempDir()
	p := newTestPipeline(t, completer, outputDir)

	summary, scored, err := p.Run(context.Background(), testRecords(), "test.csv", Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 1, summary.Approved)

	byName := map[string]*models.ScoredRecord{}
	for _, sr := range scored {
		byName[sr.Record.Username] = sr
	}

	// Big brand rejected by rules, never escalated.
	assert.Equal(t, models.ClassNo, byName["badinka"].FinalClassification)
	assert.Nil(t, byName["badinka"].LLMScore)

	// Approved through arbitration and gate, then tagged.
	dnbeadz := byName["dnbeadz"]
	assert.Equal(t, models.ClassYes, dnbeadz.FinalClassification)
	assert.Equal(t, 0.85, dnbeadz.FinalScore)
	assert.Equal(t, []string{"Jewelry & Accessories"}, dnbeadz.Categories)

	// High LLM score but non-shop URL: the gate holds the line.
	ticket := byName["ticketpusher"]
	assert.Equal(t, models.ClassNo, ticket.FinalClassification)
	assert.Equal(t, 1, summary.GateRejections[curator.GateNonShopURL])

	// Exports written.
	assert.FileExists(t, filepath.Join(outputDir, "full_scored.csv"))
	data, err := os.ReadFile(filepath.Join(outputDir, "curated_vendors.json"))
	require.NoError(t, err)

	var vendors []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vendors))
	require.Len(t, vendors, 1)
	assert.Equal(t, "dnbeadz", vendors[0]["username"])
}

func TestPipelineSkipLLMApprovesNothing(t *testing.T) {
	p := newTestPipeline(t, nil, t.TempDir())

	summary, scored, err := p.Run(context.Background(), testRecords(), "test.csv", Options{SkipLLM: true})
	require.NoError(t, err)

	assert.Zero(t, summary.Approved)
	for _, sr := range scored {
		assert.NotEqual(t, models.ClassYes, sr.FinalClassification)
		if sr.Escalated() {
			assert.Equal(t, models.ClassReviewPending, sr.FinalClassification)
			assert.Equal(t, sr.Rules.Score, sr.FinalScore)
		}
	}
}

func TestPipelineCuratedExportSortedByScore(t *testing.T) {
	records := []*models.ProfileRecord{
		{
			Username:    "midmaker",
			Biography:   "handmade resin art, dm for orders",
			Followers:   4000,
			ExternalURL: "https://etsy.com/shop/midmaker",
			Domain:      "etsy.com",
		},
		{
			Username:    "topmaker",
			Biography:   "handmade crochet tops, commissions open",
			Followers:   6000,
			ExternalURL: "https://topmaker.bigcartel.com",
			Domain:      "topmaker.bigcartel.com",
		},
	}
	for _, r := range records {
		r.RecomputeCombinedText()
	}

	completer := &scriptedCompleter{responses: []string{
		`[{"username":"midmaker","score":0.75,"reason":"ok","sells_products":true,"has_shop":true,"festival_aesthetic":true},
		  {"username":"topmaker","score":0.95,"reason":"great","sells_products":true,"has_shop":true,"festival_aesthetic":true}]`,
		`[]`,
	}}
	outputDir := t.TempDir()
	p := newTestPipeline(t, completer, outputDir)

	_, _, err := p.Run(context.Background(), records, "test.csv", Options{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "curated_vendors.json"))
	require.NoError(t, err)

	var vendors []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &vendors))
	require.Len(t, vendors, 2)
	assert.Equal(t, "topmaker", vendors[0]["username"])
	assert.Equal(t, "midmaker", vendors[1]["username"])

	// Vendors the tagger missed still carry the fallback category.
	assert.Equal(t, []interface{}{"Other Handmade"}, vendors[0]["categories"])
}
