package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/cache"
	"github.com/festivaldir/curator/internal/curator"
	"github.com/festivaldir/curator/internal/ingest"
	"github.com/festivaldir/curator/internal/llm"
	"github.com/festivaldir/curator/internal/metrics"
	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/internal/pipeline"
	"github.com/festivaldir/curator/internal/rules"
	"github.com/festivaldir/curator/internal/signals"
	"github.com/festivaldir/curator/internal/storage/sqlite"
	"github.com/festivaldir/curator/pkg/config"
	appLogger "github.com/festivaldir/curator/pkg/logger"
	"github.com/festivaldir/curator/pkg/retry"
)

func main() {
	var (
		inputPath      = flag.String("input", "", "scraped profiles CSV (required)")
		outputDir      = flag.String("output", "", "output directory (default from config)")
		modeFlag       = flag.String("mode", "", "pipeline mode: v1 or v2 (default from config)")
		skipLLM        = flag.Bool("skip-llm", false, "skip LLM arbitration; nothing gets approved")
		skipCategories = flag.Bool("skip-categories", false, "skip category tagging")
		fullRerun      = flag.Bool("full", false, "clear the verdict cache and rescore everything")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: pipeline -input <scraped.csv> [-output dir] [-mode v1|v2] [-skip-llm] [-skip-categories] [-full]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	if !*skipLLM {
		if err := cfg.ValidateLLM(); err != nil {
			appLogger.Fatal("Configuration error", zap.Error(err))
		}
	}

	metrics.Init()

	mode := models.Mode(cfg.Rules.Mode)
	if *modeFlag != "" {
		mode = models.Mode(*modeFlag)
	}
	if mode != models.ModeV1 && mode != models.ModeV2 {
		appLogger.Fatal("Invalid mode", zap.String("mode", string(mode)))
	}

	if *outputDir == "" {
		*outputDir = cfg.Pipeline.OutputDir
	}

	keywords := signals.DefaultKeywordsV2()
	if mode == models.ModeV1 {
		keywords = signals.DefaultKeywordsV1()
	}
	extractor := signals.NewExtractor(keywords)
	thresholds := rules.ThresholdsFromConfig(mode, cfg.Rules)
	engine := rules.NewEngine(mode, thresholds, extractor)

	ctx := context.Background()

	store, err := newVerdictStore(cfg.Cache)
	if err != nil {
		appLogger.Fatal("Failed to initialize verdict store", zap.Error(err))
	}
	if *fullRerun {
		if err := store.Clear(ctx); err != nil {
			appLogger.Fatal("Failed to clear verdict cache", zap.Error(err))
		}
		appLogger.Info("Cleared verdict cache for full rerun")
	}

	retryCfg := retry.Config{
		MaxAttempts:  cfg.LLM.MaxRetries,
		InitialDelay: time.Duration(cfg.LLM.RetryDelaySec) * time.Second,
		Multiplier:   2.0,
		Logger:       appLogger.GetLogger(),
	}
	batchDelay := time.Duration(cfg.Pipeline.InterBatchDelaySec) * time.Second

	var arbitrator *curator.Arbitrator
	var tagger *curator.Tagger
	if !*skipLLM {
		client := llm.NewClient(cfg.LLM, appLogger.GetLogger())
		arbitrator = curator.NewArbitrator(client, store, curator.ArbitratorOptions{
			Mode:       mode,
			BatchSize:  cfg.LLM.BatchSize,
			Retry:      retryCfg,
			BatchDelay: batchDelay,
			Logger:     appLogger.GetLogger(),
		})
		tagger = curator.NewTagger(client, curator.TaggerOptions{
			BatchSize:  cfg.Pipeline.TaggerBatchSize,
			Retry:      retryCfg,
			BatchDelay: batchDelay,
			Logger:     appLogger.GetLogger(),
		})
	}

	var gate *curator.Gate
	if mode == models.ModeV2 && cfg.Pipeline.GateEnabled {
		gate = curator.NewGate(thresholds.LLMYesThreshold, extractor)
	}

	db, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer db.Close()
	if err := db.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	records, err := ingest.NewLoader(appLogger.GetLogger()).LoadCSV(*inputPath)
	if err != nil {
		appLogger.Fatal("Failed to load input", zap.Error(err))
	}

	p := pipeline.New(pipeline.Deps{
		Mode:       mode,
		Extractor:  extractor,
		Engine:     engine,
		Arbitrator: arbitrator,
		Gate:       gate,
		Tagger:     tagger,
		DB:         db,
		OutputDir:  *outputDir,
		Logger:     appLogger.GetLogger(),
	})

	summary, _, err := p.Run(ctx, records, *inputPath, pipeline.Options{
		SkipLLM:        *skipLLM,
		SkipCategories: *skipCategories,
	})
	if err != nil {
		appLogger.Fatal("Pipeline failed", zap.Error(err))
	}

	appLogger.Info("Done",
		zap.String("run_id", summary.RunID),
		zap.Int("approved", summary.Approved),
		zap.String("output_dir", *outputDir),
	)
}

func newVerdictStore(cfg config.CacheConfig) (cache.VerdictStore, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedisStore(cfg.Redis)
	}
	return cache.NewFileStore(cfg.Path), nil
}
