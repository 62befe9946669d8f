// Package sqlite persists pipeline runs and per-vendor results. Results are
// upserted by username so re-running a pipeline refreshes rather than
// duplicates.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/festivaldir/curator/internal/models"
	"github.com/festivaldir/curator/pkg/logger"
)

type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("SQLite client initialized", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pipeline_runs (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		input_path TEXT,
		total_records INTEGER NOT NULL,
		rejected_by_rules INTEGER NOT NULL,
		escalated INTEGER NOT NULL,
		approved INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON pipeline_runs(created_at);

	CREATE TABLE IF NOT EXISTS vendors (
		username TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		biography TEXT,
		followers INTEGER,
		external_url TEXT,
		domain TEXT,
		profile_url TEXT,
		url_type TEXT,
		rules_score REAL NOT NULL,
		rules_classification TEXT NOT NULL,
		rejected_by TEXT,
		llm_score REAL,
		llm_reason TEXT,
		final_score REAL NOT NULL,
		final_classification TEXT NOT NULL,
		categories TEXT,
		tags TEXT,
		updated_at INTEGER NOT NULL,
		FOREIGN KEY (run_id) REFERENCES pipeline_runs(id)
	);
	CREATE INDEX IF NOT EXISTS idx_vendors_final ON vendors(final_classification);
	CREATE INDEX IF NOT EXISTS idx_vendors_run ON vendors(run_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// RunStats is one row of pipeline_runs.
type RunStats struct {
	ID              string
	Mode            models.Mode
	InputPath       string
	TotalRecords    int
	RejectedByRules int
	Escalated       int
	Approved        int
	Duration        time.Duration
}

func (c *Client) SaveRun(stats RunStats) error {
	_, err := c.db.Exec(`
		INSERT INTO pipeline_runs
		(id, mode, input_path, total_records, rejected_by_rules, escalated, approved, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		stats.ID, string(stats.Mode), stats.InputPath,
		stats.TotalRecords, stats.RejectedByRules, stats.Escalated, stats.Approved,
		stats.Duration.Milliseconds(), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to save pipeline run: %w", err)
	}
	return nil
}

func (c *Client) SaveVendors(runID string, records []*models.ScoredRecord) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO vendors
		(username, run_id, biography, followers, external_url, domain, profile_url, url_type,
		 rules_score, rules_classification, rejected_by,
		 llm_score, llm_reason, final_score, final_classification,
		 categories, tags, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			run_id = excluded.run_id,
			biography = excluded.biography,
			followers = excluded.followers,
			external_url = excluded.external_url,
			domain = excluded.domain,
			profile_url = excluded.profile_url,
			url_type = excluded.url_type,
			rules_score = excluded.rules_score,
			rules_classification = excluded.rules_classification,
			rejected_by = excluded.rejected_by,
			llm_score = excluded.llm_score,
			llm_reason = excluded.llm_reason,
			final_score = excluded.final_score,
			final_classification = excluded.final_classification,
			categories = excluded.categories,
			tags = excluded.tags,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare vendor upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for _, sr := range records {
		categories, _ := json.Marshal(sr.Categories)
		tags, _ := json.Marshal(sr.Tags)

		var llmScore interface{}
		if sr.LLMScore != nil {
			llmScore = *sr.LLMScore
		}

		if _, err := stmt.Exec(
			sr.Record.Username, runID, sr.Record.Biography, sr.Record.Followers,
			sr.Record.ExternalURL, sr.Record.Domain, sr.Record.ProfileURL,
			string(sr.Signals.URLType),
			sr.Rules.Score, string(sr.Rules.Classification), sr.Rules.RejectedBy,
			llmScore, sr.LLMReason,
			sr.FinalScore, string(sr.FinalClassification),
			string(categories), string(tags), now,
		); err != nil {
			return fmt.Errorf("failed to upsert vendor %s: %w", sr.Record.Username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit vendor upserts: %w", err)
	}
	return nil
}

// CuratedVendor is the public listing row served by the API.
type CuratedVendor struct {
	Username   string   `json:"username"`
	Biography  string   `json:"biography"`
	Followers  int      `json:"followers"`
	ProfileURL string   `json:"profile_url"`
	Shop       string   `json:"shop_url,omitempty"`
	FinalScore float64  `json:"final_score"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags,omitempty"`
}

// ListCurated returns approved vendors sorted by final score descending,
// optionally filtered to one category.
func (c *Client) ListCurated(category string, limit int) ([]CuratedVendor, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT username, biography, followers, profile_url, external_url, final_score, categories, tags
		FROM vendors
		WHERE final_classification = 'yes'`
	args := []interface{}{}
	if category != "" {
		query += ` AND categories LIKE ?`
		args = append(args, "%"+category+"%")
	}
	query += ` ORDER BY final_score DESC LIMIT ?`
	args = append(args, limit)

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list curated vendors: %w", err)
	}
	defer rows.Close()

	var vendors []CuratedVendor
	for rows.Next() {
		var v CuratedVendor
		var categoriesJSON, tagsJSON sql.NullString
		if err := rows.Scan(
			&v.Username, &v.Biography, &v.Followers, &v.ProfileURL, &v.Shop,
			&v.FinalScore, &categoriesJSON, &tagsJSON,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor row: %w", err)
		}
		if categoriesJSON.Valid {
			_ = json.Unmarshal([]byte(categoriesJSON.String), &v.Categories)
		}
		if tagsJSON.Valid {
			_ = json.Unmarshal([]byte(tagsJSON.String), &v.Tags)
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}
