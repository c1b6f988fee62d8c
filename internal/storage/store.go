// Package storage persists execution plans and session metrics in a SQLite
// database under the config directory. Plan payloads are stored
// zstd-compressed; metrics rows are flat for aggregate queries.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "modernc.org/sqlite"

	"ctxgov/internal/logging"
)

// DBFile is the database filename inside the config directory.
const DBFile = "metrics.db"

// Store provides persistence for plans and session metrics.
type Store struct {
	conn   *sql.DB
	logger *logging.Logger
	dbPath string
}

// Open opens or creates the database at dir/metrics.db.
func Open(dir string, logger *logging.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	dbPath := filepath.Join(dir, DBFile)
	dbExists := fileExists(dbPath)

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	store := &Store{
		conn:   conn,
		logger: logger,
		dbPath: dbPath,
	}

	if !dbExists {
		logger.Info("Creating metrics database", map[string]interface{}{
			"path": dbPath,
		})
	}
	if err := store.initializeSchema(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (s *Store) initializeSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS plans (
			plan_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			intent TEXT NOT NULL,
			budget INTEGER NOT NULL,
			output_tokens INTEGER NOT NULL,
			fingerprint TEXT,
			payload BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at DESC);

		CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			timestamp TEXT NOT NULL,
			total_tokens INTEGER NOT NULL DEFAULT 0,
			tier1_tokens INTEGER NOT NULL DEFAULT 0,
			tier2_tokens INTEGER NOT NULL DEFAULT 0,
			tier3_tokens INTEGER NOT NULL DEFAULT 0,
			high_relevance_tokens INTEGER NOT NULL DEFAULT 0,
			low_relevance_tokens INTEGER NOT NULL DEFAULT 0,
			quality_preserved INTEGER NOT NULL DEFAULT 1,
			estimated_cost_usd REAL NOT NULL DEFAULT 0,
			savings_vs_baseline_usd REAL NOT NULL DEFAULT 0,
			experiment_id TEXT NOT NULL DEFAULT '',
			variant TEXT NOT NULL DEFAULT 'optimized',
			assignment_key TEXT NOT NULL DEFAULT '',
			intent TEXT NOT NULL DEFAULT 'generic',
			budget INTEGER NOT NULL DEFAULT 0,
			baseline_tokens INTEGER NOT NULL DEFAULT 0,
			post_filter_tokens INTEGER NOT NULL DEFAULT 0,
			output_tokens INTEGER NOT NULL DEFAULT 0,
			package_filter_tokens_saved INTEGER NOT NULL DEFAULT 0,
			pruning_tokens_saved INTEGER NOT NULL DEFAULT 0,
			overall_tokens_saved INTEGER NOT NULL DEFAULT 0,
			package_filter_pct REAL NOT NULL DEFAULT 0,
			pruning_pct REAL NOT NULL DEFAULT 0,
			overall_pct REAL NOT NULL DEFAULT 0,
			within_budget INTEGER NOT NULL DEFAULT 1
		);
		CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_sessions_experiment ON sessions(experiment_id, variant);

		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);
		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// PlanRecord is a stored plan row. Payload holds the uncompressed JSON.
type PlanRecord struct {
	PlanID       string
	CreatedAt    time.Time
	Intent       string
	Budget       int
	OutputTokens int
	Fingerprint  string
	Payload      []byte
}

// SavePlan compresses and stores a plan payload.
func (s *Store) SavePlan(rec *PlanRecord) error {
	compressed, err := compress(rec.Payload)
	if err != nil {
		return fmt.Errorf("failed to compress plan payload: %w", err)
	}

	_, err = s.conn.Exec(`
		INSERT OR REPLACE INTO plans
			(plan_id, created_at, intent, budget, output_tokens, fingerprint, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.PlanID,
		rec.CreatedAt.UTC().Format(time.RFC3339),
		rec.Intent,
		rec.Budget,
		rec.OutputTokens,
		rec.Fingerprint,
		compressed,
	)
	if err != nil {
		return fmt.Errorf("failed to save plan %s: %w", rec.PlanID, err)
	}
	return nil
}

// LoadPlan fetches and decompresses a stored plan.
func (s *Store) LoadPlan(planID string) (*PlanRecord, error) {
	row := s.conn.QueryRow(`
		SELECT plan_id, created_at, intent, budget, output_tokens, fingerprint, payload
		FROM plans WHERE plan_id = ?`, planID)

	var rec PlanRecord
	var createdAt string
	var compressed []byte
	if err := row.Scan(&rec.PlanID, &createdAt, &rec.Intent, &rec.Budget,
		&rec.OutputTokens, &rec.Fingerprint, &compressed); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("plan %s not found", planID)
		}
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	payload, err := decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress plan %s: %w", planID, err)
	}
	rec.Payload = payload
	return &rec, nil
}

// PlanSummary is a plan list row without the payload.
type PlanSummary struct {
	PlanID       string    `json:"plan_id"`
	CreatedAt    time.Time `json:"created_at"`
	Intent       string    `json:"intent"`
	Budget       int       `json:"budget"`
	OutputTokens int       `json:"output_tokens"`
}

// ListPlans returns the most recent plans, newest first.
func (s *Store) ListPlans(limit int) ([]PlanSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.conn.Query(`
		SELECT plan_id, created_at, intent, budget, output_tokens
		FROM plans ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []PlanSummary
	for rows.Next() {
		var p PlanSummary
		var createdAt string
		if err := rows.Scan(&p.PlanID, &createdAt, &p.Intent, &p.Budget, &p.OutputTokens); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}
