// Package storage provides SQLite-backed persistence for the dashboard mode
// slot, observed scoring decisions, and stats snapshots.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fairlens/riskwatch/internal/models"
	_ "modernc.org/sqlite"
)

// Storage wraps a SQLite database for all persistence operations.
type Storage struct {
	db           *sql.DB
	maxDecisions int
}

// New opens or creates the SQLite database at dbPath.
// An empty dbPath defaults to $TMPDIR/riskwatch/data.db.
func New(maxDecisions int, dbPath string) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "riskwatch", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer; WAL allows concurrent readers
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	s := &Storage{db: db, maxDecisions: maxDecisions}
	if err := s.createTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) createTables() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS decisions (
			id                       INTEGER PRIMARY KEY,
			avg_monthly_inflow       REAL NOT NULL,
			inflow_volatility        REAL NOT NULL,
			avg_monthly_outflow      REAL NOT NULL,
			min_balance_30d          REAL NOT NULL,
			neg_balance_days_30d     INTEGER NOT NULL,
			purchase_to_inflow_ratio REAL NOT NULL,
			total_burden_ratio       REAL NOT NULL,
			buffer_ratio             REAL NOT NULL,
			stress_index             REAL NOT NULL,
			risk_probability         REAL NOT NULL,
			decision                 TEXT NOT NULL,
			created_at               TEXT NOT NULL,
			notified                 INTEGER DEFAULT 0,
			observed_at              INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_decisions_observed_at ON decisions(observed_at)`,
		`CREATE TABLE IF NOT EXISTS stats_history (
			run_id            TEXT PRIMARY KEY,
			total_predictions INTEGER NOT NULL,
			approval_rate     REAL NOT NULL,
			decline_rate      REAL NOT NULL,
			low               INTEGER NOT NULL,
			medium            INTEGER NOT NULL,
			high              INTEGER NOT NULL,
			captured_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_stats_captured_at ON stats_history(captured_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetSetting returns the stored value for key, or "" when the slot is unset.
func (s *Storage) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read setting %s: %w", key, err)
	}
	return value, nil
}

// SetSetting writes value into the named slot.
func (s *Storage) SetSetting(key, value string) error {
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value); err != nil {
		return fmt.Errorf("failed to write setting %s: %w", key, err)
	}
	return nil
}

// RecordDecision stores a historical log entry if it has not been seen
// before. Returns true when the entry is new. The decision cap trims the
// oldest observations.
func (s *Storage) RecordDecision(entry models.LogEntry) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.Exec(`
		INSERT OR IGNORE INTO decisions
			(id, avg_monthly_inflow, inflow_volatility, avg_monthly_outflow, min_balance_30d,
			 neg_balance_days_30d, purchase_to_inflow_ratio, total_burden_ratio, buffer_ratio,
			 stress_index, risk_probability, decision, created_at, notified, observed_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,0,?)`,
		entry.ID, entry.AvgMonthlyInflow, entry.InflowVolatility, entry.AvgMonthlyOutflow,
		entry.MinBalance30d, entry.NegBalanceDays30d, entry.PurchaseToInflowRatio,
		entry.TotalBurdenRatio, entry.BufferRatio, entry.StressIndex,
		entry.RiskProbability, string(entry.Decision), entry.CreatedAt,
		time.Now().UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert decision: %w", err)
	}
	inserted, _ := res.RowsAffected()

	if _, err = tx.Exec(`
		DELETE FROM decisions WHERE id NOT IN (
			SELECT id FROM decisions ORDER BY observed_at DESC LIMIT ?
		)`, s.maxDecisions); err != nil {
		return false, fmt.Errorf("failed to enforce decision cap: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return inserted > 0, nil
}

// GetDecision loads a single observed decision by log id.
func (s *Storage) GetDecision(id int64) (*models.LogEntry, error) {
	row := s.db.QueryRow(`SELECT `+decisionCols+` FROM decisions WHERE id = ?`, id)
	entry, _, err := scanDecision(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("decision not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}
	return entry, nil
}

// RecentDecisions returns up to limit decisions, newest observations first.
func (s *Storage) RecentDecisions(limit int) ([]models.LogEntry, error) {
	rows, err := s.db.Query(`SELECT `+decisionCols+` FROM decisions ORDER BY observed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	entries := []models.LogEntry{}
	for rows.Next() {
		entry, _, err := scanDecision(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

// MarkNotified flags a decision as already announced.
func (s *Storage) MarkNotified(id int64) error {
	if _, err := s.db.Exec(`UPDATE decisions SET notified = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to mark decision notified: %w", err)
	}
	return nil
}

// IsNotified reports whether a decision was already announced.
func (s *Storage) IsNotified(id int64) (bool, error) {
	var notified int
	err := s.db.QueryRow(`SELECT notified FROM decisions WHERE id = ?`, id).Scan(&notified)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read notified flag: %w", err)
	}
	return notified != 0, nil
}

// AddStatsSnapshot records the aggregate stats observed in one refresh cycle.
func (s *Storage) AddStatsSnapshot(runID string, stats models.Stats) error {
	_, err := s.db.Exec(`
		INSERT INTO stats_history
			(run_id, total_predictions, approval_rate, decline_rate, low, medium, high, captured_at)
		VALUES (?,?,?,?,?,?,?,?)`,
		runID, stats.TotalPredictions, stats.ApprovalRate, stats.DeclineRate,
		stats.RiskDistribution.Low, stats.RiskDistribution.Medium, stats.RiskDistribution.High,
		time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert stats snapshot: %w", err)
	}
	return nil
}

// LatestStatsSnapshot returns the most recent snapshot, or nil when none
// has been captured yet.
func (s *Storage) LatestStatsSnapshot() (*models.Stats, error) {
	row := s.db.QueryRow(`
		SELECT total_predictions, approval_rate, decline_rate, low, medium, high
		FROM stats_history ORDER BY captured_at DESC LIMIT 1`)

	var stats models.Stats
	err := row.Scan(
		&stats.TotalPredictions, &stats.ApprovalRate, &stats.DeclineRate,
		&stats.RiskDistribution.Low, &stats.RiskDistribution.Medium, &stats.RiskDistribution.High,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load stats snapshot: %w", err)
	}
	return &stats, nil
}

const decisionCols = `id, avg_monthly_inflow, inflow_volatility, avg_monthly_outflow,
	min_balance_30d, neg_balance_days_30d, purchase_to_inflow_ratio, total_burden_ratio,
	buffer_ratio, stress_index, risk_probability, decision, created_at, notified`

func scanDecision(scan func(...any) error) (*models.LogEntry, bool, error) {
	var entry models.LogEntry
	var decision string
	var notified int
	err := scan(
		&entry.ID, &entry.AvgMonthlyInflow, &entry.InflowVolatility, &entry.AvgMonthlyOutflow,
		&entry.MinBalance30d, &entry.NegBalanceDays30d, &entry.PurchaseToInflowRatio,
		&entry.TotalBurdenRatio, &entry.BufferRatio, &entry.StressIndex,
		&entry.RiskProbability, &decision, &entry.CreatedAt, &notified,
	)
	if err != nil {
		return nil, false, err
	}
	entry.Decision = models.Decision(decision)
	return &entry, notified != 0, nil
}
