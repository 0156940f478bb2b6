package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/navscout/internal/model"
)

// DBFileName is the name of the history database inside its directory.
const DBFileName = "navscout.db"

// timestampLayout has a fixed width so stored timestamps sort as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var (
	// ErrRunNotFound is returned when no stored run matches an ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousRunID is returned when an ID prefix matches several runs.
	ErrAmbiguousRunID = errors.New("run ID prefix matches more than one run")
)

// HistoryDB stores emitted exploration reports in SQLite.
//
// It is an archive only. A crawl never reads from it, so every exploration
// starts from an empty frontier regardless of what was stored before.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// newID generates run identifiers.
	newID func() string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s: %w", dbPath, err)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
		newID:  uuid.NewString,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		exploration_domain TEXT NOT NULL,
		base_url TEXT NOT NULL,
		timestamp TEXT NOT NULL,
		discovered INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		skipped_logout INTEGER NOT NULL DEFAULT 0,
		menus INTEGER NOT NULL DEFAULT 0,
		cancelled INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(exploration_domain);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunSummary is the stored metadata of one exploration, without the full
// report.
type RunSummary struct {
	// ID is the run identifier (a UUID).
	ID string

	// ExplorationDomain is the origin that was explored.
	ExplorationDomain string

	// BaseURL is the authentication origin of the run.
	BaseURL string

	// Timestamp is when the exploration finished.
	Timestamp time.Time

	Discovered    int
	Failed        int
	SkippedLogout int
	Menus         int
	Cancelled     bool
}

// SaveReport stores report and returns the new run ID.
func (h *HistoryDB) SaveReport(ctx context.Context, report *model.Report) (string, error) {
	if report == nil {
		return "", errors.New("cannot save nil report")
	}

	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}

	ts := report.Summary.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO runs (id, exploration_domain, base_url, timestamp, discovered, failed, skipped_logout, menus, cancelled, report_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := h.newID()
	_, err = h.db.ExecContext(ctx, query,
		id,
		report.ExplorationDomain,
		report.BaseURL,
		ts.UTC().Format(timestampLayout),
		len(report.DiscoveredRoutes),
		len(report.FailedRoutes),
		len(report.SkippedLogoutRoutes),
		len(report.NavigationStructure),
		report.Summary.Cancelled,
		string(reportJSON),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}

	return id, nil
}

// ListRuns returns stored runs, newest first. An empty domain lists every
// run.
func (h *HistoryDB) ListRuns(ctx context.Context, domain string) ([]RunSummary, error) {
	query := `
	SELECT id, exploration_domain, base_url, timestamp, discovered, failed, skipped_logout, menus, cancelled
	FROM runs
	WHERE ? = '' OR exploration_domain = ?
	ORDER BY timestamp DESC
	`

	rows, err := h.db.QueryContext(ctx, query, domain, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunSummary, 0)
	for rows.Next() {
		var run RunSummary
		var timestamp string

		if err := rows.Scan(
			&run.ID,
			&run.ExplorationDomain,
			&run.BaseURL,
			&timestamp,
			&run.Discovered,
			&run.Failed,
			&run.SkippedLogout,
			&run.Menus,
			&run.Cancelled,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		run.Timestamp = parseTimestamp(timestamp)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListDomains returns every explored domain, sorted.
func (h *HistoryDB) ListDomains(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT exploration_domain FROM runs ORDER BY exploration_domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	domains := make([]string, 0)
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// GetReport loads the report of one run. id may be a unique prefix of the
// full run ID.
func (h *HistoryDB) GetReport(ctx context.Context, id string) (*model.Report, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}

	query := `
	SELECT report_json FROM runs
	WHERE substr(id, 1, ?) = ?
	LIMIT 2
	`

	rows, err := h.db.QueryContext(ctx, query, len(id), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	defer rows.Close()

	matches := make([]string, 0, 2)
	for rows.Next() {
		var reportJSON string
		if err := rows.Scan(&reportJSON); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		matches = append(matches, reportJSON)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRunID, id)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(matches[0]), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// DeleteRun removes one stored run.
func (h *HistoryDB) DeleteRun(ctx context.Context, id string) error {
	result, err := h.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
