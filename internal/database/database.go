package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded per directory
const (
	ActionDelete = "DELETE"
	ActionError  = "ERROR"
)

// Phases of a prune run
const (
	PhaseWalk     = "walk"
	PhaseAncestor = "ancestor"
)

// HistoryDB manages the SQLite database of prune runs
type HistoryDB struct {
	db *sql.DB
}

// PruneRecord represents a single directory outcome
type PruneRecord struct {
	ID           int64
	RunID        int64
	Timestamp    time.Time
	Action       string
	Path         string
	DirName      string
	Phase        string
	ErrorMessage string
}

// RunRecord represents one invocation against a root
type RunRecord struct {
	ID         int64
	Root       string
	StartedAt  time.Time
	FinishedAt *time.Time
	Deleted    int
	Errors     int
}

// NewHistoryDB creates a new database connection and initializes schema
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A real statement forces the file into existence, Ping() does not
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL lets emptydir-query read while a prune writes
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err = hdb.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return hdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (h *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		root TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		deleted INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS prunes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		dir_name TEXT,
		phase TEXT NOT NULL,
		error_message TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_prunes_timestamp ON prunes(timestamp);
	CREATE INDEX IF NOT EXISTS idx_prunes_action ON prunes(action);
	CREATE INDEX IF NOT EXISTS idx_prunes_path ON prunes(path);
	CREATE INDEX IF NOT EXISTS idx_prunes_run ON prunes(run_id);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := h.db.Exec(schema)
	return err
}

// StartRun inserts a run row and returns its ID
func (h *HistoryDB) StartRun(root string, startedAt time.Time) (int64, error) {
	result, err := h.db.Exec(
		`INSERT INTO runs (root, started_at) VALUES (?, ?)`,
		root, startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	return result.LastInsertId()
}

// FinishRun stores the aggregate counters of a run
func (h *HistoryDB) FinishRun(runID int64, finishedAt time.Time, deleted, errors int) error {
	_, err := h.db.Exec(
		`UPDATE runs SET finished_at = ?, deleted = ?, errors = ? WHERE id = ?`,
		finishedAt, deleted, errors, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	return nil
}

// RecordPrune inserts one directory outcome
func (h *HistoryDB) RecordPrune(runID int64, action, path, phase, errorMsg string) error {
	query := `
	INSERT INTO prunes (
		run_id, timestamp, action, path, dir_name, phase, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	var errMsg sql.NullString
	if errorMsg != "" {
		errMsg = sql.NullString{String: errorMsg, Valid: true}
	}

	_, err := h.db.Exec(
		query,
		runID,
		time.Now(),
		action,
		path,
		filepath.Base(path),
		phase,
		errMsg,
	)
	return err
}

// Close closes the database connection
func (h *HistoryDB) Close() error {
	return h.db.Close()
}
