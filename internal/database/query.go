package database

import (
	"database/sql"
	"time"
)

// GetRecentPrunes returns the N most recent directory outcomes
func (h *HistoryDB) GetRecentPrunes(limit int) ([]PruneRecord, error) {
	query := `
	SELECT id, run_id, timestamp, action, path, dir_name, phase, error_message
	FROM prunes
	ORDER BY timestamp DESC, id DESC
	LIMIT ?
	`

	return h.queryPrunes(query, limit)
}

// GetPrunesByAction returns outcomes filtered by action type
func (h *HistoryDB) GetPrunesByAction(action string) ([]PruneRecord, error) {
	query := `
	SELECT id, run_id, timestamp, action, path, dir_name, phase, error_message
	FROM prunes
	WHERE action = ?
	ORDER BY timestamp DESC, id DESC
	`

	return h.queryPrunes(query, action)
}

// GetPrunesByPath returns outcomes matching a path pattern (SQL LIKE)
func (h *HistoryDB) GetPrunesByPath(pathPattern string) ([]PruneRecord, error) {
	query := `
	SELECT id, run_id, timestamp, action, path, dir_name, phase, error_message
	FROM prunes
	WHERE path LIKE ?
	ORDER BY timestamp DESC, id DESC
	`

	return h.queryPrunes(query, pathPattern)
}

// GetPrunesByRun returns every outcome of one run in deletion order
func (h *HistoryDB) GetPrunesByRun(runID int64) ([]PruneRecord, error) {
	query := `
	SELECT id, run_id, timestamp, action, path, dir_name, phase, error_message
	FROM prunes
	WHERE run_id = ?
	ORDER BY id ASC
	`

	return h.queryPrunes(query, runID)
}

// GetRecentRuns returns the N most recent runs
func (h *HistoryDB) GetRecentRuns(limit int) ([]RunRecord, error) {
	rows, err := h.db.Query(`
	SELECT id, root, started_at, finished_at, deleted, errors
	FROM runs
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Root, &r.StartedAt, &finished, &r.Deleted, &r.Errors); err != nil {
			return nil, err
		}
		if finished.Valid {
			t := finished.Time
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// PruneStats holds aggregated statistics
type PruneStats struct {
	TotalRuns       int
	TotalDeleted    int
	TotalErrors     int
	AncestorDeleted int
	StartDate       time.Time
	EndDate         time.Time
}

// GetPruneStats returns statistics for the last N days
func (h *HistoryDB) GetPruneStats(days int) (*PruneStats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &PruneStats{
		StartDate: since,
		EndDate:   now,
	}

	err := h.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END),
			COUNT(CASE WHEN action = 'DELETE' AND phase = 'ancestor' THEN 1 END)
		FROM prunes
		WHERE timestamp >= ?
	`, since).Scan(&stats.TotalDeleted, &stats.TotalErrors, &stats.AncestorDeleted)
	if err != nil {
		return nil, err
	}

	err = h.db.QueryRow(`SELECT COUNT(*) FROM runs WHERE started_at >= ?`, since).Scan(&stats.TotalRuns)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes outcomes and runs older than the given days
func (h *HistoryDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := h.db.Exec(`DELETE FROM prunes WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	_, err = h.db.Exec(`
		DELETE FROM runs
		WHERE started_at < ? AND id NOT IN (SELECT DISTINCT run_id FROM prunes)
	`, cutoff)
	return removed, err
}

// queryPrunes is a helper function to execute queries and scan results
func (h *HistoryDB) queryPrunes(query string, args ...interface{}) ([]PruneRecord, error) {
	rows, err := h.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PruneRecord
	for rows.Next() {
		var r PruneRecord
		var dirName, errMsg sql.NullString

		err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Action, &r.Path,
			&dirName, &r.Phase, &errMsg,
		)
		if err != nil {
			return nil, err
		}

		r.DirName = dirName.String
		r.ErrorMessage = errMsg.String

		records = append(records, r)
	}

	return records, rows.Err()
}
