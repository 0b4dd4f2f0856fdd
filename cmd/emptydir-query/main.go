package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"emptydir/internal/config"
	"emptydir/internal/database"
	"emptydir/internal/exitcodes"
)

func main() {
	// Parse command-line flags
	dbPath := flag.String("db", defaultDBPath(), "Path to prune history database")
	recent := flag.Int("recent", 0, "Show N most recent directory outcomes")
	runs := flag.Int("runs", 0, "Show N most recent runs")
	run := flag.Int64("run", 0, "Show every outcome of one run ID")
	stats := flag.Bool("stats", false, "Show prune statistics")
	action := flag.String("action", "", "Filter by action (DELETE, ERROR)")
	pathPattern := flag.String("path", "", "Filter by path pattern (SQL LIKE syntax)")
	days := flag.Int("days", 30, "Number of days for statistics (default: 30)")
	pruneOlder := flag.Int("prune-older", 0, "Remove history older than N days")
	jsonOutput := flag.Bool("json", false, "Output in JSON format")
	flag.Parse()

	if *dbPath == "" || *dbPath == config.Disabled {
		log.Printf("ERROR: history is disabled; pass --db")
		os.Exit(exitcodes.InvalidConfig)
	}

	// Open database
	db, err := database.NewHistoryDB(*dbPath)
	if err != nil {
		log.Printf("ERROR: Failed to open database %s: %v", *dbPath, err)
		os.Exit(exitcodes.RuntimeError)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("ERROR: Failed to close database: %v", err)
		}
	}()

	q := &querier{db: db, out: os.Stdout, json: *jsonOutput}

	// Handle different query modes
	switch {
	case *pruneOlder > 0:
		err = q.pruneOlder(*pruneOlder)
	case *stats:
		err = q.showStats(*days)
	case *runs > 0:
		err = q.showRuns(*runs)
	case *run > 0:
		err = q.showRun(*run)
	case *recent > 0:
		err = q.showRecent(*recent)
	case *action != "":
		err = q.showByAction(*action)
	case *pathPattern != "":
		err = q.showByPath(*pathPattern)
	default:
		flag.Usage()
		fmt.Println("\nExamples:")
		fmt.Println("  emptydir-query --recent 10            # Show 10 most recent outcomes")
		fmt.Println("  emptydir-query --runs 5               # Show the last 5 runs")
		fmt.Println("  emptydir-query --run 42               # Show what run 42 deleted")
		fmt.Println("  emptydir-query --stats --days 7       # Show statistics for a week")
		fmt.Println("  emptydir-query --action ERROR         # Show only failed deletions")
		fmt.Println("  emptydir-query --path '/home/me/src/%' # Show outcomes under a tree")
		fmt.Println("  emptydir-query --prune-older 90       # Forget history older than 90 days")
		os.Exit(exitcodes.InvalidArgs)
	}

	if err != nil {
		log.Printf("ERROR: %v", err)
		os.Exit(exitcodes.RuntimeError)
	}
}

func defaultDBPath() string {
	cfg, err := config.Load("")
	if err != nil {
		return ""
	}
	return cfg.DatabasePath
}

type querier struct {
	db   *database.HistoryDB
	out  io.Writer
	json bool
}

func (q *querier) writeJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(q.out, string(data))
	return err
}

func (q *querier) showStats(days int) error {
	stats, err := q.db.GetPruneStats(days)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	if q.json {
		return q.writeJSON(stats)
	}

	fmt.Fprintf(q.out, "Prune Statistics (Last %d days)\n", days)
	fmt.Fprintf(q.out, "Period: %s to %s\n\n", stats.StartDate.Format("2006-01-02"), stats.EndDate.Format("2006-01-02"))
	fmt.Fprintf(q.out, "Runs:              %s\n", humanize.Comma(int64(stats.TotalRuns)))
	fmt.Fprintf(q.out, "Deleted:           %s\n", humanize.Comma(int64(stats.TotalDeleted)))
	fmt.Fprintf(q.out, "  via cascade:     %s\n", humanize.Comma(int64(stats.AncestorDeleted)))
	fmt.Fprintf(q.out, "Errors:            %s\n", humanize.Comma(int64(stats.TotalErrors)))
	return nil
}

func (q *querier) showRuns(limit int) error {
	runs, err := q.db.GetRecentRuns(limit)
	if err != nil {
		return fmt.Errorf("failed to get recent runs: %w", err)
	}

	if q.json {
		return q.writeJSON(runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(q.out, "No runs found")
		return nil
	}

	w := tabwriter.NewWriter(q.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tStarted\tDuration\tDeleted\tErrors\tRoot")
	_, _ = fmt.Fprintln(w, "--\t-------\t--------\t-------\t------\t----")
	for _, r := range runs {
		duration := "running"
		if r.FinishedAt != nil {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, humanize.Time(r.StartedAt), duration, r.Deleted, r.Errors, r.Root)
	}
	return w.Flush()
}

func (q *querier) showRun(runID int64) error {
	records, err := q.db.GetPrunesByRun(runID)
	if err != nil {
		return fmt.Errorf("failed to query run %d: %w", runID, err)
	}

	if q.json {
		return q.writeJSON(records)
	}

	fmt.Fprintf(q.out, "Outcomes of run %d:\n\n", runID)
	return q.printRecords(records)
}

func (q *querier) showRecent(limit int) error {
	records, err := q.db.GetRecentPrunes(limit)
	if err != nil {
		return fmt.Errorf("failed to get recent outcomes: %w", err)
	}

	if q.json {
		return q.writeJSON(records)
	}

	return q.printRecords(records)
}

func (q *querier) showByAction(action string) error {
	records, err := q.db.GetPrunesByAction(action)
	if err != nil {
		return fmt.Errorf("failed to query by action: %w", err)
	}

	if q.json {
		return q.writeJSON(records)
	}

	fmt.Fprintf(q.out, "Records with action: %s\n\n", action)
	return q.printRecords(records)
}

func (q *querier) showByPath(pathPattern string) error {
	records, err := q.db.GetPrunesByPath(pathPattern)
	if err != nil {
		return fmt.Errorf("failed to query by path: %w", err)
	}

	if q.json {
		return q.writeJSON(records)
	}

	fmt.Fprintf(q.out, "Outcomes matching path pattern: %s\n\n", pathPattern)
	return q.printRecords(records)
}

func (q *querier) pruneOlder(days int) error {
	removed, err := q.db.DeleteOldRecords(days)
	if err != nil {
		return fmt.Errorf("failed to remove old records: %w", err)
	}
	fmt.Fprintf(q.out, "Removed %s records older than %d days\n", humanize.Comma(removed), days)
	return nil
}

func (q *querier) printRecords(records []database.PruneRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(q.out, "No records found")
		return nil
	}

	w := tabwriter.NewWriter(q.out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tRun\tTimestamp\tAction\tPhase\tPath")
	_, _ = fmt.Fprintln(w, "--\t---\t---------\t------\t-----\t----")

	for _, r := range records {
		path := r.Path
		if r.ErrorMessage != "" {
			path += " (" + r.ErrorMessage + ")"
		}
		_, _ = fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.RunID, r.Timestamp.Format("2006-01-02 15:04:05"), r.Action, r.Phase, path)
	}
	return w.Flush()
}
