// Package prune deletes effectively empty directories bottom-up and then
// cascades through ancestors that became empty as a result.
package prune

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"emptydir/internal/database"
	"emptydir/internal/fsops"
	"emptydir/internal/metrics"
	"emptydir/internal/oracle"
)

const gitDirName = ".git"

// PruneLogger interface for structured logging in prune
type PruneLogger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Debug(msg string, args ...interface{})
}

// pruneStdLogger wraps standard log.Logger to implement PruneLogger interface
type pruneStdLogger struct {
	*log.Logger
}

func (l *pruneStdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *pruneStdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *pruneStdLogger) Debug(msg string, args ...interface{}) {
	l.logWithLevel("DEBUG", msg, args...)
}

func (l *pruneStdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Evaluator decides whether a directory may be deleted
type Evaluator interface {
	Evaluate(path string) oracle.Decision
}

// Observer receives outcomes in the order deletions happen
type Observer interface {
	Deleted(path string)
	Failed(path string, err error)
}

// Result holds the aggregate counters of one Prune call
type Result struct {
	Deleted int // directories removed
	Errors  int // approved directories whose removal failed
}

// Pruner walks a tree and removes every directory the Evaluator approves
type Pruner struct {
	logger   PruneLogger
	oracle   Evaluator
	deleter  fsops.Deleter
	observer Observer
	db       *database.HistoryDB // Optional prune history
	runID    int64
}

// NewPruner creates a Pruner that removes directories with os.RemoveAll.
// db may be nil to skip history recording.
func NewPruner(logger *log.Logger, evaluator Evaluator, db *database.HistoryDB) *Pruner {
	if logger == nil {
		logger = log.Default()
	}
	metrics.Init()
	return &Pruner{
		logger:  &pruneStdLogger{Logger: logger},
		oracle:  evaluator,
		deleter: fsops.OSDeleter{},
		db:      db,
	}
}

// SetDeleter replaces the removal backend
func (p *Pruner) SetDeleter(d fsops.Deleter) {
	p.deleter = d
}

// SetObserver registers the receiver of per-directory outcomes
func (p *Pruner) SetObserver(o Observer) {
	p.observer = o
}

// Prune removes effectively empty directories under root, children first,
// then climbs from root's parent while the Evaluator keeps approving. A root
// that is missing or not a directory yields a zero Result and no climb.
// Individual faults never abort the run; they surface in Result.
func (p *Pruner) Prune(root string) Result {
	start := time.Now()
	root = absolute(root)

	p.startRun(root, start)
	p.logger.Info("Starting prune", "root", root)

	var res Result
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		// A missing root must not let the climb remove its parents
		p.logger.Info("Root is not a directory, nothing to prune", "root", root, "error", err)
		p.finishRun(res)
		metrics.RecordRun(start, 0)
		return res
	}

	p.walk(root, &res)

	for parent := parentOf(root); parent != ""; parent = parentOf(parent) {
		if !p.consider(parent, database.PhaseAncestor, &res) {
			break
		}
	}

	p.finishRun(res)
	metrics.RecordRun(start, res.Deleted)

	p.logger.Info("Prune complete",
		"root", root,
		"deleted", res.Deleted,
		"errors", res.Errors,
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return res
}

// walk visits dir's subdirectories before dir itself. Symlinks are never
// followed since DirEntry.IsDir reports the link, not its target.
func (p *Pruner) walk(dir string, res *Result) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		p.logger.Debug("Skipping unreadable directory", "path", dir, "error", err)
		return
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		// Nothing under .git is ever deletable
		if entry.Name() == gitDirName {
			continue
		}
		p.walk(filepath.Join(dir, entry.Name()), res)
	}

	p.consider(dir, database.PhaseWalk, res)
}

// consider evaluates dir and removes it when approved. It reports whether
// the Evaluator approved, regardless of whether removal then succeeded.
func (p *Pruner) consider(dir, phase string, res *Result) bool {
	decision := p.oracle.Evaluate(dir)
	metrics.RecordEvaluation(decision.PrimaryReason())

	if !decision.CanDelete() {
		p.logger.Debug("Keeping directory", "path", dir, "reason", decision.ToLogString())
		return false
	}

	p.remove(dir, phase, res)
	return true
}

func (p *Pruner) remove(dir, phase string, res *Result) {
	if err := p.deleter.RemoveAll(dir); err != nil {
		res.Errors++
		metrics.RecordDeleteError()
		p.logger.Error("Failed to delete", "path", dir, "phase", phase, "error", err)
		p.record(database.ActionError, dir, phase, err.Error())
		if p.observer != nil {
			p.observer.Failed(dir, err)
		}
		return
	}

	res.Deleted++
	metrics.RecordDeletion(phase == database.PhaseAncestor)
	p.logger.Info("Deleted directory", "path", dir, "phase", phase)
	p.record(database.ActionDelete, dir, phase, "")
	if p.observer != nil {
		p.observer.Deleted(dir)
	}
}

func (p *Pruner) startRun(root string, start time.Time) {
	p.runID = 0
	if p.db == nil {
		return
	}
	id, err := p.db.StartRun(root, start)
	if err != nil {
		p.logger.Error("Failed to record run start", "error", err)
		return
	}
	p.runID = id
}

func (p *Pruner) finishRun(res Result) {
	if p.db == nil || p.runID == 0 {
		return
	}
	if err := p.db.FinishRun(p.runID, time.Now(), res.Deleted, res.Errors); err != nil {
		p.logger.Error("Failed to record run result", "error", err)
	}
}

// record writes one outcome to history; history failures never fail a prune
func (p *Pruner) record(action, dir, phase, errMsg string) {
	if p.db == nil || p.runID == 0 {
		return
	}
	if err := p.db.RecordPrune(p.runID, action, dir, phase, errMsg); err != nil {
		p.logger.Error("Failed to record to database", "path", dir, "error", err)
	}
}

func absolute(path string) string {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// parentOf returns the parent directory, or "" at the filesystem root
func parentOf(path string) string {
	parent := filepath.Dir(path)
	if parent == path {
		return ""
	}
	return parent
}
