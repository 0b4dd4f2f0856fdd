// Package oracle decides whether a directory is effectively empty and
// therefore safe to delete.
package oracle

import (
	"errors"
	"os"
	"sort"
	"strings"
	"time"

	"emptydir/internal/safety"
)

// Oracle evaluates directories against the guard and the junk allow-list.
// It only reads the filesystem and never returns errors outside a Decision.
type Oracle struct {
	guard *safety.Guard
}

// New creates an Oracle. A nil guard gets the built-in protected paths.
func New(guard *safety.Guard) *Oracle {
	if guard == nil {
		guard = safety.NewGuard(nil)
	}
	return &Oracle{guard: guard}
}

// Evaluate decides whether path may be deleted. Rules apply in order and
// the first match wins: protected path, git metadata, unreadable, contents.
func (o *Oracle) Evaluate(path string) Decision {
	d := Decision{
		Path:        path,
		EvaluatedAt: time.Now(),
	}

	if err := o.guard.Check(path); err != nil {
		var pe *safety.ProtectedError
		if !errors.As(err, &pe) {
			d.Unreadable = &UnreadableReason{Err: err}
			return d
		}
		rule := RuleProtectedPath
		if errors.Is(err, safety.ErrGitMetadata) {
			rule = RuleGitMetadata
		}
		d.Protected = &ProtectedReason{Rule: rule, Match: pe.Match}
		return d
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		d.Unreadable = &UnreadableReason{Err: err}
		return d
	}

	// Names are compared and reported lower-cased, so "Notes" and "notes" count once
	seen := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name := strings.ToLower(entry.Name())
		if !IsJunk(name) {
			seen[name] = struct{}{}
		}
	}
	if len(seen) > 0 {
		remaining := make([]string, 0, len(seen))
		for name := range seen {
			remaining = append(remaining, name)
		}
		sort.Strings(remaining)
		d.NotEmpty = &NotEmptyReason{Entries: remaining}
	}

	return d
}
