package oracle

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotEmpty   = errors.New("directory is not empty")
	ErrUnreadable = errors.New("unable to list directory contents")
	ErrProtected  = errors.New("directory is protected")
)

// Protection rules
const (
	RuleGitMetadata   = "git_metadata"
	RuleProtectedPath = "protected_path"
)

// Decision captures whether a directory may be deleted and, if not, why.
// At most one reason is set; a Decision with no reason means CanDelete.
type Decision struct {
	NotEmpty   *NotEmptyReason
	Unreadable *UnreadableReason
	Protected  *ProtectedReason

	// Metadata
	Path        string    // Directory as passed to Evaluate
	EvaluatedAt time.Time // When the listing was taken
}

// NotEmptyReason lists the lower-cased entry names that are not junk, sorted ascending.
type NotEmptyReason struct {
	Entries []string
}

// UnreadableReason carries the fault hit while listing the directory.
type UnreadableReason struct {
	Err error
}

// ProtectedReason indicates a deliberate, permanent veto.
type ProtectedReason struct {
	Rule  string // RuleGitMetadata or RuleProtectedPath
	Match string // protected entry that matched, if any
}

// CanDelete returns true if no reason blocks deletion.
func (d Decision) CanDelete() bool {
	return d.NotEmpty == nil && d.Unreadable == nil && d.Protected == nil
}

// PrimaryReason returns a short label used for metrics and history.
func (d Decision) PrimaryReason() string {
	switch {
	case d.Protected != nil:
		return "protected"
	case d.Unreadable != nil:
		return "unreadable"
	case d.NotEmpty != nil:
		return "not_empty"
	default:
		return "none"
	}
}

// Err returns nil for CanDelete, otherwise an error wrapping one of
// ErrNotEmpty, ErrUnreadable or ErrProtected.
func (d Decision) Err() error {
	switch {
	case d.Protected != nil:
		if d.Protected.Match != "" {
			return fmt.Errorf("%w: %s matches %s", ErrProtected, d.Path, d.Protected.Match)
		}
		return fmt.Errorf("%w: %s (%s)", ErrProtected, d.Path, d.Protected.Rule)
	case d.Unreadable != nil:
		return fmt.Errorf("%w: %w", ErrUnreadable, d.Unreadable.Err)
	case d.NotEmpty != nil:
		return fmt.Errorf("%w: %s", ErrNotEmpty, strings.Join(d.NotEmpty.Entries, ", "))
	default:
		return nil
	}
}

// ToLogString formats the decision for structured logging.
// Example: "not_empty: entries=2 [notes.txt, src]"
func (d Decision) ToLogString() string {
	switch {
	case d.Protected != nil:
		if d.Protected.Match != "" {
			return fmt.Sprintf("protected: rule=%s match=%q", d.Protected.Rule, d.Protected.Match)
		}
		return fmt.Sprintf("protected: rule=%s", d.Protected.Rule)
	case d.Unreadable != nil:
		return fmt.Sprintf("unreadable: %v", d.Unreadable.Err)
	case d.NotEmpty != nil:
		return fmt.Sprintf("not_empty: entries=%d [%s]",
			len(d.NotEmpty.Entries),
			strings.Join(d.NotEmpty.Entries, ", "),
		)
	default:
		return "can_delete"
	}
}

// ToHumanReadable formats the decision for the terminal.
func (d Decision) ToHumanReadable() string {
	switch {
	case d.Protected != nil:
		if d.Protected.Rule == RuleGitMetadata {
			return "directory is inside a .git repository"
		}
		return fmt.Sprintf("directory is a protected path: %s", d.Protected.Match)
	case d.Unreadable != nil:
		return fmt.Sprintf("unable to list directory contents: %v", d.Unreadable.Err)
	case d.NotEmpty != nil:
		var b strings.Builder
		n := len(d.NotEmpty.Entries)
		suffix := "ies"
		if n == 1 {
			suffix = "y"
		}
		fmt.Fprintf(&b, "directory is not empty; contains %d entr%s:", n, suffix)
		for _, entry := range d.NotEmpty.Entries {
			fmt.Fprintf(&b, "\n  - %s", entry)
		}
		return b.String()
	default:
		return "directory can be deleted"
	}
}
