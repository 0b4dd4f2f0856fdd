package oracle

import (
	"errors"
	"io/fs"
	"testing"
)

// TestToHumanReadable verifies terminal wording for every reason
func TestToHumanReadable(t *testing.T) {
	tests := []struct {
		name     string
		decision Decision
		expected string
	}{
		{
			name:     "can delete",
			decision: Decision{},
			expected: "directory can be deleted",
		},
		{
			name:     "one entry",
			decision: Decision{NotEmpty: &NotEmptyReason{Entries: []string{"greeting.txt"}}},
			expected: "directory is not empty; contains 1 entry:\n  - greeting.txt",
		},
		{
			name:     "several entries",
			decision: Decision{NotEmpty: &NotEmptyReason{Entries: []string{"a.txt", "src"}}},
			expected: "directory is not empty; contains 2 entries:\n  - a.txt\n  - src",
		},
		{
			name:     "unreadable",
			decision: Decision{Unreadable: &UnreadableReason{Err: fs.ErrPermission}},
			expected: "unable to list directory contents: permission denied",
		},
		{
			name:     "git metadata",
			decision: Decision{Protected: &ProtectedReason{Rule: RuleGitMetadata}},
			expected: "directory is inside a .git repository",
		},
		{
			name:     "protected path",
			decision: Decision{Protected: &ProtectedReason{Rule: RuleProtectedPath, Match: "/keep"}},
			expected: "directory is a protected path: /keep",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decision.ToHumanReadable(); got != tt.expected {
				t.Errorf("ToHumanReadable() = %q, expected %q", got, tt.expected)
			}
		})
	}
}

// TestPrimaryReasonAndErr verifies labels and sentinel wrapping
func TestPrimaryReasonAndErr(t *testing.T) {
	tests := []struct {
		name      string
		decision  Decision
		primary   string
		sentinel  error
		logPrefix string
	}{
		{"none", Decision{}, "none", nil, "can_delete"},
		{"not empty", Decision{NotEmpty: &NotEmptyReason{Entries: []string{"x"}}}, "not_empty", ErrNotEmpty, "not_empty"},
		{"unreadable", Decision{Unreadable: &UnreadableReason{Err: fs.ErrNotExist}}, "unreadable", ErrUnreadable, "unreadable"},
		{"protected", Decision{Protected: &ProtectedReason{Rule: RuleGitMetadata}}, "protected", ErrProtected, "protected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.decision.PrimaryReason(); got != tt.primary {
				t.Errorf("PrimaryReason() = %s, expected %s", got, tt.primary)
			}
			err := tt.decision.Err()
			if tt.sentinel == nil {
				if err != nil {
					t.Errorf("Err() = %v, expected nil", err)
				}
			} else if !errors.Is(err, tt.sentinel) {
				t.Errorf("Err() = %v, expected %v", err, tt.sentinel)
			}
			if got := tt.decision.ToLogString(); len(got) < len(tt.logPrefix) || got[:len(tt.logPrefix)] != tt.logPrefix {
				t.Errorf("ToLogString() = %q, expected prefix %q", got, tt.logPrefix)
			}
		})
	}

	// Unreadable keeps the underlying fault reachable
	d := Decision{Unreadable: &UnreadableReason{Err: fs.ErrNotExist}}
	if !errors.Is(d.Err(), fs.ErrNotExist) {
		t.Errorf("Err() = %v, expected to wrap fs.ErrNotExist", d.Err())
	}
}
