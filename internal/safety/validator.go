package safety

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrInvalidPath   = errors.New("invalid path")
	ErrProtectedPath = errors.New("protected path")
	ErrGitMetadata   = errors.New("inside git metadata directory")
)

// NeverDeletePath is the user's always-keep folder. It is matched exactly
// (not its children) after home expansion and canonicalization.
const NeverDeletePath = "~/Desktop/do not back up"

const gitDirName = ".git"

// ProtectedError reports which guard rule vetoed a path
type ProtectedError struct {
	Path  string // canonical form of the checked path
	Match string // protected entry that matched; empty for git metadata
	Err   error  // ErrProtectedPath or ErrGitMetadata
}

func (e *ProtectedError) Error() string {
	if e.Match != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Path, e.Err, e.Match)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ProtectedError) Unwrap() error {
	return e.Err
}

// Guard vetoes paths that must survive regardless of their contents
type Guard struct {
	ProtectedPaths []string
}

// NewGuard creates a guard with the built-in protected paths plus any extras
func NewGuard(extraProtected []string) *Guard {
	return &Guard{
		ProtectedPaths: normalizeProtected(defaultProtected(extraProtected)),
	}
}

// Check is the single source of truth for path-level vetoes.
// Returns nil, ErrInvalidPath, or a *ProtectedError.
func (g *Guard) Check(path string) error {
	// 1. Normalize path to absolute, cleaned form
	p, err := NormalizePath(path)
	if err != nil {
		return err
	}

	// 2. Exact match against never-delete paths, compared canonically
	canonical := Canonicalize(p)
	if match, ok := IsProtectedPath(canonical, g.ProtectedPaths); ok {
		return &ProtectedError{Path: canonical, Match: match, Err: ErrProtectedPath}
	}

	// 3. Anything at or below a .git directory
	if InGitMetadata(p) || InGitMetadata(canonical) {
		return &ProtectedError{Path: canonical, Err: ErrGitMetadata}
	}

	return nil
}

// NormalizePath converts path to absolute, cleaned form
func NormalizePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", ErrInvalidPath
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	return filepath.Clean(abs), nil
}

// Canonicalize resolves symlinks when the path exists and otherwise
// returns the cleaned input unchanged
func Canonicalize(cleanAbs string) string {
	resolved, err := filepath.EvalSymlinks(cleanAbs)
	if err != nil {
		return cleanAbs
	}
	resolvedAbs, err := filepath.Abs(resolved)
	if err != nil {
		return cleanAbs
	}
	return filepath.Clean(resolvedAbs)
}

// InGitMetadata reports whether any segment of path is literally ".git"
func InGitMetadata(path string) bool {
	parts := strings.Split(filepath.ToSlash(filepath.Clean(path)), "/")
	for _, p := range parts {
		if p == gitDirName {
			return true
		}
	}
	return false
}

// IsProtectedPath checks if path equals one of the protected entries
func IsProtectedPath(path string, protected []string) (string, bool) {
	p := filepath.Clean(path)
	for _, prot := range protected {
		if p == filepath.Clean(prot) {
			return prot, true
		}
	}
	return "", false
}

// ExpandHome replaces a leading "~" with the current user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

// normalizeProtected expands, absolutizes and canonicalizes protected entries
func normalizeProtected(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		abs, err := NormalizePath(ExpandHome(p))
		if err != nil {
			continue
		}
		canonical := Canonicalize(abs)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

// defaultProtected returns the base set of protected paths plus any extras
func defaultProtected(extra []string) []string {
	base := []string{
		string(os.PathSeparator),
		NeverDeletePath,
	}
	return append(base, extra...)
}
