package oracle

import (
	"sort"
	"strings"
)

// junkNames is the fixed allow-list of entries that never block deletion.
// Keys are lower-case; lookups must lower-case the entry name first.
//
//   - .DS_Store, Thumbs.db, desktop.ini: file-manager metadata
//   - .ipynb_checkpoints: Jupyter autosaves
//   - .jekyll-cache: regenerated on every Jekyll build
//   - .venv: virtual environments, cheap to recreate
//   - __pycache__: bytecode for sources that are gone
var junkNames = map[string]struct{}{
	".ds_store":          {},
	".ipynb_checkpoints": {},
	".jekyll-cache":      {},
	".venv":              {},
	"__pycache__":        {},
	"desktop.ini":        {},
	"thumbs.db":          {},
}

// IsJunk reports whether an entry name is on the allow-list, ignoring case.
func IsJunk(name string) bool {
	_, ok := junkNames[strings.ToLower(name)]
	return ok
}

// JunkNames returns a sorted copy of the allow-list.
func JunkNames() []string {
	names := make([]string, 0, len(junkNames))
	for name := range junkNames {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
