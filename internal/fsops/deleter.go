package fsops

// Deleter abstracts recursive directory removal
// Enables fault injection in tests without touching the filesystem
type Deleter interface {
	RemoveAll(path string) error
}
