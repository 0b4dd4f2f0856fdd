package fsops

import "os"

// OSDeleter implements Deleter using os.RemoveAll
type OSDeleter struct{}

func (OSDeleter) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
