package fsops

// FakeDeleter implements Deleter for testing
// Records every call; paths listed in Fail return the mapped error.
// When Next is set, calls that do not fail are forwarded to it.
type FakeDeleter struct {
	Calls []string
	Fail  map[string]error
	Next  Deleter
}

func (f *FakeDeleter) RemoveAll(path string) error {
	f.Calls = append(f.Calls, "rmall:"+path)
	if err, ok := f.Fail[path]; ok {
		return err
	}
	if f.Next != nil {
		return f.Next.RemoveAll(path)
	}
	return nil
}
