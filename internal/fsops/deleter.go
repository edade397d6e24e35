package fsops

import "os"

// Deleter abstracts filesystem removal so tests can prove that dry-run and
// safety-rejected paths never reach a delete syscall.
type Deleter interface {
	Remove(path string) error
}

// OSDeleter removes files for real.
type OSDeleter struct{}

func (OSDeleter) Remove(path string) error {
	return os.Remove(path)
}

// RecordingDeleter implements Deleter for tests. It records every call and
// deletes nothing.
type RecordingDeleter struct {
	Calls []string
	Err   error // returned from every call when set
}

func (r *RecordingDeleter) Remove(path string) error {
	r.Calls = append(r.Calls, path)
	return r.Err
}
