package engine

import "os"

// Deleter removes a duplicate file.
type Deleter interface {
	Delete(path string) error
}

// DeleterFunc adapts a function to the Deleter interface.
type DeleterFunc func(path string) error

// Delete calls f(path).
func (f DeleterFunc) Delete(path string) error { return f(path) }

// RemoveDeleter deletes files permanently with os.Remove.
type RemoveDeleter struct{}

// Delete removes the file at path.
func (RemoveDeleter) Delete(path string) error {
	return os.Remove(path)
}

var (
	_ Deleter = DeleterFunc(nil)
	_ Deleter = RemoveDeleter{}
)
