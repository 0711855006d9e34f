// Package confkit carries the configuration plumbing the snowfeed binaries
// share: dotenv bootstrap and file-backed config sections.
package confkit

import (
	"os"
	"path/filepath"
)

// ResolvePath expands environment variables in file and, unless the result
// is already absolute, resolves it against base.
func ResolvePath(base, file string) string {
	file = os.ExpandEnv(file)
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(base, file)
}

// Section is a config block whose payload lives in a separate file. File
// names that file, relative to the main config; Value holds the decoded
// payload once Hydrate has run.
type Section[T any] struct {
	File  string `json:",optional"`
	Value *T     `json:"-"`
}

// Hydrate resolves File against base and decodes it through loader, leaving
// the resolved path in File. A section without a File stays empty; that is
// the disabled state, not an error.
func (s *Section[T]) Hydrate(base string, loader func(string) (*T, error)) error {
	if s.File == "" {
		return nil
	}
	path := ResolvePath(base, s.File)
	value, err := loader(path)
	if err != nil {
		return err
	}
	s.File, s.Value = path, value
	return nil
}
