//go:build !unix

package storage

import "os"

// checkAccess reports whether the process may read and write path by
// listing it and creating a scratch file.
func checkAccess(path string) error {
	if _, err := os.ReadDir(path); err != nil {
		return err
	}

	f, err := os.CreateTemp(path, ".access-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
