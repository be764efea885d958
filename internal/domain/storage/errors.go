package storage

import "errors"

var (
	// ErrNotDirectory is wrapped when the storage root is not a directory.
	ErrNotDirectory = errors.New("storage path is not a directory")

	// ErrAccessDenied is wrapped when the storage root is not readable and writable.
	ErrAccessDenied = errors.New("storage path is not readable and writable")

	// ErrUnsupportedFormat is returned for unknown archive formats.
	ErrUnsupportedFormat = errors.New("unsupported archive format")

	// ErrInvalidPattern is returned for malformed listing patterns.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// ConfigurationError reports a storage root the server cannot run with.
type ConfigurationError struct {
	Path    string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

func notDirectoryError(path string) *ConfigurationError {
	return &ConfigurationError{
		Path:    path,
		Message: "The path specified for the storage directory is not a directory.",
		Err:     ErrNotDirectory,
	}
}

func accessDeniedError(path string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Path:    path,
		Message: "The user does not have permission to read and write to the specified storage directory.",
		Err:     errors.Join(ErrAccessDenied, cause),
	}
}
