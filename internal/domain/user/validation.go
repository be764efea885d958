package user

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/GriffinCanCode/userstore/internal/shared/paths"
)

const (
	// MaxUsernameLength bounds the username accepted from the fronting server.
	MaxUsernameLength = 255

	// MaxDirNameBytes is the longest directory name common filesystems accept.
	MaxDirNameBytes = 255
)

// ErrInvalidUsername is wrapped by every Validate failure.
var ErrInvalidUsername = errors.New("invalid username")

// Validate checks that the username, once sanitized, names a single
// directory directly below the storage root and fits in MaxDirNameBytes.
func (u User) Validate() error {
	name := u.Username
	if name == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: username is not valid UTF-8", ErrInvalidUsername)
	}
	if n := utf8.RuneCountInString(name); n > MaxUsernameLength {
		return fmt.Errorf("%w: username must not exceed %d characters", ErrInvalidUsername, MaxUsernameLength)
	}
	if strings.IndexFunc(name, unicode.IsControl) >= 0 {
		return fmt.Errorf("%w: username contains control characters", ErrInvalidUsername)
	}
	// "." and ".." would resolve to the storage root or its parent.
	if name == "." || name == ".." {
		return fmt.Errorf("%w: %q is reserved", ErrInvalidUsername, name)
	}
	if n := len(paths.SanitizeUsername(name)); n > MaxDirNameBytes {
		return fmt.Errorf("%w: sanitized username is %d bytes, limit is %d", ErrInvalidUsername, n, MaxDirNameBytes)
	}
	return nil
}
