// Package paths provides the naming rules for per-user storage directories.
//
// Usernames become directory names, so they are rewritten into a token that
// is safe on every supported filesystem before being joined to a storage root.
package paths

import (
	"path/filepath"
	"strings"
	"unicode"
)

// MyStorage is the storage name that selects the caller's private storage.
const MyStorage = "my_storage"

// UserPrefix is prepended to usernames that are empty or start with a digit.
const UserPrefix = "pga_user_"

// Storage layout below the user's home directory.
const (
	HomeDirName    = ".pgadmin"
	StorageDirName = "storage"
)

// IsShared reports whether name selects a shared storage location rather
// than the caller's private one.
func IsShared(name string) bool {
	return name != "" && name != MyStorage
}

// SanitizeUsername turns a username into a filesystem-safe directory name.
func SanitizeUsername(username string) string {
	name := username
	if name == "" || startsWithDigit(name) {
		name = UserPrefix + name
	}

	return strings.NewReplacer(
		"@", "_",
		"/", "slash",
		`\`, "slash",
	).Replace(name)
}

// LocalPart returns the username up to the first '@'.
func LocalPart(username string) string {
	if i := strings.IndexByte(username, '@'); i >= 0 {
		return username[:i]
	}
	return username
}

// UserDir returns the current-layout directory of username under root.
func UserDir(root, username string) string {
	return filepath.Join(root, SanitizeUsername(username))
}

// LegacyUserDir returns the directory older releases used for username,
// named after the local part only.
func LegacyUserDir(root, username string) string {
	return filepath.Join(root, SanitizeUsername(LocalPart(username)))
}

// startsWithDigit also counts category No, so superscript and circled
// digits ("²", "①") get the prefix too.
func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r) || unicode.Is(unicode.No, r)
	}
	return false
}
