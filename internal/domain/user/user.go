// Package user defines the identity storage is provisioned for.
package user

import "strings"

// User is an authenticated account.
type User struct {
	Username string `json:"username"`
}

// New returns a user for the given username with surrounding whitespace
// removed.
func New(username string) User {
	return User{Username: strings.TrimSpace(username)}
}

// Anonymous reports whether no username is set.
func (u User) Anonymous() bool {
	return u.Username == ""
}
