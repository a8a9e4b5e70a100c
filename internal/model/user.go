// Package model defines the data structures used throughout the application.
//
// Models are plain structs with no behaviour tied to storage or HTTP. The
// repository layer fills them from SQL rows; the transform package turns them
// into the JSON shapes clients see.
package model

import "time"

// User is a locally stored identity. Other records reference users by ID and
// are rendered with the Username.
//
// A user created through registration has a PasswordHash and no GitHubID; a
// user created through GitHub login has a GitHubID and an empty hash. Both
// may be set when an account is linked later.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the acting identity of one request. A nil *Principal means the
// request is anonymous.
type Principal struct {
	UserID   int64
	Username string
}

// Authenticated reports whether p identifies a user. It is safe to call on a
// nil receiver.
func (p *Principal) Authenticated() bool {
	return p != nil && p.UserID != 0
}

// PrincipalOf returns the principal acting as u.
func PrincipalOf(u *User) *Principal {
	if u == nil {
		return nil
	}
	return &Principal{UserID: u.ID, Username: u.Username}
}
