package model

import "time"

// Post is a piece of published text, optionally with an image and a group.
//
// Author is the username joined from the users table on reads; writes only
// look at AuthorID. Image is the storage-relative path of the attachment or
// "" when the post has none.
type Post struct {
	ID       int64
	Text     string
	PubDate  time.Time
	AuthorID int64
	Author   string
	Image    string
	GroupID  *int64
}

// OwnerID returns the ID of the user allowed to change the post.
func (p *Post) OwnerID() int64 { return p.AuthorID }
