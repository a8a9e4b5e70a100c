package model

import "time"

// Comment is a reply attached to exactly one post.
type Comment struct {
	ID       int64
	PostID   int64
	AuthorID int64
	Author   string
	Text     string
	Created  time.Time
}

// OwnerID returns the ID of the user allowed to change the comment.
func (c *Comment) OwnerID() int64 { return c.AuthorID }
