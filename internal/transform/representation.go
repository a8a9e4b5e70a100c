package transform

import (
	"fmt"
	"time"

	"github.com/sakif/yatube/internal/model"
)

// URLFunc turns a stored media path into the absolute URL clients fetch it
// from.
type URLFunc func(path string) string

type Group struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func NewGroup(g model.Group) Group {
	return Group{ID: g.ID, Title: g.Title, Slug: g.Slug, Description: g.Description}
}

func NewGroups(groups []model.Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		out = append(out, NewGroup(g))
	}
	return out
}

// Post renders the author by username. Image and Group are null when unset.
type Post struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	PubDate time.Time `json:"pub_date"`
	Image   *string   `json:"image"`
	Group   *int64    `json:"group"`
}

func NewPost(p model.Post, mediaURL URLFunc) Post {
	out := Post{
		ID:      p.ID,
		Author:  p.Author,
		Text:    p.Text,
		PubDate: p.PubDate,
		Group:   p.GroupID,
	}
	if p.Image != "" {
		u := p.Image
		if mediaURL != nil {
			u = mediaURL(p.Image)
		}
		out.Image = &u
	}
	return out
}

func NewPosts(posts []model.Post, mediaURL URLFunc) []Post {
	out := make([]Post, 0, len(posts))
	for _, p := range posts {
		out = append(out, NewPost(p, mediaURL))
	}
	return out
}

type Comment struct {
	ID      int64     `json:"id"`
	Author  string    `json:"author"`
	Text    string    `json:"text"`
	Created time.Time `json:"created"`
	Post    int64     `json:"post"`
}

func NewComment(c model.Comment) Comment {
	return Comment{ID: c.ID, Author: c.Author, Text: c.Text, Created: c.Created, Post: c.PostID}
}

func NewComments(comments []model.Comment) []Comment {
	out := make([]Comment, 0, len(comments))
	for _, c := range comments {
		out = append(out, NewComment(c))
	}
	return out
}

// Follow renders both sides by username.
type Follow struct {
	User      string `json:"user"`
	Following string `json:"following"`
}

func NewFollow(f model.Follow) Follow {
	return Follow{User: f.User, Following: f.Following}
}

func NewFollows(follows []model.Follow) []Follow {
	out := make([]Follow, 0, len(follows))
	for _, f := range follows {
		out = append(out, NewFollow(f))
	}
	return out
}

// User is the public profile. The password hash and GitHub link stay
// server-side.
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUser(u model.User) User {
	return User{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Token is the body returned by the token endpoint.
type Token struct {
	Access string `json:"access"`
}

func toString(v any) string {
	return fmt.Sprint(v)
}
