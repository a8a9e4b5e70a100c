// Package repository declares the storage contracts the service layer
// depends on. The sqlite subpackage implements them; service tests use
// in-memory fakes.
//
// Every implementation reports a missing row as apperror.ErrNotFound and a
// uniqueness violation as apperror.ErrConflict.
package repository

import (
	"context"

	"github.com/sakif/yatube/internal/model"
)

// ListOptions pages through a result set. A zero Limit means "no limit".
type ListOptions struct {
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	// UpsertGitHub creates or refreshes the user linked to user.GitHubID and
	// fills in user.ID and user.CreatedAt.
	UpsertGitHub(ctx context.Context, user *model.User) error
}

type GroupRepository interface {
	Create(ctx context.Context, group *model.Group) error
	GetByID(ctx context.Context, id int64) (*model.Group, error)
	List(ctx context.Context) ([]model.Group, error)
	Delete(ctx context.Context, id int64) error
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	List(ctx context.Context, opts ListOptions) ([]model.Post, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id int64) error
}

// CommentRepository reads are always scoped to one post so a comment can
// never be reached through another post's path.
type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	GetByID(ctx context.Context, postID, id int64) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	Update(ctx context.Context, comment *model.Comment) error
	Delete(ctx context.Context, postID, id int64) error
}

// FollowFilter narrows a follow listing. UserID is mandatory; Search matches
// a case-insensitive substring of the followed username.
type FollowFilter struct {
	UserID int64
	Search string
}

type FollowRepository interface {
	Create(ctx context.Context, follow *model.Follow) error
	Exists(ctx context.Context, userID, followingID int64) (bool, error)
	List(ctx context.Context, filter FollowFilter) ([]model.Follow, error)
}
