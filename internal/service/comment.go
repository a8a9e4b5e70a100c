package service

import (
	"context"
	"log/slog"

	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/policy"
	"github.com/sakif/yatube/internal/repository"
	"github.com/sakif/yatube/internal/transform"
)

// CommentService implements comments nested under a post. Every operation
// first resolves the parent post, so an unknown post ID is a 404 even for
// reads, and a comment is only ever reachable through its own post.
type CommentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
	logger   *slog.Logger
}

func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository, logger *slog.Logger) *CommentService {
	return &CommentService{comments: comments, posts: posts, logger: logger}
}

// ParentPost resolves the post a comment route is scoped to.
func (s *CommentService) ParentPost(ctx context.Context, postID int64) (*model.Post, error) {
	return s.posts.GetByID(ctx, postID)
}

func (s *CommentService) List(ctx context.Context, p *model.Principal, postID int64) ([]model.Comment, error) {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.List); err != nil {
		return nil, err
	}
	post, err := s.ParentPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByPost(ctx, post.ID)
	if err != nil {
		return nil, wrap(s.logger, "listing comments", err, slog.Int64("postID", postID))
	}
	return comments, nil
}

func (s *CommentService) Get(ctx context.Context, p *model.Principal, postID, id int64) (*model.Comment, error) {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.Retrieve); err != nil {
		return nil, err
	}
	post, err := s.ParentPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	return s.comments.GetByID(ctx, post.ID, id)
}

// Create adds a comment by p to post postID. Author and post are taken from
// p and the path, never from the body.
func (s *CommentService) Create(ctx context.Context, p *model.Principal, postID int64, in *transform.CommentPayload) (*model.Comment, error) {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.Create); err != nil {
		return nil, err
	}
	post, err := s.ParentPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	comment := &model.Comment{Text: *in.Text}
	overlayComment(comment, p, post)

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, wrap(s.logger, "creating comment", err, slog.Int64("postID", post.ID))
	}

	s.logger.Info("comment created",
		slog.Int64("id", comment.ID),
		slog.Int64("postID", post.ID),
		slog.String("author", p.Username),
	)
	return comment, nil
}

func (s *CommentService) Update(ctx context.Context, p *model.Principal, postID, id int64, in *transform.CommentPayload, partial bool) (*model.Comment, error) {
	action := policy.Update
	if partial {
		action = policy.PartialUpdate
	}
	if err := policy.Check(policy.AuthorOrReadOnly, p, action); err != nil {
		return nil, err
	}
	post, err := s.ParentPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, post.ID, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckObject(policy.AuthorOrReadOnly, p, action, comment); err != nil {
		return nil, err
	}
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	if in.Text != nil {
		comment.Text = *in.Text
	}
	overlayComment(comment, p, post)

	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, wrap(s.logger, "updating comment", err, slog.Int64("id", id))
	}

	s.logger.Info("comment updated", slog.Int64("id", id), slog.Int64("postID", post.ID))
	return comment, nil
}

func (s *CommentService) Delete(ctx context.Context, p *model.Principal, postID, id int64) error {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.Delete); err != nil {
		return err
	}
	post, err := s.ParentPost(ctx, postID)
	if err != nil {
		return err
	}
	comment, err := s.comments.GetByID(ctx, post.ID, id)
	if err != nil {
		return err
	}
	if err := policy.CheckObject(policy.AuthorOrReadOnly, p, policy.Delete, comment); err != nil {
		return err
	}

	if err := s.comments.Delete(ctx, post.ID, id); err != nil {
		return wrap(s.logger, "deleting comment", err, slog.Int64("id", id))
	}

	s.logger.Info("comment deleted", slog.Int64("id", id), slog.Int64("postID", post.ID))
	return nil
}

// overlayComment sets the server-owned fields of c.
func overlayComment(c *model.Comment, p *model.Principal, post *model.Post) {
	c.AuthorID = p.UserID
	c.Author = p.Username
	c.PostID = post.ID
}
