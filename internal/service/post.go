package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/policy"
	"github.com/sakif/yatube/internal/repository"
	"github.com/sakif/yatube/internal/transform"
)

// ImageDir is the media subdirectory post images are written to.
const ImageDir = "posts"

// ImageStore persists decoded uploads. *media.LocalStorage implements it.
type ImageStore interface {
	Save(dir string, img *media.Image) (string, error)
	Delete(rel string) error
}

// PostService implements the post resource: public reads, author-only
// writes.
type PostService struct {
	posts  repository.PostRepository
	groups repository.GroupRepository
	images ImageStore
	logger *slog.Logger
}

func NewPostService(
	posts repository.PostRepository,
	groups repository.GroupRepository,
	images ImageStore,
	logger *slog.Logger,
) *PostService {
	return &PostService{posts: posts, groups: groups, images: images, logger: logger}
}

// List returns every post in publication order.
func (s *PostService) List(ctx context.Context, p *model.Principal) ([]model.Post, error) {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.List); err != nil {
		return nil, err
	}
	posts, err := s.posts.List(ctx, repository.ListOptions{})
	if err != nil {
		return nil, wrap(s.logger, "listing posts", err)
	}
	return posts, nil
}

// Page returns one limit/offset window of posts plus the total count.
// limit is clamped to 1..MaxListLimit and a negative offset to 0; the values
// actually used are returned so links can be built from them.
func (s *PostService) Page(ctx context.Context, p *model.Principal, limit, offset int) ([]model.Post, int, repository.ListOptions, error) {
	opts := repository.ListOptions{Limit: limit, Offset: offset}
	if opts.Limit <= 0 {
		opts.Limit = 1
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.List); err != nil {
		return nil, 0, opts, err
	}

	count, err := s.posts.Count(ctx)
	if err != nil {
		return nil, 0, opts, wrap(s.logger, "counting posts", err)
	}
	posts, err := s.posts.List(ctx, opts)
	if err != nil {
		return nil, 0, opts, wrap(s.logger, "listing posts", err)
	}
	return posts, count, opts, nil
}

func (s *PostService) Get(ctx context.Context, p *model.Principal, id int64) (*model.Post, error) {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.Retrieve); err != nil {
		return nil, err
	}
	return s.posts.GetByID(ctx, id)
}

// Create publishes a post authored by p. Any author the client might have
// sent is never decoded; AuthorID comes from p alone.
func (s *PostService) Create(ctx context.Context, p *model.Principal, in *transform.PostPayload) (*model.Post, error) {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.Create); err != nil {
		return nil, err
	}
	if err := in.Validate(false); err != nil {
		return nil, err
	}

	post := &model.Post{Text: *in.Text}
	if err := s.applyGroup(ctx, post, in.Group); err != nil {
		return nil, err
	}
	newImage, err := s.applyImage(post, in.Image)
	if err != nil {
		return nil, err
	}

	post.AuthorID = p.UserID
	post.Author = p.Username

	if err := s.posts.Create(ctx, post); err != nil {
		s.discard(newImage)
		return nil, wrap(s.logger, "creating post", err, slog.Int64("authorID", p.UserID))
	}

	s.logger.Info("post created",
		slog.Int64("id", post.ID),
		slog.String("author", p.Username),
	)
	return post, nil
}

// Update changes a post owned by p. With partial set (PATCH) every field is
// optional; otherwise text is required. Fields that are absent keep their
// current value; "group": null and "image": null clear them.
func (s *PostService) Update(ctx context.Context, p *model.Principal, id int64, in *transform.PostPayload, partial bool) (*model.Post, error) {
	action := policy.Update
	if partial {
		action = policy.PartialUpdate
	}
	if err := policy.Check(policy.AuthorOrReadOnly, p, action); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.CheckObject(policy.AuthorOrReadOnly, p, action, post); err != nil {
		return nil, err
	}
	if err := in.Validate(partial); err != nil {
		return nil, err
	}

	if in.Text != nil {
		post.Text = *in.Text
	}
	if err := s.applyGroup(ctx, post, in.Group); err != nil {
		return nil, err
	}
	oldImage := post.Image
	newImage, err := s.applyImage(post, in.Image)
	if err != nil {
		return nil, err
	}

	post.AuthorID = p.UserID
	post.Author = p.Username

	if err := s.posts.Update(ctx, post); err != nil {
		s.discard(newImage)
		return nil, wrap(s.logger, "updating post", err, slog.Int64("id", id))
	}
	if post.Image != oldImage {
		s.discard(oldImage)
	}

	s.logger.Info("post updated", slog.Int64("id", post.ID))
	return post, nil
}

// Delete removes a post owned by p together with its comments and image.
func (s *PostService) Delete(ctx context.Context, p *model.Principal, id int64) error {
	if err := policy.Check(policy.AuthorOrReadOnly, p, policy.Delete); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.CheckObject(policy.AuthorOrReadOnly, p, policy.Delete, post); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		return wrap(s.logger, "deleting post", err, slog.Int64("id", id))
	}
	s.discard(post.Image)

	s.logger.Info("post deleted", slog.Int64("id", id))
	return nil
}

// applyGroup sets post.GroupID from a present group field. An ID that does
// not name a group is a validation error on "group".
func (s *PostService) applyGroup(ctx context.Context, post *model.Post, group transform.Nullable[int64]) error {
	if !group.Set {
		return nil
	}
	if !group.Valid {
		post.GroupID = nil
		return nil
	}

	if _, err := s.groups.GetByID(ctx, group.Value); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("group", transform.InvalidPK(group.Value))
		}
		return wrap(s.logger, "resolving group", err, slog.Int64("groupID", group.Value))
	}
	post.GroupID = &group.Value
	return nil
}

// applyImage stores a present image field and points post.Image at it. It
// returns the path of a newly written file so the caller can remove it if
// the database write fails.
func (s *PostService) applyImage(post *model.Post, image transform.Nullable[string]) (string, error) {
	if !image.Set {
		return "", nil
	}
	if !image.Valid || image.Value == "" {
		post.Image = ""
		return "", nil
	}

	img, err := media.DecodeDataURI(image.Value)
	if err != nil {
		msg := "upload a valid image as a base64 data URI"
		if errors.Is(err, media.ErrTooLarge) {
			msg = "image is too large"
		}
		return "", apperror.ValidationFailed("image", msg)
	}

	rel, err := s.images.Save(ImageDir, img)
	if err != nil {
		return "", wrap(s.logger, "saving image", err)
	}
	post.Image = rel
	return rel, nil
}

// discard removes an image file, logging instead of failing: the database
// is already consistent at this point.
func (s *PostService) discard(rel string) {
	if rel == "" {
		return
	}
	if err := s.images.Delete(rel); err != nil {
		s.logger.Warn("failed to delete image",
			slog.String("path", rel),
			slog.String("error", err.Error()),
		)
	}
}
