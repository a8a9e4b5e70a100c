package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository"
)

// =========================================================================
// FAKE REPOSITORIES
// =========================================================================
//
// In-memory stand-ins for the SQLite stores. They store copies so a test
// cannot accidentally mutate "persisted" state through a returned pointer,
// and they report errors with the same apperror kinds the real stores use.

type fakeUserRepo struct {
	users  map[int64]*model.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]*model.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username {
			return apperror.Conflict("user", user.Username)
		}
	}
	f.nextID++
	user.ID = f.nextID
	user.CreatedAt = time.Now().UTC()
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

func (f *fakeUserRepo) UpsertGitHub(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.GitHubID != nil && *u.GitHubID == *user.GitHubID {
			u.Email = user.Email
			*user = *u
			return nil
		}
	}
	return f.Create(ctx, user)
}

type fakeGroupRepo struct {
	groups map[int64]*model.Group
	nextID int64
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: map[int64]*model.Group{}}
}

func (f *fakeGroupRepo) Create(_ context.Context, group *model.Group) error {
	for _, g := range f.groups {
		if g.Slug == group.Slug {
			return apperror.Conflict("group", group.Slug)
		}
	}
	f.nextID++
	group.ID = f.nextID
	stored := *group
	f.groups[group.ID] = &stored
	return nil
}

func (f *fakeGroupRepo) GetByID(_ context.Context, id int64) (*model.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, apperror.NotFound("group", id)
	}
	out := *g
	return &out, nil
}

func (f *fakeGroupRepo) List(_ context.Context) ([]model.Group, error) {
	out := []model.Group{}
	for _, g := range f.groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeGroupRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.groups[id]; !ok {
		return apperror.NotFound("group", id)
	}
	delete(f.groups, id)
	return nil
}

type fakePostRepo struct {
	posts  map[int64]*model.Post
	nextID int64
	err    error // returned by every write when set
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[int64]*model.Post{}}
}

func (f *fakePostRepo) Create(_ context.Context, post *model.Post) error {
	if f.err != nil {
		return f.err
	}
	f.nextID++
	post.ID = f.nextID
	post.PubDate = time.Now().UTC()
	stored := *post
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakePostRepo) GetByID(_ context.Context, id int64) (*model.Post, error) {
	p, ok := f.posts[id]
	if !ok {
		return nil, apperror.NotFound("post", id)
	}
	out := *p
	return &out, nil
}

func (f *fakePostRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Post, error) {
	all := []model.Post{}
	for _, p := range f.posts {
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if opts.Offset >= len(all) {
		return []model.Post{}, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(all) {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (f *fakePostRepo) Count(_ context.Context) (int, error) {
	return len(f.posts), nil
}

func (f *fakePostRepo) Update(_ context.Context, post *model.Post) error {
	if f.err != nil {
		return f.err
	}
	existing, ok := f.posts[post.ID]
	if !ok {
		return apperror.NotFound("post", post.ID)
	}
	stored := *post
	stored.PubDate = existing.PubDate
	f.posts[post.ID] = &stored
	return nil
}

func (f *fakePostRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.posts[id]; !ok {
		return apperror.NotFound("post", id)
	}
	delete(f.posts, id)
	return nil
}

type fakeCommentRepo struct {
	comments map[int64]*model.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: map[int64]*model.Comment{}}
}

func (f *fakeCommentRepo) Create(_ context.Context, c *model.Comment) error {
	f.nextID++
	c.ID = f.nextID
	c.Created = time.Now().UTC()
	stored := *c
	f.comments[c.ID] = &stored
	return nil
}

func (f *fakeCommentRepo) GetByID(_ context.Context, postID, id int64) (*model.Comment, error) {
	c, ok := f.comments[id]
	if !ok || c.PostID != postID {
		return nil, apperror.NotFound("comment", id)
	}
	out := *c
	return &out, nil
}

func (f *fakeCommentRepo) ListByPost(_ context.Context, postID int64) ([]model.Comment, error) {
	out := []model.Comment{}
	for _, c := range f.comments {
		if c.PostID == postID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeCommentRepo) Update(_ context.Context, c *model.Comment) error {
	if _, ok := f.comments[c.ID]; !ok {
		return apperror.NotFound("comment", c.ID)
	}
	stored := *c
	f.comments[c.ID] = &stored
	return nil
}

func (f *fakeCommentRepo) Delete(_ context.Context, postID, id int64) error {
	c, ok := f.comments[id]
	if !ok || c.PostID != postID {
		return apperror.NotFound("comment", id)
	}
	delete(f.comments, id)
	return nil
}

type fakeFollowRepo struct {
	follows []model.Follow
	users   *fakeUserRepo
	// createErr, when set, is returned by Create after Exists said no,
	// simulating a concurrent insert of the same pair.
	createErr error
}

func (f *fakeFollowRepo) Create(_ context.Context, follow *model.Follow) error {
	if f.createErr != nil {
		return f.createErr
	}
	follow.ID = int64(len(f.follows) + 1)
	f.follows = append(f.follows, *follow)
	return nil
}

func (f *fakeFollowRepo) Exists(_ context.Context, userID, followingID int64) (bool, error) {
	for _, fl := range f.follows {
		if fl.UserID == userID && fl.FollowingID == followingID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFollowRepo) List(_ context.Context, filter repository.FollowFilter) ([]model.Follow, error) {
	out := []model.Follow{}
	for _, fl := range f.follows {
		if fl.UserID != filter.UserID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(fl.Following), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, fl)
	}
	return out, nil
}

// fakeImageStore records saves and deletes instead of touching disk.
type fakeImageStore struct {
	saved   map[string][]byte
	deleted []string
	n       int
}

func newFakeImageStore() *fakeImageStore {
	return &fakeImageStore{saved: map[string][]byte{}}
}

func (f *fakeImageStore) Save(dir string, img *media.Image) (string, error) {
	f.n++
	rel := fmt.Sprintf("%s/img-%d%s", dir, f.n, img.Ext)
	f.saved[rel] = img.Data
	return rel, nil
}

func (f *fakeImageStore) Delete(rel string) error {
	delete(f.saved, rel)
	f.deleted = append(f.deleted, rel)
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires every service to one shared set of fakes.
type testEnv struct {
	users    *fakeUserRepo
	groups   *fakeGroupRepo
	posts    *fakePostRepo
	comments *fakeCommentRepo
	follows  *fakeFollowRepo
	images   *fakeImageStore

	postSvc    *PostService
	commentSvc *CommentService
	followSvc  *FollowService
	groupSvc   *GroupService
	authSvc    *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := discardLogger()

	tokens, err := auth.NewTokenService("test-secret-at-least-16-chars!!", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}

	e := &testEnv{
		users:    newFakeUserRepo(),
		groups:   newFakeGroupRepo(),
		posts:    newFakePostRepo(),
		comments: newFakeCommentRepo(),
		images:   newFakeImageStore(),
	}
	e.follows = &fakeFollowRepo{users: e.users}

	e.postSvc = NewPostService(e.posts, e.groups, e.images, logger)
	e.commentSvc = NewCommentService(e.comments, e.posts, logger)
	e.followSvc = NewFollowService(e.follows, e.users, logger)
	e.groupSvc = NewGroupService(e.groups, logger)
	e.authSvc = NewAuthService(e.users, tokens, auth.NewPasswordServiceWithCost(4), logger)
	return e
}

// user creates an account and returns the principal acting as it.
func (e *testEnv) user(t *testing.T, username string) *model.Principal {
	t.Helper()
	u := &model.User{Username: username}
	if err := e.users.Create(context.Background(), u); err != nil {
		t.Fatalf("creating user %q: %v", username, err)
	}
	return model.PrincipalOf(u)
}

func strPtr(s string) *string { return &s }
