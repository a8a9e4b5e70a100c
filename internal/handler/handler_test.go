package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/media"
	"github.com/sakif/yatube/internal/model"
	"github.com/sakif/yatube/internal/repository/sqlite"
	"github.com/sakif/yatube/internal/service"
)

const testBaseURL = "http://example.test"

// testEnv is a fully wired API on an in-memory database. Requests carry
// their principal in the context directly; token parsing is covered by the
// auth package and the server tests.
type testEnv struct {
	db        *sqlite.DB
	router    chi.Router
	tokens    *auth.TokenService
	mediaRoot string
	posts     *service.PostService
	comments  *service.CommentService
	groups    *service.GroupService
	authSvc   *service.AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mediaRoot := t.TempDir()
	store, err := media.NewLocalStorage(mediaRoot, testBaseURL+"/media/")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("handler-test-secret-0123456789", time.Hour)
	require.NoError(t, err)

	e := &testEnv{
		db:        db,
		tokens:    tokens,
		mediaRoot: mediaRoot,
		posts:     service.NewPostService(db.Posts(), db.Groups(), store, logger),
		comments:  service.NewCommentService(db.Comments(), db.Posts(), logger),
		groups:    service.NewGroupService(db.Groups(), logger),
		authSvc:   service.NewAuthService(db.Users(), tokens, auth.NewPasswordServiceWithCost(4), logger),
	}
	follows := service.NewFollowService(db.Follows(), db.Users(), logger)

	posts := NewPostHandler(e.posts, store.URL, testBaseURL, logger)
	comments := NewCommentHandler(e.comments, logger)
	groups := NewGroupHandler(e.groups, logger)
	followH := NewFollowHandler(follows, logger)
	users := NewUserHandler(e.authSvc, logger)

	r := chi.NewRouter()
	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)
	r.Get("/groups", groups.HandleList)
	r.Get("/groups/{groupID}", groups.HandleGet)
	r.Get("/posts", posts.HandleList)
	r.Post("/posts", posts.HandleCreate)
	r.Get("/posts/{postID}", posts.HandleGet)
	r.Put("/posts/{postID}", posts.HandleUpdate)
	r.Patch("/posts/{postID}", posts.HandleUpdate)
	r.Delete("/posts/{postID}", posts.HandleDelete)
	r.Get("/posts/{postID}/comments", comments.HandleList)
	r.Post("/posts/{postID}/comments", comments.HandleCreate)
	r.Get("/posts/{postID}/comments/{commentID}", comments.HandleGet)
	r.Put("/posts/{postID}/comments/{commentID}", comments.HandleUpdate)
	r.Patch("/posts/{postID}/comments/{commentID}", comments.HandleUpdate)
	r.Delete("/posts/{postID}/comments/{commentID}", comments.HandleDelete)
	r.Get("/follows", followH.HandleList)
	r.Post("/follows", followH.HandleCreate)
	r.Post("/users", users.HandleRegister)
	r.Get("/users/me", users.HandleMe)
	r.Post("/jwt/create", users.HandleTokenCreate)
	r.Post("/jwt/verify", users.HandleTokenVerify)
	e.router = r

	return e
}

// user creates an account directly in the store.
func (e *testEnv) user(t *testing.T, username string) *model.Principal {
	t.Helper()
	u := &model.User{Username: username}
	require.NoError(t, e.db.Users().Create(context.Background(), u))
	return model.PrincipalOf(u)
}

// do sends a request as p (nil for anonymous). body is JSON-encoded unless
// it is already a string.
func (e *testEnv) do(t *testing.T, p *model.Principal, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		rd = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p != nil {
		req = req.WithContext(auth.WithPrincipal(req.Context(), p))
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}
