package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/model"
)

type fakeUsers map[int64]*model.User

func (f fakeUsers) GetByID(_ context.Context, id int64) (*model.User, error) {
	u, ok := f[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

// principalRecorder captures the principal the middleware produced.
func principalRecorder(got **model.Principal) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthenticate(t *testing.T) {
	ts := newTestTokenService(t)
	users := fakeUsers{7: {ID: 7, Username: "alice"}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mw := Authenticate(ts, users, logger)

	valid, err := ts.Generate(7)
	require.NoError(t, err)
	expired, err := ts.GenerateWithDuration(7, -time.Minute)
	require.NoError(t, err)
	ghost, err := ts.Generate(99)
	require.NoError(t, err)

	tests := []struct {
		name     string
		setup    func(r *http.Request)
		wantUser string
	}{
		{name: "no credentials", setup: func(*http.Request) {}},
		{name: "bearer header", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, wantUser: "alice"},
		{name: "lowercase scheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "bearer "+valid) }, wantUser: "alice"},
		{name: "cookie", setup: func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: valid}) }, wantUser: "alice"},
		{name: "basic scheme ignored", setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic "+valid) }},
		{name: "expired token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }},
		{name: "garbage token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }},
		{name: "deleted user", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+ghost) }},
		{
			name: "header wins over cookie",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer nope")
				r.AddCookie(&http.Cookie{Name: CookieName, Value: valid})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *model.Principal
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)

			rec := httptest.NewRecorder()
			mw(principalRecorder(&got)).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusNoContent, rec.Code, "Authenticate must never block")
			if tt.wantUser == "" {
				assert.False(t, got.Authenticated())
				return
			}
			require.True(t, got.Authenticated())
			assert.Equal(t, tt.wantUser, got.Username)
			assert.Equal(t, int64(7), got.UserID)
		})
	}
}

func TestRequireAuth(t *testing.T) {
	var got *model.Principal
	h := RequireAuth(principalRecorder(&got))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized","message":"authentication credentials were not provided"}`, rec.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithPrincipal(req.Context(), &model.Principal{UserID: 1, Username: "bob"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "bob", got.Username)
}
