package handler

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/yatube/internal/apperror"
	"github.com/sakif/yatube/internal/transform"
)

func TestFollows_RequireAuth(t *testing.T) {
	e := newTestEnv(t)
	e.user(t, "mia")

	rec := e.do(t, nil, http.MethodGet, "/follows", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(t, nil, http.MethodPost, "/follows", map[string]any{"following": "mia"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFollowCreate(t *testing.T) {
	e := newTestEnv(t)
	leo := e.user(t, "leo")
	e.user(t, "mia")
	e.user(t, "zoe")

	// "user" in the body is ignored; the follower is always the caller.
	rec := e.do(t, leo, http.MethodPost, "/follows", map[string]any{"user": "zoe", "following": "mia"})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, transform.Follow{User: "leo", Following: "mia"}, decode[transform.Follow](t, rec))

	rec = e.do(t, leo, http.MethodPost, "/follows", map[string]any{"following": "mia"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, apperror.NonFieldErrors)

	rec = e.do(t, leo, http.MethodPost, "/follows", map[string]any{"following": "leo"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, apperror.NonFieldErrors)

	rec = e.do(t, leo, http.MethodPost, "/follows", map[string]any{"following": "ghost"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Fields, "following")
}

func TestFollowList_Search(t *testing.T) {
	e := newTestEnv(t)
	leo := e.user(t, "leo")
	mia := e.user(t, "mia")
	for _, name := range []string{"Maxim", "zoe"} {
		e.user(t, name)
		rec := e.do(t, leo, http.MethodPost, "/follows", map[string]any{"following": name})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := e.do(t, mia, http.MethodPost, "/follows", map[string]any{"following": "zoe"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = e.do(t, leo, http.MethodGet, "/follows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]transform.Follow](t, rec), 2)

	rec = e.do(t, leo, http.MethodGet, "/follows?search=max", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []transform.Follow{{User: "leo", Following: "Maxim"}}, decode[[]transform.Follow](t, rec))

	rec = e.do(t, mia, http.MethodGet, "/follows", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []transform.Follow{{User: "mia", Following: "zoe"}}, decode[[]transform.Follow](t, rec))
}
