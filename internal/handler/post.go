package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/service"
	"github.com/sakif/yatube/internal/transform"
)

// PostHandler serves /posts.
//
//	GET    /posts              → list (paginated when ?limit= is given)
//	POST   /posts              → create, 201
//	GET    /posts/{postID}     → retrieve
//	PUT    /posts/{postID}     → full update (text required)
//	PATCH  /posts/{postID}     → partial update
//	DELETE /posts/{postID}     → delete, 204
type PostHandler struct {
	posts    *service.PostService
	mediaURL transform.URLFunc
	baseURL  string
	logger   *slog.Logger
}

// NewPostHandler needs the public base URL for absolute pagination links
// and mediaURL to render stored image paths.
func NewPostHandler(posts *service.PostService, mediaURL transform.URLFunc, baseURL string, logger *slog.Logger) *PostHandler {
	return &PostHandler{posts: posts, mediaURL: mediaURL, baseURL: baseURL, logger: logger}
}

// HandleList returns every post as a plain array, or one page wrapped in
// {count, next, previous, results} when limit is a positive integer.
func (h *PostHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	q := r.URL.Query()

	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		posts, err := h.posts.List(r.Context(), p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, transform.NewPosts(posts, h.mediaURL))
		return
	}

	offset, err := strconv.Atoi(q.Get("offset"))
	if err != nil {
		offset = 0
	}

	posts, count, opts, err := h.posts.Page(r.Context(), p, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewPage(
		transform.NewPosts(posts, h.mediaURL), count, h.selfURL(r), opts.Limit, opts.Offset,
	))
}

func (h *PostHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "postID", "post")
	if err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewPost(*post, h.mediaURL))
}

func (h *PostHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in transform.PostPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	post, err := h.posts.Create(r.Context(), auth.PrincipalFromContext(r.Context()), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transform.NewPost(*post, h.mediaURL))
}

// HandleUpdate serves both PUT and PATCH; the method decides whether text
// is required.
func (h *PostHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "postID", "post")
	if err != nil {
		writeError(w, err)
		return
	}

	var in transform.PostPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	partial := r.Method == http.MethodPatch
	post, err := h.posts.Update(r.Context(), auth.PrincipalFromContext(r.Context()), id, &in, partial)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewPost(*post, h.mediaURL))
}

func (h *PostHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "postID", "post")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.posts.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// selfURL is the absolute URL of the current request on the public origin.
func (h *PostHandler) selfURL(r *http.Request) *url.URL {
	u, err := url.Parse(h.baseURL + r.URL.RequestURI())
	if err != nil {
		h.logger.Warn("cannot build absolute URL",
			slog.String("base", h.baseURL),
			slog.String("error", err.Error()),
		)
		return r.URL
	}
	return u
}
