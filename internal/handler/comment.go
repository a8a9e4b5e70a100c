package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/service"
	"github.com/sakif/yatube/internal/transform"
)

// CommentHandler serves /posts/{postID}/comments. An unknown postID is a 404
// for every method, reads included.
type CommentHandler struct {
	comments *service.CommentService
	logger   *slog.Logger
}

func NewCommentHandler(comments *service.CommentService, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{comments: comments, logger: logger}
}

func (h *CommentHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "postID", "post")
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := h.comments.List(r.Context(), auth.PrincipalFromContext(r.Context()), postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewComments(comments))
}

func (h *CommentHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Get(r.Context(), auth.PrincipalFromContext(r.Context()), postID, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewComment(*comment))
}

func (h *CommentHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	postID, err := idParam(r, "postID", "post")
	if err != nil {
		writeError(w, err)
		return
	}

	var in transform.CommentPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	comment, err := h.comments.Create(r.Context(), auth.PrincipalFromContext(r.Context()), postID, &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transform.NewComment(*comment))
}

func (h *CommentHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var in transform.CommentPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	partial := r.Method == http.MethodPatch
	comment, err := h.comments.Update(r.Context(), auth.PrincipalFromContext(r.Context()), postID, id, &in, partial)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewComment(*comment))
}

func (h *CommentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	postID, id, err := commentParams(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.comments.Delete(r.Context(), auth.PrincipalFromContext(r.Context()), postID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func commentParams(r *http.Request) (postID, id int64, err error) {
	if postID, err = idParam(r, "postID", "post"); err != nil {
		return 0, 0, err
	}
	if id, err = idParam(r, "commentID", "comment"); err != nil {
		return 0, 0, err
	}
	return postID, id, nil
}
