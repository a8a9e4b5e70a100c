package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/service"
	"github.com/sakif/yatube/internal/transform"
)

// FollowHandler serves /follows: the caller's own follow list and new
// follows. Both need authentication.
type FollowHandler struct {
	follows *service.FollowService
	logger  *slog.Logger
}

func NewFollowHandler(follows *service.FollowService, logger *slog.Logger) *FollowHandler {
	return &FollowHandler{follows: follows, logger: logger}
}

// HandleList supports ?search=<substring of the followed username>.
func (h *FollowHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	follows, err := h.follows.List(r.Context(), auth.PrincipalFromContext(r.Context()), r.URL.Query().Get("search"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewFollows(follows))
}

func (h *FollowHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in transform.FollowPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	follow, err := h.follows.Create(r.Context(), auth.PrincipalFromContext(r.Context()), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transform.NewFollow(*follow))
}
