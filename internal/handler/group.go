package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/service"
	"github.com/sakif/yatube/internal/transform"
)

// GroupHandler serves the read-only /groups resource. Only GET routes are
// registered, so every other method gets a 405 from the router.
type GroupHandler struct {
	groups *service.GroupService
	logger *slog.Logger
}

func NewGroupHandler(groups *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

func (h *GroupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	groups, err := h.groups.List(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewGroups(groups))
}

func (h *GroupHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "groupID", "group")
	if err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.Get(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewGroup(*group))
}
