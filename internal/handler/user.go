package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/yatube/internal/auth"
	"github.com/sakif/yatube/internal/service"
	"github.com/sakif/yatube/internal/transform"
)

// UserHandler serves account registration and the password token flow.
//
//	POST /users        → register, 201
//	GET  /users/me     → the caller's profile
//	POST /jwt/create   → {"access": "<jwt>"} for valid credentials
//	POST /jwt/verify   → {} when the token is valid, 401 otherwise
type UserHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewUserHandler(authService *service.AuthService, logger *slog.Logger) *UserHandler {
	return &UserHandler{auth: authService, logger: logger}
}

func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var in transform.RegisterPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.auth.Register(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, transform.NewUser(*user))
}

func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), auth.PrincipalFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.NewUser(*user))
}

func (h *UserHandler) HandleTokenCreate(w http.ResponseWriter, r *http.Request) {
	var in transform.TokenPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	res, err := h.auth.Token(r.Context(), &in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transform.Token{Access: res.Token})
}

func (h *UserHandler) HandleTokenVerify(w http.ResponseWriter, r *http.Request) {
	var in transform.VerifyPayload
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	if err := h.auth.Verify(r.Context(), &in); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}
