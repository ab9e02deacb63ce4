package httpx

import (
	"fmt"
	"net/http"

	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/users"
)

type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req users.Registration
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	u, err := h.Users.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	u, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	token, err := h.Sessions.Create(r.Context(), u.ID)
	if err != nil {
		writeError(w, r, h.Log, fmt.Errorf("create session: %w", err))
		return
	}
	auth.SetCookie(w, token, h.Sessions.TTL())
	writeInfo(w, http.StatusOK, fmt.Sprintf("Logged in as user with id: %d", u.ID))
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Destroy(r.Context(), auth.Token(r.Context())); err != nil {
		writeError(w, r, h.Log, fmt.Errorf("destroy session: %w", err))
		return
	}
	auth.ClearCookie(w)
	writeInfo(w, http.StatusOK, "Successfully logged out")
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	u, err := h.Users.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	var c users.Changes
	if err := decode(r, &c); err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	u, err := h.Users.Update(r.Context(), id, c)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u})
}

func (h *Handler) deleteProfile(w http.ResponseWriter, r *http.Request) {
	id, _ := auth.UserID(r.Context())
	u, err := h.Users.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	auth.ClearCookie(w)
	writeInfo(w, http.StatusOK, "Deleted user "+u.Username)
}
