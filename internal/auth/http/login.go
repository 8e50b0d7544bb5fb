package http

import (
	"net/http"

	"github.com/rohllet/identity/pkg/authsdk"
	"github.com/rohllet/identity/pkg/httpx"
)

// handleLogin verifies credentials and issues a fresh identity token.
//
//	POST /v1/auth/login
func (rt *Router) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, token, err := rt.AuthService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.AuthResponse{
		Message: "login successful",
		Token:   token,
		User:    toProfile(user),
	})
}
