package http

import (
	"net/http"

	"github.com/rohllet/identity/pkg/authsdk"
	"github.com/rohllet/identity/pkg/httpx"
)

// handleRegister creates a new account and returns a signed identity token
// for it, so freshly registered users are logged in immediately.
//
//	POST /v1/auth/register
func (rt *Router) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.Email == "" || req.Password == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, token, err := rt.AuthService.Register(
		r.Context(), req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, authsdk.AuthResponse{
		Message: "registration successful",
		Token:   token,
		User:    toProfile(user),
	})
}
