package http

import (
	"net/http"

	"github.com/rohllet/identity/pkg/authsdk"
	"github.com/rohllet/identity/pkg/httpx"
)

// handleGetUser looks up a user's profile by email. Sits behind the authn
// middleware, so only authenticated callers can browse profiles.
//
//	GET /v1/users/{email}
func (rt *Router) handleGetUser(w http.ResponseWriter, r *http.Request) {
	email := r.PathValue("email")
	if email == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	user, err := rt.UserService.GetUserByEmail(r.Context(), email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}
