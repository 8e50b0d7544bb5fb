package http

import (
	"net/http"
	"strings"

	"github.com/rohllet/identity/pkg/authsdk"
	"github.com/rohllet/identity/pkg/httpx"
)

// handleUserInfo resolves the caller's own profile from their bearer token.
// The token is handed to the service directly rather than going through the
// authn middleware: a valid token whose user record has since been removed
// must come back as a 404, not a 401.
//
//	GET /v1/userinfo
func (rt *Router) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

	user, err := rt.AuthService.ResolveIdentity(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, toProfile(user))
}
