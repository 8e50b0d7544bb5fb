package http

import (
	"net/http"

	"github.com/rohllet/identity/pkg/authsdk"
	"github.com/rohllet/identity/pkg/httpx"
)

// handleChangePassword replaces the caller's password after re-verifying the
// current one. The target user is always the authenticated caller.
//
//	POST /v1/auth/password
func (rt *Router) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFromCtx(r.Context())
	if userID == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	var req authsdk.ChangePasswordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	if err := rt.AuthService.ChangePassword(r.Context(), userID, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, authsdk.MessageResponse{
		Message: "password changed",
	})
}
