package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/rohllet/identity/internal/auth/domain"
	"github.com/rohllet/identity/internal/auth/service"
	"github.com/rohllet/identity/pkg/authsdk"
	"github.com/rohllet/identity/pkg/slogx"
)

func toProfile(u domain.User) authsdk.UserProfile {
	return authsdk.UserProfile{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Role:        u.Role,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// writeServiceError maps service sentinel errors onto the shared API error
// catalog. Anything unrecognised is logged and surfaced as a server error.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		authsdk.ErrEmailTaken.WriteError(w)
	case errors.Is(err, service.ErrInvalidCredentials):
		authsdk.ErrInvalidCredentials.WriteError(w)
	case errors.Is(err, service.ErrInvalidToken):
		authsdk.ErrInvalidToken.WriteError(w)
	case errors.Is(err, service.ErrUserNotFound):
		authsdk.ErrUserNotFound.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error("request failed", slog.Any("err", err))
		authsdk.ErrServerError.WriteError(w)
	}
}
