package http

import (
	"net/http"

	"github.com/rohllet/identity/pkg/httpx"
)

// handleJWKS publishes the public half of the signing key so other services
// can verify identity tokens without calling back into this one.
//
//	GET /.well-known/jwks.json
func (rt *Router) handleJWKS(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, rt.Keys.PublicJWKS())
}
