package http

import (
	"net/http"

	"github.com/rohllet/identity/pkg/httpx"
)

// handleLivez reports process liveness.
//
//	GET /livez
func (rt *Router) handleLivez(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz reports whether the service can actually take traffic: the
// database answers pings and a signing key is loaded.
//
//	GET /readyz
func (rt *Router) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if err := rt.Store.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}
	if !rt.Keys.IsReady() {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"reason": "signing keys not loaded",
		})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
