package http

import (
	"log/slog"
	"net/http"

	"github.com/rohllet/identity/internal/auth/service"
	"github.com/rohllet/identity/internal/auth/store"
	"github.com/rohllet/identity/pkg/httpx"
	"github.com/rohllet/identity/pkg/jwtx"
	"github.com/rohllet/identity/pkg/slogx"
)

// Router owns the HTTP surface of the identity service. Routes are attached
// with ApplyRoutes; ServeHTTP wraps the mux with the request-scoped logger
// middleware.
type Router struct {
	Mux    *http.ServeMux
	Logger *slog.Logger

	Store    store.Store
	Keys     *jwtx.KeySet
	Verifier jwtx.Verifier

	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	logger *slog.Logger,
	st store.Store,
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	authService *service.AuthService,
	userService *service.UserService,
) *Router {
	return &Router{
		Mux:         http.NewServeMux(),
		Logger:      logger,
		Store:       st,
		Keys:        keys,
		Verifier:    verifier,
		AuthService: authService,
		UserService: userService,
	}
}

// ApplyRoutes registers every endpoint on the router's mux.
func (rt *Router) ApplyRoutes() {
	authn := httpx.AuthnMiddleware(rt.Verifier)

	rt.Mux.HandleFunc("POST /v1/auth/register", rt.handleRegister)
	rt.Mux.HandleFunc("POST /v1/auth/login", rt.handleLogin)
	rt.Mux.HandleFunc("GET /v1/userinfo", rt.handleUserInfo)

	rt.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(http.HandlerFunc(rt.handleChangePassword), authn))
	rt.Mux.Handle("GET /v1/users/{email}",
		httpx.Chain(http.HandlerFunc(rt.handleGetUser), authn))

	rt.Mux.HandleFunc("GET /.well-known/jwks.json", rt.handleJWKS)
	rt.Mux.HandleFunc("GET /livez", rt.handleLivez)
	rt.Mux.HandleFunc("GET /readyz", rt.handleReadyz)
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	slogx.HTTPMiddleware(rt.Logger)(rt.Mux).ServeHTTP(w, r)
}
