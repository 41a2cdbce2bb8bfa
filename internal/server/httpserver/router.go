package httpserver

import (
	"net/http"

	"github.com/yndnr/timekeep-go/internal/server/httpserver/handler"
	"github.com/yndnr/timekeep-go/internal/telemetry/logger"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Handler serves the routes.
	Handler *handler.Handler

	// Resolver resolves X-SessionId for protected routes.
	Resolver IdentityResolver

	// Logger is attached to every request context.
	Logger logger.Logger

	// Metrics records per-route request metrics (optional).
	Metrics RequestObserver

	// MetricsHandler serves /metrics; nil disables the endpoint.
	MetricsHandler http.Handler
}

// NewRouter creates the HTTP router with all routes and middleware.
//
// Order: RequestID -> Recover -> AccessLog -> mux -> Metrics -> [Session] -> handler
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	h := cfg.Handler
	mux := http.NewServeMux()
	session := Session(cfg.Resolver)

	route := func(pattern string, fn http.Handler, extra ...Middleware) {
		mws := append([]Middleware{Metrics(cfg.Metrics, pattern)}, extra...)
		mux.Handle(pattern, Chain(fn, mws...))
	}

	// Health endpoints
	route("GET /health", http.HandlerFunc(h.Health))
	route("GET /ready", http.HandlerFunc(h.Ready))
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	// Auth endpoints (no session required)
	route("POST /login", http.HandlerFunc(h.Login))
	route("POST /signup", http.HandlerFunc(h.Signup))
	route("GET /logout", http.HandlerFunc(h.Logout))

	// Timer endpoints (session resolved, anonymous rejected by handlers)
	route("GET /api/timers", http.HandlerFunc(h.ListTimers), session)
	route("POST /api/timers", http.HandlerFunc(h.CreateTimer), session)
	route("GET /api/timers/{id}", http.HandlerFunc(h.GetTimer), session)
	route("POST /api/timers/{id}/stop", http.HandlerFunc(h.StopTimer), session)

	return Chain(mux, RequestID(log), Recover(), AccessLog())
}
