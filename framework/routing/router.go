package routing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
)

// Router wraps chi.Router and ties every request to a container scope.
type Router struct {
	mux chi.Router
	app *container.Container
}

// New creates a Router with sane defaults (RequestID, RealIP, request
// logging, Recoverer) followed by the per-request scope middleware.
func New(app *container.Container, log *zap.Logger) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(gohttp.ScopeMiddleware(app, log))
	return &Router{mux: r, app: app}
}

// Container returns the container the router resolves from.
func (r *Router) Container() *container.Container { return r.app }

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Any registers a handler for all common HTTP methods.
func (r *Router) Any(pattern string, h http.HandlerFunc) {
	for _, m := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"} {
		r.mux.Method(m, pattern, h)
	}
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's prefix.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx, app: r.app})
	})
}

// Prefix creates a sub-router mounted under pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, app: r.app})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// RequestLogger logs one line per request with zap.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			defer func() {
				log.Info("request",
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", middleware.GetReqID(req.Context())),
				)
			}()
			next.ServeHTTP(ww, req)
		})
	}
}

// ── Container-backed handlers ────────────────────────────────────────────────

// Service registers a GET handler that resolves name within the request's
// scope and hands the instance to fn. Resolution failures are answered with
// a JSON error.
//
//	router.Service("/me", "session", func(w http.ResponseWriter, r *http.Request, v any) { ... })
func (r *Router) Service(pattern, name string, fn func(w http.ResponseWriter, req *http.Request, instance any)) {
	r.mux.Get(pattern, func(w http.ResponseWriter, req *http.Request) {
		instance, err := gohttp.Resolve[any](req, r.app, name)
		if err != nil {
			gohttp.NewResponse(w).ResolutionFailed(err)
			return
		}
		fn(w, req, instance)
	})
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL param.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.ListenAndServe.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}
