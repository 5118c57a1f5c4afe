package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// RouterOptions tune the middleware stack around the handlers.
type RouterOptions struct {
	// CORSOrigins lists allowed origins; empty means same-origin only.
	CORSOrigins []string

	// RateLimit caps requests per client IP per RateWindow on the
	// authenticated endpoints; zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration

	// Metrics, when set, wraps every route in request counting and latency
	// observation.
	Metrics func(http.Handler) http.Handler
}

// tokenRateLimit is the per-IP cap on the credential endpoint,
// deliberately tighter than the general API limit.
const (
	tokenRateLimit  = 10
	tokenRateWindow = time.Minute
)

// NewRouter assembles the full route tree: public login/token/check plus the
// bearer-guarded conversion and position endpoints.
func NewRouter(api *API, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(Tracing)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", "X-Request-ID"},
			AllowCredentials: true,
		}))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics)
	}

	r.Get("/login", api.Login)
	r.Get("/check", api.Check)

	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(tokenRateLimit, tokenRateWindow))
		r.Post("/token", api.Token)
	})

	r.Group(func(r chi.Router) {
		if opts.RateLimit > 0 {
			window := opts.RateWindow
			if window <= 0 {
				window = time.Minute
			}
			r.Use(httprate.LimitByIP(opts.RateLimit, window))
		}
		r.Use(api.Authenticate)

		r.Post("/convert", api.Convert)
		r.Post("/terrestrial2celestial", api.TerrestrialToCelestial)
		r.Post("/celestial2terrestrial", api.CelestialToTerrestrial)
		r.Post("/position", api.Position)
	})

	return r
}
