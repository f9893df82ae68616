// Package router arma el árbol de rutas del gateway.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/dropDatabas3/idgate/internal/http/controllers/auth"
	healthctrl "github.com/dropDatabas3/idgate/internal/http/controllers/health"
	mw "github.com/dropDatabas3/idgate/internal/http/middlewares"
	"github.com/dropDatabas3/idgate/internal/rate"
)

// Deps contiene todo lo necesario para construir el router.
type Deps struct {
	Auth   *authctrl.Controllers
	Health *healthctrl.Controller

	// LoginLimiter limita /auth/login por IP. nil desactiva el límite.
	LoginLimiter rate.Limiter
}

// New construye el http.Handler raíz con la cadena global de middlewares:
// request id → logging → recover.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRequestID())
	r.Use(mw.WithLogging())
	r.Use(mw.WithRecover())

	r.Route("/auth", func(r chi.Router) {
		r.Use(mw.WithNoStore())

		r.With(mw.WithRateLimit(mw.RateLimitConfig{
			Limiter: d.LoginLimiter,
			KeyFunc: mw.IPOnlyRateKey,
		})).Get("/login", d.Auth.Login.Start)

		r.Get("/callback", d.Auth.Callback.Handle)
		r.Post("/confirm", d.Auth.Confirm.Handle)
		r.Get("/logout", d.Auth.Logout.Handle)
		r.Get("/me", d.Auth.Me.Handle)
	})

	r.Get("/healthz", d.Health.Handle)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
