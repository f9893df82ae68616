// Package health expone la probe de liveness/readiness del gateway.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/idgate/internal/cache"
	apperrors "github.com/dropDatabas3/idgate/internal/http/errors"
)

// Deps contiene las dependencias de la probe.
type Deps struct {
	Cache   cache.Client
	Version string
}

// Controller handles GET /healthz.
type Controller struct {
	deps Deps
}

// New crea el health controller.
func New(d Deps) *Controller {
	return &Controller{deps: d}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Cache   string `json:"cache"`
}

// Handle reporta ok si el proceso vive; degraded si el keyed store no
// responde (el flujo sigue operando sin guard estricto).
func (c *Controller) Handle(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Version: c.deps.Version, Cache: "ok"}

	if c.deps.Cache != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := c.deps.Cache.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Cache = "unavailable"
		}
	}

	apperrors.WriteJSON(w, http.StatusOK, resp)
}
