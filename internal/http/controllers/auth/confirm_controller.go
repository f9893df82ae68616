package auth

import (
	"net/http"

	"github.com/dropDatabas3/idgate/internal/observability/logger"
)

// ConfirmController handles POST /auth/confirm.
type ConfirmController struct {
	deps Deps
}

// Handle dispara la orquestación CRM para la sesión autenticada y redirige a
// la URL de login directo de un solo uso.
func (c *ConfirmController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("ConfirmController.Handle"))

	sess, ok := c.deps.Codec.Open(cookieValue(r, c.deps.Cookies.SessionName))
	if !ok {
		log.Debug("confirm without valid session")
		http.Redirect(w, r, "login", http.StatusFound)
		return
	}

	result := c.deps.Flow.Confirm(ctx, sess)

	switch {
	case result.Failed != nil:
		renderFlowError(w, result.Failed)

	case result.Redirect != nil:
		http.Redirect(w, r, result.Redirect.Location, http.StatusFound)

	default:
		log.Error("confirm produced empty result")
		http.Redirect(w, r, "login", http.StatusFound)
	}
}
