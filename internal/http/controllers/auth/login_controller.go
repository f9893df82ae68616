package auth

import (
	"net/http"

	apperrors "github.com/dropDatabas3/idgate/internal/http/errors"
	"github.com/dropDatabas3/idgate/internal/observability/logger"
)

// LoginController handles GET /auth/login.
type LoginController struct {
	deps Deps
}

// Start abre un intento de login: sella las tres cookies transitorias y
// redirige al proveedor.
func (c *LoginController) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Start"))

	result, err := c.deps.Flow.Start(ctx)
	if err != nil {
		log.Error("login start failed", logger.Err(err))
		writeAppError(w, apperrors.ErrInternal)
		return
	}

	stateTTL := c.deps.Codec.StateTTL()
	c.deps.setCookie(w, stateCookie, result.StateToken, stateTTL)
	c.deps.setCookie(w, nonceCookie, result.NonceToken, stateTTL)
	c.deps.setCookie(w, verifierCookie, result.VerifierToken, stateTTL)

	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}
