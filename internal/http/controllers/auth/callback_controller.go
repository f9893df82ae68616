package auth

import (
	"net/http"

	"github.com/dropDatabas3/idgate/internal/http/services/flow"
	"github.com/dropDatabas3/idgate/internal/observability/logger"
)

// CallbackController handles GET /auth/callback.
type CallbackController struct {
	deps Deps
}

// Handle corre la máquina de estados del callback y traduce el Result.
// Las cookies transitorias se invalidan en TODO resultado: el intento de
// login es de un solo uso.
func (c *CallbackController) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("CallbackController.Handle"))

	q := r.URL.Query()
	in := flow.CallbackInput{
		Code:             q.Get("code"),
		State:            q.Get("state"),
		ErrorCode:        q.Get("error"),
		ErrorDescription: q.Get("error_description"),
		StateToken:       cookieValue(r, stateCookie),
		NonceToken:       cookieValue(r, nonceCookie),
		VerifierToken:    cookieValue(r, verifierCookie),
	}

	result := c.deps.Flow.Callback(ctx, in)

	c.deps.clearStateCookies(w)

	switch {
	case result.Failed != nil:
		renderFlowError(w, result.Failed)

	case result.Rendered != nil:
		if result.SessionToken != "" {
			c.deps.setCookie(w, c.deps.Cookies.SessionName, result.SessionToken, c.deps.Codec.TTL())
		}
		renderConfirm(w, result.Rendered.Data)

	case result.Redirect != nil:
		http.Redirect(w, r, result.Redirect.Location, http.StatusFound)

	default:
		log.Error("callback produced empty result")
		http.Redirect(w, r, "login", http.StatusFound)
	}
}
