package auth

import (
	"net/http"
)

// LogoutController handles GET /auth/logout.
type LogoutController struct {
	deps Deps
}

// Handle borra la sesión local y redirige al logout del proveedor.
func (c *LogoutController) Handle(w http.ResponseWriter, r *http.Request) {
	c.deps.clearCookie(w, c.deps.Cookies.SessionName)
	c.deps.clearStateCookies(w)

	result := c.deps.Flow.Logout(r.Context())
	if result.Redirect != nil {
		http.Redirect(w, r, result.Redirect.Location, http.StatusFound)
		return
	}
	http.Redirect(w, r, "login", http.StatusFound)
}
