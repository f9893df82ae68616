package auth

import (
	"net/http"
	"time"
)

// setCookie emite una cookie HttpOnly SameSite=Lax con el scope configurado.
func (d Deps) setCookie(w http.ResponseWriter, name, value string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     d.Cookies.Path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   d.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearCookie invalida una cookie inmediatamente.
func (d Deps) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     d.Cookies.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   d.Cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearStateCookies invalida las tres cookies transitorias del intento.
// Se llama en TODO resultado del callback, éxito o falla: el intento es de
// un solo uso.
func (d Deps) clearStateCookies(w http.ResponseWriter) {
	d.clearCookie(w, stateCookie)
	d.clearCookie(w, nonceCookie)
	d.clearCookie(w, verifierCookie)
}

// cookieValue lee una cookie, "" si no existe.
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
