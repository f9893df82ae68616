// Package auth contiene los controllers del flujo de login federado.
// Los controllers traducen Results del flow service a respuestas HTTP
// (redirects, páginas, JSON) y administran las cookies; toda la lógica vive
// en el service.
package auth

import (
	"github.com/dropDatabas3/idgate/internal/http/services/flow"
	"github.com/dropDatabas3/idgate/internal/session"
)

// CookieConfig define cómo se emiten las cookies del gateway.
type CookieConfig struct {
	SessionName string // cookie de sesión sellada
	Path        string // scope de todas las cookies (ej: /auth)
	Secure      bool   // true fuera de dev
}

// Nombres fijos de las cookies transitorias del intento de login.
const (
	stateCookie    = "idgate_auth_state"
	nonceCookie    = "idgate_auth_nonce"
	verifierCookie = "idgate_auth_verifier"
)

// Deps contiene las dependencias de los controllers de auth.
type Deps struct {
	Flow    *flow.Service
	Codec   *session.Codec
	Cookies CookieConfig
}

// Controllers agrupa los controllers del dominio auth.
type Controllers struct {
	Login    *LoginController
	Callback *CallbackController
	Confirm  *ConfirmController
	Logout   *LogoutController
	Me       *MeController
}

// New construye todos los controllers del dominio.
func New(d Deps) *Controllers {
	return &Controllers{
		Login:    &LoginController{deps: d},
		Callback: &CallbackController{deps: d},
		Confirm:  &ConfirmController{deps: d},
		Logout:   &LogoutController{deps: d},
		Me:       &MeController{deps: d},
	}
}
