package auth

import (
	"net/http"

	"github.com/dropDatabas3/idgate/internal/http/dto"
	apperrors "github.com/dropDatabas3/idgate/internal/http/errors"
)

// MeController handles GET /auth/me.
type MeController struct {
	deps Deps
}

// Handle devuelve la introspección de la sesión actual. Nunca expone los
// tokens del proveedor.
func (c *MeController) Handle(w http.ResponseWriter, r *http.Request) {
	sess, ok := c.deps.Codec.Open(cookieValue(r, c.deps.Cookies.SessionName))
	if !ok {
		writeAppError(w, apperrors.ErrUnauthorized)
		return
	}

	id := sess.Identity
	apperrors.WriteJSON(w, http.StatusOK, dto.MeResponse{
		Subject:   id.Subject,
		FullName:  id.FullName,
		Email:     id.Email,
		Tier:      string(id.Tier),
		UserType:  id.UserType,
		ACR:       id.ACR,
		ExpiresAt: sess.ExpiresAt,
	})
}
