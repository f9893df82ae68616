package auth

import (
	"html/template"
	"net/http"

	apperrors "github.com/dropDatabas3/idgate/internal/http/errors"
	"github.com/dropDatabas3/idgate/internal/http/services/flow"
)

// Páginas mínimas del gateway. El frontal real vive en el CRM; estas páginas
// solo cierran el flujo (handoff de confirmación y pantalla de error).

var confirmTmpl = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Signing you in…</title></head>
<body onload="document.forms[0].submit()">
  <p>Completing sign-in{{if .name}} for {{.name}}{{end}}…</p>
  <form method="POST" action="confirm">
    <noscript><button type="submit">Continue</button></noscript>
  </form>
</body>
</html>
`))

var errorTmpl = template.Must(template.New("error").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Sign-in failed</title></head>
<body>
  <h1>Sign-in failed</h1>
  <p>{{.Message}}</p>
  {{if .Detail}}<p><small>{{.Detail}}</small></p>{{end}}
  <p><small>{{.Category}}</small></p>
  <p><a href="login">Try again</a></p>
</body>
</html>
`))

// renderConfirm escribe la página de handoff que auto-postea a /auth/confirm.
func renderConfirm(w http.ResponseWriter, data map[string]any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = confirmTmpl.Execute(w, data)
}

// renderFlowError escribe la pantalla de error del flujo con el status del
// catálogo y la categoría estable visible para soporte.
func renderFlowError(w http.ResponseWriter, fe *flow.FlowError) {
	appErr := fe.App()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = errorTmpl.Execute(w, map[string]any{
		"Category": fe.Category,
		"Message":  appErr.Message,
		"Detail":   fe.Detail,
	})
}

// writeAppError responde JSON para los endpoints no navegables.
func writeAppError(w http.ResponseWriter, err *apperrors.AppError) {
	apperrors.WriteError(w, err)
}
