package util

import "strings"

// MaskEmail enmascara un email para logs: "j…@e…CRM.com" style.
func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	i := strings.IndexByte(s, '@')
	if i <= 0 {
		if s == "" {
			return ""
		}
		if len(s) <= 3 {
			return "***"
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	user, dom := s[:i], s[i+1:]
	if len(user) > 1 {
		user = user[:1] + "…"
	}
	dparts := strings.Split(dom, ".")
	if len(dparts) > 0 && len(dparts[0]) > 1 {
		dparts[0] = dparts[0][:1] + "…"
	}
	return user + "@" + strings.Join(dparts, ".")
}

// MaskSecret muestra solo un prefijo corto de un valor sensible.
// Nunca loguear client secrets, signing keys ni passwords sin pasar por acá.
func MaskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return s[:4] + "…"
}

// MaskPhone enmascara un teléfono dejando visibles los últimos 3 dígitos.
func MaskPhone(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 3 {
		if s == "" {
			return ""
		}
		return "***"
	}
	return strings.Repeat("*", len(s)-3) + s[len(s)-3:]
}
