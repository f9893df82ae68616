// Package tokens genera material aleatorio para el flujo OAuth2/OIDC:
// verifier/challenge PKCE, state (CSRF) y nonce (anti-replay).
package tokens

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
)

const (
	// verifierBytes produce un verifier de 43 chars base64url (RFC 7636 mínimo).
	verifierBytes = 32
	stateBytes    = 16
	nonceBytes    = 16

	// PKCEMethod es el único method soportado.
	PKCEMethod = "S256"
)

// PKCEPair contiene el par verifier/challenge.
// El verifier nunca sale del servidor; el challenge viaja en la authorization URL.
type PKCEPair struct {
	Verifier  string
	Challenge string
	Method    string
}

// GeneratePKCE genera un par PKCE S256.
func GeneratePKCE() PKCEPair {
	v := mustRandomURLSafe(verifierBytes)
	return PKCEPair{
		Verifier:  v,
		Challenge: SHA256Base64URL(v),
		Method:    PKCEMethod,
	}
}

// GenerateState genera un token CSRF para el parámetro state.
func GenerateState() string {
	return mustRandomURLSafe(stateBytes)
}

// GenerateNonce genera un nonce OIDC.
func GenerateNonce() string {
	return mustRandomURLSafe(nonceBytes)
}

// SHA256Base64URL devuelve sha256(input) en base64url sin padding.
func SHA256Base64URL(s string) string {
	sum := sha256.Sum256([]byte(s))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

// mustRandomURLSafe lee n bytes de crypto/rand en base64url sin padding.
// Si la fuente de entropía falla el proceso no puede operar con seguridad,
// así que el panic es intencional.
func mustRandomURLSafe(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("tokens: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
