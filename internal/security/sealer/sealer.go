// Package sealer sella y abre valores opacos con autenticación simétrica
// (NaCl secretbox: XSalsa20-Poly1305). Cualquier alteración del token hace
// que Open devuelva false, sin distinguir causa.
package sealer

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keyLength   = 32 // 32 bytes => clave simétrica completa
	nonceLength = 24 // nonce estándar de secretbox
)

// Sealer sella/abre payloads con una clave fija inyectada por configuración.
// Seguro para uso concurrente.
type Sealer struct {
	key [keyLength]byte
}

// New crea un Sealer desde una clave base64 estándar de 32 bytes.
// Genere una clave con: openssl rand -base64 32
func New(keyB64 string) (*Sealer, error) {
	raw, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("sealer: decode key: %w", err)
	}
	if len(raw) != keyLength {
		return nil, fmt.Errorf("sealer: key must decode to %d bytes, got %d", keyLength, len(raw))
	}
	s := &Sealer{}
	copy(s.key[:], raw)
	return s, nil
}

// Seal produce un token opaco base64url: nonce || ciphertext.
func (s *Sealer) Seal(plaintext []byte) string {
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		panic("sealer: crypto/rand unavailable: " + err.Error())
	}
	out := secretbox.Seal(nonce[:], plaintext, &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(out)
}

// Open abre un token sellado. Devuelve (nil, false) ante cualquier problema:
// encoding inválido, tamaño insuficiente o autenticación fallida.
func (s *Sealer) Open(token string) ([]byte, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) <= nonceLength {
		return nil, false
	}
	var nonce [nonceLength]byte
	copy(nonce[:], raw[:nonceLength])
	plain, ok := secretbox.Open(nil, raw[nonceLength:], &nonce, &s.key)
	if !ok {
		return nil, false
	}
	return plain, true
}
