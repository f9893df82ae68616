// Package dto contiene las estructuras de request/response del borde HTTP.
package dto

import "time"

// MeResponse es la introspección de sesión para debugging/ops.
// No expone tokens del proveedor.
type MeResponse struct {
	Subject    string    `json:"sub"`
	FullName   string    `json:"full_name"`
	Email      string    `json:"email"`
	Tier       string    `json:"tier"`
	UserType   string    `json:"user_type,omitempty"`
	ACR        string    `json:"acr,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ErrorPageData alimenta la página de error del gateway.
type ErrorPageData struct {
	Category string
	Message  string
	Detail   string
}
