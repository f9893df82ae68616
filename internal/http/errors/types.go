package errors

import (
	"fmt"
	"net/http"
)

// AppError define la estructura estándar para errores de la aplicación
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Error original (causa), útil para logs, no se expone al cliente
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// Wrap crea un AppError envolviendo un error existente
func Wrap(err error, status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
		Err:        err,
	}
}

// FromError intenta convertir un error genérico en un AppError.
// Si no es un AppError, devuelve un error interno genérico conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternal.WithCause(err)
}

// WithDetail agrega detalles adicionales al error.
// Devuelve una COPIA del error para no mutar las variables globales base.
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause agrega el error original (causa).
// Devuelve una COPIA del error.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// LISTA DE ERRORES PREDEFINIDOS
// =================================================================================

// 400 Bad Request
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "The request is missing required parameters or is malformed.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "The request body is not valid JSON.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// 401 Unauthorized
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication is required.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrSessionExpired = &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "Your session has expired, please sign in again.",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// Flujo de federación: categorías estables que el frontal puede mapear a
// pantallas de error. Los códigos NO cambian entre versiones.
var (
	ErrCSRFMismatch = &AppError{
		Code:       "CSRF_MISMATCH",
		Message:    "The sign-in request could not be verified. Please start again.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrExpiredAuthState = &AppError{
		Code:       "EXPIRED_AUTH_STATE",
		Message:    "The sign-in request has expired or was already used. Please start again.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrTokenExchange = &AppError{
		Code:       "TOKEN_EXCHANGE_FAILED",
		Message:    "We could not complete sign-in with the identity provider. Please try again.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrTokenValidation = &AppError{
		Code:       "TOKEN_VALIDATION_FAILED",
		Message:    "The identity provider returned an invalid response. Please try again.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrProfileFetch = &AppError{
		Code:       "PROFILE_FETCH_FAILED",
		Message:    "We could not retrieve your profile from the identity provider. Please try again.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrInsufficientTier = &AppError{
		Code:       "INSUFFICIENT_TRUST_TIER",
		Message:    "Your identity verification level does not allow access to this service.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrUnknownAccountType = &AppError{
		Code:       "UNKNOWN_ACCOUNT_TYPE",
		Message:    "We could not determine your account type. Please contact support.",
		HTTPStatus: http.StatusForbidden,
	}

	ErrCRMLookup = &AppError{
		Code:       "CRM_LOOKUP_FAILED",
		Message:    "We could not look up your account. Please try again later.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrCRMRegistration = &AppError{
		Code:       "CRM_REGISTRATION_FAILED",
		Message:    "We could not create your account. Please contact support.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrCRMLink = &AppError{
		Code:       "CRM_LINK_FAILED",
		Message:    "We could not update your account details.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrCRMLoginURL = &AppError{
		Code:       "CRM_LOGIN_URL_FAILED",
		Message:    "We could not sign you in to your account. Please try again later.",
		HTTPStatus: http.StatusBadGateway,
	}
)

// 429 / 5xx
var (
	ErrRateLimited = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Too many requests, please slow down.",
		HTTPStatus: http.StatusTooManyRequests,
	}

	ErrInternal = &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    "An unexpected error occurred.",
		HTTPStatus: http.StatusInternalServerError,
	}
)
