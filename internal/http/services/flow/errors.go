package flow

import (
	"fmt"

	apperrors "github.com/dropDatabas3/idgate/internal/http/errors"
)

// Stable category tags for flow failures. Frontends key error screens off
// these values; they never change between releases.
const (
	CategoryCSRFMismatch       = "CSRF_MISMATCH"
	CategoryExpiredAuthState   = "EXPIRED_AUTH_STATE"
	CategoryTokenExchange      = "TOKEN_EXCHANGE_FAILED"
	CategoryTokenValidation    = "TOKEN_VALIDATION_FAILED"
	CategoryProfileFetch       = "PROFILE_FETCH_FAILED"
	CategoryInsufficientTier   = "INSUFFICIENT_TRUST_TIER"
	CategoryUnknownAccountType = "UNKNOWN_ACCOUNT_TYPE"
	CategoryCRMLookup          = "CRM_LOOKUP_FAILED"
	CategoryCRMRegistration    = "CRM_REGISTRATION_FAILED"
	CategoryCRMLink            = "CRM_LINK_FAILED"
	CategoryCRMLoginURL        = "CRM_LOGIN_URL_FAILED"
)

// FlowError is a categorized flow failure. Detail is safe to show to the
// user; Cause carries the original error for logs only.
type FlowError struct {
	Category string
	Detail   string
	Cause    error
}

func (e *FlowError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Category, e.Detail, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Category, e.Detail)
}

func (e *FlowError) Unwrap() error { return e.Cause }

func newFlowError(category, detail string, cause error) *FlowError {
	return &FlowError{Category: category, Detail: detail, Cause: cause}
}

// appErrorByCategory mapea categorías estables al catálogo HTTP.
var appErrorByCategory = map[string]*apperrors.AppError{
	CategoryCSRFMismatch:       apperrors.ErrCSRFMismatch,
	CategoryExpiredAuthState:   apperrors.ErrExpiredAuthState,
	CategoryTokenExchange:      apperrors.ErrTokenExchange,
	CategoryTokenValidation:    apperrors.ErrTokenValidation,
	CategoryProfileFetch:       apperrors.ErrProfileFetch,
	CategoryInsufficientTier:   apperrors.ErrInsufficientTier,
	CategoryUnknownAccountType: apperrors.ErrUnknownAccountType,
	CategoryCRMLookup:          apperrors.ErrCRMLookup,
	CategoryCRMRegistration:    apperrors.ErrCRMRegistration,
	CategoryCRMLink:            apperrors.ErrCRMLink,
	CategoryCRMLoginURL:        apperrors.ErrCRMLoginURL,
}

// App traduce el FlowError a un *AppError del catálogo, preservando la causa.
func (e *FlowError) App() *apperrors.AppError {
	base, ok := appErrorByCategory[e.Category]
	if !ok {
		base = apperrors.ErrInternal
	}
	out := base.WithCause(e.Cause)
	if e.Detail != "" {
		out = out.WithDetail(e.Detail)
	}
	return out
}
