package crm

import (
	"errors"
	"fmt"
)

// RegistrationCategory is the small fixed set of user-facing registration
// failure categories. Raw upstream validation text never reaches the caller.
type RegistrationCategory string

const (
	RegDuplicatePhone  RegistrationCategory = "duplicate-phone"
	RegDuplicateEmail  RegistrationCategory = "duplicate-email"
	RegOtherValidation RegistrationCategory = "other-validation"
)

// RegistrationError aborts the orchestration with a stable category.
type RegistrationError struct {
	Category RegistrationCategory
	Message  string
	Cause    error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("crm registration failed (%s): %s", e.Category, e.Message)
}

func (e *RegistrationError) Unwrap() error { return e.Cause }

// TierReason identifies why the tier gate rejected an identity.
type TierReason string

const (
	TierReasonUnknown      TierReason = "unknown-tier"
	TierReasonInsufficient TierReason = "insufficient-tier"
	TierReasonBadID        TierReason = "malformed-national-id"
)

// TierError rejects the flow before any CRM call.
type TierError struct {
	Reason  TierReason
	Message string
}

func (e *TierError) Error() string {
	return fmt.Sprintf("trust tier gate: %s", e.Reason)
}

// LoginURLError aborts the orchestration: without a direct-login URL the user
// cannot proceed into the CRM.
type LoginURLError struct {
	Cause error
}

func (e *LoginURLError) Error() string { return fmt.Sprintf("direct login url: %v", e.Cause) }
func (e *LoginURLError) Unwrap() error { return e.Cause }

// apiError carries a non-2xx CRM response.
type apiError struct {
	Status int
	Body   []byte
}

func (e *apiError) Error() string { return fmt.Sprintf("crm http %d", e.Status) }

// ErrNoMatch is the resolver's "none" result.
var ErrNoMatch = errors.New("crm: no matching account")
