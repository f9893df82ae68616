// Package crm talks to the downstream CRM: account search, registration,
// linkage-attribute writes and one-time direct-login URLs.
package crm

// Account is the CRM-owned account record. Read and written through the CRM
// API only; never cached beyond one orchestration call.
type Account struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	FirstName    string            `json:"firstname"`
	LastName     string            `json:"lastname"`
	Phone        string            `json:"phone"`
	Country      string            `json:"country"`
	Enabled      bool              `json:"enabled"`
	Verified     bool              `json:"verified"`
	CustomFields map[string]string `json:"customFields"`
}

// Linkage custom field keys. Written by this system on a prior run; once
// present they are the authoritative dedup signal, ahead of plain email and
// phone.
const (
	FieldIdPUUID        = "idp_uuid"
	FieldIdPEmail       = "idp_email"
	FieldIdPNationalID  = "idp_idn"
	FieldIdPFullName    = "idp_fullname"
	FieldIdPMobile      = "idp_mobile"
	FieldIdPNationality = "idp_nationality"
)

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Phone     string `json:"phone,omitempty"`
	Password  string `json:"password"`
	Country   string `json:"country"`
	Locale    string `json:"locale"`
}
