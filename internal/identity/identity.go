// Package identity defines the canonical identity record produced from the
// provider's raw profile, and the trust-tier classification derived from it.
package identity

import "strings"

// Unavailable is the explicit sentinel for fields the provider did not supply.
// Canonical fields are always present: a real value or this sentinel, never
// empty. Downstream code must not need to null-check.
const Unavailable = "unavailable"

// Tier is the three-level assurance classification gating CRM registration.
type Tier string

const (
	TierUnknown Tier = "UNKNOWN"
	Tier1       Tier = "TIER1"
	Tier2       Tier = "TIER2"
	Tier3       Tier = "TIER3"
)

// Canonical is the strictly-typed identity record. Derived once per
// authentication and immutable afterwards.
type Canonical struct {
	Subject     string `json:"sub"`
	UUID        string `json:"uuid"`
	FullName    string `json:"full_name"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	NationalID  string `json:"national_id"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	DateOfBirth string `json:"dob"`
	Nationality string `json:"nationality"`
	ACR         string `json:"acr"`
	UserType    string `json:"user_type"`
	Tier        Tier   `json:"tier"`
}

// Has reports whether a canonical field carries a real value.
func Has(v string) bool {
	return v != "" && !strings.EqualFold(v, Unavailable)
}
