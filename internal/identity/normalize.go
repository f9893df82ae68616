package identity

import (
	"fmt"
	"strings"
)

// RawProfile is the loosely-typed profile as returned by the userinfo
// endpoint. It exists only at the ingestion boundary; Normalize converts it
// into a Canonical record and the loose shape must not propagate further.
type RawProfile map[string]any

// Str returns the trimmed string value for a key, or "" when absent,
// non-string or blank.
func (p RawProfile) Str(key string) string {
	v, ok := p[key]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case fmt.Stringer:
		return strings.TrimSpace(t.String())
	case float64:
		// some provider builds serialize the national id as a number
		return strings.TrimSuffix(strings.TrimSpace(fmt.Sprintf("%.0f", t)), ".")
	default:
		return ""
	}
}

// first returns the first present, non-empty value across variant names.
func (p RawProfile) first(keys ...string) string {
	for _, k := range keys {
		if v := p.Str(k); v != "" {
			return v
		}
	}
	return ""
}

// Field variant lists. The provider has shipped the same attribute under
// different names across environments and versions: a primary-language field,
// a secondary-language field, a generic alternate and the plain OIDC claim.
// Order matters; first hit wins.
var (
	fullNameKeys    = []string{"fullnameEN", "fullnameAR", "fullname", "name"}
	firstNameKeys   = []string{"firstnameEN", "firstnameAR", "firstname", "given_name"}
	lastNameKeys    = []string{"lastnameEN", "lastnameAR", "lastname", "family_name"}
	nationalIDKeys  = []string{"idn", "idNumber", "national_id"}
	mobileKeys      = []string{"mobile", "phone_number", "phone"}
	emailKeys       = []string{"email"}
	dobKeys         = []string{"dob", "birthdate"}
	nationalityKeys = []string{"nationalityEN", "nationality"}
	userTypeKeys    = []string{"userType", "user_type", "accountType"}
)

// Normalize maps the raw profile into the canonical record. Every canonical
// field resolves to either a real value or the Unavailable sentinel.
//
// Invariant: the national ID resolves ONLY from national-id variants and
// never falls back to the subject. The subject is an opaque account
// identifier; the national ID is a government identifier. They are distinct
// even when both are present.
func Normalize(p RawProfile) Canonical {
	orUnavailable := func(v string) string {
		if v == "" {
			return Unavailable
		}
		return v
	}

	c := Canonical{
		Subject:     orUnavailable(p.Str("sub")),
		UUID:        orUnavailable(p.Str("uuid")),
		FullName:    orUnavailable(p.first(fullNameKeys...)),
		FirstName:   orUnavailable(p.first(firstNameKeys...)),
		LastName:    orUnavailable(p.first(lastNameKeys...)),
		NationalID:  orUnavailable(p.first(nationalIDKeys...)),
		Mobile:      orUnavailable(p.first(mobileKeys...)),
		Email:       orUnavailable(p.first(emailKeys...)),
		DateOfBirth: orUnavailable(p.first(dobKeys...)),
		Nationality: orUnavailable(p.first(nationalityKeys...)),
		ACR:         orUnavailable(p.Str("acr")),
		UserType:    orUnavailable(p.first(userTypeKeys...)),
	}

	c.Tier = DetermineTier(c.UserType, c.ACR, c.NationalID)
	return c
}
