package identity

import "strings"

// acrTable maps the last segment of the ACR claim to a tier. Fixed three-entry
// table; anything else resolves to no tier.
var acrTable = map[string]Tier{
	"low":         Tier1,
	"substantial": Tier2,
	"high":        Tier3,
}

// tierLabels are the explicit user-type labels the provider has been seen
// emitting, in both spellings.
var tierLabels = map[string]Tier{
	"tier1": Tier1, "sop1": Tier1,
	"tier2": Tier2, "sop2": Tier2,
	"tier3": Tier3, "sop3": Tier3,
}

// DetermineTier resolves the trust tier with a three-level cascade:
//
//  1. explicit user-type label on the profile, when recognized;
//  2. the ACR claim mapped through the fixed table;
//  3. a well-formed national ID (exactly 15 digits) implies at least TIER2.
//
// The provider has reported assurance through any of these channels depending
// on environment and version, so the whole cascade must stay. Callers get
// TierUnknown when none resolves.
func DetermineTier(userType, acr, nationalID string) Tier {
	if Has(userType) {
		if t, ok := tierLabels[strings.ToLower(strings.TrimSpace(userType))]; ok {
			return t
		}
	}

	if Has(acr) {
		if t, ok := acrTable[acrLevel(acr)]; ok {
			return t
		}
	}

	if ValidNationalID(nationalID) {
		return Tier2
	}

	return TierUnknown
}

// acrLevel extracts the level segment from an ACR value. ACRs arrive either
// as a bare level ("substantial") or as a URN whose last colon segment is the
// level.
func acrLevel(acr string) string {
	acr = strings.ToLower(strings.TrimSpace(acr))
	if i := strings.LastIndexByte(acr, ':'); i >= 0 {
		return acr[i+1:]
	}
	return acr
}

// ValidNationalID reports whether v is a well-formed national ID:
// exactly 15 digits, nothing else.
func ValidNationalID(v string) bool {
	if !Has(v) || len(v) != 15 {
		return false
	}
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return false
		}
	}
	return true
}
