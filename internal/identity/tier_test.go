package identity

import "testing"

func TestDetermineTier_Cascade(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		userType   string
		acr        string
		nationalID string
		want       Tier
	}{
		// explicit label wins over everything
		{"label tier3 beats low acr", "tier3", "urn:assurance:low", "784199012345678", Tier3},
		{"label sop1", "sop1", Unavailable, Unavailable, Tier1},
		{"label case insensitive", "TIER2", Unavailable, Unavailable, Tier2},

		// unrecognized label falls through to acr
		{"business label falls to acr", "business", "urn:x:substantial", Unavailable, Tier2},

		// acr mapping
		{"acr low", Unavailable, "low", Unavailable, Tier1},
		{"acr substantial urn", Unavailable, "urn:safelayer:tws:policies:authentication:level:substantial", Unavailable, Tier2},
		{"acr high", Unavailable, "high", Unavailable, Tier3},
		{"acr unknown level falls through", Unavailable, "urn:x:banana", Unavailable, TierUnknown},

		// national id inference
		{"valid national id implies tier2", Unavailable, Unavailable, "784199012345678", Tier2},
		{"short id no inference", Unavailable, Unavailable, "12345", TierUnknown},
		{"non-digit id no inference", Unavailable, Unavailable, "78419901234567x", TierUnknown},

		// nothing resolves
		{"all sentinel", Unavailable, Unavailable, Unavailable, TierUnknown},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := DetermineTier(tc.userType, tc.acr, tc.nationalID)
			if got != tc.want {
				t.Fatalf("DetermineTier(%q, %q, %q) = %q, want %q",
					tc.userType, tc.acr, tc.nationalID, got, tc.want)
			}
		})
	}
}

func TestDetermineTier_Deterministic(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		if got := DetermineTier("tier2", "high", "784199012345678"); got != Tier2 {
			t.Fatalf("non-deterministic result on run %d: %q", i, got)
		}
	}
}

func TestValidNationalID(t *testing.T) {
	t.Parallel()

	valid := []string{"784199012345678", "000000000000000"}
	invalid := []string{"", Unavailable, "78419901234567", "7841990123456789", "78419901234567a", "784-1990-1234567"}

	for _, v := range valid {
		if !ValidNationalID(v) {
			t.Fatalf("expected valid: %q", v)
		}
	}
	for _, v := range invalid {
		if ValidNationalID(v) {
			t.Fatalf("expected invalid: %q", v)
		}
	}
}
