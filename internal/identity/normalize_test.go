package identity

import "testing"

func TestNormalize_SentinelForMissingFields(t *testing.T) {
	t.Parallel()

	c := Normalize(RawProfile{"sub": "abc-123"})

	if c.Subject != "abc-123" {
		t.Fatalf("subject: got %q", c.Subject)
	}
	for name, v := range map[string]string{
		"full_name":   c.FullName,
		"national_id": c.NationalID,
		"mobile":      c.Mobile,
		"email":       c.Email,
		"dob":         c.DateOfBirth,
		"nationality": c.Nationality,
		"user_type":   c.UserType,
	} {
		if v != Unavailable {
			t.Fatalf("%s: got %q want sentinel", name, v)
		}
	}
	if c.Tier != TierUnknown {
		t.Fatalf("tier: got %q want UNKNOWN", c.Tier)
	}
}

func TestNormalize_NationalIDNeverFallsBackToSubject(t *testing.T) {
	t.Parallel()

	// The subject looks exactly like a national id. It must still not leak
	// into the NationalID field.
	c := Normalize(RawProfile{"sub": "784199012345678"})

	if c.NationalID != Unavailable {
		t.Fatalf("national id resolved from subject: %q", c.NationalID)
	}
	if c.Subject != "784199012345678" {
		t.Fatalf("subject lost: %q", c.Subject)
	}
}

func TestNormalize_VariantPrecedence(t *testing.T) {
	t.Parallel()

	c := Normalize(RawProfile{
		"sub":        "s",
		"fullname":   "generic name",
		"fullnameAR": "اسم",
		"fullnameEN": "English Name",
		"idNumber":   "784199012345678",
		"phone":      "generic-phone",
		"mobile":     "971501234567",
	})

	if c.FullName != "English Name" {
		t.Fatalf("fullnameEN should win: got %q", c.FullName)
	}
	if c.NationalID != "784199012345678" {
		t.Fatalf("idNumber variant: got %q", c.NationalID)
	}
	if c.Mobile != "971501234567" {
		t.Fatalf("mobile should beat phone: got %q", c.Mobile)
	}
}

func TestNormalize_NumericNationalID(t *testing.T) {
	t.Parallel()

	// Some provider builds serialize the id as a JSON number.
	c := Normalize(RawProfile{"sub": "s", "idn": float64(784199012345678)})
	if c.NationalID != "784199012345678" {
		t.Fatalf("numeric idn: got %q", c.NationalID)
	}
}

func TestNormalize_TrimsWhitespace(t *testing.T) {
	t.Parallel()

	c := Normalize(RawProfile{"sub": "s", "email": "  user@example.com  "})
	if c.Email != "user@example.com" {
		t.Fatalf("email not trimmed: %q", c.Email)
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	if Has(Unavailable) || Has("") {
		t.Fatal("sentinel/empty must not count as present")
	}
	if !Has("x") {
		t.Fatal("real value must count as present")
	}
}
