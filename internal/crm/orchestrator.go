package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/dropDatabas3/idgate/internal/identity"
	"github.com/dropDatabas3/idgate/internal/observability/logger"
	"github.com/dropDatabas3/idgate/internal/util"
)

// Policy is the registration/gating policy injected at construction.
type Policy struct {
	// RequireNationalID rejects TIER1 identities without a national ID.
	RequireNationalID bool

	DefaultCountry     string // alpha-2
	DefaultLocale      string
	DefaultNationality string // alpha-2 fallback for unrecognized codes
	PlaceholderDomain  string // domain for synthesized emails

	// Direct-login redirect targets inside the CRM.
	RedirectURL string
	LogoutURL   string
}

// LoginResult is the terminal SUCCESS state of the orchestration.
type LoginResult struct {
	Account      *Account
	URL          string
	Registered   bool
	LinkDegraded bool
}

// Orchestrator drives the account resolution sequence:
//
//	START → TIER_CHECK → LOOKUP → (FOUND | REGISTER) → LINK_ATTRIBUTES →
//	ISSUE_LOGIN_URL → SUCCESS
//
// Tier-check, registration and login-URL failures abort; attribute linking is
// best-effort.
type Orchestrator struct {
	client   *Client
	resolver *Resolver
	policy   Policy
}

// NewOrchestrator wires the orchestrator.
func NewOrchestrator(client *Client, resolver *Resolver, policy Policy) *Orchestrator {
	return &Orchestrator{client: client, resolver: resolver, policy: policy}
}

// Login runs the whole sequence for one identity.
func (o *Orchestrator) Login(ctx context.Context, id identity.Canonical) (*LoginResult, error) {
	log := logger.From(ctx).With(logger.Component("crm.orchestrator"), logger.Subject(id.Subject))

	if terr := o.CheckTier(id); terr != nil {
		log.Warn("tier gate rejected identity",
			logger.Tier(string(id.Tier)),
			logger.String("reason", string(terr.Reason)),
		)
		return nil, terr
	}

	account, registered, err := o.ResolveOrRegister(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{Account: account, Registered: registered}

	// Best-effort: an account with stale linkage metadata beats a blocked
	// login. Failure is logged for operational follow-up.
	if err := o.LinkIdentity(ctx, account, id); err != nil {
		log.Warn("linkage attribute write failed, continuing",
			logger.AccountID(account.ID),
			logger.Err(err),
		)
		result.LinkDegraded = true
	}

	url, err := o.client.DirectLoginURL(ctx, account.ID, o.policy.DefaultLocale, o.policy.RedirectURL, o.policy.LogoutURL)
	if err != nil {
		log.Error("direct login url issuance failed",
			logger.AccountID(account.ID),
			logger.Err(err),
		)
		return nil, &LoginURLError{Cause: err}
	}
	result.URL = url

	log.Info("crm login orchestrated",
		logger.AccountID(account.ID),
		logger.Bool("registered", registered),
		logger.Bool("link_degraded", result.LinkDegraded),
	)
	return result, nil
}

// CheckTier gates the identity before any CRM call.
func (o *Orchestrator) CheckTier(id identity.Canonical) *TierError {
	if id.Tier == identity.TierUnknown {
		return &TierError{
			Reason:  TierReasonUnknown,
			Message: "we could not determine your account verification level",
		}
	}
	if identity.Has(id.NationalID) && !identity.ValidNationalID(id.NationalID) {
		return &TierError{
			Reason:  TierReasonBadID,
			Message: "your national ID is not in a recognized format",
		}
	}
	if id.Tier == identity.Tier1 && o.policy.RequireNationalID && !identity.ValidNationalID(id.NationalID) {
		return &TierError{
			Reason:  TierReasonInsufficient,
			Message: "your account verification level is not sufficient to continue",
		}
	}
	return nil
}

// ResolveOrRegister finds an existing account or creates one. The bool result
// reports whether a registration happened.
func (o *Orchestrator) ResolveOrRegister(ctx context.Context, id identity.Canonical) (*Account, bool, error) {
	account, err := o.resolver.FindExisting(ctx, id)
	if err == nil {
		return account, false, nil
	}
	if err != ErrNoMatch {
		return nil, false, err
	}

	account, err = o.register(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return account, true, nil
}

// register builds and submits a new account. Optional provider data is
// synthesized so registration never fails just because a field was
// unavailable.
func (o *Orchestrator) register(ctx context.Context, id identity.Canonical) (*Account, error) {
	log := logger.From(ctx).With(logger.Component("crm.orchestrator"))

	password := GeneratePassword()

	req := RegisterRequest{
		Email:     id.Email,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		Password:  password,
		Country:   o.policy.DefaultCountry,
		Locale:    o.policy.DefaultLocale,
	}
	if !identity.Has(req.Email) {
		req.Email = placeholderEmail(o.policy.PlaceholderDomain)
	}
	if !identity.Has(req.FirstName) {
		req.FirstName = "Unknown"
	}
	if !identity.Has(req.LastName) {
		req.LastName = "Unknown"
	}
	if identity.Has(id.Mobile) {
		req.Phone = NormalizePhone(id.Mobile)
	}
	if identity.Has(id.Nationality) {
		req.Country = NationalityAlpha2(id.Nationality, o.policy.DefaultCountry)
	}

	log.Info("registering crm account",
		logger.Subject(id.Subject),
		logger.String("email", util.MaskEmail(req.Email)),
		logger.String("password_prefix", util.MaskSecret(password)),
	)

	return o.client.Register(ctx, req)
}

// LinkIdentity writes the provider's stable identifiers onto the account's
// linkage custom fields for future dedup.
func (o *Orchestrator) LinkIdentity(ctx context.Context, account *Account, id identity.Canonical) error {
	fields := map[string]string{}
	put := func(key, v string) {
		if identity.Has(v) {
			fields[key] = v
		}
	}
	put(FieldIdPUUID, id.UUID)
	put(FieldIdPEmail, id.Email)
	put(FieldIdPFullName, id.FullName)
	put(FieldIdPNationalID, id.NationalID)
	if identity.Has(id.Mobile) {
		fields[FieldIdPMobile] = NormalizePhone(id.Mobile)
	}
	if identity.Has(id.Nationality) {
		fields[FieldIdPNationality] = NationalityAlpha2(id.Nationality, o.policy.DefaultNationality)
	}
	if len(fields) == 0 {
		return nil
	}
	return o.client.UpdateCustomFields(ctx, account.ID, fields)
}

func placeholderEmail(domain string) string {
	return fmt.Sprintf("noemail-%d@%s", time.Now().UnixNano(), domain)
}
