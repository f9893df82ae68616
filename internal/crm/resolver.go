package crm

import (
	"context"
	"strings"

	"github.com/dropDatabas3/idgate/internal/identity"
	"github.com/dropDatabas3/idgate/internal/observability/logger"
	"github.com/dropDatabas3/idgate/internal/util"
)

// Resolver searches the CRM for an existing account matching an identity.
type Resolver struct {
	client *Client
}

// NewResolver builds a resolver over the CRM client.
func NewResolver(client *Client) *Resolver {
	return &Resolver{client: client}
}

// FindExisting searches by identifiers in precedence order and stops at the
// first hit. Linkage custom fields go first: once written by a prior run they
// are authoritative, while plain email/phone are weaker pre-existing-account
// signals that could collide coincidentally.
//
// A failed lookup on one identifier degrades to "no match for that
// identifier"; only exhausting every identifier yields ErrNoMatch.
func (r *Resolver) FindExisting(ctx context.Context, id identity.Canonical) (*Account, error) {
	log := logger.From(ctx).With(logger.Component("crm.resolver"))

	type lookup struct {
		name string
		run  func(context.Context) (*Account, error)
	}

	var lookups []lookup

	if identity.Has(id.Email) {
		lookups = append(lookups, lookup{"linkage-email", func(ctx context.Context) (*Account, error) {
			return r.client.SearchByCustomField(ctx, FieldIdPEmail, id.Email)
		}})
	}
	if identity.Has(id.UUID) {
		lookups = append(lookups, lookup{"linkage-uuid", func(ctx context.Context) (*Account, error) {
			return r.client.SearchByCustomField(ctx, FieldIdPUUID, id.UUID)
		}})
	}
	if identity.Has(id.Email) {
		lookups = append(lookups, lookup{"plain-email", func(ctx context.Context) (*Account, error) {
			return r.client.SearchByEmail(ctx, id.Email)
		}})
	}
	if identity.Has(id.NationalID) {
		lookups = append(lookups, lookup{"linkage-national-id", func(ctx context.Context) (*Account, error) {
			return r.client.SearchByCustomField(ctx, FieldIdPNationalID, id.NationalID)
		}})
	}
	if identity.Has(id.Mobile) {
		lookups = append(lookups, lookup{"phone", func(ctx context.Context) (*Account, error) {
			return r.client.SearchByPhone(ctx, NormalizePhone(id.Mobile))
		}})
	}

	for _, l := range lookups {
		acc, err := l.run(ctx)
		if err != nil {
			log.Warn("crm lookup degraded to no-match",
				logger.String("identifier", l.name),
				logger.Err(err),
			)
			continue
		}
		if acc != nil {
			log.Info("crm account resolved",
				logger.String("identifier", l.name),
				logger.AccountID(acc.ID),
				logger.String("email", util.MaskEmail(acc.Email)),
			)
			return acc, nil
		}
	}

	return nil, ErrNoMatch
}

// NormalizePhone ensures the leading "+" the CRM search expects.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	if phone == "" || strings.HasPrefix(phone, "+") {
		return phone
	}
	return "+" + phone
}
