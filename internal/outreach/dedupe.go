package outreach

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

// DedupeGate answers whether an email address has already been pitched.
// It is advisory only; the unique email constraint in the store is the
// real guard, so concurrent creates still resolve to exactly one brand.
type DedupeGate struct {
	store store.Store
}

// NewDedupeGate creates a gate backed by the brand store.
func NewDedupeGate(st store.Store) *DedupeGate {
	return &DedupeGate{store: st}
}

// IsDuplicate reports whether a brand already exists for the email. The
// address is normalized before comparison.
func (g *DedupeGate) IsDuplicate(ctx context.Context, email string) (bool, error) {
	brand, err := g.store.GetBrandByEmail(ctx, model.NormalizeEmail(email))
	if err != nil {
		return false, eris.Wrapf(err, "outreach: dedupe lookup %s", email)
	}
	return brand != nil, nil
}
