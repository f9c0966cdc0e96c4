// Package ai generates pitch emails and discovers brand contacts using
// a language model provider.
package ai

import (
	"context"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

// Provider is the abstraction over the language model backend. Swapping
// providers means implementing these two methods.
type Provider interface {
	// GeneratePitch writes a personalized pitch email for a brand on
	// behalf of the creator profile.
	GeneratePitch(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error)

	// DiscoverBrandContacts researches a brand by name and returns its
	// metadata plus candidate outreach email addresses. Nothing is
	// persisted; callers review the results first.
	DiscoverBrandContacts(ctx context.Context, brandName string) (*model.BrandDiscovery, error)
}
