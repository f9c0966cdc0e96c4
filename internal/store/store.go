package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

// Sentinel errors shared by both backends. Callers match these with
// errors.Is; the backends map driver-specific constraint violations onto
// them so the unique-email and singleton-profile constraints are the real
// guards, not the application-level pre-checks.
var (
	ErrNotFound       = eris.New("store: not found")
	ErrDuplicateBrand = eris.New("store: brand with this email already exists")
	ErrProfileExists  = eris.New("store: profile already exists")
	ErrNotDraft       = eris.New("store: pitch is not in draft")
)

// BrandFilter specifies criteria for listing brands.
type BrandFilter struct {
	Status   string `json:"status,omitempty"`
	Category string `json:"category,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

// PitchFilter specifies criteria for listing pitches.
type PitchFilter struct {
	Status  model.PitchStatus `json:"status,omitempty"`
	BrandID int64             `json:"brand_id,omitempty"`
	Mode    model.PitchMode   `json:"mode,omitempty"`
	Limit   int               `json:"limit,omitempty"`
	Offset  int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for the outreach workflow. Each
// call is individually atomic; no cross-call transactions are assumed.
type Store interface {
	// Brands
	CreateBrand(ctx context.Context, in model.BrandInput) (*model.Brand, error)
	GetBrand(ctx context.Context, id int64) (*model.Brand, error)
	// GetBrandByEmail returns (nil, nil) when no brand has the email.
	GetBrandByEmail(ctx context.Context, email string) (*model.Brand, error)
	ListBrands(ctx context.Context, filter BrandFilter) ([]model.Brand, error)
	UpdateBrand(ctx context.Context, id int64, upd model.BrandUpdate) (*model.Brand, error)
	// DeleteBrand removes the brand and cascades to its pitches.
	DeleteBrand(ctx context.Context, id int64) error
	// MarkBrandPitched records the send side effect on the parent brand.
	MarkBrandPitched(ctx context.Context, id int64, at time.Time) error

	// Profile (singleton row)
	CreateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error)
	// GetProfile returns (nil, nil) when no profile has been configured.
	GetProfile(ctx context.Context) (*model.Profile, error)
	UpdateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error)

	// Pitches
	CreatePitch(ctx context.Context, in model.PitchInput) (*model.Pitch, error)
	GetPitch(ctx context.Context, id int64) (*model.Pitch, error)
	GetPitchByToken(ctx context.Context, token string) (*model.Pitch, error)
	ListPitches(ctx context.Context, filter PitchFilter) ([]model.Pitch, error)
	// MarkPitchSent performs the draft->sent transition as a single
	// conditional update; ErrNotDraft when the pitch already left draft.
	MarkPitchSent(ctx context.Context, id int64, token string, at time.Time) (*model.Pitch, error)
	// RecordPitchOpened sets opened_at only if currently null (first open
	// wins) and returns the pitch. ErrNotFound for an unknown token.
	RecordPitchOpened(ctx context.Context, token string, at time.Time) (*model.Pitch, error)
	RecordPitchClicked(ctx context.Context, token string, at time.Time) (*model.Pitch, error)
	RecordPitchReplied(ctx context.Context, id int64, notes string, at time.Time) (*model.Pitch, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
