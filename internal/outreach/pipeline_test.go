package outreach

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

func newTestPipeline(f *fakeStore, provider *mockProvider, mailer *mockMailer) *Pipeline {
	mgr := NewManager(f, provider, mailer, testBaseURL)
	return NewPipeline(f, mgr, 2)
}

func TestPipelineWithoutProfile(t *testing.T) {
	f := newFakeStore()
	p := newTestPipeline(f, happyProvider(), newMockMailer())

	_, err := p.Run(context.Background(), model.OutreachRequest{
		BrandName: "CeraVe",
		Contacts:  []model.SelectedContact{{Email: "pr@cerave.com", Type: "pr"}},
	})
	assert.ErrorIs(t, err, ErrProfileNotConfigured)
}

func TestPipelineHappyPath(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	mailer := newMockMailer()
	p := newTestPipeline(f, happyProvider(), mailer)

	report, err := p.Run(context.Background(), model.OutreachRequest{
		BrandName: "CeraVe",
		Website:   "https://cerave.com",
		Category:  "skincare",
		Contacts: []model.SelectedContact{
			{Email: "pr@cerave.com", Type: "pr"},
			{Email: "partners@cerave.com", Type: "partnerships"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "CeraVe", report.BrandName)
	require.Len(t, report.Results, 2)
	assert.Equal(t, 2, report.Sent())

	// Results come back in request order regardless of worker scheduling.
	assert.Equal(t, "pr@cerave.com", report.Results[0].Email)
	assert.Equal(t, "partners@cerave.com", report.Results[1].Email)
	for _, res := range report.Results {
		assert.Equal(t, model.ContactStatusSent, res.Status)
		assert.NotZero(t, res.BrandID)
		assert.NotZero(t, res.PitchID)
		assert.Empty(t, res.Error)
	}

	// One brand per contact, named with the contact type.
	prBrand, err := f.GetBrand(context.Background(), report.Results[0].BrandID)
	require.NoError(t, err)
	assert.Equal(t, "CeraVe (pr)", prBrand.Name)
	assert.Equal(t, "https://cerave.com", prBrand.Website)
	assert.True(t, prBrand.DiscoveredByAI)
	assert.Equal(t, model.BrandStatusPitched, prBrand.Status)

	partnersBrand, err := f.GetBrand(context.Background(), report.Results[1].BrandID)
	require.NoError(t, err)
	assert.Equal(t, "CeraVe (partnerships)", partnersBrand.Name)

	assert.Len(t, mailer.sentTo(), 2)
}

func TestPipelineSkipsDuplicates(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	seedBrand(t, f, "pr@cerave.com")

	p := newTestPipeline(f, happyProvider(), newMockMailer())

	report, err := p.Run(context.Background(), model.OutreachRequest{
		BrandName: "CeraVe",
		Contacts: []model.SelectedContact{
			// Dedup is case-insensitive on the normalized address.
			{Email: "PR@CeraVe.com", Type: "pr"},
			{Email: "partners@cerave.com", Type: "partnerships"},
		},
	})
	require.NoError(t, err)

	require.Len(t, report.Results, 2)
	assert.Equal(t, model.ContactStatusDuplicate, report.Results[0].Status)
	assert.Equal(t, "pr@cerave.com", report.Results[0].Email)
	assert.NotEmpty(t, report.Results[0].Error)
	assert.Zero(t, report.Results[0].PitchID)

	assert.Equal(t, model.ContactStatusSent, report.Results[1].Status)
	assert.Equal(t, 1, report.Sent())
}

func TestPipelineIsolatesFailures(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)

	// Generation fails only for the first brand created for "bad@cerave.com".
	provider := &mockProvider{
		generateFunc: func(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error) {
			if brand.Email == "bad@cerave.com" {
				return nil, eris.New("model refused")
			}
			return &model.PitchContent{Subject: "Hello", Body: "<p>Hi</p>"}, nil
		},
	}
	mailer := newMockMailer()
	mailer.failFor["broken@cerave.com"] = eris.New("resend: status 500")

	p := newTestPipeline(f, provider, mailer)

	report, err := p.Run(context.Background(), model.OutreachRequest{
		BrandName: "CeraVe",
		Contacts: []model.SelectedContact{
			{Email: "bad@cerave.com", Type: "pr"},
			{Email: "broken@cerave.com", Type: "marketing"},
			{Email: "good@cerave.com", Type: "partnerships"},
		},
	})
	require.NoError(t, err)
	require.Len(t, report.Results, 3)

	assert.Equal(t, model.ContactStatusFailed, report.Results[0].Status)
	assert.Contains(t, report.Results[0].Error, "model refused")

	assert.Equal(t, model.ContactStatusFailed, report.Results[1].Status)
	assert.Contains(t, report.Results[1].Error, "delivery failed")

	assert.Equal(t, model.ContactStatusSent, report.Results[2].Status)
	assert.Equal(t, 1, report.Sent())

	// The failed-delivery pitch stays in draft for a later manual retry.
	stored, err := f.GetPitch(context.Background(), report.Results[1].PitchID)
	require.NoError(t, err)
	assert.Equal(t, model.PitchStatusDraft, stored.Status)
}

func TestDedupeGate(t *testing.T) {
	f := newFakeStore()
	seedBrand(t, f, "pr@cerave.com")

	gate := NewDedupeGate(f)

	dup, err := gate.IsDuplicate(context.Background(), "PR@CeraVe.com ")
	require.NoError(t, err)
	assert.True(t, dup)

	dup, err = gate.IsDuplicate(context.Background(), "new@cerave.com")
	require.NoError(t, err)
	assert.False(t, dup)
}
