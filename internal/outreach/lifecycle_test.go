package outreach

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

const testBaseURL = "https://hermes.example.com"

func seedProfile(t *testing.T, f *fakeStore) *model.Profile {
	t.Helper()
	profile, err := f.CreateProfile(context.Background(), model.ProfileInput{
		Name:        "Maya",
		SenderEmail: "maya@creator.com",
		Niches:      []string{"skincare"},
	})
	require.NoError(t, err)
	return profile
}

func seedBrand(t *testing.T, f *fakeStore, email string) *model.Brand {
	t.Helper()
	brand, err := f.CreateBrand(context.Background(), model.BrandInput{
		Name:  "CeraVe (pr)",
		Email: email,
	})
	require.NoError(t, err)
	return brand
}

func happyProvider() *mockProvider {
	return &mockProvider{
		generateFunc: func(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error) {
			return &model.PitchContent{
				Subject: "Collaboration Inquiry - Skincare Content",
				Body:    "<p>Hi, I'm " + profile.Name + "</p>",
			}, nil
		},
	}
}

func TestGenerateCreatesDraft(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL)

	pitch, err := mgr.Generate(context.Background(), brand.ID)
	require.NoError(t, err)

	assert.Equal(t, model.PitchStatusDraft, pitch.Status)
	assert.Equal(t, brand.ID, pitch.BrandID)
	assert.Equal(t, model.ProfileSingletonID, pitch.ProfileID)
	assert.Equal(t, "Collaboration Inquiry - Skincare Content", pitch.Subject)
	assert.Nil(t, pitch.TrackingToken)
	assert.Nil(t, pitch.SentAt)
}

func TestGenerateWithoutProfile(t *testing.T) {
	f := newFakeStore()
	brand := seedBrand(t, f, "pr@cerave.com")

	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL)

	_, err := mgr.Generate(context.Background(), brand.ID)
	assert.ErrorIs(t, err, ErrProfileNotConfigured)
}

func TestGenerateProviderFailure(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	provider := &mockProvider{
		generateFunc: func(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error) {
			return nil, eris.New("model overloaded")
		},
	}
	mgr := NewManager(f, provider, newMockMailer(), testBaseURL)

	_, err := mgr.Generate(context.Background(), brand.ID)
	require.Error(t, err)

	var genErr *GenerationError
	assert.ErrorAs(t, err, &genErr)

	// Failed generation leaves no pitch behind.
	pitches, err := f.ListPitches(context.Background(), store.PitchFilter{})
	require.NoError(t, err)
	assert.Empty(t, pitches)
}

func TestSendTransitionsDraft(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	mailer := newMockMailer()
	fixed := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mgr := NewManager(f, happyProvider(), mailer, testBaseURL,
		WithClock(func() time.Time { return fixed }))

	pitch, err := mgr.Generate(context.Background(), brand.ID)
	require.NoError(t, err)

	sent, err := mgr.Send(context.Background(), pitch.ID)
	require.NoError(t, err)

	assert.Equal(t, model.PitchStatusSent, sent.Status)
	require.NotNil(t, sent.TrackingToken)
	require.NotNil(t, sent.SentAt)
	assert.Equal(t, fixed, *sent.SentAt)

	// The delivered body carries the beacon, the stored draft body does not.
	emails := mailer.sentTo()
	require.Len(t, emails, 1)
	assert.Equal(t, "pr@cerave.com", emails[0].To)
	assert.Equal(t, "maya@creator.com", emails[0].ReplyTo)
	assert.Contains(t, emails[0].Body, "/track/pixel/"+*sent.TrackingToken+".png")
	assert.True(t, strings.HasPrefix(emails[0].Body, "<p>Hi, I'm Maya</p>"))

	stored, err := f.GetPitch(context.Background(), pitch.ID)
	require.NoError(t, err)
	assert.NotContains(t, stored.Body, "/track/pixel/")

	// The parent brand records the send.
	updated, err := f.GetBrand(context.Background(), brand.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BrandStatusPitched, updated.Status)
	require.NotNil(t, updated.LastPitchedAt)
	assert.Equal(t, fixed, *updated.LastPitchedAt)
}

func TestSendDeliveryFailureKeepsDraft(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	mailer := newMockMailer()
	mailer.failFor["pr@cerave.com"] = eris.New("resend: status 500")

	mgr := NewManager(f, happyProvider(), mailer, testBaseURL)

	pitch, err := mgr.Generate(context.Background(), brand.ID)
	require.NoError(t, err)

	_, err = mgr.Send(context.Background(), pitch.ID)
	require.Error(t, err)

	var delErr *DeliveryError
	assert.ErrorAs(t, err, &delErr)

	stored, err := f.GetPitch(context.Background(), pitch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PitchStatusDraft, stored.Status)
	assert.Nil(t, stored.SentAt)
	assert.Nil(t, stored.TrackingToken)

	// Retry after the transport recovers succeeds.
	delete(mailer.failFor, "pr@cerave.com")
	sent, err := mgr.Send(context.Background(), pitch.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PitchStatusSent, sent.Status)
}

func TestSendAlreadySent(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL)

	pitch, err := mgr.Generate(context.Background(), brand.ID)
	require.NoError(t, err)

	_, err = mgr.Send(context.Background(), pitch.ID)
	require.NoError(t, err)

	_, err = mgr.Send(context.Background(), pitch.ID)
	assert.ErrorIs(t, err, store.ErrNotDraft)
}

func TestSendUnknownPitch(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)

	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL)

	_, err := mgr.Send(context.Background(), 999)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecordOpenFirstWins(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	times := []time.Time{
		time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2026, 8, 2, 9, 30, 0, 0, time.UTC),
	}
	idx := 0
	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL,
		WithClock(func() time.Time {
			t := times[min(idx, len(times)-1)]
			idx++
			return t
		}))

	pitch, err := mgr.Generate(context.Background(), brand.ID)
	require.NoError(t, err)
	sent, err := mgr.Send(context.Background(), pitch.ID)
	require.NoError(t, err)
	token := *sent.TrackingToken

	first, err := mgr.RecordOpen(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, first.OpenedAt)
	firstOpen := *first.OpenedAt

	second, err := mgr.RecordOpen(context.Background(), token)
	require.NoError(t, err)
	require.NotNil(t, second.OpenedAt)
	assert.Equal(t, firstOpen, *second.OpenedAt)
}

func TestRecordOpenUnknownToken(t *testing.T) {
	f := newFakeStore()
	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL)

	_, err := mgr.RecordOpen(context.Background(), "no-such-token")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestRecordReply(t *testing.T) {
	f := newFakeStore()
	seedProfile(t, f)
	brand := seedBrand(t, f, "pr@cerave.com")

	mgr := NewManager(f, happyProvider(), newMockMailer(), testBaseURL)

	pitch, err := mgr.Generate(context.Background(), brand.ID)
	require.NoError(t, err)
	_, err = mgr.Send(context.Background(), pitch.ID)
	require.NoError(t, err)

	replied, err := mgr.RecordReply(context.Background(), pitch.ID, "wants rates")
	require.NoError(t, err)
	require.NotNil(t, replied.RepliedAt)
	assert.Equal(t, "wants rates", replied.ReplyNotes)

	// Only the first reply is recorded.
	again, err := mgr.RecordReply(context.Background(), pitch.ID, "different notes")
	require.NoError(t, err)
	assert.True(t, again.RepliedAt.Equal(*replied.RepliedAt))
	assert.Equal(t, "wants rates", again.ReplyNotes)
}
