package outreach

import (
	"context"
	"sync"
	"time"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

// fakeStore is an in-memory store.Store for exercising the lifecycle and
// pipeline without a database.
type fakeStore struct {
	mu          sync.Mutex
	brands      map[int64]*model.Brand
	pitches     map[int64]*model.Pitch
	profile     *model.Profile
	nextBrandID int64
	nextPitchID int64

	createBrandErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		brands:  make(map[int64]*model.Brand),
		pitches: make(map[int64]*model.Pitch),
	}
}

func (f *fakeStore) CreateBrand(ctx context.Context, in model.BrandInput) (*model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createBrandErr != nil {
		return nil, f.createBrandErr
	}
	email := model.NormalizeEmail(in.Email)
	for _, b := range f.brands {
		if b.Email == email {
			return nil, store.ErrDuplicateBrand
		}
	}

	f.nextBrandID++
	now := time.Now().UTC()
	b := &model.Brand{
		ID:             f.nextBrandID,
		Name:           in.Name,
		Email:          email,
		Website:        in.Website,
		Instagram:      in.Instagram,
		Category:       in.Category,
		Notes:          in.Notes,
		Status:         model.BrandStatusNotContacted,
		DiscoveredByAI: in.DiscoveredByAI,
		DiscoveredAt:   in.DiscoveredAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	f.brands[b.ID] = b
	out := *b
	return &out, nil
}

func (f *fakeStore) GetBrand(ctx context.Context, id int64) (*model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (f *fakeStore) GetBrandByEmail(ctx context.Context, email string) (*model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.brands {
		if b.Email == email {
			out := *b
			return &out, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListBrands(ctx context.Context, filter store.BrandFilter) ([]model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Brand
	for _, b := range f.brands {
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) UpdateBrand(ctx context.Context, id int64, upd model.BrandUpdate) (*model.Brand, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if upd.Name != nil {
		b.Name = *upd.Name
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}
	out := *b
	return &out, nil
}

func (f *fakeStore) DeleteBrand(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.brands[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.brands, id)
	for pid, p := range f.pitches {
		if p.BrandID == id {
			delete(f.pitches, pid)
		}
	}
	return nil
}

func (f *fakeStore) MarkBrandPitched(ctx context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.brands[id]
	if !ok {
		return store.ErrNotFound
	}
	b.Status = model.BrandStatusPitched
	b.LastPitchedAt = &at
	return nil
}

func (f *fakeStore) CreateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile != nil {
		return nil, store.ErrProfileExists
	}
	f.profile = &model.Profile{
		ID:          model.ProfileSingletonID,
		Name:        in.Name,
		SenderEmail: in.SenderEmail,
		Niches:      in.Niches,
	}
	out := *f.profile
	return &out, nil
}

func (f *fakeStore) GetProfile(ctx context.Context) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return nil, nil
	}
	out := *f.profile
	return &out, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, in model.ProfileInput) (*model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.profile == nil {
		return nil, store.ErrNotFound
	}
	f.profile.Name = in.Name
	f.profile.SenderEmail = in.SenderEmail
	out := *f.profile
	return &out, nil
}

func (f *fakeStore) CreatePitch(ctx context.Context, in model.PitchInput) (*model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextPitchID++
	now := time.Now().UTC()
	mode := in.Mode
	if mode == "" {
		mode = model.PitchModeManual
	}
	p := &model.Pitch{
		ID:        f.nextPitchID,
		BrandID:   in.BrandID,
		ProfileID: in.ProfileID,
		Subject:   in.Subject,
		Body:      in.Body,
		Status:    model.PitchStatusDraft,
		Mode:      mode,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.pitches[p.ID] = p
	out := *p
	return &out, nil
}

func (f *fakeStore) GetPitch(ctx context.Context, id int64) (*model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pitches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) GetPitchByToken(ctx context.Context, token string) (*model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pitches {
		if p.TrackingToken != nil && *p.TrackingToken == token {
			out := *p
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) ListPitches(ctx context.Context, filter store.PitchFilter) ([]model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Pitch
	for _, p := range f.pitches {
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		if filter.BrandID != 0 && p.BrandID != filter.BrandID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeStore) MarkPitchSent(ctx context.Context, id int64, token string, at time.Time) (*model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pitches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.Status != model.PitchStatusDraft {
		return nil, store.ErrNotDraft
	}
	p.Status = model.PitchStatusSent
	p.TrackingToken = &token
	p.SentAt = &at
	out := *p
	return &out, nil
}

func (f *fakeStore) RecordPitchOpened(ctx context.Context, token string, at time.Time) (*model.Pitch, error) {
	return f.recordEvent(token, at, func(p *model.Pitch, ts *time.Time) {
		if p.OpenedAt == nil {
			p.OpenedAt = ts
		}
	})
}

func (f *fakeStore) RecordPitchClicked(ctx context.Context, token string, at time.Time) (*model.Pitch, error) {
	return f.recordEvent(token, at, func(p *model.Pitch, ts *time.Time) {
		if p.ClickedAt == nil {
			p.ClickedAt = ts
		}
	})
}

func (f *fakeStore) recordEvent(token string, at time.Time, apply func(*model.Pitch, *time.Time)) (*model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pitches {
		if p.TrackingToken != nil && *p.TrackingToken == token {
			apply(p, &at)
			out := *p
			return &out, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) RecordPitchReplied(ctx context.Context, id int64, notes string, at time.Time) (*model.Pitch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pitches[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if p.RepliedAt == nil {
		p.RepliedAt = &at
		p.ReplyNotes = notes
	}
	out := *p
	return &out, nil
}

func (f *fakeStore) Migrate(ctx context.Context) error { return nil }
func (f *fakeStore) Close() error                      { return nil }

// mockProvider implements ai.Provider with injectable behavior.
type mockProvider struct {
	generateFunc func(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error)
	discoverFunc func(ctx context.Context, brandName string) (*model.BrandDiscovery, error)
}

func (m *mockProvider) GeneratePitch(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error) {
	return m.generateFunc(ctx, brand, profile)
}

func (m *mockProvider) DiscoverBrandContacts(ctx context.Context, brandName string) (*model.BrandDiscovery, error) {
	return m.discoverFunc(ctx, brandName)
}

type sentEmail struct {
	To      string
	Subject string
	Body    string
	ReplyTo string
}

// mockMailer records sent emails and optionally fails per recipient.
type mockMailer struct {
	mu      sync.Mutex
	sent    []sentEmail
	failFor map[string]error
}

func newMockMailer() *mockMailer {
	return &mockMailer{failFor: make(map[string]error)}
}

func (m *mockMailer) Send(ctx context.Context, to, subject, htmlBody, replyTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[to]; ok {
		return err
	}
	m.sent = append(m.sent, sentEmail{To: to, Subject: subject, Body: htmlBody, ReplyTo: replyTo})
	return nil
}

func (m *mockMailer) sentTo() []sentEmail {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sentEmail, len(m.sent))
	copy(out, m.sent)
	return out
}
