// Package outreach implements the pitch lifecycle and the discovery-to-send
// batch pipeline.
package outreach

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justjjosh/Hermes-backend/internal/ai"
	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
	"github.com/justjjosh/Hermes-backend/internal/tracking"
)

// Upper bounds on external calls so one slow collaborator cannot stall a
// batch worker indefinitely.
const (
	generateTimeout = 90 * time.Second
	deliverTimeout  = 30 * time.Second
)

// Manager owns the pitch lifecycle: draft generation, the draft-to-sent
// transition, and engagement event recording.
type Manager struct {
	store    store.Store
	provider ai.Provider
	mailer   Mailer
	baseURL  string

	now func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a lifecycle manager. baseURL is the public base URL of
// this server, used to build tracking pixel links embedded in sent email.
func NewManager(st store.Store, provider ai.Provider, mailer Mailer, baseURL string, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:    st,
		provider: provider,
		mailer:   mailer,
		baseURL:  baseURL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Generate produces an AI-written draft pitch for a brand and persists it.
// The creator profile must exist; generation failures leave no partial rows.
func (m *Manager) Generate(ctx context.Context, brandID int64) (*model.Pitch, error) {
	profile, err := m.store.GetProfile(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "outreach: load profile")
	}
	if profile == nil {
		return nil, ErrProfileNotConfigured
	}

	brand, err := m.store.GetBrand(ctx, brandID)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: load brand %d", brandID)
	}

	genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()
	content, err := m.provider.GeneratePitch(genCtx, brand, profile)
	if err != nil {
		return nil, &GenerationError{Err: err}
	}

	pitch, err := m.store.CreatePitch(ctx, model.PitchInput{
		BrandID:   brand.ID,
		ProfileID: profile.ID,
		Subject:   content.Subject,
		Body:      content.Body,
		Mode:      model.PitchModeManual,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: save draft for brand %d", brandID)
	}

	zap.L().Info("pitch draft generated",
		zap.Int64("pitch_id", pitch.ID),
		zap.Int64("brand_id", brand.ID),
		zap.String("subject", pitch.Subject),
	)
	return pitch, nil
}

// Send delivers a draft pitch and transitions it to sent. Delivery happens
// before the transition, so a failed send leaves the pitch in draft and the
// caller may retry. The tracking pixel is embedded at send time with a
// fresh token.
func (m *Manager) Send(ctx context.Context, pitchID int64) (*model.Pitch, error) {
	pitch, err := m.store.GetPitch(ctx, pitchID)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: load pitch %d", pitchID)
	}
	if !pitch.Sendable() {
		return nil, store.ErrNotDraft
	}

	brand, err := m.store.GetBrand(ctx, pitch.BrandID)
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: load brand %d", pitch.BrandID)
	}

	profile, err := m.store.GetProfile(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "outreach: load profile")
	}
	replyTo := ""
	if profile != nil {
		replyTo = profile.SenderEmail
	}

	token := tracking.NewToken()
	body := tracking.EmbedPixel(pitch.Body, token, m.baseURL)

	sendCtx, cancel := context.WithTimeout(ctx, deliverTimeout)
	defer cancel()
	if err := m.mailer.Send(sendCtx, brand.Email, pitch.Subject, body, replyTo); err != nil {
		return nil, &DeliveryError{Err: err}
	}

	sentAt := m.now().UTC()
	sent, err := m.store.MarkPitchSent(ctx, pitchID, token, sentAt)
	if err != nil {
		// The email is out; surface the inconsistency loudly.
		zap.L().Error("email delivered but pitch not marked sent",
			zap.Int64("pitch_id", pitchID),
			zap.Error(err))
		return nil, eris.Wrapf(err, "outreach: mark pitch %d sent", pitchID)
	}

	if err := m.store.MarkBrandPitched(ctx, brand.ID, sentAt); err != nil {
		zap.L().Warn("failed to update brand after send",
			zap.Int64("brand_id", brand.ID),
			zap.Error(err))
	}

	zap.L().Info("pitch sent",
		zap.Int64("pitch_id", sent.ID),
		zap.Int64("brand_id", brand.ID),
		zap.String("to", brand.Email),
	)
	return sent, nil
}

// RecordOpen marks the pitch behind the token as opened. Only the first
// open is recorded; repeats return the pitch unchanged.
func (m *Manager) RecordOpen(ctx context.Context, token string) (*model.Pitch, error) {
	pitch, err := m.store.RecordPitchOpened(ctx, token, m.now().UTC())
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: record open %s", token)
	}
	return pitch, nil
}

// RecordClick marks the pitch behind the token as clicked, first click wins.
func (m *Manager) RecordClick(ctx context.Context, token string) (*model.Pitch, error) {
	pitch, err := m.store.RecordPitchClicked(ctx, token, m.now().UTC())
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: record click %s", token)
	}
	return pitch, nil
}

// RecordReply marks a pitch as replied and stores optional notes. Only the
// first reply is recorded; repeats return the pitch unchanged.
func (m *Manager) RecordReply(ctx context.Context, pitchID int64, notes string) (*model.Pitch, error) {
	pitch, err := m.store.RecordPitchReplied(ctx, pitchID, notes, m.now().UTC())
	if err != nil {
		return nil, eris.Wrapf(err, "outreach: record reply %d", pitchID)
	}
	return pitch, nil
}
