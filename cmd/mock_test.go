package main

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/outreach"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

type stubProvider struct {
	generateErr error
	discoverErr error
}

func (p *stubProvider) GeneratePitch(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error) {
	if p.generateErr != nil {
		return nil, p.generateErr
	}
	return &model.PitchContent{
		Subject: fmt.Sprintf("Partnership with %s", profile.Name),
		Body:    fmt.Sprintf("<p>Hi %s team!</p>", brand.Name),
	}, nil
}

func (p *stubProvider) DiscoverBrandContacts(ctx context.Context, brandName string) (*model.BrandDiscovery, error) {
	if p.discoverErr != nil {
		return nil, p.discoverErr
	}
	return &model.BrandDiscovery{
		BrandName: brandName,
		Category:  "skincare",
		Contacts: []model.DiscoveredContact{
			{Email: "pr@example.com", Type: "pr", Confidence: "high"},
		},
	}, nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *stubMailer) Send(ctx context.Context, to, subject, htmlBody, replyTo string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

func (m *stubMailer) sentTo() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sent...)
}

const testServerBaseURL = "http://localhost:8000"

// newTestEnv wires an appEnv around a throwaway sqlite database with stubbed
// AI and mail backends.
func newTestEnv(t *testing.T) (*appEnv, *stubProvider, *stubMailer) {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	provider := &stubProvider{}
	mailer := &stubMailer{}
	manager := outreach.NewManager(st, provider, mailer, testServerBaseURL)

	return &appEnv{
		Store:    st,
		Provider: provider,
		Manager:  manager,
		Pipeline: outreach.NewPipeline(st, manager, 2),
	}, provider, mailer
}
