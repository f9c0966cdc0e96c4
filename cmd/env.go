package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justjjosh/Hermes-backend/internal/ai"
	"github.com/justjjosh/Hermes-backend/internal/outreach"
	"github.com/justjjosh/Hermes-backend/internal/store"
	anthropicpkg "github.com/justjjosh/Hermes-backend/pkg/anthropic"
	"github.com/justjjosh/Hermes-backend/pkg/resend"
)

// appEnv holds the initialized store, clients, and services shared by the
// serve/outreach/export commands.
type appEnv struct {
	Store    store.Store
	Provider ai.Provider
	Manager  *outreach.Manager
	Pipeline *outreach.Pipeline
}

// Close releases resources held by the environment.
func (e *appEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		st, err := store.NewPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, eris.Wrap(err, "init postgres store")
		}
		zap.L().Info("using postgres store")
		return st, nil
	case "", "sqlite":
		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return nil, eris.Wrap(err, "init sqlite store")
		}
		zap.L().Info("using sqlite store", zap.String("path", cfg.Store.Path))
		return st, nil
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initEnv sets up the store, AI provider, mailer, and outreach services.
// Callers should defer env.Close().
func initEnv(ctx context.Context) (*appEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	provider := ai.NewAnthropicProvider(anthropicClient, cfg.Anthropic.Model)

	resendOpts := []resend.Option{resend.WithRateLimit(cfg.Resend.RPS)}
	if cfg.Resend.BaseURL != "" {
		resendOpts = append(resendOpts, resend.WithBaseURL(cfg.Resend.BaseURL))
	}
	resendClient := resend.NewClient(cfg.Resend.Key, resendOpts...)
	mailer := outreach.NewResendMailer(resendClient, cfg.Resend.From)

	manager := outreach.NewManager(st, provider, mailer, cfg.Server.BaseURL)
	pipeline := outreach.NewPipeline(st, manager, cfg.Outreach.MaxConcurrentContacts)

	return &appEnv{
		Store:    st,
		Provider: provider,
		Manager:  manager,
		Pipeline: pipeline,
	}, nil
}
