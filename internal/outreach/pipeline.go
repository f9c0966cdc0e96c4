package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/internal/store"
)

const defaultContactConcurrency = 4

// Pipeline runs the discovery-to-send batch: for each operator-approved
// contact it creates a brand, generates a pitch, and sends it. Contacts are
// isolated from each other; a failure becomes that contact's result and
// never aborts its siblings.
type Pipeline struct {
	store       store.Store
	manager     *Manager
	gate        *DedupeGate
	concurrency int
}

// NewPipeline creates a batch pipeline. concurrency bounds how many
// contacts are processed at once; zero or negative selects the default.
func NewPipeline(st store.Store, manager *Manager, concurrency int) *Pipeline {
	if concurrency <= 0 {
		concurrency = defaultContactConcurrency
	}
	return &Pipeline{
		store:       st,
		manager:     manager,
		gate:        NewDedupeGate(st),
		concurrency: concurrency,
	}
}

// Run executes the batch for one brand's selected contacts. The report's
// results are ordered the same as req.Contacts. Run itself fails only on
// missing profile or cancelled context; everything per-contact lands in
// the report.
func (p *Pipeline) Run(ctx context.Context, req model.OutreachRequest) (*model.OutreachReport, error) {
	profile, err := p.store.GetProfile(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "outreach: load profile")
	}
	if profile == nil {
		return nil, ErrProfileNotConfigured
	}

	log := zap.L().With(
		zap.String("brand", req.BrandName),
		zap.Int("contacts", len(req.Contacts)),
	)
	log.Info("starting outreach batch")
	start := time.Now()

	results := make([]model.ContactResult, len(req.Contacts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, contact := range req.Contacts {
		i, contact := i, contact
		g.Go(func() error {
			results[i] = p.processContact(gctx, req, contact)
			return nil
		})
	}

	// Worker funcs never return errors, so Wait only reflects ctx.
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "outreach: batch run")
	}

	report := &model.OutreachReport{
		BrandName: req.BrandName,
		Results:   results,
	}

	log.Info("outreach batch complete",
		zap.Int("sent", report.Sent()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return report, nil
}

// processContact walks one contact through dedupe, brand creation, draft
// generation, and send. Every failure is converted into a terminal result.
func (p *Pipeline) processContact(ctx context.Context, req model.OutreachRequest, contact model.SelectedContact) model.ContactResult {
	email := model.NormalizeEmail(contact.Email)
	result := model.ContactResult{Email: email}

	dup, err := p.gate.IsDuplicate(ctx, email)
	if err != nil {
		result.Status = model.ContactStatusFailed
		result.Error = err.Error()
		return result
	}
	if dup {
		result.Status = model.ContactStatusDuplicate
		result.Error = "brand with this email already exists"
		return result
	}

	// The contact type goes into the brand name so two contacts at the same
	// company stay distinguishable, e.g. "CeraVe (pr)" vs "CeraVe (partnerships)".
	now := time.Now().UTC()
	brand, err := p.store.CreateBrand(ctx, model.BrandInput{
		Name:           fmt.Sprintf("%s (%s)", req.BrandName, contact.Type),
		Email:          email,
		Website:        req.Website,
		Instagram:      req.Instagram,
		Category:       req.Category,
		Notes:          req.Description,
		DiscoveredByAI: true,
		DiscoveredAt:   &now,
	})
	if err != nil {
		// A concurrent batch may have created the brand after our gate check.
		if errors.Is(err, store.ErrDuplicateBrand) {
			result.Status = model.ContactStatusDuplicate
			result.Error = "brand with this email already exists"
			return result
		}
		result.Status = model.ContactStatusFailed
		result.Error = err.Error()
		return result
	}
	result.BrandID = brand.ID

	pitch, err := p.manager.Generate(ctx, brand.ID)
	if err != nil {
		zap.L().Warn("pitch generation failed",
			zap.String("email", email),
			zap.Int64("brand_id", brand.ID),
			zap.Error(err))
		result.Status = model.ContactStatusFailed
		result.Error = err.Error()
		return result
	}
	result.PitchID = pitch.ID

	if _, err := p.manager.Send(ctx, pitch.ID); err != nil {
		zap.L().Warn("pitch delivery failed",
			zap.String("email", email),
			zap.Int64("pitch_id", pitch.ID),
			zap.Error(err))
		result.Status = model.ContactStatusFailed
		result.Error = err.Error()
		return result
	}

	result.Status = model.ContactStatusSent
	return result
}
