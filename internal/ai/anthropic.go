package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/pkg/anthropic"
)

const (
	defaultMaxTokens  = 2048
	discoverMaxTokens = 4096
)

// AnthropicProvider implements Provider on top of the Anthropic API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a provider that uses the given model ID for
// both pitch generation and brand discovery.
func NewAnthropicProvider(client anthropic.Client, modelID string) *AnthropicProvider {
	return &AnthropicProvider{
		client: client,
		model:  modelID,
	}
}

func (p *AnthropicProvider) GeneratePitch(ctx context.Context, brand *model.Brand, profile *model.Profile) (*model.PitchContent, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: pitchPrompt(brand, profile)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "ai: generate pitch for brand %d", brand.ID)
	}
	resp.Usage.LogCost(p.model, "generate_pitch")

	content, err := parsePitch(extractText(resp))
	if err != nil {
		return nil, eris.Wrapf(err, "ai: parse pitch for brand %d", brand.ID)
	}
	return content, nil
}

func (p *AnthropicProvider) DiscoverBrandContacts(ctx context.Context, brandName string) (*model.BrandDiscovery, error) {
	resp, err := p.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     p.model,
		MaxTokens: discoverMaxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: discoveryPrompt(brandName)},
		},
	})
	if err != nil {
		return nil, eris.Wrapf(err, "ai: discover contacts for %q", brandName)
	}
	resp.Usage.LogCost(p.model, "discover_brand_contacts")

	discovery, err := parseDiscovery(extractText(resp))
	if err != nil {
		return nil, eris.Wrapf(err, "ai: parse discovery for %q", brandName)
	}
	if discovery.BrandName == "" {
		discovery.BrandName = brandName
	}

	zap.L().Info("brand discovery complete",
		zap.String("brand", discovery.BrandName),
		zap.Int("contacts", len(discovery.Contacts)),
	)
	return discovery, nil
}

// parsePitch decodes the model's JSON pitch and rejects empty fields.
func parsePitch(text string) (*model.PitchContent, error) {
	var content model.PitchContent
	if err := json.Unmarshal([]byte(cleanJSON(text)), &content); err != nil {
		return nil, eris.Wrap(err, "ai: decode pitch JSON")
	}
	if strings.TrimSpace(content.Subject) == "" {
		return nil, eris.New("ai: pitch subject is empty")
	}
	if strings.TrimSpace(content.Body) == "" {
		return nil, eris.New("ai: pitch body is empty")
	}
	return &content, nil
}

// parseDiscovery decodes the model's JSON discovery result, dropping
// contacts without an email address.
func parseDiscovery(text string) (*model.BrandDiscovery, error) {
	var discovery model.BrandDiscovery
	if err := json.Unmarshal([]byte(cleanJSON(text)), &discovery); err != nil {
		return nil, eris.Wrap(err, "ai: decode discovery JSON")
	}

	kept := discovery.Contacts[:0]
	for _, c := range discovery.Contacts {
		if strings.TrimSpace(c.Email) == "" {
			continue
		}
		c.Email = model.NormalizeEmail(c.Email)
		kept = append(kept, c)
	}
	discovery.Contacts = kept

	return &discovery, nil
}

// extractText concatenates all text content blocks from a message response.
func extractText(resp *anthropic.MessageResponse) string {
	if resp == nil {
		return ""
	}
	var parts []string
	for _, block := range resp.Content {
		if block.Text != "" {
			parts = append(parts, block.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// cleanJSON attempts to extract a JSON object from text that may contain
// markdown code fences or other wrapping.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	// Find first { and last }.
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
