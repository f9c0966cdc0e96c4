package ai

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justjjosh/Hermes-backend/internal/model"
	"github.com/justjjosh/Hermes-backend/pkg/anthropic"
)

// mockClient returns canned message responses.
type mockClient struct {
	response *anthropic.MessageResponse
	err      error
	lastReq  anthropic.MessageRequest
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func testBrand() *model.Brand {
	return &model.Brand{
		ID:       1,
		Name:     "CeraVe (pr)",
		Email:    "pr@cerave.com",
		Website:  "https://cerave.com",
		Category: "skincare",
	}
}

func testProfile() *model.Profile {
	return &model.Profile{
		ID:             1,
		Name:           "Maya",
		SenderEmail:    "maya@creator.com",
		TikTokURL:      "https://tiktok.com/@maya",
		Niches:         []string{"skincare", "wellness"},
		FollowerCount:  52000,
		AvgViews:       18000,
		EngagementRate: 4.2,
	}
}

func TestGeneratePitch(t *testing.T) {
	client := &mockClient{response: textResponse(`{"subject": "Collaboration Inquiry", "body": "<p>Hi</p>"}`)}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	content, err := provider.GeneratePitch(context.Background(), testBrand(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, "Collaboration Inquiry", content.Subject)
	assert.Equal(t, "<p>Hi</p>", content.Body)

	// The prompt is written in the creator's first-person voice with the
	// real sender address.
	require.Len(t, client.lastReq.Messages, 1)
	prompt := client.lastReq.Messages[0].Content
	assert.Contains(t, prompt, "You are Maya writing a pitch email")
	assert.Contains(t, prompt, "FIRST PERSON")
	assert.Contains(t, prompt, "maya@creator.com")
	assert.Contains(t, prompt, "CeraVe (pr)")
	assert.Contains(t, prompt, "skincare, wellness")
}

func TestGeneratePitchFencedJSON(t *testing.T) {
	client := &mockClient{response: textResponse("```json\n{\"subject\": \"Hello\", \"body\": \"<p>Hi</p>\"}\n```")}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	content, err := provider.GeneratePitch(context.Background(), testBrand(), testProfile())
	require.NoError(t, err)
	assert.Equal(t, "Hello", content.Subject)
}

func TestGeneratePitchEmptySubject(t *testing.T) {
	client := &mockClient{response: textResponse(`{"subject": "  ", "body": "<p>Hi</p>"}`)}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	_, err := provider.GeneratePitch(context.Background(), testBrand(), testProfile())
	assert.Error(t, err)
}

func TestGeneratePitchInvalidJSON(t *testing.T) {
	client := &mockClient{response: textResponse("Sorry, I can't help with that.")}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	_, err := provider.GeneratePitch(context.Background(), testBrand(), testProfile())
	assert.Error(t, err)
}

func TestGeneratePitchAPIError(t *testing.T) {
	client := &mockClient{err: eris.New("overloaded")}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	_, err := provider.GeneratePitch(context.Background(), testBrand(), testProfile())
	assert.Error(t, err)
}

func TestDiscoverBrandContacts(t *testing.T) {
	client := &mockClient{response: textResponse(`{
		"brand_name": "CeraVe",
		"parent_company": "L'Oreal",
		"website": "https://cerave.com",
		"instagram": "@cerave",
		"category": "skincare",
		"contacts": [
			{"email": "PR@CeraVe.com", "type": "pr", "confidence": "high", "source": "press page"},
			{"email": "  ", "type": "general", "confidence": "low", "source": "guess"},
			{"email": "partners@cerave.com", "type": "partnerships", "confidence": "medium", "source": "official site"}
		]
	}`)}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	discovery, err := provider.DiscoverBrandContacts(context.Background(), "CeraVe")
	require.NoError(t, err)

	assert.Equal(t, "CeraVe", discovery.BrandName)
	assert.Equal(t, "L'Oreal", discovery.ParentCompany)

	// Blank addresses are dropped and the rest are normalized.
	require.Len(t, discovery.Contacts, 2)
	assert.Equal(t, "pr@cerave.com", discovery.Contacts[0].Email)
	assert.Equal(t, "pr", discovery.Contacts[0].Type)
	assert.Equal(t, "partners@cerave.com", discovery.Contacts[1].Email)
}

func TestDiscoverFillsBrandName(t *testing.T) {
	client := &mockClient{response: textResponse(`{"contacts": []}`)}
	provider := NewAnthropicProvider(client, "claude-haiku-4-5-20251001")

	discovery, err := provider.DiscoverBrandContacts(context.Background(), "CeraVe")
	require.NoError(t, err)
	assert.Equal(t, "CeraVe", discovery.BrandName)
	assert.Empty(t, discovery.Contacts)
}

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		`{"a":1}`:                         `{"a":1}`,
		"```json\n{\"a\":1}\n```":         `{"a":1}`,
		"```\n{\"a\":1}\n```":             `{"a":1}`,
		"Here is the JSON: {\"a\":1} ok":  `{"a":1}`,
		"  \n {\"a\": {\"b\": 2}} \n":     `{"a": {"b": 2}}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, cleanJSON(in), "input %q", in)
	}
}
