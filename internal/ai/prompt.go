package ai

import (
	"fmt"
	"strings"

	"github.com/justjjosh/Hermes-backend/internal/model"
)

// orNotProvided substitutes a placeholder for empty optional fields so the
// model never sees bare blanks.
func orNotProvided(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Not provided"
	}
	return s
}

// pitchPrompt builds the pitch generation prompt. The email is written in
// first person from the creator's perspective, never as an agent or manager.
func pitchPrompt(brand *model.Brand, profile *model.Profile) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are %s writing a pitch email directly to a brand. Write in FIRST PERSON - you are the creator, not a manager or agent.\n\n", orNotProvided(profile.Name))

	b.WriteString("BRAND INFORMATION:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNotProvided(brand.Name))
	fmt.Fprintf(&b, "- Website: %s\n", orNotProvided(brand.Website))
	fmt.Fprintf(&b, "- Category: %s\n", orNotProvided(brand.Category))
	fmt.Fprintf(&b, "- Instagram: %s\n", orNotProvided(brand.Instagram))
	fmt.Fprintf(&b, "- Notes: %s\n\n", orNotProvided(brand.Notes))

	b.WriteString("YOUR CREATOR PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNotProvided(profile.Name))
	fmt.Fprintf(&b, "- Email: %s\n", orNotProvided(profile.SenderEmail))
	fmt.Fprintf(&b, "- Niches: %s\n", strings.Join(profile.Niches, ", "))
	fmt.Fprintf(&b, "- Interests: %s\n", strings.Join(profile.Interests, ", "))
	fmt.Fprintf(&b, "- Bio: %s\n", orNotProvided(profile.Bio))
	fmt.Fprintf(&b, "- Content Style: %s\n", orNotProvided(profile.ContentStyle))
	fmt.Fprintf(&b, "- Unique Angle: %s\n", orNotProvided(profile.UniqueAngle))
	fmt.Fprintf(&b, "- Top Performing Content: %s\n", orNotProvided(profile.TopPerformingContent))
	fmt.Fprintf(&b, "- TikTok: %s\n", orNotProvided(profile.TikTokURL))
	fmt.Fprintf(&b, "- Portfolio: %s\n", orNotProvided(profile.PortfolioURL))
	fmt.Fprintf(&b, "- Follower Count: %d\n", profile.FollowerCount)
	fmt.Fprintf(&b, "- Average Views: %d\n", profile.AvgViews)
	fmt.Fprintf(&b, "- Engagement Rate: %.1f%%\n\n", profile.EngagementRate)

	b.WriteString(`INSTRUCTIONS:
Write a concise, professional pitch email FROM the creator's perspective (first person - "I'm...", "My content...", "I'd love...").

SUBJECT LINE:
- Professional and direct (e.g., "Collaboration Inquiry - [Content Type] Content")
- Under 60 characters
- No emojis or overly casual language

EMAIL BODY (KEEP IT CONCISE - max 4-5 short paragraphs):
1. Brief greeting and one-sentence introduction (name, location, content focus)
2. One paragraph explaining why the brand aligns with your audience (mention specific brand values/products)
3. Mention ONE key performance metric to show credibility
4. List 3-4 collaboration ideas as bullet points (short, specific)
5. Simple call-to-action offering to share analytics/discuss deliverables
6. Professional sign-off with name, TikTok handle, email, and portfolio URL (if available)

TONE: Professional, direct, confident but not salesy. Business inquiry, not fan mail.
FORMAT: HTML with <p> tags. Use bullet points (<ul><li>) for ideas only.

FOOTER/SIGNATURE:
`)
	fmt.Fprintf(&b, "- Always include: Name, TikTok handle (%s), Email (%s)\n", profile.TikTokURL, profile.SenderEmail)
	fmt.Fprintf(&b, "- If portfolio URL exists (%s), include it too\n", profile.PortfolioURL)
	b.WriteString("- Format: \"Best regards,\\nName\\nTikTok: @handle\\nEmail: actual@email.com\\nPortfolio: url\" (only if portfolio exists)\n\n")

	fmt.Fprintf(&b, "CRITICAL: Use the ACTUAL email address provided: %s\n", profile.SenderEmail)
	b.WriteString("Do NOT make up a fake email address.\n\n")

	b.WriteString(`Return ONLY valid JSON in this exact format:
{
  "subject": "Your subject line here",
  "body": "<p>Your HTML email body here</p>"
}
`)

	return b.String()
}

// discoveryPrompt builds the brand research prompt. The model returns brand
// metadata plus candidate outreach contacts as JSON.
func discoveryPrompt(brandName string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Research the brand %q and find email addresses a content creator could use to pitch a collaboration.\n\n", brandName)

	b.WriteString(`Look for:
- PR / press contacts
- Partnership / collaboration contacts
- Influencer marketing contacts
- General marketing contacts as a fallback

For each contact report the email address, the contact type (one of "pr", "partnerships", "influencer", "marketing", "general"), your confidence ("high", "medium", "low"), and the source ("official site", "press page", "inferred pattern", etc.).

Also report brand metadata: parent company (if any), website, Instagram handle, and product category.

Only include email addresses you are reasonably confident exist. Prefer addresses published on official channels over guessed patterns.

Return ONLY valid JSON in this exact format:
{
  "brand_name": "...",
  "parent_company": null,
  "website": "https://...",
  "instagram": "@handle",
  "category": "...",
  "contacts": [
    {"email": "press@brand.com", "type": "pr", "confidence": "high", "source": "press page"}
  ]
}
`)

	return b.String()
}
