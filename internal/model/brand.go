package model

import (
	"strings"
	"time"
)

// Brand statuses used by the outreach workflow. Status is free text in the
// store; these are the values written by this application.
const (
	BrandStatusNotContacted = "not_contacted"
	BrandStatusPitched      = "pitched"
)

// Brand is a company the creator reaches out to. Email is unique across
// brands and is always stored normalized (see NormalizeEmail).
type Brand struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Website        string     `json:"website,omitempty"`
	Instagram      string     `json:"instagram,omitempty"`
	Category       string     `json:"category,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	Status         string     `json:"status"`
	DiscoveredByAI bool       `json:"discovered_by_ai"`
	DiscoveredAt   *time.Time `json:"discovered_at,omitempty"`
	LastPitchedAt  *time.Time `json:"last_pitched_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// BrandInput carries the fields a caller may set when creating a brand.
type BrandInput struct {
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Website        string     `json:"website,omitempty"`
	Instagram      string     `json:"instagram,omitempty"`
	Category       string     `json:"category,omitempty"`
	Notes          string     `json:"notes,omitempty"`
	DiscoveredByAI bool       `json:"discovered_by_ai,omitempty"`
	DiscoveredAt   *time.Time `json:"discovered_at,omitempty"`
}

// BrandUpdate carries optional fields for a partial brand update. Nil means
// "leave unchanged".
type BrandUpdate struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	Website   *string `json:"website,omitempty"`
	Instagram *string `json:"instagram,omitempty"`
	Category  *string `json:"category,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// NormalizeEmail canonicalizes an email address for storage and duplicate
// comparison: surrounding whitespace is trimmed and the address is
// lower-cased so "PR@Brand.com" and "pr@brand.com" dedupe to one contact.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
