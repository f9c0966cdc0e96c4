package model

import "time"

// PitchStatus is the contractual workflow stage of a pitch. Engagement
// events (opened, clicked, replied) are independent timestamps layered on
// top of "sent", not separate statuses.
type PitchStatus string

const (
	PitchStatusDraft PitchStatus = "draft"
	PitchStatusSent  PitchStatus = "sent"
)

// PitchMode records how a pitch came to exist.
type PitchMode string

const (
	PitchModeManual PitchMode = "manual"
)

// Pitch is one outreach email targeting one brand from the creator profile.
// Once sent it is immutable history apart from the first-write-wins
// engagement timestamps.
type Pitch struct {
	ID            int64       `json:"id"`
	BrandID       int64       `json:"brand_id"`
	ProfileID     int64       `json:"profile_id"`
	Subject       string      `json:"subject"`
	Body          string      `json:"body"`
	Status        PitchStatus `json:"status"`
	Mode          PitchMode   `json:"mode"`
	AutoApproved  bool        `json:"auto_approved"`
	TrackingToken *string     `json:"tracking_token,omitempty"`
	SentAt        *time.Time  `json:"sent_at,omitempty"`
	OpenedAt      *time.Time  `json:"opened_at,omitempty"`
	ClickedAt     *time.Time  `json:"clicked_at,omitempty"`
	RepliedAt     *time.Time  `json:"replied_at,omitempty"`
	ReplyNotes    string      `json:"reply_notes,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// Sendable reports whether the send transition is legal from the pitch's
// current status.
func (p *Pitch) Sendable() bool {
	return p.Status == PitchStatusDraft
}

// PitchInput carries the fields for persisting a freshly generated draft.
type PitchInput struct {
	BrandID      int64     `json:"brand_id"`
	ProfileID    int64     `json:"profile_id"`
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Mode         PitchMode `json:"mode,omitempty"`
	AutoApproved bool      `json:"auto_approved,omitempty"`
}

// PitchContent is what the AI provider returns for a generated pitch.
type PitchContent struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
