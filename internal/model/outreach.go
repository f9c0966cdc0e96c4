package model

// DiscoveredContact is one contact email surfaced by AI brand discovery.
type DiscoveredContact struct {
	Email      string `json:"email"`
	Type       string `json:"type"`
	Confidence string `json:"confidence,omitempty"`
	Source     string `json:"source,omitempty"`
}

// BrandDiscovery is the result of AI contact discovery for a brand name.
// Nothing is persisted at discovery time; the operator reviews contacts
// before the pitch batch runs.
type BrandDiscovery struct {
	BrandName     string              `json:"brand_name"`
	ParentCompany string              `json:"parent_company,omitempty"`
	Website       string              `json:"website,omitempty"`
	Instagram     string              `json:"instagram,omitempty"`
	Category      string              `json:"category,omitempty"`
	Description   string              `json:"description,omitempty"`
	Contacts      []DiscoveredContact `json:"contacts"`
}

// SelectedContact is a contact the operator approved for pitching.
type SelectedContact struct {
	Email string `json:"email" yaml:"email"`
	Type  string `json:"type" yaml:"type"`
}

// OutreachRequest is the input to the discovery-to-send batch: one brand
// descriptor shared by all contacts plus the ordered contact selection.
type OutreachRequest struct {
	BrandName   string            `json:"brand_name" yaml:"brand_name"`
	Website     string            `json:"website,omitempty" yaml:"website,omitempty"`
	Instagram   string            `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	Category    string            `json:"category,omitempty" yaml:"category,omitempty"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Contacts    []SelectedContact `json:"selected_contacts" yaml:"selected_contacts"`
}

// ContactStatus is the per-contact outcome of an outreach batch.
type ContactStatus string

const (
	ContactStatusSent      ContactStatus = "sent"
	ContactStatusDuplicate ContactStatus = "duplicate"
	ContactStatusFailed    ContactStatus = "failed"
)

// ContactResult is the outcome for a single contact. Failures are captured
// here instead of propagating; one contact can never abort its siblings.
type ContactResult struct {
	Email   string        `json:"email"`
	BrandID int64         `json:"brand_id,omitempty"`
	PitchID int64         `json:"pitch_id,omitempty"`
	Status  ContactStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// OutreachReport aggregates the ordered per-contact results of a batch.
type OutreachReport struct {
	BrandName string          `json:"brand_name"`
	Results   []ContactResult `json:"results"`
}

// Sent returns how many contacts in the report reached "sent".
func (r *OutreachReport) Sent() int {
	n := 0
	for _, res := range r.Results {
		if res.Status == ContactStatusSent {
			n++
		}
	}
	return n
}
