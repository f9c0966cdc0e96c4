package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// ProfileSingletonID is the fixed row id of the single creator profile.
const ProfileSingletonID int64 = 1

// Profile is the creator's own profile. Exactly one exists; the stores
// enforce a singleton row so the ID is always ProfileSingletonID.
type Profile struct {
	ID                   int64     `json:"id"`
	Name                 string    `json:"name"`
	Age                  *int      `json:"age,omitempty"`
	SenderEmail          string    `json:"sender_email"`
	TikTokURL            string    `json:"tiktok_url"`
	InstagramURL         string    `json:"instagram_url,omitempty"`
	YouTubeURL           string    `json:"youtube_url,omitempty"`
	PortfolioURL         string    `json:"portfolio_url,omitempty"`
	FollowerCount        int64     `json:"follower_count,omitempty"`
	AvgViews             int64     `json:"avg_views,omitempty"`
	EngagementRate       float64   `json:"engagement_rate,omitempty"`
	Niches               []string  `json:"niches,omitempty"`
	Interests            []string  `json:"interests,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	ContentStyle         string    `json:"content_style,omitempty"`
	UniqueAngle          string    `json:"unique_angle,omitempty"`
	TopPerformingContent string    `json:"top_performing_content,omitempty"`
	PitchTemplate        string    `json:"pitch_template,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// ProfileInput carries the fields for creating or replacing the profile.
type ProfileInput struct {
	Name                 string   `json:"name" yaml:"name"`
	Age                  *int     `json:"age,omitempty" yaml:"age,omitempty"`
	SenderEmail          string   `json:"sender_email" yaml:"sender_email"`
	TikTokURL            string   `json:"tiktok_url" yaml:"tiktok_url"`
	InstagramURL         string   `json:"instagram_url,omitempty" yaml:"instagram_url,omitempty"`
	YouTubeURL           string   `json:"youtube_url,omitempty" yaml:"youtube_url,omitempty"`
	PortfolioURL         string   `json:"portfolio_url,omitempty" yaml:"portfolio_url,omitempty"`
	FollowerCount        int64    `json:"follower_count,omitempty" yaml:"follower_count,omitempty"`
	AvgViews             int64    `json:"avg_views,omitempty" yaml:"avg_views,omitempty"`
	EngagementRate       float64  `json:"engagement_rate,omitempty" yaml:"engagement_rate,omitempty"`
	Niches               []string `json:"niches,omitempty" yaml:"niches,omitempty"`
	Interests            []string `json:"interests,omitempty" yaml:"interests,omitempty"`
	Bio                  string   `json:"bio,omitempty" yaml:"bio,omitempty"`
	ContentStyle         string   `json:"content_style,omitempty" yaml:"content_style,omitempty"`
	UniqueAngle          string   `json:"unique_angle,omitempty" yaml:"unique_angle,omitempty"`
	TopPerformingContent string   `json:"top_performing_content,omitempty" yaml:"top_performing_content,omitempty"`
	PitchTemplate        string   `json:"pitch_template,omitempty" yaml:"pitch_template,omitempty"`
}

// Validate checks the fields required for pitch generation and sending.
func (p ProfileInput) Validate() error {
	if p.Name == "" {
		return eris.New("profile: name is required")
	}
	if p.SenderEmail == "" {
		return eris.New("profile: sender_email is required")
	}
	if p.EngagementRate < 0 || p.EngagementRate > 100 {
		return eris.Errorf("profile: engagement_rate %.2f outside 0-100", p.EngagementRate)
	}
	if p.FollowerCount < 0 || p.AvgViews < 0 {
		return eris.New("profile: audience stats must not be negative")
	}
	return nil
}
