package models

import (
	"errors"
	"time"
)

// Metrics holds per-campaign engagement counters collected from the
// platforms. Facebook and Instagram counters live side by side because
// a single campaign record only ever targets one platform; the other
// side stays zero.
type Metrics struct {
	ID         string `json:"id"`
	CampaignID string `json:"campaign_id"`
	UserID     string `json:"user_id"`

	FBPostClicks int64 `json:"fb_post_clicks"`
	FBLikes      int64 `json:"fb_likes"`
	FBReactions  int64 `json:"fb_reactions"`
	FBShares     int64 `json:"fb_shares"`
	FBComments   int64 `json:"fb_comments"`

	InstaPostClicks int64 `json:"insta_post_clicks"`
	InstaLikes      int64 `json:"insta_likes"`
	InstaReactions  int64 `json:"insta_reactions"`
	InstaShares     int64 `json:"insta_shares"`
	InstaComments   int64 `json:"insta_comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the metrics record for required fields.
func (m *Metrics) Validate() error {
	if m.ID == "" {
		return errors.New("metrics id is required")
	}
	if m.CampaignID == "" {
		return errors.New("metrics campaign_id is required")
	}
	return nil
}

// CampaignMetrics joins a metrics row with its campaign name for
// analytics responses.
type CampaignMetrics struct {
	CampaignName string  `json:"campaign_name"`
	Metrics      Metrics `json:"metrics"`
}
