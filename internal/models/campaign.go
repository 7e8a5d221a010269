package models

import (
	"errors"
	"time"
)

// Platform identifies the social network an ad campaign was published to.
type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether p is a known platform.
func (p Platform) Valid() bool {
	return p == PlatformFacebook || p == PlatformInstagram
}

// Campaign is the persisted record of one publish run. The handle
// fields are copied verbatim from the publish result; an empty string
// means the handle was not created on that run (for example the
// Instagram organic-only path never creates campaign/adset/creative/ad
// objects).
type Campaign struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name"`
	Platform      Platform  `json:"platform"`
	PostID        string    `json:"post_id"`
	CampaignID    string    `json:"campaign_id"`
	AdSetID       string    `json:"adset_id"`
	CreativeID    string    `json:"creative_id"`
	AdID          string    `json:"ad_id"`
	PostLink      string    `json:"post_link"`
	Status        string    `json:"status"`
	ScheduledTime string    `json:"scheduled_time,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the campaign record for required fields.
func (c *Campaign) Validate() error {
	if c.ID == "" {
		return errors.New("campaign id is required")
	}
	if c.Name == "" {
		return errors.New("campaign name is required")
	}
	if !c.Platform.Valid() {
		return errors.New("campaign platform must be facebook or instagram")
	}
	return nil
}
