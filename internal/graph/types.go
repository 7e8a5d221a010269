package graph

import "strings"

// Request carries the caller-supplied content for one publish run.
type Request struct {
	Images        []string `json:"images"`
	Message       string   `json:"message"`
	ScheduledTime string   `json:"scheduled_time,omitempty"`
}

// PublishResult is the composite outcome of a publish run. Handle
// fields left empty were not created on that run; the Instagram
// organic path returns empty campaign/adset/creative/ad handles.
type PublishResult struct {
	Success       bool   `json:"success"`
	PostID        string `json:"post_id"`
	CampaignID    string `json:"campaign_id"`
	AdSetID       string `json:"adset_id"`
	CreativeID    string `json:"creative_id"`
	AdID          string `json:"ad_id"`
	PostLink      string `json:"post_link"`
	ScheduledTime string `json:"scheduled_time,omitempty"`
	Platform      string `json:"platform"`
	Status        string `json:"status"`
}

// PostReference identifies a page post unambiguously. The Graph API
// returns feed post ids sometimes already namespaced as
// "<page>_<post>" and sometimes bare; downstream calls require the
// namespaced form.
type PostReference struct {
	PageID string
	PostID string
}

// StoryID returns the page-namespaced post identifier expected by the
// ad creative endpoint.
func (r PostReference) StoryID() string {
	if strings.Contains(r.PostID, "_") {
		return r.PostID
	}
	return r.PageID + "_" + r.PostID
}
