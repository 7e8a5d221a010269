package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// Fixed defaults for the advertising objects. Ads are always created
// paused so nothing spends until a human flips the status.
const (
	fbCampaignName = "[TEST] Product Campaign"
	fbAdSetName    = "[TEST] Product Ad Set"
	fbCreativeName = "[TEST] Product Ad Creative"
	fbAdName       = "[TEST] Product Ad"

	campaignObjective = "OUTCOME_AWARENESS"
	billingEvent      = "IMPRESSIONS"
	optimizationGoal  = "REACH"
	statusPaused      = "PAUSED"

	adsetDailyBudget = 30000 // minor currency units
	adsetBidAmount   = 500
)

// adsetTargeting is the fixed targeting blob submitted with every ad set.
type adsetTargeting struct {
	AgeMin       int          `json:"age_min"`
	AgeMax       int          `json:"age_max"`
	GeoLocations geoLocations `json:"geo_locations"`

	InstagramPositions []string `json:"instagram_positions,omitempty"`
}

type geoLocations struct {
	Countries []string `json:"countries"`
}

func defaultTargeting() adsetTargeting {
	return adsetTargeting{
		AgeMin:       18,
		AgeMax:       65,
		GeoLocations: geoLocations{Countries: []string{"US"}},
	}
}

// attachedMedia is one entry of the feed endpoint's attached_media array.
type attachedMedia struct {
	MediaFBID string `json:"media_fbid"`
}

// CreatePostAndAd publishes a Facebook page post and builds the full
// advertising chain on top of it: upload media, create post, create
// campaign, create ad set, create creative, create ad. Each step
// consumes the previous step's handle, and any failure aborts the
// sequence without undoing the remote side effects of the steps that
// already completed.
func (c *Client) CreatePostAndAd(ctx context.Context, req Request) (*PublishResult, error) {
	mediaIDs, err := c.uploadPhotos(ctx, req.Images)
	if err != nil {
		return nil, err
	}

	post, err := c.createPagePost(ctx, mediaIDs, req.Message, req.ScheduledTime)
	if err != nil {
		return nil, err
	}

	campaignID, err := c.createCampaign(ctx)
	if err != nil {
		return nil, err
	}

	adsetID, err := c.createAdSet(ctx, campaignID, req.ScheduledTime)
	if err != nil {
		return nil, err
	}

	creativeID, err := c.createCreative(ctx, post)
	if err != nil {
		return nil, err
	}

	adID, err := c.createAd(ctx, adsetID, creativeID)
	if err != nil {
		return nil, err
	}

	status := "active"
	if req.ScheduledTime != "" {
		status = "scheduled"
	}

	c.logger.Info("facebook ad chain created",
		zap.String("post_id", post.PostID),
		zap.String("campaign_id", campaignID),
		zap.String("adset_id", adsetID),
		zap.String("ad_id", adID),
		zap.String("status", status),
	)

	return &PublishResult{
		Success:       true,
		PostID:        post.PostID,
		CampaignID:    campaignID,
		AdSetID:       adsetID,
		CreativeID:    creativeID,
		AdID:          adID,
		PostLink:      "https://facebook.com/" + post.PostID,
		ScheduledTime: req.ScheduledTime,
		Platform:      "facebook",
		Status:        status,
	}, nil
}

// uploadPhotos uploads every image unpublished and collects the media
// handles. A single failed upload aborts the run; photos already
// uploaded stay orphaned on the page.
func (c *Client) uploadPhotos(ctx context.Context, imageURLs []string) ([]string, error) {
	mediaIDs := make([]string, 0, len(imageURLs))

	for _, imageURL := range imageURLs {
		form := url.Values{}
		form.Set("url", imageURL)
		form.Set("published", "false")

		resp, err := c.postForm(ctx, "/"+c.pageID+"/photos", form)
		if err != nil {
			return nil, &RemoteStepError{Platform: "facebook", Step: StepUploadMedia, Message: err.Error()}
		}
		if resp.ID == "" {
			return nil, &RemoteStepError{
				Platform: "facebook",
				Step:     StepUploadMedia,
				Message:  fmt.Sprintf("failed to upload photo %s: %s", imageURL, resp.errorMessage()),
			}
		}

		mediaIDs = append(mediaIDs, resp.ID)
	}

	return mediaIDs, nil
}

// createPagePost submits the uploaded media handles plus the message
// to the page feed. A schedule instant makes the post unpublished with
// a scheduled publish time.
func (c *Client) createPagePost(ctx context.Context, mediaIDs []string, message, scheduledTime string) (PostReference, error) {
	attached := make([]attachedMedia, 0, len(mediaIDs))
	for _, id := range mediaIDs {
		attached = append(attached, attachedMedia{MediaFBID: id})
	}
	attachedJSON, err := json.Marshal(attached)
	if err != nil {
		return PostReference{}, &RemoteStepError{Platform: "facebook", Step: StepCreatePost, Message: err.Error()}
	}

	form := url.Values{}
	form.Set("message", message)
	form.Set("attached_media", string(attachedJSON))

	if scheduledTime != "" {
		dt, err := ParseScheduleTime(scheduledTime)
		if err != nil {
			return PostReference{}, &RemoteStepError{Platform: "facebook", Step: StepCreatePost, Message: err.Error()}
		}
		form.Set("scheduled_publish_time", strconv.FormatInt(dt.Unix(), 10))
		form.Set("published", "false")
	}

	resp, err := c.postForm(ctx, "/"+c.pageID+"/feed", form)
	if err != nil {
		return PostReference{}, &RemoteStepError{Platform: "facebook", Step: StepCreatePost, Message: err.Error()}
	}
	if resp.ID == "" {
		return PostReference{}, &RemoteStepError{
			Platform: "facebook",
			Step:     StepCreatePost,
			Message:  "failed to create post: " + resp.errorMessage(),
		}
	}

	return PostReference{PageID: c.pageID, PostID: resp.ID}, nil
}

func (c *Client) createCampaign(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("name", fbCampaignName)
	form.Set("objective", campaignObjective)
	form.Set("status", statusPaused)
	form.Set("special_ad_categories", "NONE")

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/campaigns", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "facebook", Step: StepCreateCampaign, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "facebook",
			Step:     StepCreateCampaign,
			Message:  "failed to create campaign: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

func (c *Client) createAdSet(ctx context.Context, campaignID, scheduledTime string) (string, error) {
	targetingJSON, err := json.Marshal(defaultTargeting())
	if err != nil {
		return "", &RemoteStepError{Platform: "facebook", Step: StepCreateAdSet, Message: err.Error()}
	}

	form := url.Values{}
	form.Set("name", fbAdSetName)
	form.Set("campaign_id", campaignID)
	form.Set("daily_budget", strconv.Itoa(adsetDailyBudget))
	form.Set("billing_event", billingEvent)
	form.Set("optimization_goal", optimizationGoal)
	form.Set("bid_amount", strconv.Itoa(adsetBidAmount))
	form.Set("targeting", string(targetingJSON))
	form.Set("status", statusPaused)

	if scheduledTime != "" {
		start, end, err := AdSetWindow(scheduledTime, c.adsetTZ)
		if err != nil {
			return "", &RemoteStepError{Platform: "facebook", Step: StepCreateAdSet, Message: err.Error()}
		}
		form.Set("start_time", start)
		form.Set("end_time", end)
	}

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/adsets", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "facebook", Step: StepCreateAdSet, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "facebook",
			Step:     StepCreateAdSet,
			Message:  "failed to create ad set: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

func (c *Client) createCreative(ctx context.Context, post PostReference) (string, error) {
	form := url.Values{}
	form.Set("name", fbCreativeName)
	form.Set("object_story_id", post.StoryID())

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/adcreatives", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "facebook", Step: StepCreateCreative, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "facebook",
			Step:     StepCreateCreative,
			Message:  "failed to create ad creative: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

func (c *Client) createAd(ctx context.Context, adsetID, creativeID string) (string, error) {
	creativeJSON, err := json.Marshal(map[string]string{"creative_id": creativeID})
	if err != nil {
		return "", &RemoteStepError{Platform: "facebook", Step: StepCreateAd, Message: err.Error()}
	}

	form := url.Values{}
	form.Set("name", fbAdName)
	form.Set("adset_id", adsetID)
	form.Set("creative", string(creativeJSON))
	form.Set("status", statusPaused)

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/ads", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "facebook", Step: StepCreateAd, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "facebook",
			Step:     StepCreateAd,
			Message:  "failed to create ad: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}
