package graph

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	igCampaignName = "[TEST] Instagram Product Campaign"
	igAdSetName    = "[TEST] Instagram Product Ad Set"
	igAdName       = "[TEST] Instagram Product Ad"
)

// CreatePost publishes an organic Instagram post through the business
// account linked to the configured Facebook page. More than one image
// becomes a carousel: one child container per image plus a parent
// container referencing all children. A schedule instant leaves the
// container unpublished and sets its publish time in a separate call;
// otherwise a publish call converts the container into a live post.
// This path creates no advertising objects, so the campaign, ad set,
// creative and ad handles come back empty.
func (c *Client) CreatePost(ctx context.Context, req Request) (*PublishResult, error) {
	igAccountID, err := c.resolveBusinessAccount(ctx)
	if err != nil {
		return nil, err
	}

	var timestamp int64
	if req.ScheduledTime != "" {
		dt, err := ParseScheduleTime(req.ScheduledTime)
		if err != nil {
			return nil, &RemoteStepError{Platform: "instagram", Step: StepCreateContainer, Message: err.Error()}
		}
		timestamp = dt.Unix()
	}

	var containerID string
	if len(req.Images) > 1 {
		containerID, err = c.createCarousel(ctx, igAccountID, req.Images, req.Message, timestamp)
	} else {
		containerID, err = c.createSingleContainer(ctx, igAccountID, req.Images[0], req.Message, timestamp)
	}
	if err != nil {
		return nil, err
	}

	var postID string
	if timestamp != 0 {
		if err := c.schedContainer(ctx, containerID, timestamp); err != nil {
			return nil, err
		}
		postID = containerID
	} else {
		postID, err = c.publishContainer(ctx, igAccountID, containerID)
		if err != nil {
			return nil, err
		}
	}

	status := "active"
	if timestamp != 0 {
		status = "scheduled"
	}

	c.logger.Info("instagram post created",
		zap.String("post_id", postID),
		zap.String("ig_account_id", igAccountID),
		zap.Int("images", len(req.Images)),
		zap.String("status", status),
	)

	return &PublishResult{
		Success:       true,
		PostID:        postID,
		CampaignID:    "",
		AdSetID:       "",
		CreativeID:    "",
		AdID:          "",
		PostLink:      "https://instagram.com/p/" + postID,
		ScheduledTime: req.ScheduledTime,
		Platform:      "instagram",
		Status:        status,
	}, nil
}

// resolveBusinessAccount looks up the Instagram business account
// linked to the configured Facebook page.
func (c *Client) resolveBusinessAccount(ctx context.Context) (string, error) {
	query := url.Values{}
	query.Set("fields", "instagram_business_account")

	resp, err := c.get(ctx, "/"+c.pageID, query)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepResolveAccount, Message: err.Error()}
	}
	if resp.Error != nil {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepResolveAccount,
			Message:  resp.errorMessage(),
		}
	}
	if resp.InstagramBusinessAccount == nil || resp.InstagramBusinessAccount.ID == "" {
		return "", &AccountResolutionError{PageID: c.pageID}
	}

	return resp.InstagramBusinessAccount.ID, nil
}

func (c *Client) createSingleContainer(ctx context.Context, igAccountID, imageURL, caption string, timestamp int64) (string, error) {
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", caption)
	if timestamp != 0 {
		form.Set("published", "false")
	}

	resp, err := c.postForm(ctx, "/"+igAccountID+"/media", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateContainer, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepCreateContainer,
			Message:  "failed to create media container: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

func (c *Client) createCarousel(ctx context.Context, igAccountID string, imageURLs []string, caption string, timestamp int64) (string, error) {
	children := make([]string, 0, len(imageURLs))

	for _, imageURL := range imageURLs {
		form := url.Values{}
		form.Set("image_url", imageURL)
		form.Set("is_carousel_item", "true")

		resp, err := c.postForm(ctx, "/"+igAccountID+"/media", form)
		if err != nil {
			return "", &RemoteStepError{Platform: "instagram", Step: StepCreateContainer, Message: err.Error()}
		}
		if resp.ID == "" {
			return "", &RemoteStepError{
				Platform: "instagram",
				Step:     StepCreateContainer,
				Message:  "failed to create carousel item: " + resp.errorMessage(),
			}
		}

		children = append(children, resp.ID)
	}

	form := url.Values{}
	form.Set("media_type", "CAROUSEL")
	form.Set("children", strings.Join(children, ","))
	form.Set("caption", caption)
	if timestamp != 0 {
		form.Set("published", "false")
	}

	resp, err := c.postForm(ctx, "/"+igAccountID+"/media", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateCarousel, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepCreateCarousel,
			Message:  "failed to create carousel container: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

// schedContainer sets the publish time on an unpublished container.
// The container id doubles as the post id for scheduled posts.
func (c *Client) schedContainer(ctx context.Context, containerID string, timestamp int64) error {
	form := url.Values{}
	form.Set("scheduled_publish_time", strconv.FormatInt(timestamp, 10))

	resp, err := c.postForm(ctx, "/"+containerID, form)
	if err != nil {
		return &RemoteStepError{Platform: "instagram", Step: StepSchedulePost, Message: err.Error()}
	}
	if resp.Success == nil || !*resp.Success {
		return &RemoteStepError{
			Platform: "instagram",
			Step:     StepSchedulePost,
			Message:  "failed to schedule post: " + resp.errorMessage(),
		}
	}

	return nil
}

func (c *Client) publishContainer(ctx context.Context, igAccountID, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)

	resp, err := c.postForm(ctx, "/"+igAccountID+"/media_publish", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepPublishPost, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepPublishPost,
			Message:  "failed to publish media: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

// CreateInstagramCampaign creates a paused Instagram awareness
// campaign. It is not part of the default publish path; callers opt
// into the advertising chain explicitly.
func (c *Client) CreateInstagramCampaign(ctx context.Context) (string, error) {
	form := url.Values{}
	form.Set("name", igCampaignName)
	form.Set("objective", campaignObjective)
	form.Set("status", statusPaused)
	form.Set("special_ad_categories", "NONE")

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/campaigns", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateCampaign, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepCreateCampaign,
			Message:  "failed to create campaign: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

// CreateInstagramAdSet creates a paused ad set in the given campaign
// with the fixed targeting defaults plus Instagram placements. Like
// CreateInstagramCampaign it is an optional secondary operation.
func (c *Client) CreateInstagramAdSet(ctx context.Context, campaignID, scheduledTime string) (string, error) {
	targeting := defaultTargeting()
	targeting.InstagramPositions = []string{"stream", "story", "explore"}
	targetingJSON, err := json.Marshal(targeting)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateAdSet, Message: err.Error()}
	}

	form := url.Values{}
	form.Set("name", igAdSetName)
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
			return "", &RemoteStepError{Platform: "instagram", Step: StepCreateAdSet, Message: err.Error()}
		}
		form.Set("start_time", start)
		form.Set("end_time", end)
	}

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/adsets", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateAdSet, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepCreateAdSet,
			Message:  "failed to create ad set: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}

// CreateInstagramAd creates a paused ad in the given ad set that
// promotes an existing post directly by story id. Optional secondary
// operation.
func (c *Client) CreateInstagramAd(ctx context.Context, adsetID, postID string) (string, error) {
	creativeJSON, err := json.Marshal(map[string]string{"object_story_id": postID})
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateAd, Message: err.Error()}
	}

	form := url.Values{}
	form.Set("name", igAdName)
	form.Set("adset_id", adsetID)
	form.Set("creative", string(creativeJSON))
	form.Set("status", statusPaused)

	resp, err := c.postForm(ctx, "/act_"+c.accountID+"/ads", form)
	if err != nil {
		return "", &RemoteStepError{Platform: "instagram", Step: StepCreateAd, Message: err.Error()}
	}
	if resp.ID == "" {
		return "", &RemoteStepError{
			Platform: "instagram",
			Step:     StepCreateAd,
			Message:  "failed to create ad: " + resp.errorMessage(),
		}
	}

	return resp.ID, nil
}
