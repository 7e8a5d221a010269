package graph

import "fmt"

// Step names one remote call in the publish sequence. The Facebook
// path advances through five steps in a fixed order; the Instagram
// path through its own four. A failed step aborts the sequence, and
// side effects of the steps already completed stay on the remote
// platform.
type Step string

const (
	StepUploadMedia    Step = "upload_media"
	StepCreatePost     Step = "create_post"
	StepCreateCampaign Step = "create_campaign"
	StepCreateAdSet    Step = "create_adset"
	StepCreateCreative Step = "create_creative"
	StepCreateAd       Step = "create_ad"

	StepResolveAccount  Step = "resolve_account"
	StepCreateContainer Step = "create_container"
	StepCreateCarousel  Step = "create_carousel"
	StepSchedulePost    Step = "schedule_post"
	StepPublishPost     Step = "publish_post"
)

// ValidationCode distinguishes the two schedule rejection cases.
type ValidationCode string

const (
	InvalidFormat ValidationCode = "invalid_format"
	TooSoon       ValidationCode = "too_soon"
)

// ValidationError rejects a schedule time before any remote call is made.
type ValidationError struct {
	Code    ValidationCode
	Message string
	// MinTime is the formatted earliest acceptable instant, set for TooSoon.
	MinTime string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// RemoteStepError reports which remote step failed and carries the raw
// remote error payload.
type RemoteStepError struct {
	Platform string
	Step     Step
	Message  string
}

func (e *RemoteStepError) Error() string {
	return fmt.Sprintf("%s %s failed: %s", e.Platform, e.Step, e.Message)
}

// AccountResolutionError indicates the configured Facebook page has no
// linked Instagram business account.
type AccountResolutionError struct {
	PageID string
}

func (e *AccountResolutionError) Error() string {
	return "no Instagram business account found connected to this Facebook page"
}
