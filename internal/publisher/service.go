package publisher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adpilot/adpilot/internal/graph"
	"github.com/adpilot/adpilot/internal/metrics"
	"github.com/adpilot/adpilot/internal/models"
	"github.com/adpilot/adpilot/internal/storage"
)

// FacebookClient publishes a page post plus the full advertising chain.
type FacebookClient interface {
	CreatePostAndAd(ctx context.Context, req graph.Request) (*graph.PublishResult, error)
}

// InstagramClient publishes an organic post through the linked
// business account.
type InstagramClient interface {
	CreatePost(ctx context.Context, req graph.Request) (*graph.PublishResult, error)
}

// Request is one publish order from the web layer.
type Request struct {
	UserID        string          `json:"user_id"`
	Name          string          `json:"name"`
	Platform      models.Platform `json:"platform"`
	Images        []string        `json:"images"`
	Message       string          `json:"message"`
	ScheduledTime string          `json:"scheduled_time,omitempty"`
}

// Service orchestrates one publish run: validate the schedule, hand
// off to the matching platform client, persist the resulting campaign
// record and refresh the latest-result cache. There are no retries and
// no compensation; a failed run may have left side effects on the
// remote platform.
type Service struct {
	facebook  FacebookClient
	instagram InstagramClient
	repo      storage.CampaignRepo
	cache     ResultCache
	minLead   time.Duration
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewService constructs a publish orchestrator.
func NewService(fb FacebookClient, ig InstagramClient, repo storage.CampaignRepo,
	cache ResultCache, minLead time.Duration, m *metrics.Metrics, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NopResultCache{}
	}
	return &Service{
		facebook:  fb,
		instagram: ig,
		repo:      repo,
		cache:     cache,
		minLead:   minLead,
		metrics:   m,
		logger:    logger,
	}
}

// Publish runs the end-to-end publish flow and returns the composite
// result. Validation failures never touch the network; remote failures
// propagate wrapped with the platform context.
func (s *Service) Publish(ctx context.Context, req Request) (*graph.PublishResult, error) {
	if !req.Platform.Valid() {
		return nil, fmt.Errorf("unsupported platform %q", req.Platform)
	}
	if len(req.Images) == 0 {
		return nil, errors.New("at least one image is required")
	}
	if len(req.Images) > 2 {
		return nil, errors.New("at most two images are supported")
	}

	if err := graph.ValidateScheduleTime(req.ScheduledTime, s.minLead); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PublishRequests.WithLabelValues(string(req.Platform)).Inc()
	}
	start := time.Now()

	greq := graph.Request{
		Images:        req.Images,
		Message:       req.Message,
		ScheduledTime: req.ScheduledTime,
	}

	var result *graph.PublishResult
	var err error
	switch req.Platform {
	case models.PlatformFacebook:
		result, err = s.facebook.CreatePostAndAd(ctx, greq)
		if err != nil {
			err = fmt.Errorf("failed to create Facebook ad: %w", err)
		}
	case models.PlatformInstagram:
		result, err = s.instagram.CreatePost(ctx, greq)
		if err != nil {
			err = fmt.Errorf("failed to create Instagram post: %w", err)
		}
	}
	s.metrics.ObservePublish(string(req.Platform), start, err)

	if err != nil {
		s.recordStepFailure(req.Platform, err)
		s.logger.Error("publish failed",
			zap.String("platform", string(req.Platform)),
			zap.Error(err),
		)
		return nil, err
	}

	record := s.buildRecord(req, result)
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to persist campaign record: %w", err)
	}

	if err := s.cache.StoreLatest(ctx, result); err != nil {
		s.logger.Warn("failed to cache publish result", zap.Error(err))
	}

	s.logger.Info("publish completed",
		zap.String("platform", string(req.Platform)),
		zap.String("record_id", record.ID),
		zap.String("post_id", result.PostID),
		zap.String("status", result.Status),
	)

	return result, nil
}

// buildRecord copies the publish result verbatim into a persisted
// campaign row.
func (s *Service) buildRecord(req Request, result *graph.PublishResult) *models.Campaign {
	now := time.Now().UTC()
	name := req.Name
	if name == "" {
		name = req.Message
	}
	return &models.Campaign{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Name:          name,
		Platform:      req.Platform,
		PostID:        result.PostID,
		CampaignID:    result.CampaignID,
		AdSetID:       result.AdSetID,
		CreativeID:    result.CreativeID,
		AdID:          result.AdID,
		PostLink:      result.PostLink,
		Status:        result.Status,
		ScheduledTime: result.ScheduledTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func (s *Service) recordStepFailure(platform models.Platform, err error) {
	if s.metrics == nil {
		return
	}
	var stepErr *graph.RemoteStepError
	if errors.As(err, &stepErr) {
		s.metrics.StepFailures.WithLabelValues(string(platform), string(stepErr.Step)).Inc()
	}
}
