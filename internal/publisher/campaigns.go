package publisher

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adpilot/adpilot/internal/models"
	"github.com/adpilot/adpilot/internal/storage"
)

// CampaignService provides CRUD operations over persisted campaign
// records. It encapsulates validation and timestamp management,
// delegating persistence to the underlying repository.
type CampaignService struct {
	repo storage.CampaignRepo
}

// NewCampaignService constructs a CampaignService backed by the given repo.
func NewCampaignService(repo storage.CampaignRepo) *CampaignService {
	return &CampaignService{repo: repo}
}

// ListCampaigns returns all campaigns, or only one user's when userID
// is non-empty.
func (s *CampaignService) ListCampaigns(ctx context.Context, userID string) ([]*models.Campaign, error) {
	if userID != "" {
		return s.repo.ListByUser(ctx, userID)
	}
	return s.repo.ListAll(ctx)
}

// GetCampaign returns a campaign by ID, or nil when not found.
func (s *CampaignService) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	return s.repo.GetByID(ctx, id)
}

// UpsertCampaign validates the campaign, populates timestamps and saves it.
func (s *CampaignService) UpsertCampaign(ctx context.Context, c *models.Campaign) error {
	now := time.Now().UTC()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	if err := c.Validate(); err != nil {
		return err
	}
	return s.repo.Upsert(ctx, c)
}

// DeleteCampaign removes a campaign record.
func (s *CampaignService) DeleteCampaign(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// MetricsService provides operations over engagement metrics.
type MetricsService struct {
	metricsRepo  storage.MetricsRepo
	campaignRepo storage.CampaignRepo
}

// NewMetricsService constructs a MetricsService.
func NewMetricsService(metricsRepo storage.MetricsRepo, campaignRepo storage.CampaignRepo) *MetricsService {
	return &MetricsService{metricsRepo: metricsRepo, campaignRepo: campaignRepo}
}

// UpsertMetrics validates and stores an engagement metrics row.
func (s *MetricsService) UpsertMetrics(ctx context.Context, m *models.Metrics) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
	if err := m.Validate(); err != nil {
		return err
	}
	return s.metricsRepo.Upsert(ctx, m)
}

// UserEngagement returns each of the user's metrics rows joined with
// its campaign name.
func (s *MetricsService) UserEngagement(ctx context.Context, userID string) ([]*models.CampaignMetrics, error) {
	rows, err := s.metricsRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]*models.CampaignMetrics, 0, len(rows))
	for _, m := range rows {
		name := ""
		if c, err := s.campaignRepo.GetByID(ctx, m.CampaignID); err == nil && c != nil {
			name = c.Name
		}
		result = append(result, &models.CampaignMetrics{
			CampaignName: name,
			Metrics:      *m,
		})
	}

	return result, nil
}
