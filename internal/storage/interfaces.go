package storage

import (
	"context"

	"github.com/adpilot/adpilot/internal/models"
)

// CampaignRepo defines operations for persisted campaign records.
type CampaignRepo interface {
	ListAll(ctx context.Context) ([]*models.Campaign, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Campaign, error)
	GetByID(ctx context.Context, id string) (*models.Campaign, error)
	Upsert(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, id string) error
}

// MetricsRepo defines operations for engagement metrics records.
type MetricsRepo interface {
	GetByCampaign(ctx context.Context, campaignID string) (*models.Metrics, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Metrics, error)
	Upsert(ctx context.Context, m *models.Metrics) error
}
