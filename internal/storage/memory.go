package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/adpilot/adpilot/internal/models"
)

// InMemoryCampaignRepo is a map-backed CampaignRepo used when
// PostgreSQL is unavailable and in tests.
type InMemoryCampaignRepo struct {
	mu        sync.RWMutex
	campaigns map[string]*models.Campaign
}

func NewInMemoryCampaignRepo() *InMemoryCampaignRepo {
	return &InMemoryCampaignRepo{campaigns: make(map[string]*models.Campaign)}
}

func (r *InMemoryCampaignRepo) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*models.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		cp := *c
		result = append(result, &cp)
	}
	sortCampaigns(result)
	return result, nil
}

func (r *InMemoryCampaignRepo) ListByUser(ctx context.Context, userID string) ([]*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Campaign
	for _, c := range r.campaigns {
		if c.UserID == userID {
			cp := *c
			result = append(result, &cp)
		}
	}
	sortCampaigns(result)
	return result, nil
}

func (r *InMemoryCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.campaigns[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	if c == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *c
	r.campaigns[c.ID] = &cp
	return nil
}

func (r *InMemoryCampaignRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.campaigns, id)
	return nil
}

// sortCampaigns orders newest first, matching the Postgres queries.
func sortCampaigns(cs []*models.Campaign) {
	sort.Slice(cs, func(i, j int) bool {
		return cs[i].CreatedAt.After(cs[j].CreatedAt)
	})
}

// InMemoryMetricsRepo is a map-backed MetricsRepo keyed by campaign id.
type InMemoryMetricsRepo struct {
	mu      sync.RWMutex
	metrics map[string]*models.Metrics
}

func NewInMemoryMetricsRepo() *InMemoryMetricsRepo {
	return &InMemoryMetricsRepo{metrics: make(map[string]*models.Metrics)}
}

func (r *InMemoryMetricsRepo) GetByCampaign(ctx context.Context, campaignID string) (*models.Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.metrics[campaignID]; ok {
		cp := *m
		return &cp, nil
	}
	return nil, nil
}

func (r *InMemoryMetricsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Metrics, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*models.Metrics
	for _, m := range r.metrics {
		if m.UserID == userID {
			cp := *m
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryMetricsRepo) Upsert(ctx context.Context, m *models.Metrics) error {
	if m == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *m
	r.metrics[m.CampaignID] = &cp
	return nil
}
