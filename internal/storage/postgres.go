package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/adpilot/adpilot/internal/models"
)

// PostgresCampaignRepo implements CampaignRepo using PostgreSQL.
type PostgresCampaignRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresCampaignRepo(pool *pgxpool.Pool) *PostgresCampaignRepo {
	return &PostgresCampaignRepo{pool: pool}
}

const campaignColumns = `id, user_id, name, platform, post_id, campaign_id, adset_id,
	creative_id, ad_id, post_link, status, scheduled_time, created_at, updated_at`

func scanCampaign(row pgx.Row) (*models.Campaign, error) {
	var c models.Campaign
	err := row.Scan(&c.ID, &c.UserID, &c.Name, &c.Platform, &c.PostID, &c.CampaignID,
		&c.AdSetID, &c.CreativeID, &c.AdID, &c.PostLink, &c.Status, &c.ScheduledTime,
		&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *PostgresCampaignRepo) ListAll(ctx context.Context) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

func (r *PostgresCampaignRepo) ListByUser(ctx context.Context, userID string) ([]*models.Campaign, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns for user: %w", err)
	}
	defer rows.Close()

	var campaigns []*models.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, c)
	}

	return campaigns, rows.Err()
}

func (r *PostgresCampaignRepo) GetByID(ctx context.Context, id string) (*models.Campaign, error) {
	c, err := scanCampaign(r.pool.QueryRow(ctx, `
		SELECT `+campaignColumns+`
		FROM campaigns WHERE id = $1
	`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return c, nil
}

func (r *PostgresCampaignRepo) Upsert(ctx context.Context, c *models.Campaign) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO campaigns (id, user_id, name, platform, post_id, campaign_id, adset_id,
			creative_id, ad_id, post_link, status, scheduled_time, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			name = EXCLUDED.name,
			platform = EXCLUDED.platform,
			post_id = EXCLUDED.post_id,
			campaign_id = EXCLUDED.campaign_id,
			adset_id = EXCLUDED.adset_id,
			creative_id = EXCLUDED.creative_id,
			ad_id = EXCLUDED.ad_id,
			post_link = EXCLUDED.post_link,
			status = EXCLUDED.status,
			scheduled_time = EXCLUDED.scheduled_time,
			updated_at = EXCLUDED.updated_at
	`, c.ID, c.UserID, c.Name, c.Platform, c.PostID, c.CampaignID, c.AdSetID,
		c.CreativeID, c.AdID, c.PostLink, c.Status, c.ScheduledTime, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert campaign: %w", err)
	}
	return nil
}

func (r *PostgresCampaignRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete campaign: %w", err)
	}
	return nil
}

// PostgresMetricsRepo implements MetricsRepo using PostgreSQL.
type PostgresMetricsRepo struct {
	pool *pgxpool.Pool
}

func NewPostgresMetricsRepo(pool *pgxpool.Pool) *PostgresMetricsRepo {
	return &PostgresMetricsRepo{pool: pool}
}

const metricsColumns = `id, campaign_id, user_id,
	fb_post_clicks, fb_likes, fb_reactions, fb_shares, fb_comments,
	insta_post_clicks, insta_likes, insta_reactions, insta_shares, insta_comments,
	created_at, updated_at`

func scanMetrics(row pgx.Row) (*models.Metrics, error) {
	var m models.Metrics
	err := row.Scan(&m.ID, &m.CampaignID, &m.UserID,
		&m.FBPostClicks, &m.FBLikes, &m.FBReactions, &m.FBShares, &m.FBComments,
		&m.InstaPostClicks, &m.InstaLikes, &m.InstaReactions, &m.InstaShares, &m.InstaComments,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresMetricsRepo) GetByCampaign(ctx context.Context, campaignID string) (*models.Metrics, error) {
	m, err := scanMetrics(r.pool.QueryRow(ctx, `
		SELECT `+metricsColumns+`
		FROM metrics WHERE campaign_id = $1
	`, campaignID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metrics: %w", err)
	}
	return m, nil
}

func (r *PostgresMetricsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Metrics, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+metricsColumns+`
		FROM metrics WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics for user: %w", err)
	}
	defer rows.Close()

	var result []*models.Metrics
	for rows.Next() {
		m, err := scanMetrics(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	return result, rows.Err()
}

func (r *PostgresMetricsRepo) Upsert(ctx context.Context, m *models.Metrics) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO metrics (id, campaign_id, user_id,
			fb_post_clicks, fb_likes, fb_reactions, fb_shares, fb_comments,
			insta_post_clicks, insta_likes, insta_reactions, insta_shares, insta_comments,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (campaign_id) DO UPDATE SET
			fb_post_clicks = EXCLUDED.fb_post_clicks,
			fb_likes = EXCLUDED.fb_likes,
			fb_reactions = EXCLUDED.fb_reactions,
			fb_shares = EXCLUDED.fb_shares,
			fb_comments = EXCLUDED.fb_comments,
			insta_post_clicks = EXCLUDED.insta_post_clicks,
			insta_likes = EXCLUDED.insta_likes,
			insta_reactions = EXCLUDED.insta_reactions,
			insta_shares = EXCLUDED.insta_shares,
			insta_comments = EXCLUDED.insta_comments,
			updated_at = EXCLUDED.updated_at
	`, m.ID, m.CampaignID, m.UserID,
		m.FBPostClicks, m.FBLikes, m.FBReactions, m.FBShares, m.FBComments,
		m.InstaPostClicks, m.InstaLikes, m.InstaReactions, m.InstaShares, m.InstaComments,
		m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert metrics: %w", err)
	}
	return nil
}
