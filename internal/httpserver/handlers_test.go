package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/adpilot/adpilot/internal/graph"
	"github.com/adpilot/adpilot/internal/models"
	"github.com/adpilot/adpilot/internal/publisher"
	"github.com/adpilot/adpilot/internal/storage"
)

type stubPublish struct {
	result *graph.PublishResult
	err    error
}

func (s *stubPublish) Publish(ctx context.Context, req publisher.Request) (*graph.PublishResult, error) {
	return s.result, s.err
}

type stubCache struct {
	result *graph.PublishResult
}

func (c *stubCache) StoreLatest(ctx context.Context, result *graph.PublishResult) error {
	c.result = result
	return nil
}

func (c *stubCache) Latest(ctx context.Context) (*graph.PublishResult, error) {
	return c.result, nil
}

func newTestServer(publish publishService, cache publisher.ResultCache) *Server {
	campaignRepo := storage.NewInMemoryCampaignRepo()
	metricsRepo := storage.NewInMemoryMetricsRepo()
	if cache == nil {
		cache = publisher.NopResultCache{}
	}
	return &Server{
		publish:         publish,
		campaignService: publisher.NewCampaignService(campaignRepo),
		metricsService:  publisher.NewMetricsService(metricsRepo, campaignRepo),
		cache:           cache,
		logger:          zap.NewNop(),
	}
}

func TestHandlePublishSuccess(t *testing.T) {
	result := &graph.PublishResult{
		Success:  true,
		PostID:   "page1_post1",
		Platform: "facebook",
		Status:   "active",
	}
	srv := newTestServer(&stubPublish{result: result}, nil)

	body := `{"user_id":"u1","platform":"facebook","images":["https://x/1.jpg"],"message":"Buy now"}`
	req := httptest.NewRequest(http.MethodPost, "/api/ads/publish", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handlePublish(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got graph.PublishResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PostID != "page1_post1" || !got.Success {
		t.Errorf("body = %+v", got)
	}
}

func TestHandlePublishErrorsAreInternal(t *testing.T) {
	valErr := &graph.ValidationError{
		Code:    graph.TooSoon,
		Message: "scheduled time must be at least 20 minutes in the future",
	}
	srv := newTestServer(&stubPublish{err: valErr}, nil)

	body := `{"platform":"facebook","images":["https://x/1.jpg"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/ads/publish", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handlePublish(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500 for publish errors", rec.Code)
	}
	var payload map[string]string
	json.NewDecoder(rec.Body).Decode(&payload)
	if !strings.Contains(payload["error"], "scheduled time") {
		t.Errorf("error = %q", payload["error"])
	}
}

func TestHandlePublishBadRequest(t *testing.T) {
	srv := newTestServer(&stubPublish{err: errors.New("should not run")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/ads/publish", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	srv.handlePublish(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/ads/publish", nil)
	rec = httptest.NewRecorder()
	srv.handlePublish(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHandleLatest(t *testing.T) {
	srv := newTestServer(&stubPublish{}, &stubCache{})

	req := httptest.NewRequest(http.MethodGet, "/api/ads/latest", nil)
	rec := httptest.NewRecorder()
	srv.handleLatest(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 on empty cache", rec.Code)
	}

	cache := &stubCache{result: &graph.PublishResult{PostID: "page1_post1"}}
	srv = newTestServer(&stubPublish{}, cache)
	rec = httptest.NewRecorder()
	srv.handleLatest(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got graph.PublishResult
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.PostID != "page1_post1" {
		t.Errorf("post_id = %q", got.PostID)
	}
}

func TestHandleCampaignsLifecycle(t *testing.T) {
	srv := newTestServer(&stubPublish{}, nil)

	campaign := models.Campaign{
		UserID:   "u1",
		Name:     "Summer launch",
		Platform: models.PlatformFacebook,
		PostID:   "page1_post1",
		Status:   "active",
	}
	body, _ := json.Marshal(campaign)
	req := httptest.NewRequest(http.MethodPost, "/campaigns", strings.NewReader(string(body)))
	rec := httptest.NewRecorder()
	srv.handleCampaigns(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	var created models.Campaign
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created campaign has no id")
	}

	req = httptest.NewRequest(http.MethodGet, "/campaigns?user_id=u1", nil)
	rec = httptest.NewRecorder()
	srv.handleCampaigns(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listed []*models.Campaign
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed) != 1 || listed[0].Name != "Summer launch" {
		t.Errorf("listed = %+v", listed)
	}

	req = httptest.NewRequest(http.MethodGet, "/campaigns/"+created.ID, nil)
	rec = httptest.NewRecorder()
	srv.handleCampaignByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/campaigns/"+created.ID, nil)
	rec = httptest.NewRecorder()
	srv.handleCampaignByID(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/campaigns/"+created.ID, nil)
	rec = httptest.NewRecorder()
	srv.handleCampaignByID(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", rec.Code)
	}
}

func TestHandleEngagementAndAnalytics(t *testing.T) {
	srv := newTestServer(&stubPublish{}, nil)

	// Seed a campaign so the analytics join has a name to attach.
	campaign := &models.Campaign{
		ID:        "c1",
		UserID:    "u1",
		Name:      "Summer launch",
		Platform:  models.PlatformFacebook,
		PostID:    "page1_post1",
		Status:    "active",
		CreatedAt: time.Now().UTC(),
	}
	if err := srv.campaignService.UpsertCampaign(context.Background(), campaign); err != nil {
		t.Fatalf("seed campaign: %v", err)
	}

	body := `{"campaign_id":"c1","user_id":"u1","fb_likes":7,"fb_post_clicks":3}`
	req := httptest.NewRequest(http.MethodPost, "/metrics/engagement", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.handleEngagement(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("engagement status = %d: %s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/analytics/u1", nil)
	rec = httptest.NewRecorder()
	srv.handleAnalytics(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("analytics status = %d", rec.Code)
	}
	var engagement []models.CampaignMetrics
	if err := json.NewDecoder(rec.Body).Decode(&engagement); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(engagement) != 1 {
		t.Fatalf("engagement rows = %d, want 1", len(engagement))
	}
	if engagement[0].CampaignName != "Summer launch" || engagement[0].Metrics.FBLikes != 7 {
		t.Errorf("engagement = %+v", engagement[0])
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(&stubPublish{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.handleHealth(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string]string
	json.NewDecoder(rec.Body).Decode(&payload)
	if payload["status"] != "ok" {
		t.Errorf("payload = %v", payload)
	}
}
