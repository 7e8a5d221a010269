package graph

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeGraph emulates the Graph API endpoints the Facebook publish
// path touches and records every call it receives.
type fakeGraph struct {
	t *testing.T

	photoUploads  []string // uploaded image URLs in order
	feedCalls     int
	feedForm      url.Values
	campaignCalls int
	adsetForm     url.Values
	creativeForm  url.Values
	adCalls       int

	failPhotoAfter int // fail uploads after this many successes; 0 disables
}

func (f *fakeGraph) handler() http.Handler {
	nextPhoto := 0
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			f.t.Fatalf("bad form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasSuffix(r.URL.Path, "/photos"):
			if f.failPhotoAfter > 0 && len(f.photoUploads) >= f.failPhotoAfter {
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"message": "photo rejected"},
				})
				return
			}
			f.photoUploads = append(f.photoUploads, r.PostFormValue("url"))
			nextPhoto++
			json.NewEncoder(w).Encode(map[string]string{"id": "photo" + strconv.Itoa(nextPhoto)})

		case strings.HasSuffix(r.URL.Path, "/feed"):
			f.feedCalls++
			f.feedForm = r.PostForm
			json.NewEncoder(w).Encode(map[string]string{"id": "post1"})

		case strings.HasSuffix(r.URL.Path, "/campaigns"):
			f.campaignCalls++
			json.NewEncoder(w).Encode(map[string]string{"id": "camp1"})

		case strings.HasSuffix(r.URL.Path, "/adsets"):
			f.adsetForm = r.PostForm
			json.NewEncoder(w).Encode(map[string]string{"id": "adset1"})

		case strings.HasSuffix(r.URL.Path, "/adcreatives"):
			f.creativeForm = r.PostForm
			json.NewEncoder(w).Encode(map[string]string{"id": "creative1"})

		case strings.HasSuffix(r.URL.Path, "/ads"):
			f.adCalls++
			json.NewEncoder(w).Encode(map[string]string{"id": "ad1"})

		default:
			f.t.Fatalf("unexpected call to %s", r.URL.Path)
		}
	})
}

func newTestClient(baseURL string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 5 * time.Second},
		baseURL:     baseURL,
		accessToken: "token",
		accountID:   "acct1",
		pageID:      "page1",
		adsetTZ:     time.FixedZone("PKT", 5*3600),
		logger:      zap.NewNop(),
	}
}

func TestCreatePostAndAdSingleImage(t *testing.T) {
	fake := &fakeGraph{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.CreatePostAndAd(context.Background(), Request{
		Images:  []string{"https://x/1.jpg"},
		Message: "Buy now",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if !result.Success {
		t.Error("expected success")
	}
	for name, got := range map[string]string{
		"post_id":     result.PostID,
		"campaign_id": result.CampaignID,
		"adset_id":    result.AdSetID,
		"creative_id": result.CreativeID,
		"ad_id":       result.AdID,
	} {
		if got == "" {
			t.Errorf("%s is empty", name)
		}
	}
	if result.PostLink != "https://facebook.com/post1" {
		t.Errorf("post link = %q", result.PostLink)
	}
	if result.Platform != "facebook" {
		t.Errorf("platform = %q", result.Platform)
	}
	if result.Status != "active" {
		t.Errorf("status = %q, want active", result.Status)
	}

	if len(fake.photoUploads) != 1 {
		t.Fatalf("uploads = %d, want 1", len(fake.photoUploads))
	}
	var attached []attachedMedia
	if err := json.Unmarshal([]byte(fake.feedForm["attached_media"][0]), &attached); err != nil {
		t.Fatalf("bad attached_media: %v", err)
	}
	if len(attached) != 1 {
		t.Errorf("attached_media entries = %d, want 1", len(attached))
	}
	if _, scheduled := fake.feedForm["scheduled_publish_time"]; scheduled {
		t.Error("immediate publish should not carry scheduled_publish_time")
	}
}

func TestCreatePostAndAdTwoImages(t *testing.T) {
	fake := &fakeGraph{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreatePostAndAd(context.Background(), Request{
		Images:  []string{"https://x/1.jpg", "https://x/2.jpg"},
		Message: "Buy now",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if len(fake.photoUploads) != 2 {
		t.Fatalf("uploads = %d, want 2", len(fake.photoUploads))
	}
	var attached []attachedMedia
	if err := json.Unmarshal([]byte(fake.feedForm["attached_media"][0]), &attached); err != nil {
		t.Fatalf("bad attached_media: %v", err)
	}
	if len(attached) != 2 {
		t.Errorf("attached_media entries = %d, want 2", len(attached))
	}
}

func TestCreatePostAndAdUploadFailureAborts(t *testing.T) {
	fake := &fakeGraph{t: t, failPhotoAfter: 1}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	_, err := client.CreatePostAndAd(context.Background(), Request{
		Images:  []string{"https://x/1.jpg", "https://x/2.jpg"},
		Message: "Buy now",
	})
	if err == nil {
		t.Fatal("expected error when an upload fails")
	}

	var stepErr *RemoteStepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected RemoteStepError, got %T", err)
	}
	if stepErr.Step != StepUploadMedia {
		t.Errorf("step = %s, want %s", stepErr.Step, StepUploadMedia)
	}
	if fake.feedCalls != 0 {
		t.Errorf("feed calls = %d, want 0 after upload failure", fake.feedCalls)
	}
}

func TestCreatePostAndAdScheduled(t *testing.T) {
	fake := &fakeGraph{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	result, err := client.CreatePostAndAd(context.Background(), Request{
		Images:        []string{"https://x/1.jpg"},
		Message:       "Buy now",
		ScheduledTime: "2025-06-01T10:00:00",
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if result.Status != "scheduled" {
		t.Errorf("status = %q, want scheduled", result.Status)
	}
	if fake.feedForm.Get("published") != "false" {
		t.Error("scheduled post should be submitted unpublished")
	}
	// 2025-06-01T10:00:00 UTC
	if got := fake.feedForm.Get("scheduled_publish_time"); got != "1748772000" {
		t.Errorf("scheduled_publish_time = %q, want 1748772000", got)
	}
	if got := fake.adsetForm.Get("start_time"); got != "2025-06-01T05:00:00+0000" {
		t.Errorf("adset start_time = %q", got)
	}
	if got := fake.adsetForm.Get("end_time"); got != "2026-06-01T05:00:00+0000" {
		t.Errorf("adset end_time = %q", got)
	}
}

func TestCreatePostAndAdCreativeStoryID(t *testing.T) {
	fake := &fakeGraph{t: t}
	srv := httptest.NewServer(fake.handler())
	defer srv.Close()

	client := newTestClient(srv.URL)
	if _, err := client.CreatePostAndAd(context.Background(), Request{
		Images:  []string{"https://x/1.jpg"},
		Message: "Buy now",
	}); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	// The fake returns a bare post id, so the creative must carry
	// the page-namespaced form.
	if got := fake.creativeForm.Get("object_story_id"); got != "page1_post1" {
		t.Errorf("object_story_id = %q, want page1_post1", got)
	}
}
