package graph

import (
	"errors"
	"testing"
	"time"
)

func TestValidateScheduleTimeEmpty(t *testing.T) {
	if err := ValidateScheduleTime("", 20*time.Minute); err != nil {
		t.Fatalf("empty schedule time should be valid, got %v", err)
	}
}

func TestValidateScheduleTimeMalformed(t *testing.T) {
	cases := []string{
		"not-a-date",
		"2025-06-01",
		"2025-06-01 10:00:00",
		"01-06-2025T10:00:00",
	}
	for _, input := range cases {
		err := ValidateScheduleTime(input, 20*time.Minute)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError for %q, got %T", input, err)
		}
		if verr.Code != InvalidFormat {
			t.Fatalf("expected InvalidFormat for %q, got %s", input, verr.Code)
		}
	}
}

func TestValidateScheduleTimeTooSoon(t *testing.T) {
	in10 := time.Now().UTC().Add(10 * time.Minute).Format(TimeLayout)

	err := ValidateScheduleTime(in10, 20*time.Minute)
	if err == nil {
		t.Fatal("expected error for schedule 10 minutes out")
	}
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if verr.Code != TooSoon {
		t.Fatalf("expected TooSoon, got %s", verr.Code)
	}
	if verr.MinTime == "" {
		t.Fatal("TooSoon error should carry the minimum instant")
	}
	if _, perr := time.Parse(TimeLayout, verr.MinTime); perr != nil {
		t.Fatalf("MinTime %q is not in the wire format: %v", verr.MinTime, perr)
	}
}

func TestValidateScheduleTimeFarEnough(t *testing.T) {
	in30 := time.Now().UTC().Add(30 * time.Minute).Format(TimeLayout)
	if err := ValidateScheduleTime(in30, 20*time.Minute); err != nil {
		t.Fatalf("schedule 30 minutes out should be valid, got %v", err)
	}
}

func TestValidateScheduleTimeStripsOffset(t *testing.T) {
	in30 := time.Now().UTC().Add(30 * time.Minute).Format(TimeLayout) + "+0000"
	if err := ValidateScheduleTime(in30, 20*time.Minute); err != nil {
		t.Fatalf("offset-suffixed schedule should be valid, got %v", err)
	}
}

func TestAdSetWindow(t *testing.T) {
	// The wall-clock fields of the nominally-UTC input are anchored
	// to the civil timezone before the window is re-derived as UTC.
	pkt := time.FixedZone("PKT", 5*3600)

	start, end, err := AdSetWindow("2025-06-01T10:00:00", pkt)
	if err != nil {
		t.Fatalf("AdSetWindow failed: %v", err)
	}
	if start != "2025-06-01T05:00:00+0000" {
		t.Errorf("start = %q, want 2025-06-01T05:00:00+0000", start)
	}
	if end != "2026-06-01T05:00:00+0000" {
		t.Errorf("end = %q, want 2026-06-01T05:00:00+0000", end)
	}
}

func TestAdSetWindowStripsOffset(t *testing.T) {
	pkt := time.FixedZone("PKT", 5*3600)

	start, _, err := AdSetWindow("2025-06-01T10:00:00+0000", pkt)
	if err != nil {
		t.Fatalf("AdSetWindow failed: %v", err)
	}
	if start != "2025-06-01T05:00:00+0000" {
		t.Errorf("start = %q, want 2025-06-01T05:00:00+0000", start)
	}
}

func TestAdSetWindowMalformed(t *testing.T) {
	pkt := time.FixedZone("PKT", 5*3600)
	if _, _, err := AdSetWindow("garbage", pkt); err == nil {
		t.Fatal("expected error for malformed start time")
	}
}

func TestPostReferenceStoryID(t *testing.T) {
	bare := PostReference{PageID: "page1", PostID: "123"}
	if got := bare.StoryID(); got != "page1_123" {
		t.Errorf("StoryID = %q, want page1_123", got)
	}

	namespaced := PostReference{PageID: "page1", PostID: "page1_456"}
	if got := namespaced.StoryID(); got != "page1_456" {
		t.Errorf("StoryID = %q, want page1_456", got)
	}
}
