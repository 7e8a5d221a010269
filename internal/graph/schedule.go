package graph

import (
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the wire format for schedule instants, implicitly UTC.
const TimeLayout = "2006-01-02T15:04:05"

// offsetLayout is TimeLayout with the explicit UTC offset the ad
// endpoints expect on start/end times.
const offsetLayout = "2006-01-02T15:04:05+0000"

// stripOffset removes the optional trailing UTC offset marker before
// parsing.
func stripOffset(s string) string {
	return strings.ReplaceAll(s, "+0000", "")
}

// ParseScheduleTime parses a schedule instant as UTC.
func ParseScheduleTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, stripOffset(s), time.UTC)
}

// ValidateScheduleTime checks a proposed schedule instant. An empty
// string is valid and means immediate publish. A present instant must
// parse with TimeLayout and lie at least minLead in the future.
func ValidateScheduleTime(scheduledTime string, minLead time.Duration) error {
	if scheduledTime == "" {
		return nil
	}

	dt, err := ParseScheduleTime(scheduledTime)
	if err != nil {
		return &ValidationError{
			Code:    InvalidFormat,
			Message: fmt.Sprintf("invalid datetime format: %v", err),
		}
	}

	minTime := time.Now().UTC().Add(minLead)
	if dt.Before(minTime) {
		formatted := minTime.Format(TimeLayout)
		return &ValidationError{
			Code: TooSoon,
			Message: fmt.Sprintf("scheduled time must be at least %d minutes in the future (after %s UTC)",
				int(minLead.Minutes()), formatted),
			MinTime: formatted,
		}
	}

	return nil
}

// AdSetWindow derives the ad-set start and end times from a schedule
// instant. The instant's wall-clock fields are anchored to the given
// civil timezone and then re-derived as UTC; the end time is exactly
// one year after the start. The reinterpretation changes the instant's
// real-world meaning relative to the nominally-UTC input, but it
// matches the platform behavior observed in production and must not be
// "corrected" here.
func AdSetWindow(scheduledTime string, loc *time.Location) (start, end string, err error) {
	dt, err := time.ParseInLocation(TimeLayout, stripOffset(scheduledTime), loc)
	if err != nil {
		return "", "", fmt.Errorf("invalid datetime format: %w", err)
	}

	startUTC := dt.UTC()
	endUTC := startUTC.AddDate(1, 0, 0)

	return startUTC.Format(offsetLayout), endUTC.Format(offsetLayout), nil
}
