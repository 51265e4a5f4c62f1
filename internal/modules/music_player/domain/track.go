package domain

import (
	"strconv"
	"time"
)

// Track represents a playable audio track.
// A Track is never modified after creation; queues share pointers to it.
type Track struct {
	Title        string
	Artist       string
	Duration     time.Duration
	ThumbnailURL string // empty when the source has no artwork
	SourceURL    string
	StreamHandle string // Lavalink encoded track data
}

// NewTrack creates a new Track with the given parameters.
// Negative durations are clamped to zero and sub-second precision is dropped.
func NewTrack(
	title string,
	artist string,
	duration time.Duration,
	thumbnailURL string,
	sourceURL string,
	streamHandle string,
) *Track {
	if duration < 0 {
		duration = 0
	}
	if artist == "" {
		artist = "Unknown Artist"
	}
	return &Track{
		Title:        title,
		Artist:       artist,
		Duration:     duration.Truncate(time.Second),
		ThumbnailURL: thumbnailURL,
		SourceURL:    sourceURL,
		StreamHandle: streamHandle,
	}
}

// IsValid returns true if the track has the minimum required fields.
func (t *Track) IsValid() bool {
	return t.StreamHandle != "" && t.Title != ""
}

// DurationSeconds returns the track length in whole seconds.
func (t *Track) DurationSeconds() int {
	return int(t.Duration / time.Second)
}

// FormattedDuration returns the duration as M:SS.
func (t *Track) FormattedDuration() string {
	return FormatClock(t.Duration)
}

// FormatClock formats d as M:SS. Minutes are not wrapped into hours.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	totalSeconds := int(d / time.Second)
	minutes := totalSeconds / 60
	seconds := totalSeconds % 60

	return strconv.Itoa(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
