package discord

import (
	"fmt"
	"strings"

	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// DefaultListBudget is the longest queue listing sent in one message.
const DefaultListBudget = 2000

// TruncationMargin is how far below the budget a truncated listing is cut,
// leaving room for the suffix.
const TruncationMargin = 100

const truncatedSuffix = "\n... (and more)"

// renderQueueListing renders the queue as plain text. The first track is the
// one playing. Listings longer than budget characters are cut to
// budget-TruncationMargin characters followed by a marker.
func renderQueueListing(tracks []*domain.Track, looping bool, budget int) string {
	var sb strings.Builder

	sb.WriteString("Current Queue")
	if looping {
		sb.WriteString(" (looping)")
	}
	sb.WriteString(":\n")

	for i, track := range tracks {
		if i == 0 {
			fmt.Fprintf(&sb, "Now Playing: %s\n", track.Title)
			continue
		}
		fmt.Fprintf(&sb, "%d. %s\n", i+1, track.Title)
	}

	listing := strings.TrimSuffix(sb.String(), "\n")

	runes := []rune(listing)
	if len(runes) <= budget {
		return listing
	}
	keep := max(0, budget-TruncationMargin)
	return string(runes[:keep]) + truncatedSuffix
}

// describeRemoval phrases the reply to a successful remove.
func describeRemoval(r domain.PositionRange) string {
	if r.IsSingle() {
		return fmt.Sprintf("Removed song %d from the queue.", r.Start)
	}
	return fmt.Sprintf("Removed songs %d to %d from the queue.", r.Start, r.End)
}
