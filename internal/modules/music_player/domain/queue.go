package domain

import (
	"math/rand/v2"
	"slices"
)

// Queue is the ordered list of tracks for a guild.
//
// Positions exposed to commands are 1-based in display order. Position 1 is the
// track bound to the transport while playback is active, so position-based
// mutations (Reorder, RemoveRange, MoveNext) only accept positions >= 2.
//
// Queue is not safe for concurrent use; its owning session serializes access.
type Queue struct {
	items   []*Track
	looping bool
}

// NewQueue creates a new empty Queue.
func NewQueue() *Queue {
	return &Queue{
		items: make([]*Track, 0),
	}
}

// Len returns the number of tracks in the queue, including the current one.
func (q *Queue) Len() int {
	return len(q.items)
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// IsLooping reports whether skipped tracks are re-appended to the tail.
func (q *Queue) IsLooping() bool {
	return q.looping
}

// Current returns the track at position 1, or nil if the queue is empty.
func (q *Queue) Current() *Track {
	if q.IsEmpty() {
		return nil
	}
	return q.items[0]
}

// At returns the track at the given 1-based position, or nil if out of range.
func (q *Queue) At(position int) *Track {
	if position < 1 || position > q.Len() {
		return nil
	}
	return q.items[position-1]
}

// Tracks returns a copy of all tracks in display order.
func (q *Queue) Tracks() []*Track {
	return slices.Clone(q.items)
}

// Add appends a track to the end of the queue and returns its 1-based position.
func (q *Queue) Add(track *Track) int {
	q.items = append(q.items, track)
	return q.Len()
}

// InsertNext inserts a track at position 2, right after the current track.
// On an empty queue the track becomes position 1.
// Returns the 1-based position the track ended up at.
func (q *Queue) InsertNext(track *Track) int {
	if q.IsEmpty() {
		return q.Add(track)
	}
	q.items = slices.Insert(q.items, 1, track)
	return 2
}

// isMutablePosition reports whether position may be targeted by a position-based command.
func (q *Queue) isMutablePosition(position int) bool {
	return 2 <= position && position <= q.Len()
}

// checkMutable validates a position-based command target.
func (q *Queue) checkMutable(position int) error {
	if position == 1 && !q.IsEmpty() {
		return ErrCurrentTrackProtected
	}
	if !q.isMutablePosition(position) {
		return ErrInvalidPosition
	}
	return nil
}

// Reorder moves the track at position from to position to.
// Both positions must be in [2, Len()]; otherwise the queue is left untouched.
// Returns the moved track.
func (q *Queue) Reorder(from, to int) (*Track, error) {
	if err := q.checkMutable(from); err != nil {
		return nil, err
	}
	if err := q.checkMutable(to); err != nil {
		return nil, err
	}

	moved := q.items[from-1]
	q.items = slices.Delete(q.items, from-1, from)
	q.items = slices.Insert(q.items, to-1, moved)
	return moved, nil
}

// MoveNext relocates the track at position to position 2.
// Returns the moved track.
func (q *Queue) MoveNext(position int) (*Track, error) {
	return q.Reorder(position, 2)
}

// RemoveRange removes the inclusive 1-based range [start, end] and returns the
// removed tracks. Ranges that include position 1 are always rejected.
func (q *Queue) RemoveRange(start, end int) ([]*Track, error) {
	if start < 1 || end < start || end > q.Len() {
		return nil, ErrInvalidRange
	}
	if start == 1 {
		return nil, ErrCurrentTrackProtected
	}

	removed := slices.Clone(q.items[start-1 : end])
	q.items = slices.Delete(q.items, start-1, end)
	return removed, nil
}

// Shuffle randomly permutes positions >= 2 with an unbiased Fisher-Yates shuffle.
// Position 1 never moves. A nil rng uses the global source.
func (q *Queue) Shuffle(rng *rand.Rand) {
	tail := q.items[min(1, q.Len()):]
	for i := len(tail) - 1; i > 0; i-- {
		var j int
		if rng != nil {
			j = rng.IntN(i + 1)
		} else {
			j = rand.IntN(i + 1)
		}
		tail[i], tail[j] = tail[j], tail[i]
	}
}

// Skip removes position 1 and returns it. When looping, the removed track is
// re-appended to the tail. Returns nil if the queue is empty.
func (q *Queue) Skip() *Track {
	if q.IsEmpty() {
		return nil
	}

	skipped := q.items[0]
	q.items = slices.Delete(q.items, 0, 1)
	if q.looping {
		q.items = append(q.items, skipped)
	}
	return skipped
}

// ToggleLoop flips the loop flag and returns the new value.
func (q *Queue) ToggleLoop() bool {
	q.looping = !q.looping
	return q.looping
}

// Clear removes every track. The loop flag is kept.
func (q *Queue) Clear() {
	q.items = make([]*Track, 0)
}
