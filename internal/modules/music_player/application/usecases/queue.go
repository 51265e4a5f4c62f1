package usecases

import (
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/session"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// QueueListOutput contains the result of the QueueList use case.
type QueueListOutput struct {
	Tracks  []*domain.Track // Tracks[0] is the current track
	Looping bool
}

// QueueReorderInput contains the input for the QueueReorder use case.
type QueueReorderInput struct {
	GuildID snowflake.ID
	From    int // 1-based
	To      int // 1-based
}

// QueueReorderOutput contains the result of the QueueReorder use case.
type QueueReorderOutput struct {
	MovedTrack *domain.Track
}

// QueueRemoveInput contains the input for the QueueRemove use case.
type QueueRemoveInput struct {
	GuildID snowflake.ID
	Range   domain.PositionRange
}

// QueueRemoveOutput contains the result of the QueueRemove use case.
type QueueRemoveOutput struct {
	RemovedTracks []*domain.Track
	Range         domain.PositionRange
}

// QueueLoopOutput contains the result of the QueueLoop use case.
type QueueLoopOutput struct {
	Enabled bool
}

// QueueService handles queue operations.
type QueueService struct {
	registry *session.Registry
}

// NewQueueService creates a new QueueService.
func NewQueueService(registry *session.Registry) *QueueService {
	return &QueueService{
		registry: registry,
	}
}

func (q *QueueService) lookup(guildID snowflake.ID) (*session.Session, error) {
	s, ok := q.registry.Get(guildID)
	if !ok {
		return nil, ErrNotPlaying
	}
	return s, nil
}

// List returns the tracks in the queue.
func (q *QueueService) List(input GuildInput) (*QueueListOutput, error) {
	s, ok := q.registry.Get(input.GuildID)
	if !ok {
		return nil, ErrQueueEmpty
	}

	snap := s.Snapshot()
	if len(snap.Tracks) == 0 {
		return nil, ErrQueueEmpty
	}
	return &QueueListOutput{Tracks: snap.Tracks, Looping: snap.Looping}, nil
}

// Reorder moves a pending track to another pending position.
func (q *QueueService) Reorder(input QueueReorderInput) (*QueueReorderOutput, error) {
	s, err := q.lookup(input.GuildID)
	if err != nil {
		return nil, err
	}

	moved, err := s.Reorder(input.From, input.To)
	if err != nil {
		return nil, err
	}
	return &QueueReorderOutput{MovedTrack: moved}, nil
}

// Remove removes an inclusive range of pending tracks.
func (q *QueueService) Remove(input QueueRemoveInput) (*QueueRemoveOutput, error) {
	s, err := q.lookup(input.GuildID)
	if err != nil {
		return nil, err
	}

	removed, err := s.RemoveRange(input.Range.Start, input.Range.End)
	if err != nil {
		return nil, err
	}
	return &QueueRemoveOutput{RemovedTracks: removed, Range: input.Range}, nil
}

// Shuffle randomizes the pending tracks.
func (q *QueueService) Shuffle(input GuildInput) error {
	s, err := q.lookup(input.GuildID)
	if err != nil {
		return err
	}
	return s.Shuffle()
}

// Loop toggles queue looping.
func (q *QueueService) Loop(input GuildInput) (*QueueLoopOutput, error) {
	s, err := q.lookup(input.GuildID)
	if err != nil {
		return nil, err
	}

	enabled, err := s.ToggleLoop()
	if err != nil {
		return nil, err
	}
	return &QueueLoopOutput{Enabled: enabled}, nil
}
