package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus moves transport events off the Lavalink listener goroutine.
// Each event kind has its own buffered channel and dispatcher goroutine. The
// dispatchers hand events to a per-guild lane, so handlers for one guild run
// in publish order while a slow guild never delays another.
type ChannelEventBus struct {
	trackEnded      chan domain.TrackEndedEvent
	transportFailed chan domain.TransportFailedEvent

	trackEndedHandlers      []func(context.Context, domain.TrackEndedEvent)
	transportFailedHandlers []func(context.Context, domain.TransportFailedEvent)

	lanes guildLanes

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		trackEnded:      make(chan domain.TrackEndedEvent, bufferSize),
		transportFailed: make(chan domain.TransportFailedEvent, bufferSize),
		ctx:             ctx,
		cancel:          cancel,
	}
	bus.lanes.pending = make(map[snowflake.ID][]func(context.Context))
	bus.lanes.wg = &bus.wg

	bus.wg.Add(2)
	go dispatch(bus, bus.trackEnded,
		func(e domain.TrackEndedEvent) snowflake.ID { return e.GuildID },
		func() []func(context.Context, domain.TrackEndedEvent) { return bus.trackEndedHandlers },
	)
	go dispatch(bus, bus.transportFailed,
		func(e domain.TransportFailedEvent) snowflake.ID { return e.GuildID },
		func() []func(context.Context, domain.TransportFailedEvent) { return bus.transportFailedHandlers },
	)

	return bus
}

// dispatch moves events from ch onto the lane of their guild. The handlers
// returned by handlers are read under the bus read lock when the event runs.
func dispatch[E any](
	b *ChannelEventBus,
	ch <-chan E,
	guildOf func(E) snowflake.ID,
	handlers func() []func(context.Context, E),
) {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			b.lanes.enqueue(b.ctx, guildOf(event), func(ctx context.Context) {
				b.mu.RLock()
				current := handlers()
				b.mu.RUnlock()
				for _, handler := range current {
					handler(ctx, event)
				}
			})
		}
	}
}

// guildLanes runs queued work one item at a time per guild. A guild's lane
// goroutine exists only while it has pending work.
type guildLanes struct {
	mu      sync.Mutex
	pending map[snowflake.ID][]func(context.Context)
	wg      *sync.WaitGroup
}

func (l *guildLanes) enqueue(ctx context.Context, guildID snowflake.ID, work func(context.Context)) {
	l.mu.Lock()
	queue, running := l.pending[guildID]
	l.pending[guildID] = append(queue, work)
	l.mu.Unlock()

	if running {
		return
	}
	l.wg.Add(1)
	go l.drain(ctx, guildID)
}

func (l *guildLanes) drain(ctx context.Context, guildID snowflake.ID) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		queue := l.pending[guildID]
		if len(queue) == 0 || ctx.Err() != nil {
			delete(l.pending, guildID)
			l.mu.Unlock()
			return
		}
		work := queue[0]
		queue[0] = nil
		l.pending[guildID] = queue[1:]
		l.mu.Unlock()

		work(ctx)
	}
}

// publish sends event to ch without blocking.
// If the channel buffer is full, the event is dropped with a warning.
func publish[E any](b *ChannelEventBus, ch chan<- E, event E, kind string, guild any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", kind)
		return
	}

	select {
	case ch <- event:
		slog.Debug("published event", "type", kind, "guild", guild)
	default:
		slog.Warn("event buffer full, dropping event", "type", kind, "guild", guild)
	}
}

// PublishTrackEnded publishes a TrackEndedEvent.
func (b *ChannelEventBus) PublishTrackEnded(event domain.TrackEndedEvent) {
	publish(b, b.trackEnded, event, "TrackEnded", event.GuildID)
}

// PublishTransportFailed publishes a TransportFailedEvent.
func (b *ChannelEventBus) PublishTransportFailed(event domain.TransportFailedEvent) {
	publish(b, b.transportFailed, event, "TransportFailed", event.GuildID)
}

// OnTrackEnded registers a handler for TrackEndedEvent.
func (b *ChannelEventBus) OnTrackEnded(handler func(context.Context, domain.TrackEndedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.trackEndedHandlers = append(b.trackEndedHandlers, handler)
}

// OnTransportFailed registers a handler for TransportFailedEvent.
func (b *ChannelEventBus) OnTransportFailed(
	handler func(context.Context, domain.TransportFailedEvent),
) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.transportFailedHandlers = append(b.transportFailedHandlers, handler)
}

// Close closes all event channels and stops dispatchers.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()

	close(b.trackEnded)
	close(b.transportFailed)

	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
