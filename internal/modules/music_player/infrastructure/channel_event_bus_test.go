package infrastructure

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestChannelEventBus_DeliversTrackEnded(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	done := make(chan struct{})
	var got domain.TrackEndedEvent
	bus.OnTrackEnded(func(_ context.Context, event domain.TrackEndedEvent) {
		got = event
		close(done)
	})

	bus.PublishTrackEnded(domain.TrackEndedEvent{
		GuildID:      1,
		StreamHandle: "encoded",
		Reason:       domain.TrackEndFinished,
	})

	waitFor(t, done)
	if got.GuildID != 1 || got.StreamHandle != "encoded" || got.Reason != domain.TrackEndFinished {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestChannelEventBus_DeliversTransportFailed(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	done := make(chan struct{})
	var got domain.TransportFailedEvent
	bus.OnTransportFailed(func(_ context.Context, event domain.TransportFailedEvent) {
		got = event
		close(done)
	})

	bus.PublishTransportFailed(domain.TransportFailedEvent{GuildID: 7, Message: "boom"})

	waitFor(t, done)
	if got.GuildID != 7 || got.Message != "boom" {
		t.Errorf("unexpected event: %+v", got)
	}
}

func TestChannelEventBus_PreservesOrder(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	var (
		mu      sync.Mutex
		handles []string
	)
	done := make(chan struct{})
	bus.OnTrackEnded(func(_ context.Context, event domain.TrackEndedEvent) {
		mu.Lock()
		defer mu.Unlock()
		handles = append(handles, event.StreamHandle)
		if len(handles) == 3 {
			close(done)
		}
	})

	for _, h := range []string{"a", "b", "c"} {
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, StreamHandle: h})
	}

	waitFor(t, done)
	mu.Lock()
	defer mu.Unlock()
	if handles[0] != "a" || handles[1] != "b" || handles[2] != "c" {
		t.Errorf("expected a,b,c, got %v", handles)
	}
}

func TestChannelEventBus_PublishAfterClose(t *testing.T) {
	bus := NewChannelEventBus(10)
	bus.Close()

	// Must not panic on a closed channel.
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1})
	bus.PublishTransportFailed(domain.TransportFailedEvent{GuildID: 1})

	// Closing twice is a no-op.
	bus.Close()
}

func TestChannelEventBus_SlowGuildDoesNotBlockOthers(t *testing.T) {
	bus := NewChannelEventBus(10)
	defer bus.Close()

	release := make(chan struct{})
	otherDone := make(chan struct{})
	bus.OnTrackEnded(func(_ context.Context, event domain.TrackEndedEvent) {
		switch event.GuildID {
		case 1:
			<-release
		case 2:
			close(otherDone)
		}
	})

	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, StreamHandle: "a"})
	bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 2, StreamHandle: "b"})

	waitFor(t, otherDone)
	close(release)
}

func TestChannelEventBus_StalledGuildKeepsItsEvents(t *testing.T) {
	bus := NewChannelEventBus(1)
	defer bus.Close()

	release := make(chan struct{})
	done := make(chan struct{})
	var (
		mu      sync.Mutex
		handles []string
	)
	bus.OnTrackEnded(func(_ context.Context, event domain.TrackEndedEvent) {
		<-release
		mu.Lock()
		defer mu.Unlock()
		handles = append(handles, event.StreamHandle)
		if len(handles) == 5 {
			close(done)
		}
	})

	for _, h := range []string{"a", "b", "c", "d", "e"} {
		bus.PublishTrackEnded(domain.TrackEndedEvent{GuildID: 1, StreamHandle: h})
		// Let the dispatcher move the event onto the guild lane.
		time.Sleep(10 * time.Millisecond)
	}
	close(release)

	waitFor(t, done)
	mu.Lock()
	defer mu.Unlock()
	want := []string{"a", "b", "c", "d", "e"}
	for i := range want {
		if handles[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, handles)
		}
	}
}
