package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/jukebox/internal/modules/music_player/application/ports"
	"github.com/sglre6355/jukebox/internal/modules/music_player/domain"
)

var errFake = errors.New("fake failure")

type fakePlayer struct {
	mu       sync.Mutex
	played   []string
	stops    int
	pauses   int
	resumes  int
	gains    []float64
	position time.Duration

	playErr  error
	pauseErr error
	gainErr  error
}

func (p *fakePlayer) Play(_ context.Context, _ snowflake.ID, track *domain.Track) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playErr != nil {
		return p.playErr
	}
	p.played = append(p.played, track.StreamHandle)
	return nil
}

func (p *fakePlayer) Stop(context.Context, snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stops++
	return nil
}

func (p *fakePlayer) Pause(context.Context, snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pauseErr != nil {
		return p.pauseErr
	}
	p.pauses++
	return nil
}

func (p *fakePlayer) Resume(context.Context, snowflake.ID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resumes++
	return nil
}

func (p *fakePlayer) SetGain(_ context.Context, _ snowflake.ID, gain float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gainErr != nil {
		return p.gainErr
	}
	p.gains = append(p.gains, gain)
	return nil
}

func (p *fakePlayer) Position(snowflake.ID) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *fakePlayer) Played() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

func (p *fakePlayer) Stops() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

func (p *fakePlayer) Gains() []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]float64(nil), p.gains...)
}

type fakeVoice struct {
	mu      sync.Mutex
	joins   int
	leaves  int
	joinErr error
}

func (v *fakeVoice) JoinChannel(context.Context, snowflake.ID, snowflake.ID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.joinErr != nil {
		return v.joinErr
	}
	v.joins++
	return nil
}

func (v *fakeVoice) LeaveChannel(context.Context, snowflake.ID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.leaves++
	return nil
}

func (v *fakeVoice) Joins() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.joins
}

func (v *fakeVoice) Leaves() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.leaves
}

type fakeDisplay struct {
	mu        sync.Mutex
	nextID    snowflake.ID
	delivered []*domain.NowPlayingMessage
	updates   map[snowflake.ID]int
	lastInfo  ports.NowPlayingInfo
	deleted   map[snowflake.ID]bool
	locates   int
	errors    []string
	// staleUpdates counts updates that targeted an already deleted message.
	staleUpdates int

	// refreshGate, when set, holds AwaitRefresh until it is closed.
	refreshGate chan struct{}
	awaits      int

	updateErr  func(message *domain.NowPlayingMessage) error
	locateErr  error
	panicOnUpd bool
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		nextID:  1000,
		updates: make(map[snowflake.ID]int),
		deleted: make(map[snowflake.ID]bool),
	}
}

func (d *fakeDisplay) Deliver(_ context.Context, channelID snowflake.ID, info ports.NowPlayingInfo) (*domain.NowPlayingMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	message := domain.NewNowPlayingMessage(channelID, d.nextID)
	d.delivered = append(d.delivered, message)
	d.lastInfo = info
	return message, nil
}

func (d *fakeDisplay) Update(_ context.Context, message *domain.NowPlayingMessage, info ports.NowPlayingInfo) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.panicOnUpd {
		panic("display exploded")
	}
	if d.updateErr != nil {
		if err := d.updateErr(message); err != nil {
			return err
		}
	}
	if d.deleted[message.MessageID] {
		d.staleUpdates++
	}
	d.updates[message.MessageID]++
	d.lastInfo = info
	return nil
}

func (d *fakeDisplay) AwaitRefresh(ctx context.Context) error {
	d.mu.Lock()
	d.awaits++
	gate := d.refreshGate
	d.mu.Unlock()

	if gate == nil {
		return ctx.Err()
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *fakeDisplay) Awaits() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.awaits
}

func (d *fakeDisplay) Locate(_ context.Context, message *domain.NowPlayingMessage) (*domain.NowPlayingMessage, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locates++
	if d.locateErr != nil {
		return nil, d.locateErr
	}
	d.nextID++
	return domain.NewNowPlayingMessage(message.ChannelID, d.nextID), nil
}

func (d *fakeDisplay) Delete(_ context.Context, message *domain.NowPlayingMessage) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deleted[message.MessageID] = true
	return nil
}

func (d *fakeDisplay) SendError(_ context.Context, _ snowflake.ID, message string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.errors = append(d.errors, message)
	return nil
}

func (d *fakeDisplay) Delivered() []*domain.NowPlayingMessage {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*domain.NowPlayingMessage(nil), d.delivered...)
}

func (d *fakeDisplay) Updates(messageID snowflake.ID) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates[messageID]
}

func (d *fakeDisplay) TotalUpdates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.updates {
		total += n
	}
	return total
}

func (d *fakeDisplay) StaleUpdates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.staleUpdates
}

func (d *fakeDisplay) Deleted(messageID snowflake.ID) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deleted[messageID]
}

func (d *fakeDisplay) Locates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.locates
}

func (d *fakeDisplay) Errors() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.errors...)
}

func (d *fakeDisplay) LastInfo() ports.NowPlayingInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastInfo
}

type harness struct {
	player   *fakePlayer
	voice    *fakeVoice
	display  *fakeDisplay
	registry *Registry
}

const (
	testGuild        = snowflake.ID(1)
	testVoiceChannel = snowflake.ID(10)
	testTextChannel  = snowflake.ID(20)
)

// newHarness builds a registry whose refresher effectively never ticks
// unless interval is set.
func newHarness(interval time.Duration) *harness {
	if interval == 0 {
		interval = time.Hour
	}
	h := &harness{
		player:  &fakePlayer{},
		voice:   &fakeVoice{},
		display: newFakeDisplay(),
	}
	h.registry = NewRegistry(Dependencies{
		Player:          h.player,
		Voice:           h.voice,
		Display:         h.display,
		RefreshInterval: interval,
	})
	return h
}

func testParams() Params {
	return Params{
		GuildID:               testGuild,
		VoiceChannelID:        testVoiceChannel,
		NotificationChannelID: testTextChannel,
	}
}

func track(id string) *domain.Track {
	return domain.NewTrack("Song "+id, "Artist", 3*time.Minute, "", "https://soundcloud.com/a/"+id, "encoded-"+id)
}

// startSession creates a session and enqueues the given tracks.
func (h *harness) startSession(ids ...string) *Session {
	s, _ := h.registry.GetOrCreate(testParams())
	for _, id := range ids {
		if _, _, err := s.Enqueue(context.Background(), track(id)); err != nil {
			panic(err)
		}
	}
	return s
}

func titles(tracks []*domain.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.Title
	}
	return out
}
