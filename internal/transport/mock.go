package transport

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"
)

// MockConnector is a test double for Connector.
type MockConnector struct {
	mu           sync.Mutex
	sessions     []*MockSession
	connectErr   error
	gate         chan struct{}
	connectCalls int
	queued       []*MockSession
}

// NewMockConnector creates a connector that hands out new mock sessions.
func NewMockConnector() *MockConnector {
	return &MockConnector{}
}

func (c *MockConnector) Connect(ctx context.Context) (Session, error) {
	c.mu.Lock()
	c.connectCalls++
	gate := c.gate
	c.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connectErr != nil {
		return nil, c.connectErr
	}
	var s *MockSession
	if len(c.queued) > 0 {
		s, c.queued = c.queued[0], c.queued[1:]
	} else {
		s = NewMockSession()
	}
	c.sessions = append(c.sessions, s)
	return s, nil
}

// Test helpers

// SetConnectError makes subsequent Connect calls fail with err (nil to succeed).
func (c *MockConnector) SetConnectError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectErr = err
}

// QueueSession makes the next Connect return s.
func (c *MockConnector) QueueSession(s *MockSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queued = append(c.queued, s)
}

// Hold makes Connect block until Open is called or its context ends.
func (c *MockConnector) Hold() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gate = make(chan struct{})
}

// Open releases pending and future Connect calls.
func (c *MockConnector) Open() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gate != nil {
		close(c.gate)
		c.gate = nil
	}
}

// ConnectCalls returns how many times Connect was called.
func (c *MockConnector) ConnectCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectCalls
}

// Sessions returns the sessions handed out so far.
func (c *MockConnector) Sessions() []*MockSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.sessions)
}

// LastSession returns the most recent session, or nil.
func (c *MockConnector) LastSession() *MockSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.sessions) == 0 {
		return nil
	}
	return c.sessions[len(c.sessions)-1]
}

// MockSession is a test double for Session. Commands only record calls and
// update fields; tests emit events explicitly.
type MockSession struct {
	mu            sync.Mutex
	items         []MediaItem
	index         int
	position      time.Duration
	duration      time.Duration
	state         PlaybackState
	playing       bool
	playWhenReady bool
	repeat        RepeatMode
	speed         float64
	listeners     []Listener
	released      bool
	calls         []string
	seekCalls     []time.Duration
}

// NewMockSession creates an idle session.
func NewMockSession() *MockSession {
	return &MockSession{index: -1, speed: 1}
}

func (s *MockSession) record(call string) {
	s.calls = append(s.calls, call)
}

func (s *MockSession) SetMediaItems(items []MediaItem, startIndex int, startPosition time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fmt.Sprintf("SetMediaItems(%d,%d)", len(items), startIndex))
	s.items = slices.Clone(items)
	s.index = startIndex
	s.position = startPosition
}

func (s *MockSession) ClearMediaItems() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("ClearMediaItems")
	s.items = nil
	s.index = -1
}

func (s *MockSession) Prepare() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Prepare")
	s.state = StateBuffering
}

func (s *MockSession) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Play")
	s.playWhenReady = true
}

func (s *MockSession) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Pause")
	s.playWhenReady = false
}

func (s *MockSession) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Stop")
	s.playWhenReady = false
	s.playing = false
	s.state = StateIdle
}

func (s *MockSession) SeekTo(position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SeekTo")
	s.seekCalls = append(s.seekCalls, position)
	s.position = position
}

func (s *MockSession) SeekToNextMediaItem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SeekToNextMediaItem")
}

func (s *MockSession) SeekToPreviousMediaItem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SeekToPreviousMediaItem")
}

func (s *MockSession) SetRepeatMode(mode RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("SetRepeatMode(" + mode.String() + ")")
	s.repeat = mode
}

func (s *MockSession) SetPlaybackSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record(fmt.Sprintf("SetPlaybackSpeed(%.2f)", speed))
	s.speed = speed
}

func (s *MockSession) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *MockSession) RemoveListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *MockSession) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("Release")
	s.released = true
}

func (s *MockSession) CurrentPosition() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.position
}

func (s *MockSession) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

func (s *MockSession) CurrentMediaItem() *MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 || s.index >= len(s.items) {
		return nil
	}
	item := s.items[s.index]
	return &item
}

func (s *MockSession) CurrentMediaIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *MockSession) PlaybackState() PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *MockSession) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *MockSession) PlayWhenReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playWhenReady
}

// Test helpers

// Emit delivers e to all registered listeners.
func (s *MockSession) Emit(e Event) {
	s.mu.Lock()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()
	for _, l := range listeners {
		l.OnTransportEvent(e)
	}
}

// SetPlaying updates the playing flag, marks the session ready and emits
// IsPlayingChanged.
func (s *MockSession) SetPlaying(playing bool) {
	s.mu.Lock()
	s.playing = playing
	s.playWhenReady = playing
	s.state = StateReady
	s.mu.Unlock()
	s.Emit(IsPlayingChanged{Playing: playing})
}

// SetCurrentIndex moves the current item without emitting events.
func (s *MockSession) SetCurrentIndex(i int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.index = i
}

// SetMediaItemsDirect replaces the items without recording a call, as if
// something outside the player had loaded them.
func (s *MockSession) SetMediaItemsDirect(items []MediaItem, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	s.index = index
}

// Transition moves to item index i and emits MediaItemTransition.
func (s *MockSession) Transition(i int, reason TransitionReason) {
	s.mu.Lock()
	s.index = i
	var item *MediaItem
	if i >= 0 && i < len(s.items) {
		it := s.items[i]
		item = &it
	}
	s.mu.Unlock()
	s.Emit(MediaItemTransition{Item: item, Reason: reason})
}

func (s *MockSession) SetPosition(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.position = d
}

func (s *MockSession) SetDuration(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duration = d
}

func (s *MockSession) SetPlayWhenReady(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playWhenReady = v
}

func (s *MockSession) SetPlaybackState(state PlaybackState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// Calls returns the recorded command calls.
func (s *MockSession) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.calls)
}

// ResetCalls clears the recorded calls.
func (s *MockSession) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.seekCalls = nil
}

// SeekCalls returns the positions passed to SeekTo.
func (s *MockSession) SeekCalls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.seekCalls)
}

func (s *MockSession) Items() []MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

func (s *MockSession) RepeatMode() RepeatMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.repeat
}

func (s *MockSession) Speed() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.speed
}

func (s *MockSession) ListenerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *MockSession) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Verify mocks implement the interfaces at compile time.
var (
	_ Connector = (*MockConnector)(nil)
	_ Session   = (*MockSession)(nil)
)
