package engine

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/transport"
)

// restartThreshold: skipping back further into an item than this restarts it
// instead of moving to the previous one.
const restartThreshold = 3 * time.Second

// track is a decoded media item attached to the speaker.
type track struct {
	streamer  beep.StreamSeekCloser
	format    beep.Format
	resampler *beep.Resampler
	ctrl      *beep.Ctrl
	duration  time.Duration
}

// Session plays a list of media items. Events are delivered in order on a
// dedicated goroutine.
type Session struct {
	c   *Connector
	log logrus.FieldLogger

	mu            sync.Mutex
	items         []transport.MediaItem
	index         int
	startPosition time.Duration
	state         transport.PlaybackState
	playWhenReady bool
	playing       bool
	repeat        transport.RepeatMode
	speed         float64
	listeners     []transport.Listener
	released      bool
	gen           uint64 // bumped on every load
	track         *track
	cancelLoad    context.CancelFunc

	queue []transport.Event
	wake  chan struct{}
	done  chan struct{}
}

func newSession(c *Connector) *Session {
	s := &Session{
		c:     c,
		log:   c.log,
		index: -1,
		speed: 1,
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
	}
	go s.dispatch()
	return s
}

func (s *Session) dispatch() {
	for {
		select {
		case <-s.done:
			return
		case <-s.wake:
		}
		s.mu.Lock()
		events := s.queue
		s.queue = nil
		listeners := slices.Clone(s.listeners)
		s.mu.Unlock()

		for _, e := range events {
			for _, l := range listeners {
				l.OnTransportEvent(e)
			}
		}
	}
}

// emitLocked queues e for the listeners. s.mu must be held.
func (s *Session) emitLocked(e transport.Event) {
	s.queue = append(s.queue, e)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Session) setStateLocked(state transport.PlaybackState) {
	if s.state == state {
		return
	}
	s.state = state
	s.emitLocked(transport.PlaybackStateChanged{State: state})
}

func (s *Session) setPlayingLocked(playing bool) {
	if s.playing == playing {
		return
	}
	s.playing = playing
	if s.track != nil {
		s.c.out.Lock()
		s.track.ctrl.Paused = !playing
		s.c.out.Unlock()
	}
	s.emitLocked(transport.IsPlayingChanged{Playing: playing})
}

func (s *Session) SetMediaItems(items []transport.MediaItem, startIndex int, startPosition time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.unloadLocked()
	s.items = slices.Clone(items)
	s.index = -1
	if len(items) > 0 {
		s.index = min(max(startIndex, 0), len(items)-1)
	}
	s.startPosition = max(startPosition, 0)
	s.setStateLocked(transport.StateIdle)
	s.emitLocked(transport.MediaItemTransition{Item: s.currentLocked(), Reason: transport.TransitionPlaylistChanged})
}

func (s *Session) ClearMediaItems() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || len(s.items) == 0 {
		return
	}
	s.unloadLocked()
	s.items = nil
	s.index = -1
	s.setStateLocked(transport.StateIdle)
	s.emitLocked(transport.MediaItemTransition{Reason: transport.TransitionPlaylistChanged})
}

func (s *Session) Prepare() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released || s.index < 0 {
		return
	}
	s.loadLocked(s.index, s.startPosition)
	s.startPosition = 0
}

func (s *Session) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playWhenReady = true
	if s.track != nil && s.state == transport.StateReady {
		s.setPlayingLocked(true)
	}
}

func (s *Session) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playWhenReady = false
	s.setPlayingLocked(false)
}

func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playWhenReady = false
	s.unloadLocked()
	s.setStateLocked(transport.StateIdle)
}

func (s *Session) SeekTo(position time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seekLocked(position, transport.DiscontinuitySeek)
}

func (s *Session) seekLocked(position time.Duration, reason transport.DiscontinuityReason) {
	if s.track == nil {
		s.startPosition = max(position, 0)
		return
	}
	old := s.positionLocked()
	t := s.track
	s.c.out.Lock()
	err := t.streamer.Seek(min(t.format.SampleRate.N(max(position, 0)), t.streamer.Len()))
	s.c.out.Unlock()
	if err != nil {
		s.log.WithError(err).Warn("seek failed")
		return
	}
	s.emitLocked(transport.PositionDiscontinuity{
		Old:    transport.PositionInfo{MediaIndex: s.index, Position: old},
		New:    transport.PositionInfo{MediaIndex: s.index, Position: s.positionLocked()},
		Reason: reason,
	})
}

func (s *Session) SeekToNextMediaItem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.index + 1
	if next >= len(s.items) {
		if s.repeat != transport.RepeatAll || len(s.items) == 0 {
			return
		}
		next = 0
	}
	s.moveLocked(next, transport.TransitionSeek)
}

func (s *Session) SeekToPreviousMediaItem() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return
	}
	if s.track != nil && s.positionLocked() > restartThreshold {
		s.seekLocked(0, transport.DiscontinuitySeek)
		return
	}
	prev := s.index - 1
	if prev < 0 {
		if s.repeat != transport.RepeatAll {
			s.seekLocked(0, transport.DiscontinuitySeek)
			return
		}
		prev = len(s.items) - 1
	}
	s.moveLocked(prev, transport.TransitionSeek)
}

// moveLocked makes idx the current item, loading it if the session was
// prepared.
func (s *Session) moveLocked(idx int, reason transport.TransitionReason) {
	old := transport.PositionInfo{MediaIndex: s.index}
	if s.track != nil {
		old.Position = s.positionLocked()
	}
	prepared := s.state != transport.StateIdle
	s.index = idx

	discontinuity := transport.DiscontinuitySeek
	if reason == transport.TransitionAuto {
		discontinuity = transport.DiscontinuityAutoTransition
	}
	s.emitLocked(transport.PositionDiscontinuity{
		Old:    old,
		New:    transport.PositionInfo{MediaIndex: idx},
		Reason: discontinuity,
	})
	s.emitLocked(transport.MediaItemTransition{Item: s.currentLocked(), Reason: reason})
	if prepared {
		s.loadLocked(idx, 0)
	}
}

func (s *Session) SetRepeatMode(mode transport.RepeatMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.repeat = mode
}

func (s *Session) SetPlaybackSpeed(speed float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if speed <= 0 {
		return
	}
	s.speed = speed
	if t := s.track; t != nil {
		s.c.out.Lock()
		t.resampler.SetRatio(s.ratio(t.format))
		s.c.out.Unlock()
	}
}

// ratio converts the item's sample rate to the speaker's, sped up by the
// playback speed.
func (s *Session) ratio(format beep.Format) float64 {
	return float64(format.SampleRate) / float64(s.c.opts.SampleRate) * s.speed
}

func (s *Session) AddListener(l transport.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

func (s *Session) RemoveListener(l transport.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = slices.DeleteFunc(s.listeners, func(x transport.Listener) bool { return x == l })
}

func (s *Session) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.unloadLocked()
	s.released = true
	s.listeners = nil
	close(s.done)
}

func (s *Session) CurrentPosition() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.track == nil {
		return s.startPosition
	}
	return s.positionLocked()
}

func (s *Session) positionLocked() time.Duration {
	t := s.track
	s.c.out.Lock()
	defer s.c.out.Unlock()
	return t.format.SampleRate.D(t.streamer.Position())
}

func (s *Session) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.track == nil {
		return 0
	}
	return s.track.duration
}

func (s *Session) CurrentMediaItem() *transport.MediaItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() *transport.MediaItem {
	if s.index < 0 || s.index >= len(s.items) {
		return nil
	}
	item := s.items[s.index]
	return &item
}

func (s *Session) CurrentMediaIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

func (s *Session) PlaybackState() transport.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Session) PlayWhenReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playWhenReady
}

// Verify Session implements transport.Session at compile time.
var _ transport.Session = (*Session)(nil)
