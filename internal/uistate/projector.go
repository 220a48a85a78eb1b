package uistate

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/playback"
)

// PlayerService is the part of the playback service the projector needs.
type PlayerService interface {
	States() *broadcast.Subscription[playback.State]
	Dismiss() error
}

type uiCell struct {
	ui UiState
}

// Projector publishes the UiState of a player.
type Projector struct {
	player  PlayerService
	prefs   playback.Preferences
	tracker playback.Tracker
	log     logrus.FieldLogger

	expanded atomic.Bool
	refresh  chan struct{}

	current atomic.Pointer[uiCell]
	out     *broadcast.Value[UiState]

	mu      sync.Mutex
	state   playback.State
	speed   float64
	auto    bool
	handled *playback.PlayerError
}

// NewProjector creates a projector. tracker and log may be nil.
func NewProjector(player PlayerService, prefs playback.Preferences, tracker playback.Tracker, log logrus.FieldLogger) *Projector {
	if tracker == nil {
		tracker = playback.NopTracker{}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	p := &Projector{
		player:  player,
		prefs:   prefs,
		tracker: tracker,
		log:     log.WithField("component", "uistate"),
		refresh: make(chan struct{}, 1),
		out:     broadcast.NewValue[UiState](Hidden{}),
		state:   playback.Init{},
		speed:   prefs.PlaybackSpeed(),
		auto:    prefs.AutoPlayNext(),
	}
	p.current.Store(&uiCell{ui: Hidden{}})
	return p
}

// Run recomputes the UiState whenever an input changes, until ctx is done.
func (p *Projector) Run(ctx context.Context) error {
	states := p.player.States()
	defer states.Cancel()
	speeds := p.prefs.SubscribePlaybackSpeed()
	defer speeds.Cancel()
	autos := p.prefs.SubscribeAutoPlayNext()
	defer autos.Cancel()
	defer p.out.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-states.Done:
			return nil
		case s := <-states.C:
			p.mu.Lock()
			p.state = s
			p.mu.Unlock()
		case v := <-speeds.C:
			p.mu.Lock()
			p.speed = v
			p.mu.Unlock()
		case v := <-autos.C:
			p.mu.Lock()
			p.auto = v
			p.mu.Unlock()
		case <-p.refresh:
		}
		p.recompute()
	}
}

// Current returns the latest UiState.
func (p *Projector) Current() UiState {
	return p.current.Load().ui
}

// Subscribe subscribes to UiState changes.
func (p *Projector) Subscribe() *broadcast.Subscription[UiState] {
	return p.out.Subscribe()
}

// SetExpanded expands or collapses the player. It stays that way across
// state changes.
func (p *Projector) SetExpanded(expanded bool) {
	if p.expanded.Swap(expanded) == expanded {
		return
	}
	action := playback.ActionCollapse
	if expanded {
		action = playback.ActionExpand
	}
	p.tracker.Track(playback.TrackEvent{Action: action})
	p.requestRefresh()
}

// Expanded reports whether the player is expanded.
func (p *Projector) Expanded() bool {
	return p.expanded.Load()
}

// OnErrorHandled acknowledges an error the host has shown. An Error is
// marked handled; an InitError dismisses the player.
func (p *Projector) OnErrorHandled(shown UiState) {
	switch s := shown.(type) {
	case Error:
		p.mu.Lock()
		p.handled = s.Err
		p.mu.Unlock()
		p.swap(func(cur UiState) (UiState, bool) {
			e, ok := cur.(Error)
			if !ok || e.WasHandled || !sameError(e.Err, s.Err) {
				return cur, false
			}
			e.WasHandled = true
			return e, true
		})
	case InitError:
		p.swap(func(cur UiState) (UiState, bool) {
			e, ok := cur.(InitError)
			if !ok || e.WasHandled {
				return cur, false
			}
			e.WasHandled = true
			return e, true
		})
		if err := p.player.Dismiss(); err != nil {
			p.log.WithError(err).Warn("could not dismiss player")
		}
	case Hidden, Initializing, Playing, Paused:
	}
}

func (p *Projector) requestRefresh() {
	select {
	case p.refresh <- struct{}{}:
	default:
	}
}

func (p *Projector) recompute() {
	p.swap(func(UiState) (UiState, bool) {
		return p.project(), true
	})
}

func (p *Projector) project() UiState {
	p.mu.Lock()
	defer p.mu.Unlock()
	ui := Project(p.state, p.expanded.Load(), p.speed, p.auto)
	if e, ok := ui.(Error); ok && sameError(e.Err, p.handled) {
		e.WasHandled = true
		ui = e
	}
	return ui
}

// swap replaces the current UiState with compare-and-swap and publishes it
// if it changed.
func (p *Projector) swap(fn func(cur UiState) (UiState, bool)) {
	for {
		cell := p.current.Load()
		next, ok := fn(cell.ui)
		if !ok || Equal(cell.ui, next) {
			return
		}
		if p.current.CompareAndSwap(cell, &uiCell{ui: next}) {
			p.out.Store(next)
			return
		}
	}
}
