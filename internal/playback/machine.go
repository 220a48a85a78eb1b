package playback

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/playlist"
	"github.com/llehouerou/tazaudio/internal/transport"
)

// Verify Machine implements Service at compile time.
var _ Service = (*Machine)(nil)

const eventBuffer = 128

// Config tunes the machine.
type Config struct {
	ProgressInterval time.Duration
	SeekStep         time.Duration
	BreakMargin      time.Duration
	ConnectTimeout   time.Duration
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		ProgressInterval: 200 * time.Millisecond,
		SeekStep:         15 * time.Second,
		BreakMargin:      2 * time.Second,
		ConnectTimeout:   5 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = d.ProgressInterval
	}
	if c.SeekStep <= 0 {
		c.SeekStep = d.SeekStep
	}
	if c.BreakMargin < 0 {
		c.BreakMargin = d.BreakMargin
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	return c
}

// Deps are the machine's collaborators. PlaylistStore, Tracker and Logger
// are optional.
type Deps struct {
	Connector     transport.Connector
	Resolver      Resolver
	Preferences   Preferences
	PlaylistStore PlaylistStore
	Tracker       Tracker
	Logger        logrus.FieldLogger
}

// stateCell boxes a State so that every store gets a distinct pointer for
// compare-and-swap.
type stateCell struct {
	state State
}

// Machine is the player state machine. All transitions happen on the
// goroutine running Run; everything else talks to it through Send.
type Machine struct {
	cfg       Config
	connector transport.Connector
	resolver  Resolver
	prefs     Preferences
	store     PlaylistStore
	tracker   Tracker
	log       logrus.FieldLogger

	cell     atomic.Pointer[stateCell]
	states   *broadcast.Value[State]
	progress *broadcast.Value[*Progress]

	events  chan Event
	done    chan struct{}
	running atomic.Bool

	// Owned by the Run goroutine.
	ctx          context.Context
	listener     *sessionListener
	sampler      *sampler
	speed        float64
	autoPlayNext bool
	lastPlayed   string
	playlistFlow bool // the current item was started from the playlist

	playlistMu    sync.RWMutex
	playlist      *playlist.Playlist
	playlistState *broadcast.Value[PlaylistSnapshot]
}

// New creates a machine in Init. Call Run to start it.
func New(cfg Config, deps Deps) (*Machine, error) {
	if deps.Connector == nil {
		return nil, errors.New("playback: connector is required")
	}
	if deps.Resolver == nil {
		return nil, ErrNoResolver
	}
	if deps.Preferences == nil {
		return nil, errors.New("playback: preferences are required")
	}
	if deps.Tracker == nil {
		deps.Tracker = NopTracker{}
	}
	if deps.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		deps.Logger = l
	}

	m := &Machine{
		cfg:           cfg.withDefaults(),
		connector:     deps.Connector,
		resolver:      deps.Resolver,
		prefs:         deps.Preferences,
		store:         deps.PlaylistStore,
		tracker:       deps.Tracker,
		log:           deps.Logger.WithField("component", "player"),
		states:        broadcast.NewValue[State](Init{}),
		progress:      broadcast.NewValue[*Progress](nil),
		events:        make(chan Event, eventBuffer),
		done:          make(chan struct{}),
		ctx:           context.Background(),
		speed:         1,
		playlist:      playlist.New(),
		playlistState: broadcast.NewValue(PlaylistSnapshot{Current: -1}),
	}
	m.cell.Store(&stateCell{state: Init{}})
	return m, nil
}

// Run processes events until ctx is done, then releases the session.
// It must be called once.
func (m *Machine) Run(ctx context.Context) error {
	if !m.running.CompareAndSwap(false, true) {
		return errors.New("playback: machine already running")
	}
	m.ctx = ctx

	var wg sync.WaitGroup
	defer wg.Wait()
	defer close(m.done)
	defer m.shutdown()

	speedSub := m.prefs.SubscribePlaybackSpeed()
	defer speedSub.Cancel()
	autoSub := m.prefs.SubscribeAutoPlayNext()
	defer autoSub.Cancel()
	m.speed = m.prefs.PlaybackSpeed()
	m.autoPlayNext = m.prefs.AutoPlayNext()

	if m.store != nil {
		snapshots := m.playlistState.Subscribe()
		wg.Go(func() { m.restoreFromStore(ctx) })
		wg.Go(func() { m.persistPlaylist(ctx, snapshots) })
	}

	m.log.Debug("player started")
	for {
		select {
		case <-ctx.Done():
			m.log.Debug("player stopping")
			return nil
		case ev := <-m.events:
			m.handle(ev)
		case v := <-speedSub.C:
			m.handle(speedChanged{speed: v})
		case v := <-autoSub.C:
			m.handle(autoPlayNextChanged{enabled: v})
		}
	}
}

// Send delivers ev to the machine loop. It returns false once the machine
// has stopped.
func (m *Machine) Send(ev Event) bool {
	select {
	case <-m.done:
		return false
	default:
	}
	select {
	case m.events <- ev:
		return true
	case <-m.done:
		return false
	}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.cell.Load().state
}

// States subscribes to state changes. The subscription starts with the
// current state.
func (m *Machine) States() *broadcast.Subscription[State] {
	return m.states.Subscribe()
}

// CurrentProgress returns the latest progress sample, or nil.
func (m *Machine) CurrentProgress() *Progress {
	return m.progress.Load()
}

// Progress subscribes to progress samples.
func (m *Machine) Progress() *broadcast.Subscription[*Progress] {
	return m.progress.Subscribe()
}

// update applies fn to the current state with compare-and-swap, retrying
// until the swap succeeds. fn may run several times and must not have side
// effects. ok is false if fn declined the transition.
func (m *Machine) update(fn func(prev State) (State, bool)) (prev, next State, ok bool) {
	for {
		cell := m.cell.Load()
		candidate, accepted := fn(cell.state)
		if !accepted {
			return cell.state, cell.state, false
		}
		if m.cell.CompareAndSwap(cell, &stateCell{state: candidate}) {
			m.published(cell.state, candidate)
			return cell.state, candidate, true
		}
		m.log.Debug("state changed concurrently, retrying transition")
	}
}

// force stores s unconditionally. Only dismissing uses it.
func (m *Machine) force(s State) {
	prev := m.cell.Swap(&stateCell{state: s})
	m.published(prev.state, s)
}

func (m *Machine) published(prev, next State) {
	m.log.WithFields(logrus.Fields{"from": prev.String(), "to": next.String()}).Debug("state transition")
	m.states.Store(next)

	if p, ok := next.(AudioPlaying); ok && p.Item.MediaID() != m.lastPlayed {
		m.lastPlayed = p.Item.MediaID()
		m.tracker.Track(TrackEvent{Action: ActionPlay, Item: p.Item})
	}
	if _, ok := next.(Init); ok {
		m.lastPlayed = ""
	}
}

func (m *Machine) handle(ev Event) {
	switch e := ev.(type) {
	case PlayIntent:
		m.playlistFlow = false
		m.recordPlayed(e.Item)
		m.enqueueAndPlay(e.Item)
	case playlistPlay:
		m.playFromPlaylist(e.index)
	case playlistEnqueue:
		m.onPlaylistEnqueue(e.item)
	case playlistRemove:
		m.onPlaylistRemove(e.index)
	case playlistMove:
		m.onPlaylistMove(e.from, e.to)
	case playlistClear:
		m.onPlaylistClear()
	case ToggleIntent:
		m.toggle()
	case SeekIntent:
		m.seek(e)
	case SkipIntent:
		m.skip(e.Forward)
	case DismissIntent:
		m.playlistFlow = false
		m.dismiss()
	case TransportEvent:
		m.onTransportEvent(e)
	case sessionConnected:
		m.onSessionConnected(e.session)
	case sessionFailed:
		m.onSessionFailed(e.err)
	case speedChanged:
		m.onSpeedChanged(e.speed)
	case autoPlayNextChanged:
		m.onAutoPlayNextChanged(e.enabled)
	case playlistRestored:
		m.onPlaylistRestored(e)
	default:
		m.log.Warnf("unhandled event %T", ev)
	}
}

func (m *Machine) shutdown() {
	m.dismiss()
	m.states.Close()
	m.progress.Close()
	m.playlistState.Close()
	m.log.Debug("player stopped")
}
