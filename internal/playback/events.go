package playback

import (
	"fmt"
	"time"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/transport"
)

// Event is anything the machine loop reacts to: user intents, transport
// events and internal notifications. All of them enter through Machine.Send.
type Event interface {
	machineEvent()
}

// PlayIntent asks the machine to play an already resolved item.
type PlayIntent struct {
	Item item.PlayableItem
}

// ToggleIntent toggles between playing and paused, or retries after an error.
type ToggleIntent struct{}

// SeekMode selects how a SeekIntent moves.
type SeekMode int

const (
	SeekAbsolute SeekMode = iota
	SeekForward
	SeekBackward
)

// SeekIntent seeks within the current media. Position is only used by
// SeekAbsolute.
type SeekIntent struct {
	Mode     SeekMode
	Position time.Duration
}

// SkipIntent moves to the next or previous media of the transport list.
type SkipIntent struct {
	Forward bool
}

// DismissIntent stops playback and releases the session.
type DismissIntent struct{}

// TransportEvent is a transport event tagged with the session it came from.
// Events of any session but the current one are dropped.
type TransportEvent struct {
	Session transport.Session
	Event   transport.Event
}

type playlistPlay struct {
	index int
}

type playlistEnqueue struct {
	item item.PlayableItem
}

type playlistRemove struct {
	index int
}

type playlistMove struct {
	from, to int
}

type playlistClear struct{}

type sessionConnected struct {
	session transport.Session
}

type sessionFailed struct {
	err error
}

type speedChanged struct {
	speed float64
}

type autoPlayNextChanged struct {
	enabled bool
}

type playlistRestored struct {
	items   []item.PlayableItem
	current int
}

func (PlayIntent) machineEvent()          {}
func (ToggleIntent) machineEvent()        {}
func (SeekIntent) machineEvent()          {}
func (SkipIntent) machineEvent()          {}
func (DismissIntent) machineEvent()       {}
func (TransportEvent) machineEvent()      {}
func (playlistPlay) machineEvent()        {}
func (playlistEnqueue) machineEvent()     {}
func (playlistRemove) machineEvent()      {}
func (playlistMove) machineEvent()        {}
func (playlistClear) machineEvent()       {}
func (sessionConnected) machineEvent()    {}
func (sessionFailed) machineEvent()       {}
func (speedChanged) machineEvent()        {}
func (autoPlayNextChanged) machineEvent() {}
func (playlistRestored) machineEvent()    {}

func (m SeekMode) String() string {
	switch m {
	case SeekAbsolute:
		return "absolute"
	case SeekForward:
		return "forward"
	case SeekBackward:
		return "backward"
	default:
		return fmt.Sprintf("SeekMode(%d)", int(m))
	}
}

// Progress is the position within the current media.
type Progress struct {
	Position time.Duration
	Duration time.Duration
}

// Fraction returns the played fraction in [0, 1].
func (p *Progress) Fraction() float64 {
	if p == nil || p.Duration <= 0 {
		return 0
	}
	f := float64(p.Position) / float64(p.Duration)
	return min(max(f, 0), 1)
}

func (p *Progress) equal(o *Progress) bool {
	if p == nil || o == nil {
		return p == nil && o == nil
	}
	return *p == *o
}
