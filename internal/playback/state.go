package playback

import (
	"fmt"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/transport"
)

// State is the machine's internal state. The machine holds exactly one at a
// time:
//
//	Init ──play──▶ AudioQueued ──connected──▶ AudioPrepare ──is-playing──▶ AudioPlaying
//	  │                 │                          ▲    │                    │   ▲
//	  │             failed                         │   error            paused  playing
//	  │                 ▼                          │    ▼                    ▼   │
//	  │           ControllerError ──play──▶ AudioQueued  AudioError      AudioReady
//	  │
//	  └──connected (nothing queued)──▶ ControllerReady ──play──▶ AudioPrepare
//
// Dismiss returns to Init from any state.
type State interface {
	fmt.Stringer
	state()
}

// Init: no session, nothing queued.
type Init struct{}

// AudioQueued: a play request exists but no session is connected yet.
type AudioQueued struct {
	Item item.PlayableItem
}

// ControllerReady: a session is connected and idle.
type ControllerReady struct {
	Session transport.Session
}

// ControllerError: connecting to the transport failed.
type ControllerError struct {
	Cause error
}

// AudioPrepare: Item was submitted to the session and is being prepared.
type AudioPrepare struct {
	Session transport.Session
	Item    item.PlayableItem
}

// AudioReady: Item is prepared and paused.
type AudioReady struct {
	Session transport.Session
	Item    item.PlayableItem
}

// AudioPlaying: Item is prepared and playing.
type AudioPlaying struct {
	Session transport.Session
	Item    item.PlayableItem
}

// AudioError: the session failed to play Item.
type AudioError struct {
	Session transport.Session
	Item    item.PlayableItem
	Err     *PlayerError
}

func (Init) state()            {}
func (AudioQueued) state()     {}
func (ControllerReady) state() {}
func (ControllerError) state() {}
func (AudioPrepare) state()    {}
func (AudioReady) state()      {}
func (AudioPlaying) state()    {}
func (AudioError) state()      {}

func (Init) String() string { return "Init" }

func (s AudioQueued) String() string { return fmt.Sprintf("AudioQueued(%s)", s.Item) }

func (s ControllerReady) String() string { return fmt.Sprintf("ControllerReady(%p)", s.Session) }

func (s ControllerError) String() string { return fmt.Sprintf("ControllerError(%v)", s.Cause) }

func (s AudioPrepare) String() string {
	return fmt.Sprintf("AudioPrepare(%p, %s)", s.Session, s.Item)
}

func (s AudioReady) String() string {
	return fmt.Sprintf("AudioReady(%p, %s)", s.Session, s.Item)
}

func (s AudioPlaying) String() string {
	return fmt.Sprintf("AudioPlaying(%p, %s)", s.Session, s.Item)
}

func (s AudioError) String() string {
	return fmt.Sprintf("AudioError(%p, %s, %v)", s.Session, s.Item, s.Err)
}

// SessionOf returns the session held by s, or nil.
func SessionOf(s State) transport.Session {
	switch s := s.(type) {
	case ControllerReady:
		return s.Session
	case AudioPrepare:
		return s.Session
	case AudioReady:
		return s.Session
	case AudioPlaying:
		return s.Session
	case AudioError:
		return s.Session
	case Init, AudioQueued, ControllerError:
		return nil
	}
	return nil
}

// ItemOf returns the item held by s, or nil.
func ItemOf(s State) item.PlayableItem {
	switch s := s.(type) {
	case AudioQueued:
		return s.Item
	case AudioPrepare:
		return s.Item
	case AudioReady:
		return s.Item
	case AudioPlaying:
		return s.Item
	case AudioError:
		return s.Item
	case Init, ControllerReady, ControllerError:
		return nil
	}
	return nil
}

// WithItem returns s carrying it instead of its current item. States without
// an item are returned unchanged.
func WithItem(s State, it item.PlayableItem) State {
	switch s := s.(type) {
	case AudioQueued:
		s.Item = it
		return s
	case AudioPrepare:
		s.Item = it
		return s
	case AudioReady:
		s.Item = it
		return s
	case AudioPlaying:
		s.Item = it
		return s
	case AudioError:
		s.Item = it
		return s
	case Init, ControllerReady, ControllerError:
		return s
	}
	return s
}

// HasSession reports whether s holds a transport session.
func HasSession(s State) bool {
	return SessionOf(s) != nil
}

func isPreparing(s State) bool {
	switch s.(type) {
	case AudioPrepare, AudioQueued:
		return true
	}
	return false
}
