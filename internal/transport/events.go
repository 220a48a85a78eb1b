package transport

import (
	"fmt"
	"time"
)

// Event is one of the transport events below.
type Event interface {
	transportEvent()
}

// IsPlayingChanged is emitted when the session starts or stops producing audio.
type IsPlayingChanged struct {
	Playing bool
}

// PlayerErrorEvent is emitted when playback of the current item fails.
type PlayerErrorEvent struct {
	Err *PlaybackError
}

// PlaybackStateChanged is emitted when the playback state changes.
type PlaybackStateChanged struct {
	State PlaybackState
}

// PositionInfo locates a playback position.
type PositionInfo struct {
	MediaIndex int
	Position   time.Duration
}

// PositionDiscontinuity is emitted when the position jumps.
type PositionDiscontinuity struct {
	Old    PositionInfo
	New    PositionInfo
	Reason DiscontinuityReason
}

// MediaItemTransition is emitted when another media item becomes current.
// Item is nil if the session's item list became empty.
type MediaItemTransition struct {
	Item   *MediaItem
	Reason TransitionReason
}

func (IsPlayingChanged) transportEvent()      {}
func (PlayerErrorEvent) transportEvent()      {}
func (PlaybackStateChanged) transportEvent()  {}
func (PositionDiscontinuity) transportEvent() {}
func (MediaItemTransition) transportEvent()   {}

func (e IsPlayingChanged) String() string {
	return fmt.Sprintf("IsPlayingChanged(%v)", e.Playing)
}

func (e PlayerErrorEvent) String() string {
	return fmt.Sprintf("PlayerError(%v)", e.Err)
}

func (e PlaybackStateChanged) String() string {
	return fmt.Sprintf("PlaybackStateChanged(%s)", e.State)
}

func (e PositionDiscontinuity) String() string {
	return fmt.Sprintf("PositionDiscontinuity(%d@%v -> %d@%v, %s)",
		e.Old.MediaIndex, e.Old.Position, e.New.MediaIndex, e.New.Position, e.Reason)
}

func (e MediaItemTransition) String() string {
	id := "<nil>"
	if e.Item != nil {
		id = e.Item.ID
	}
	return fmt.Sprintf("MediaItemTransition(%s, %s)", id, e.Reason)
}
