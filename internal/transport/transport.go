// Package transport defines the contract of the media engine the player
// drives: a connector that opens sessions, and sessions that play lists of
// media items and report what happens through events.
package transport

import (
	"context"
	"time"
)

// MediaItem is what the transport plays.
type MediaItem struct {
	ID         string // stable media id, used to map events back to playable items
	URI        string
	Title      string
	Artist     string
	ArtworkURI string
}

// Connector opens transport sessions.
type Connector interface {
	// Connect blocks until a session is available or ctx ends.
	Connect(ctx context.Context) (Session, error)
}

// Listener receives transport events.
// Callbacks may arrive on any goroutine and must not block.
type Listener interface {
	OnTransportEvent(e Event)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(e Event)

func (f ListenerFunc) OnTransportEvent(e Event) { f(e) }

// Session is a connected transport. Implementations must be safe for
// concurrent use.
type Session interface {
	SetMediaItems(items []MediaItem, startIndex int, startPosition time.Duration)
	ClearMediaItems()
	Prepare()
	Play()
	Pause()
	Stop()
	SeekTo(position time.Duration)
	SeekToNextMediaItem()
	SeekToPreviousMediaItem()
	SetRepeatMode(mode RepeatMode)
	SetPlaybackSpeed(speed float64)

	AddListener(l Listener)
	RemoveListener(l Listener)
	// Release frees the session. It must not be used afterwards.
	Release()

	CurrentPosition() time.Duration
	// Duration returns the current item's duration, or <= 0 if unknown.
	Duration() time.Duration
	CurrentMediaItem() *MediaItem
	CurrentMediaIndex() int
	PlaybackState() PlaybackState
	IsPlaying() bool
	PlayWhenReady() bool
}
