package state

import (
	"github.com/llehouerou/tazaudio/internal/playback"
)

// Interface defines the state manager contract for dependency injection and testing.
type Interface interface {
	playback.Preferences
	playback.PlaylistStore
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
