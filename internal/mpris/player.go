package mpris

import (
	"context"
	"time"

	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

// Player is the part of the playback service driven by media keys.
type Player interface {
	TogglePlaying() error
	SeekTo(position time.Duration) error
	SkipToNext() error
	SkipToPrevious() error
	Dismiss() error
	SetPlaybackSpeed(ctx context.Context, speed float64) error
	SetAutoPlayNext(ctx context.Context, enabled bool) error
	State() playback.State
	CurrentProgress() *playback.Progress
}

// View supplies what the player currently shows.
type View interface {
	Current() uistate.UiState
}
