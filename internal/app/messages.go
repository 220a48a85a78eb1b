package app

import (
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

// UiStateMsg carries a new projected player state.
type UiStateMsg struct {
	State uistate.UiState
}

// ProgressMsg carries a progress sample, nil when nothing plays.
type ProgressMsg struct {
	Progress *playback.Progress
}

// PlaylistMsg carries the user's playlist after a change.
type PlaylistMsg struct {
	Playlist playback.PlaylistSnapshot
}

// IntentErrorMsg reports a failed player intent.
type IntentErrorMsg struct {
	Message string
}
