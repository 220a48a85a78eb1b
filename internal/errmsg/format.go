// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import (
	"errors"
	"fmt"

	"github.com/llehouerou/tazaudio/internal/playback"
)

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Playback operations
	OpPlaybackStart   Op = "start playback"
	OpPlaybackSeek    Op = "seek"
	OpPlaybackDismiss Op = "close player"
	OpPlayerConnect   Op = "connect player"

	// Resolution
	OpArticleLoad Op = "load article"
	OpIssueLoad   Op = "load issue"
	OpPodcastLoad Op = "load podcast"

	// Catalog
	OpCatalogLoad Op = "load catalog"

	// Persistence
	OpPreferencesSave Op = "save preferences"
	OpPlaylistRestore Op = "restore playlist"
	OpPlaylistSave    Op = "save playlist"

	// Playlist
	OpPlaylistAdd  Op = "add to playlist"
	OpPlaylistEdit Op = "edit playlist"

	// Media controls
	OpMPRISStart Op = "start media controls"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

// Player describes a player failure shown in the error popup.
func Player(err *playback.PlayerError) string {
	if err == nil {
		return ""
	}
	switch err.Kind {
	case playback.ErrorNetwork:
		return "Audio could not be loaded. Check your connection and try again."
	case playback.ErrorGeneric:
	}
	if err.Cause == nil {
		return "Audio playback failed."
	}
	var perr *playback.PlayerError
	if errors.As(err.Cause, &perr) && perr != err {
		return Player(perr)
	}
	return Format(OpPlaybackStart, err.Cause)
}
