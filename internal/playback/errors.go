package playback

import (
	"errors"
	"fmt"

	"github.com/llehouerou/tazaudio/internal/transport"
)

// ErrorKind classifies player errors for the user.
type ErrorKind int

const (
	ErrorGeneric ErrorKind = iota
	ErrorNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorGeneric:
		return "Generic"
	case ErrorNetwork:
		return "Network"
	default:
		return "Unknown"
	}
}

// PlayerError is a user-visible player failure.
type PlayerError struct {
	Kind  ErrorKind
	Cause error
}

func (e *PlayerError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s player error", e.Kind)
	}
	return fmt.Sprintf("%s player error: %v", e.Kind, e.Cause)
}

func (e *PlayerError) Unwrap() error {
	return e.Cause
}

// Sentinel errors returned by intents.
var (
	ErrNotRunning  = errors.New("player is not running")
	ErrNoResolver  = errors.New("no item resolver configured")
	ErrOutOfRange  = errors.New("playlist index out of range")
	ErrInvalidRate = errors.New("playback speed out of range")
)

// ClassifyPlaybackError maps a transport failure to a PlayerError.
func ClassifyPlaybackError(err *transport.PlaybackError) *PlayerError {
	if err == nil {
		return &PlayerError{Kind: ErrorGeneric}
	}
	switch err.Code {
	case transport.ErrorTimeout,
		transport.ErrorIOUnspecified,
		transport.ErrorIONetworkConnectionFailed,
		transport.ErrorIONetworkConnectionTimeout,
		transport.ErrorIOInvalidHTTPContentType,
		transport.ErrorIOBadHTTPStatus:
		return &PlayerError{Kind: ErrorNetwork, Cause: err}
	case transport.ErrorUnspecified,
		transport.ErrorRemote,
		transport.ErrorIOFileNotFound,
		transport.ErrorIONoPermission,
		transport.ErrorDecodingFailed,
		transport.ErrorDecodingFormatUnsupported,
		transport.ErrorAudioTrackInitFailed:
		return &PlayerError{Kind: ErrorGeneric, Cause: err}
	}
	return &PlayerError{Kind: ErrorGeneric, Cause: err}
}
