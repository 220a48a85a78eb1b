package playback

import (
	"errors"
	"testing"

	"github.com/llehouerou/tazaudio/internal/transport"
)

func TestClassifyPlaybackError(t *testing.T) {
	tests := []struct {
		code transport.ErrorCode
		want ErrorKind
	}{
		{transport.ErrorTimeout, ErrorNetwork},
		{transport.ErrorIOUnspecified, ErrorNetwork},
		{transport.ErrorIONetworkConnectionFailed, ErrorNetwork},
		{transport.ErrorIONetworkConnectionTimeout, ErrorNetwork},
		{transport.ErrorIOInvalidHTTPContentType, ErrorNetwork},
		{transport.ErrorIOBadHTTPStatus, ErrorNetwork},
		{transport.ErrorUnspecified, ErrorGeneric},
		{transport.ErrorRemote, ErrorGeneric},
		{transport.ErrorIOFileNotFound, ErrorGeneric},
		{transport.ErrorIONoPermission, ErrorGeneric},
		{transport.ErrorDecodingFailed, ErrorGeneric},
		{transport.ErrorDecodingFormatUnsupported, ErrorGeneric},
		{transport.ErrorAudioTrackInitFailed, ErrorGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			cause := &transport.PlaybackError{Code: tt.code, Message: "failed"}
			got := ClassifyPlaybackError(cause)
			if got.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", got.Kind, tt.want)
			}
			if !errors.Is(got, cause) {
				t.Error("classified error does not wrap its cause")
			}
		})
	}
}

func TestClassifyPlaybackError_Nil(t *testing.T) {
	got := ClassifyPlaybackError(nil)
	if got.Kind != ErrorGeneric || got.Cause != nil {
		t.Errorf("ClassifyPlaybackError(nil) = %+v, want generic without cause", got)
	}
	if got.Error() == "" {
		t.Error("Error() is empty")
	}
}
