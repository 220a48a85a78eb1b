package transport

import "fmt"

// ErrorCode classifies playback failures.
type ErrorCode int

const (
	ErrorUnspecified ErrorCode = iota
	ErrorRemote
	ErrorTimeout
	ErrorIOUnspecified
	ErrorIONetworkConnectionFailed
	ErrorIONetworkConnectionTimeout
	ErrorIOInvalidHTTPContentType
	ErrorIOBadHTTPStatus
	ErrorIOFileNotFound
	ErrorIONoPermission
	ErrorDecodingFailed
	ErrorDecodingFormatUnsupported
	ErrorAudioTrackInitFailed
)

var errorCodeNames = map[ErrorCode]string{
	ErrorUnspecified:                "ERROR_CODE_UNSPECIFIED",
	ErrorRemote:                     "ERROR_CODE_REMOTE_ERROR",
	ErrorTimeout:                    "ERROR_CODE_TIMEOUT",
	ErrorIOUnspecified:              "ERROR_CODE_IO_UNSPECIFIED",
	ErrorIONetworkConnectionFailed:  "ERROR_CODE_IO_NETWORK_CONNECTION_FAILED",
	ErrorIONetworkConnectionTimeout: "ERROR_CODE_IO_NETWORK_CONNECTION_TIMEOUT",
	ErrorIOInvalidHTTPContentType:   "ERROR_CODE_IO_INVALID_HTTP_CONTENT_TYPE",
	ErrorIOBadHTTPStatus:            "ERROR_CODE_IO_BAD_HTTP_STATUS",
	ErrorIOFileNotFound:             "ERROR_CODE_IO_FILE_NOT_FOUND",
	ErrorIONoPermission:             "ERROR_CODE_IO_NO_PERMISSION",
	ErrorDecodingFailed:             "ERROR_CODE_DECODING_FAILED",
	ErrorDecodingFormatUnsupported:  "ERROR_CODE_DECODING_FORMAT_UNSUPPORTED",
	ErrorAudioTrackInitFailed:       "ERROR_CODE_AUDIO_TRACK_INIT_FAILED",
}

func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("ERROR_CODE_%d", int(c))
}

// PlaybackError is reported by a session when the current item fails.
type PlaybackError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *PlaybackError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.Cause)
	}
	return e.Code.String()
}

func (e *PlaybackError) Unwrap() error {
	return e.Cause
}
