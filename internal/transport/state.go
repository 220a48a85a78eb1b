package transport

// PlaybackState is the transport's playback state.
type PlaybackState int

const (
	StateIdle PlaybackState = iota
	StateBuffering
	StateReady
	StateEnded
)

// String returns the state name.
func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateBuffering:
		return "Buffering"
	case StateReady:
		return "Ready"
	case StateEnded:
		return "Ended"
	default:
		return "Unknown"
	}
}

// RepeatMode defines the repeat behavior of a session.
type RepeatMode int

const (
	RepeatOff RepeatMode = iota
	RepeatOne
	RepeatAll
)

// String returns the repeat mode name.
func (m RepeatMode) String() string {
	switch m {
	case RepeatOff:
		return "Off"
	case RepeatOne:
		return "One"
	case RepeatAll:
		return "All"
	default:
		return "Unknown"
	}
}

// TransitionReason explains a MediaItemTransition.
type TransitionReason int

const (
	// TransitionAuto: the previous item finished and playback moved on.
	TransitionAuto TransitionReason = iota
	// TransitionSeek: a seek (skip) moved to another item.
	TransitionSeek
	// TransitionRepeat: the same item repeats.
	TransitionRepeat
	// TransitionPlaylistChanged: new media items were set.
	TransitionPlaylistChanged
)

func (r TransitionReason) String() string {
	switch r {
	case TransitionAuto:
		return "Auto"
	case TransitionSeek:
		return "Seek"
	case TransitionRepeat:
		return "Repeat"
	case TransitionPlaylistChanged:
		return "PlaylistChanged"
	default:
		return "Unknown"
	}
}

// DiscontinuityReason explains a PositionDiscontinuity.
type DiscontinuityReason int

const (
	DiscontinuityAutoTransition DiscontinuityReason = iota
	DiscontinuitySeek
	DiscontinuityRemove
	DiscontinuityInternal
)

func (r DiscontinuityReason) String() string {
	switch r {
	case DiscontinuityAutoTransition:
		return "AutoTransition"
	case DiscontinuitySeek:
		return "Seek"
	case DiscontinuityRemove:
		return "Remove"
	case DiscontinuityInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}
