package playback

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/resolve"
)

// Resolver loads playable items.
type Resolver interface {
	Resolve(ctx context.Context, req resolve.Request) (item.PlayableItem, error)
}

// Playback speed bounds.
const (
	MinPlaybackSpeed = 0.5
	MaxPlaybackSpeed = 2.0
)

// Preferences stores the user's player settings and streams their changes.
type Preferences interface {
	PlaybackSpeed() float64
	AutoPlayNext() bool
	SetPlaybackSpeed(ctx context.Context, speed float64) error
	SetAutoPlayNext(ctx context.Context, enabled bool) error
	SubscribePlaybackSpeed() *broadcast.Subscription[float64]
	SubscribeAutoPlayNext() *broadcast.Subscription[bool]
}

// PlaylistStore persists the user's playlist as item references.
type PlaylistStore interface {
	SavePlaylist(ctx context.Context, reqs []resolve.Request, current int) error
	LoadPlaylist(ctx context.Context) ([]resolve.Request, int, error)
}

// MemoryPreferences keeps preferences in memory.
type MemoryPreferences struct {
	speed *broadcast.Value[float64]
	auto  *broadcast.Value[bool]
}

// NewMemoryPreferences creates in-memory preferences.
func NewMemoryPreferences(speed float64, autoPlayNext bool) *MemoryPreferences {
	return &MemoryPreferences{
		speed: broadcast.NewValue(speed),
		auto:  broadcast.NewValue(autoPlayNext),
	}
}

func (p *MemoryPreferences) PlaybackSpeed() float64 { return p.speed.Load() }

func (p *MemoryPreferences) AutoPlayNext() bool { return p.auto.Load() }

func (p *MemoryPreferences) SetPlaybackSpeed(_ context.Context, speed float64) error {
	if err := ValidatePlaybackSpeed(speed); err != nil {
		return err
	}
	p.speed.Store(speed)
	return nil
}

func (p *MemoryPreferences) SetAutoPlayNext(_ context.Context, enabled bool) error {
	p.auto.Store(enabled)
	return nil
}

func (p *MemoryPreferences) SubscribePlaybackSpeed() *broadcast.Subscription[float64] {
	return p.speed.Subscribe()
}

func (p *MemoryPreferences) SubscribeAutoPlayNext() *broadcast.Subscription[bool] {
	return p.auto.Subscribe()
}

// ValidatePlaybackSpeed rejects speeds outside [MinPlaybackSpeed, MaxPlaybackSpeed].
func ValidatePlaybackSpeed(speed float64) error {
	if speed < MinPlaybackSpeed || speed > MaxPlaybackSpeed {
		return fmt.Errorf("%w: %.2f", ErrInvalidRate, speed)
	}
	return nil
}

// TrackAction names an analytics event.
type TrackAction string

const (
	ActionPlay          TrackAction = "play"
	ActionSeekTo        TrackAction = "seek_to"
	ActionSeekForward   TrackAction = "seek_forward"
	ActionSeekBackward  TrackAction = "seek_backward"
	ActionSkipNext      TrackAction = "skip_next"
	ActionSkipPrevious  TrackAction = "skip_previous"
	ActionToggle        TrackAction = "toggle"
	ActionDismiss       TrackAction = "dismiss"
	ActionPlaybackSpeed TrackAction = "playback_speed"
	ActionAutoPlayNext  TrackAction = "auto_play_next"
	ActionExpand        TrackAction = "expand"
	ActionCollapse      TrackAction = "collapse"
)

// TrackEvent is reported to the Tracker. Item and Value are optional.
type TrackEvent struct {
	Action TrackAction
	Item   item.PlayableItem
	Value  any
}

// Tracker receives analytics events. Implementations must not block.
type Tracker interface {
	Track(e TrackEvent)
}

// NopTracker drops every event.
type NopTracker struct{}

func (NopTracker) Track(TrackEvent) {}

// LogTracker writes events to a logger.
type LogTracker struct {
	Log logrus.FieldLogger
}

func (t LogTracker) Track(e TrackEvent) {
	fields := logrus.Fields{"action": string(e.Action)}
	if e.Item != nil {
		fields["item"] = e.Item.String()
		fields["media_id"] = e.Item.MediaID()
	}
	if e.Value != nil {
		fields["value"] = e.Value
	}
	t.Log.WithFields(fields).Info("player event")
}
