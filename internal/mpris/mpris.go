//go:build linux

package mpris

import (
	"context"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

const (
	minRate = 0.5
	maxRate = 2.0

	// preferenceTimeout bounds preference writes triggered over D-Bus.
	preferenceTimeout = 2 * time.Second
)

// Adapter exposes the player to desktop media controls over D-Bus.
type Adapter struct {
	server *server.Server
	log    logrus.FieldLogger
}

// New creates and starts a new MPRIS adapter.
func New(player Player, view View, log logrus.FieldLogger) (*Adapter, error) {
	log = log.WithField("component", "mpris")
	a := &Adapter{
		server: server.NewServer("tazaudio", &rootAdapter{}, &playerAdapter{player: player, view: view}),
		log:    log,
	}

	go func() {
		if err := a.server.Listen(); err != nil {
			log.WithError(err).Warn("mpris server stopped")
		}
	}()

	return a, nil
}

// Close stops the adapter and releases D-Bus resources.
func (a *Adapter) Close() error {
	return a.server.Stop()
}

// rootAdapter implements OrgMprisMediaPlayer2Adapter.
type rootAdapter struct{}

func (r *rootAdapter) Raise() error {
	return nil
}

func (r *rootAdapter) Quit() error {
	return nil
}

func (r *rootAdapter) CanQuit() (bool, error) {
	return false, nil
}

func (r *rootAdapter) CanRaise() (bool, error) {
	return false, nil
}

func (r *rootAdapter) HasTrackList() (bool, error) {
	return false, nil
}

func (r *rootAdapter) Identity() (string, error) {
	return "taz audio", nil
}

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"file", "http", "https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp3", "audio/flac", "audio/wav"}, nil
}

// playerAdapter implements OrgMprisMediaPlayer2PlayerAdapter and the loop
// status extension.
type playerAdapter struct {
	player Player
	view   View
}

func (p *playerAdapter) Next() error {
	return p.player.SkipToNext()
}

func (p *playerAdapter) Previous() error {
	return p.player.SkipToPrevious()
}

func (p *playerAdapter) Pause() error {
	if _, ok := p.view.Current().(uistate.Playing); ok {
		return p.player.TogglePlaying()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	return p.player.TogglePlaying()
}

func (p *playerAdapter) Stop() error {
	return p.player.Dismiss()
}

func (p *playerAdapter) Play() error {
	switch p.view.Current().(type) {
	case uistate.Paused, uistate.Error:
		return p.player.TogglePlaying()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	var pos time.Duration
	if prog := p.player.CurrentProgress(); prog != nil {
		pos = prog.Position
	}
	target := max(pos+time.Duration(offset)*time.Microsecond, 0)
	return p.player.SeekTo(target)
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	return p.player.SeekTo(time.Duration(position) * time.Microsecond)
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error {
	return nil
}

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.view.Current().(type) {
	case uistate.Playing:
		return types.PlaybackStatusPlaying, nil
	case uistate.Paused, uistate.Initializing, uistate.Error:
		return types.PlaybackStatusPaused, nil
	case uistate.Hidden, uistate.InitError:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) {
	if player := uistate.PlayerOf(p.view.Current()); player != nil && player.PlaybackSpeed > 0 {
		return player.PlaybackSpeed, nil
	}
	return 1.0, nil
}

func (p *playerAdapter) SetRate(rate float64) error {
	ctx, cancel := context.WithTimeout(context.Background(), preferenceTimeout)
	defer cancel()
	return p.player.SetPlaybackSpeed(ctx, min(max(rate, minRate), maxRate))
}

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	var ui uistate.UiItem
	switch s := p.view.Current().(type) {
	case uistate.Initializing:
		ui = s.Item
	default:
		player := uistate.PlayerOf(s)
		if player == nil {
			return types.Metadata{}, nil
		}
		ui = player.Item
	}

	meta := types.Metadata{
		Title: ui.Title,
	}
	if it := playback.ItemOf(p.player.State()); it != nil {
		meta.TrackId = dbus.ObjectPath(formatTrackID(it.MediaID()))
		meta.Album = albumOf(it)
	}
	if ui.Author != "" {
		meta.Artist = []string{ui.Author}
	}
	if prog := p.player.CurrentProgress(); prog != nil && prog.Duration > 0 {
		meta.Length = types.Microseconds(prog.Duration.Microseconds())
	}
	meta.ArtUrl = ArtURL(ui.CoverImage)

	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return 1.0, nil
}

func (p *playerAdapter) SetVolume(_ float64) error {
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	if prog := p.player.CurrentProgress(); prog != nil {
		return prog.Position.Microseconds(), nil
	}
	return 0, nil
}

func (p *playerAdapter) MinimumRate() (float64, error) {
	return minRate, nil
}

func (p *playerAdapter) MaximumRate() (float64, error) {
	return maxRate, nil
}

func (p *playerAdapter) CanGoNext() (bool, error) {
	player := uistate.PlayerOf(p.view.Current())
	return player != nil && player.Controls.SkipNext == uistate.ControlEnabled, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	player := uistate.PlayerOf(p.view.Current())
	return player != nil && player.Controls.SkipPrevious == uistate.ControlEnabled, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	switch p.view.Current().(type) {
	case uistate.Playing, uistate.Paused, uistate.Error:
		return true, nil
	}
	return false, nil
}

func (p *playerAdapter) CanPause() (bool, error) {
	return uistate.IsVisible(p.view.Current()), nil
}

func (p *playerAdapter) CanSeek() (bool, error) {
	return uistate.PlayerOf(p.view.Current()) != nil, nil
}

func (p *playerAdapter) CanControl() (bool, error) {
	return true, nil
}

// LoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus. Only
// issue playlists loop, when auto-play-next is on.
func (p *playerAdapter) LoopStatus() (types.LoopStatus, error) {
	player := uistate.PlayerOf(p.view.Current())
	if player != nil && player.Controls.AutoPlayNext != uistate.ControlHidden && player.AutoPlayNext {
		return types.LoopStatusPlaylist, nil
	}
	return types.LoopStatusNone, nil
}

// SetLoopStatus implements OrgMprisMediaPlayer2PlayerAdapterLoopStatus.
func (p *playerAdapter) SetLoopStatus(status types.LoopStatus) error {
	ctx, cancel := context.WithTimeout(context.Background(), preferenceTimeout)
	defer cancel()
	switch status {
	case types.LoopStatusPlaylist:
		return p.player.SetAutoPlayNext(ctx, true)
	case types.LoopStatusNone, types.LoopStatusTrack:
		return p.player.SetAutoPlayNext(ctx, false)
	}
	return nil
}

// albumOf names the issue an item belongs to.
func albumOf(it item.PlayableItem) string {
	switch it := it.(type) {
	case item.ArticleAudio:
		return it.IssueStub.Key.String()
	case item.IssuePlaylist:
		return it.IssueStub.Key.String()
	case item.PodcastAudio:
		return it.IssueStub.Key.String()
	}
	return ""
}

func formatTrackID(mediaID string) string {
	h := fnv.New64a()
	h.Write([]byte(mediaID))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
