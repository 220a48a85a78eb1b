// Package app is the terminal host of the player: a catalog browser and
// the user's playlist, with the player bar at the bottom.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/catalog"
	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/ui/playlistpanel"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

// intentTimeout bounds item resolution and preference writes started from
// a key press.
const intentTimeout = 10 * time.Second

// Player is the part of the playback service the UI drives.
type Player interface {
	PlayArticle(ctx context.Context, articleKey string) error
	PlayIssue(ctx context.Context, issue item.IssueKey) error
	PlayIssueFromArticle(ctx context.Context, issue item.IssueKey, articleKey string) error
	PlayPodcast(ctx context.Context, issue item.IssueKey, sectionKey string) error
	TogglePlaying() error
	SeekForward() error
	SeekBackward() error
	SkipToNext() error
	SkipToPrevious() error
	Dismiss() error
	SetPlaybackSpeed(ctx context.Context, speed float64) error
	SetAutoPlayNext(ctx context.Context, enabled bool) error
	CurrentProgress() *playback.Progress
	Progress() *broadcast.Subscription[*playback.Progress]

	EnqueueArticle(ctx context.Context, articleKey string) error
	PlayFromPlaylist(index int) error
	RemoveFromPlaylist(index int) error
	MovePlaylistItem(from, to int) error
	ClearPlaylist() error
	PlaylistUpdates() *broadcast.Subscription[playback.PlaylistSnapshot]
}

// View is the projected player state.
type View interface {
	Current() uistate.UiState
	Subscribe() *broadcast.Subscription[uistate.UiState]
	Expanded() bool
	SetExpanded(expanded bool)
	OnErrorHandled(shown uistate.UiState)
}

// Model is the root bubbletea model.
type Model struct {
	player Player
	view   View
	log    logrus.FieldLogger
	keys   keyMap
	help   help.Model

	entries []entry
	cursor  int
	offset  int

	showPlaylist bool
	playlist     playlistpanel.Model

	ui       uistate.UiState
	progress *playback.Progress
	status   string

	uiSub       *broadcast.Subscription[uistate.UiState]
	progressSub *broadcast.Subscription[*playback.Progress]
	playlistSub *broadcast.Subscription[playback.PlaylistSnapshot]

	Width  int
	Height int
}

// New creates the root model over the catalog's issues.
func New(player Player, view View, issues []catalog.Issue, log logrus.FieldLogger) Model {
	return Model{
		player:      player,
		view:        view,
		log:         log.WithField("component", "ui"),
		keys:        defaultKeyMap(),
		help:        help.New(),
		entries:     buildEntries(issues),
		playlist:    playlistpanel.New(),
		ui:          view.Current(),
		progress:    player.CurrentProgress(),
		uiSub:       view.Subscribe(),
		progressSub: player.Progress(),
		playlistSub: player.PlaylistUpdates(),
	}
}

// Init starts watching the player.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		watch(m.uiSub, func(ui uistate.UiState) tea.Msg { return UiStateMsg{State: ui} }),
		watch(m.progressSub, func(p *playback.Progress) tea.Msg { return ProgressMsg{Progress: p} }),
		m.watchPlaylist(),
	)
}

// Close stops watching the player.
func (m Model) Close() {
	m.uiSub.Cancel()
	m.progressSub.Cancel()
	m.playlistSub.Cancel()
}

// pendingError returns the error state waiting for acknowledgement, if any.
func (m Model) pendingError() (uistate.UiState, *playback.PlayerError) {
	switch u := m.ui.(type) {
	case uistate.Error:
		if !u.WasHandled {
			return u, u.Err
		}
	case uistate.InitError:
		if !u.WasHandled {
			return u, u.Err
		}
	}
	return nil, nil
}
