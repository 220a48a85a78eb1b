package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tazaudio/internal/errmsg"
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

// speedSteps are the playback speeds offered by the speed keys.
var speedSteps = []float64{0.5, 0.75, 1, 1.25, 1.5, 1.75, 2}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case UiStateMsg:
		m.ui = msg.State
		if !uistate.IsVisible(m.ui) {
			m.progress = nil
		}
		m.clampCursor()
		return m, watch(m.uiSub, func(ui uistate.UiState) tea.Msg { return UiStateMsg{State: ui} })

	case ProgressMsg:
		m.progress = msg.Progress
		return m, watch(m.progressSub, func(p *playback.Progress) tea.Msg { return ProgressMsg{Progress: p} })

	case PlaylistMsg:
		m.playlist.SetPlaylist(msg.Playlist)
		return m, m.watchPlaylist()

	case IntentErrorMsg:
		m.status = msg.Message
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if shown, perr := m.pendingError(); perr != nil && key.Matches(msg, m.keys.Acknowledge) {
		m.view.OnErrorHandled(shown)
		return m, nil
	}

	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.clampCursor()
		return m, nil
	case key.Matches(msg, m.keys.Playlist):
		m.showPlaylist = !m.showPlaylist
		return m, nil
	}

	if m.showPlaylist {
		if m.handlePlaylistKey(msg) {
			return m, nil
		}
	} else if cmd, handled := m.handleCatalogKey(msg); handled {
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Toggle):
		m.control(m.player.TogglePlaying)
	case key.Matches(msg, m.keys.SeekForward):
		m.control(m.player.SeekForward)
	case key.Matches(msg, m.keys.SeekBackward):
		m.control(m.player.SeekBackward)
	case key.Matches(msg, m.keys.Next):
		m.control(m.player.SkipToNext)
	case key.Matches(msg, m.keys.Previous):
		m.control(m.player.SkipToPrevious)
	case key.Matches(msg, m.keys.Dismiss):
		m.control(m.player.Dismiss)
	case key.Matches(msg, m.keys.Expand):
		if uistate.IsVisible(m.ui) {
			m.view.SetExpanded(!m.view.Expanded())
		}
	case key.Matches(msg, m.keys.SpeedUp):
		return m, m.changeSpeed(true)
	case key.Matches(msg, m.keys.SpeedDown):
		return m, m.changeSpeed(false)
	case key.Matches(msg, m.keys.AutoPlayNext):
		return m, m.toggleAutoPlayNext()
	}
	return m, nil
}

func (m *Model) handleCatalogKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.entries))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.entries))
	case key.Matches(msg, m.keys.Play):
		return m.playSelected(false), true
	case key.Matches(msg, m.keys.PlayArticle):
		return m.playSelected(true), true
	case key.Matches(msg, m.keys.Enqueue):
		return m.enqueueSelected(), true
	default:
		return nil, false
	}
	return nil, true
}

func (m *Model) handlePlaylistKey(msg tea.KeyMsg) bool {
	n := m.playlist.Len()
	c := m.playlist.Cursor()
	switch {
	case key.Matches(msg, m.keys.Up):
		m.playlist.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.playlist.MoveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.playlist.MoveCursor(-n)
	case key.Matches(msg, m.keys.Bottom):
		m.playlist.MoveCursor(n)
	case key.Matches(msg, m.keys.Play):
		if c >= 0 {
			m.control(func() error { return m.player.PlayFromPlaylist(c) })
		}
	case key.Matches(msg, m.keys.Remove):
		if c >= 0 {
			m.editPlaylist(func() error { return m.player.RemoveFromPlaylist(c) })
		}
	case key.Matches(msg, m.keys.MoveUp):
		if c > 0 && m.editPlaylist(func() error { return m.player.MovePlaylistItem(c, c-1) }) {
			m.playlist.MoveCursor(-1)
		}
	case key.Matches(msg, m.keys.MoveDown):
		if c >= 0 && c < n-1 && m.editPlaylist(func() error { return m.player.MovePlaylistItem(c, c+1) }) {
			m.playlist.MoveCursor(1)
		}
	case key.Matches(msg, m.keys.Clear):
		if n > 0 {
			m.editPlaylist(m.player.ClearPlaylist)
		}
	default:
		return false
	}
	return true
}

// editPlaylist runs a playlist intent and reports whether it was accepted.
func (m *Model) editPlaylist(fn func() error) bool {
	if err := fn(); err != nil {
		m.status = errmsg.Format(errmsg.OpPlaylistEdit, err)
		return false
	}
	return true
}

// control runs a non-blocking player intent.
func (m *Model) control(fn func() error) {
	if err := fn(); err != nil {
		m.status = errmsg.Format(errmsg.OpPlaybackStart, err)
	}
}

// playSelected plays the entry under the cursor. Articles play within
// their issue unless alone is set.
func (m Model) playSelected(alone bool) tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	e := m.entries[m.cursor]
	switch e.kind {
	case entryIssue:
		return m.intentCmd(errmsg.OpIssueLoad, e.issue.String(), func(ctx context.Context) error {
			return m.player.PlayIssue(ctx, e.issue)
		})
	case entryArticle:
		if alone {
			return m.intentCmd(errmsg.OpArticleLoad, e.key, func(ctx context.Context) error {
				return m.player.PlayArticle(ctx, e.key)
			})
		}
		return m.intentCmd(errmsg.OpIssueLoad, e.issue.String(), func(ctx context.Context) error {
			return m.player.PlayIssueFromArticle(ctx, e.issue, e.key)
		})
	case entryPodcast:
		return m.intentCmd(errmsg.OpPodcastLoad, e.key, func(ctx context.Context) error {
			return m.player.PlayPodcast(ctx, e.issue, e.key)
		})
	}
	return nil
}

// enqueueSelected adds the article under the cursor to the playlist.
func (m Model) enqueueSelected() tea.Cmd {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return nil
	}
	e := m.entries[m.cursor]
	if e.kind != entryArticle {
		return nil
	}
	return m.intentCmd(errmsg.OpPlaylistAdd, e.key, func(ctx context.Context) error {
		return m.player.EnqueueArticle(ctx, e.key)
	})
}

func (m Model) changeSpeed(up bool) tea.Cmd {
	current := 1.0
	if p := uistate.PlayerOf(m.ui); p != nil && p.PlaybackSpeed > 0 {
		current = p.PlaybackSpeed
	}
	next := stepSpeed(current, up)
	if next == current {
		return nil
	}
	return m.intentCmd(errmsg.OpPreferencesSave, "", func(ctx context.Context) error {
		return m.player.SetPlaybackSpeed(ctx, next)
	})
}

func (m Model) toggleAutoPlayNext() tea.Cmd {
	p := uistate.PlayerOf(m.ui)
	if p == nil || p.Controls.AutoPlayNext == uistate.ControlHidden {
		return nil
	}
	enabled := !p.AutoPlayNext
	return m.intentCmd(errmsg.OpPreferencesSave, "", func(ctx context.Context) error {
		return m.player.SetAutoPlayNext(ctx, enabled)
	})
}

// stepSpeed returns the speed step after (or before) current.
func stepSpeed(current float64, up bool) float64 {
	if up {
		for _, s := range speedSteps {
			if s > current+1e-9 {
				return s
			}
		}
		return speedSteps[len(speedSteps)-1]
	}
	for i := len(speedSteps) - 1; i >= 0; i-- {
		if speedSteps[i] < current-1e-9 {
			return speedSteps[i]
		}
	}
	return speedSteps[0]
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
}

// clampCursor keeps the cursor on an entry and within the visible rows.
// The playlist panel gets the same area.
func (m *Model) clampCursor() {
	m.cursor = min(max(m.cursor, 0), max(len(m.entries)-1, 0))
	rows := m.listHeight()
	m.playlist.SetSize(m.Width, rows+headerHeight)
	if rows <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.entries)-rows, 0))
}
