package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/tazaudio/internal/broadcast"
	"github.com/llehouerou/tazaudio/internal/errmsg"
	"github.com/llehouerou/tazaudio/internal/playback"
)

// watch waits for the next value of sub. It returns nil once the
// subscription is over.
func watch[T any](sub *broadcast.Subscription[T], onValue func(T) tea.Msg) tea.Cmd {
	if sub == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case v := <-sub.C:
			return onValue(v)
		case <-sub.Done:
			return nil
		}
	}
}

func (m Model) watchPlaylist() tea.Cmd {
	return watch(m.playlistSub, func(s playback.PlaylistSnapshot) tea.Msg { return PlaylistMsg{Playlist: s} })
}

// intentCmd runs fn off the UI goroutine. A failure comes back as an
// IntentErrorMsg describing op.
func (m Model) intentCmd(op errmsg.Op, subject string, fn func(ctx context.Context) error) tea.Cmd {
	log := m.log
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.WithError(err).WithField("op", string(op)).Warn("player intent failed")
			return IntentErrorMsg{Message: errmsg.FormatWith(op, subject, err)}
		}
		return nil
	}
}
