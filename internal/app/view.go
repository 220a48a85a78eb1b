package app

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/tazaudio/internal/errmsg"
	"github.com/llehouerou/tazaudio/internal/ui/overlay"
	"github.com/llehouerou/tazaudio/internal/ui/playerbar"
	"github.com/llehouerou/tazaudio/internal/ui/styles"
)

const (
	headerHeight = 1
	popupWidth   = 50
)

func (m Model) bar() playerbar.State {
	return playerbar.NewState(m.ui, m.progress)
}

// listHeight is the number of catalog rows that fit on screen.
func (m Model) listHeight() int {
	helpHeight := lipgloss.Height(m.help.View(m.keys))
	return m.Height - headerHeight - 1 - helpHeight - playerbar.Height(m.bar())
}

// View renders the screen.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}
	st := styles.T().S()

	lines := make([]string, 0, m.Height)
	rows := max(m.listHeight(), 0)
	if m.showPlaylist {
		lines = append(lines, strings.Split(m.playlist.View(), "\n")...)
	} else {
		lines = append(lines, m.catalogLines(rows)...)
	}
	for len(lines) < headerHeight+rows {
		lines = append(lines, "")
	}

	status := m.status
	if status != "" {
		lines = append(lines, st.Warning.Render(runewidth.Truncate(status, m.Width, "…")))
	} else {
		lines = append(lines, "")
	}
	lines = append(lines, m.help.View(m.keys))

	if bar := playerbar.Render(m.bar(), m.Width); bar != "" {
		lines = append(lines, bar)
	}

	view := strings.Join(lines, "\n")
	if _, perr := m.pendingError(); perr != nil {
		view = overlay.Center(view, m.renderPopup(errmsg.Player(perr)), m.Width, m.Height)
	}
	return view
}

func (m Model) catalogLines(rows int) []string {
	st := styles.T().S()
	lines := make([]string, 0, headerHeight+rows)
	lines = append(lines, st.Title.Render(runewidth.FillRight("taz audio", m.Width)))
	if len(m.entries) == 0 {
		lines = append(lines, st.Muted.Render("No issue with audio in the catalog."))
	}
	end := min(m.offset+rows, len(m.entries))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderEntry(i))
	}
	return lines
}

func (m Model) renderEntry(i int) string {
	st := styles.T().S()
	e := m.entries[i]

	indent := "  "
	labelStyle := st.Base
	switch e.kind {
	case entryIssue:
		indent = ""
		labelStyle = st.Title
	case entryPodcast:
		indent = "  ♪ "
	case entryArticle:
	}

	sub := ""
	if e.sub != "" {
		sub = "  " + e.sub
	}
	labelWidth := max(m.Width-runewidth.StringWidth(indent)-runewidth.StringWidth(sub), 10)
	label := runewidth.Truncate(e.label, labelWidth, "…")
	text := indent + label + sub

	if i == m.cursor {
		return st.Cursor.Render(runewidth.FillRight(runewidth.Truncate(text, m.Width, "…"), m.Width))
	}
	return labelStyle.Render(indent+label) + st.Muted.Render(sub)
}

func (m Model) renderPopup(message string) string {
	st := styles.T().S()
	width := min(popupWidth, max(m.Width-4, 20))
	body := lipgloss.NewStyle().Width(width - 4).Render(message)
	hint := st.Muted.Render("enter to close")
	content := lipgloss.JoinVertical(lipgloss.Left, st.Error.Bold(true).Render("Player error"), "", body, "", hint)
	return st.PanelFocus.BorderForeground(styles.T().Error).Padding(0, 1).Width(width - 2).Render(content)
}
