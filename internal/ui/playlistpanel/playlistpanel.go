// Package playlistpanel renders the user's playlist as a scrollable list
// with a cursor.
package playlistpanel

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/llehouerou/tazaudio/internal/item"
	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/ui/styles"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

const (
	headerHeight  = 1
	playingSymbol = "▶"
)

// Row is one playlist entry as displayed.
type Row struct {
	Title  string
	Author string
}

// RowsOf returns the display rows of items.
func RowsOf(items []item.PlayableItem) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		ui := uistate.ItemOf(it)
		rows[i] = Row{Title: ui.Title, Author: ui.Author}
	}
	return rows
}

// Model represents the playlist panel state.
type Model struct {
	rows    []Row
	current int
	cursor  int
	offset  int
	width   int
	height  int
}

// New creates an empty panel.
func New() Model {
	return Model{current: -1}
}

// SetPlaylist replaces the displayed playlist. The cursor stays where it
// was, within the new bounds.
func (m *Model) SetPlaylist(snap playback.PlaylistSnapshot) {
	m.rows = RowsOf(snap.Items)
	m.current = snap.Current
	m.clamp()
}

// SetSize sets the panel dimensions. The header takes one row.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clamp()
}

// Len returns the number of entries.
func (m Model) Len() int {
	return len(m.rows)
}

// Cursor returns the index under the cursor, or -1 when the playlist is
// empty.
func (m Model) Cursor() int {
	if len(m.rows) == 0 {
		return -1
	}
	return m.cursor
}

// MoveCursor moves the cursor by delta, stopping at either end.
func (m *Model) MoveCursor(delta int) {
	m.cursor += delta
	m.clamp()
}

func (m Model) listHeight() int {
	return m.height - headerHeight
}

func (m *Model) clamp() {
	m.cursor = min(max(m.cursor, 0), max(len(m.rows)-1, 0))
	rows := m.listHeight()
	if rows <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	m.offset = min(max(m.offset, 0), max(len(m.rows)-rows, 0))
}

// View renders the panel as exactly height lines.
func (m Model) View() string {
	if m.width == 0 || m.height <= 0 {
		return ""
	}
	st := styles.T().S()

	lines := make([]string, 0, m.height)
	lines = append(lines, st.Title.Render(runewidth.FillRight(m.header(), m.width)))

	rows := max(m.listHeight(), 0)
	if len(m.rows) == 0 && rows > 0 {
		lines = append(lines, st.Muted.Render("The playlist is empty. Press e on an article to add it."))
	}
	end := min(m.offset+rows, len(m.rows))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i))
	}
	for len(lines) < m.height {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) header() string {
	return fmt.Sprintf("Playlist (%d/%d)", m.current+1, len(m.rows))
}

func (m Model) renderRow(i int) string {
	st := styles.T().S()
	r := m.rows[i]

	prefix := "  "
	if i == m.current {
		prefix = playingSymbol + " "
	}
	author := ""
	if r.Author != "" {
		author = "  " + r.Author
	}
	titleWidth := max(m.width-runewidth.StringWidth(prefix)-runewidth.StringWidth(author), 10)
	title := runewidth.Truncate(r.Title, titleWidth, "…")

	switch {
	case i == m.cursor:
		text := runewidth.Truncate(prefix+title+author, m.width, "…")
		return st.Cursor.Render(runewidth.FillRight(text, m.width))
	case i == m.current:
		return st.Playing.Render(prefix+title) + st.Muted.Render(author)
	default:
		return st.Base.Render(prefix+title) + st.Muted.Render(author)
	}
}
