// Package playerbar renders the player from its projected UI state.
package playerbar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tazaudio/internal/playback"
	"github.com/llehouerou/tazaudio/internal/ui/styles"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

// Status is what the player bar shows in its status slot.
type Status int

const (
	StatusHidden Status = iota
	StatusLoading
	StatusPlaying
	StatusPaused
	StatusFailed
)

const (
	playSymbol    = "▶"
	pauseSymbol   = "⏸"
	loadingSymbol = "…"
	failedSymbol  = "!"
)

// State holds everything needed to render the player bar.
type State struct {
	Status   Status
	Title    string
	Author   string
	Expanded bool

	Position time.Duration
	Duration time.Duration

	Speed        float64
	AutoPlayNext bool
	Controls     uistate.Controls
}

// NewState builds the bar state from the projected UI state and the latest
// progress sample (nil when unknown).
func NewState(ui uistate.UiState, prog *playback.Progress) State {
	var s State
	switch u := ui.(type) {
	case uistate.Hidden, uistate.InitError:
		return State{}
	case uistate.Initializing:
		return State{
			Status:   StatusLoading,
			Title:    u.Item.Title,
			Author:   u.Item.Author,
			Expanded: u.Expanded,
		}
	case uistate.Playing:
		s.Status = StatusPlaying
	case uistate.Paused:
		s.Status = StatusPaused
	case uistate.Error:
		s.Status = StatusFailed
	}

	p := uistate.PlayerOf(ui)
	if p == nil {
		return State{}
	}
	s.Title = p.Item.Title
	s.Author = p.Item.Author
	s.Expanded = p.Expanded
	s.Speed = p.PlaybackSpeed
	s.AutoPlayNext = p.AutoPlayNext
	s.Controls = p.Controls
	if prog != nil {
		s.Position = prog.Position
		s.Duration = prog.Duration
	}
	return s
}

// Visible reports whether the bar takes space on screen.
func (s State) Visible() bool {
	return s.Status != StatusHidden
}

// Height returns the number of lines Render produces for s.
func Height(s State) int {
	switch {
	case !s.Visible():
		return 0
	case s.Expanded:
		return expandedRows + 2
	default:
		return 3 // top border + content + bottom border
	}
}

// Render returns the player bar for the given width, or "" when hidden.
func Render(s State, width int) string {
	if !s.Visible() {
		return ""
	}
	if s.Expanded && width-2 >= minExpandedWidth {
		return renderExpanded(s, width)
	}
	return renderCompact(s, width)
}

func renderCompact(s State, width int) string {
	st := styles.T().S()
	innerWidth := max(width-6, 0)

	status := statusSymbol(s.Status)
	timeStr := formatTime(s.Position, s.Duration)
	speed := formatSpeed(s.Speed)

	separator := "   "
	sepWidth := lipgloss.Width(separator)
	statusWidth := lipgloss.Width(status + "  ")

	tail := timeStr
	if speed != "" {
		tail += "  " + speed
	}
	tailWidth := lipgloss.Width(tail)

	title := s.Title
	if title == "" {
		title = "Unknown"
	}

	if s.Status == StatusLoading || s.Status == StatusFailed {
		msg := "loading"
		if s.Status == StatusFailed {
			msg = "playback failed, press space to retry"
		}
		room := max(innerWidth-statusWidth-sepWidth-lipgloss.Width(msg), 10)
		line := status + "  " + st.Title.Render(truncate(title, room)) + separator + st.Muted.Render(msg)
		return st.Panel.Padding(0, 2).Width(width - 2).Render(line)
	}

	// Title and author share what the bar and time leave.
	const minBarWidth = 10
	available := innerWidth - statusWidth - tailWidth - sepWidth*2 - minBarWidth

	var styledTitle, styledAuthor string
	var used int
	titleWidth := lipgloss.Width(title)
	authorWidth := lipgloss.Width(s.Author)
	switch {
	case s.Author != "" && titleWidth+sepWidth+authorWidth <= available:
		styledTitle = st.Title.Render(title)
		styledAuthor = st.Muted.Render(s.Author)
		used = titleWidth + sepWidth + authorWidth
	case s.Author != "" && titleWidth+sepWidth < available:
		room := available - titleWidth - sepWidth
		styledTitle = st.Title.Render(title)
		styledAuthor = st.Muted.Render(truncate(s.Author, room))
		used = titleWidth + sepWidth + room
	default:
		room := max(available, 10)
		styledTitle = st.Title.Render(truncate(title, room))
		used = min(titleWidth, room)
	}

	barWidth := max(innerWidth-used-statusWidth-tailWidth-sepWidth*2, 5)

	var b strings.Builder
	b.WriteString(styledTitle)
	if styledAuthor != "" {
		b.WriteString(separator)
		b.WriteString(styledAuthor)
	}
	b.WriteString(separator)
	b.WriteString(status)
	b.WriteString("  ")
	b.WriteString(progressBar(s.Position, s.Duration, barWidth))
	b.WriteString(separator)
	b.WriteString(st.Muted.Render(tail))

	return st.Panel.Padding(0, 2).Width(width - 2).Render(b.String())
}

func statusSymbol(s Status) string {
	st := styles.T().S()
	switch s {
	case StatusPlaying:
		return st.Playing.Render(playSymbol)
	case StatusPaused:
		return st.Base.Render(pauseSymbol)
	case StatusLoading:
		return st.Muted.Render(loadingSymbol)
	case StatusFailed:
		return st.Error.Render(failedSymbol)
	case StatusHidden:
	}
	return ""
}

func formatTime(pos, dur time.Duration) string {
	if dur <= 0 {
		return formatDuration(pos)
	}
	return fmt.Sprintf("%s / %s", formatDuration(pos), formatDuration(dur))
}

func formatDuration(d time.Duration) string {
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%d:%02d", m, s)
}

// formatSpeed returns "" at normal speed.
func formatSpeed(v float64) string {
	if v == 0 || v == 1 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".") + "x"
}
