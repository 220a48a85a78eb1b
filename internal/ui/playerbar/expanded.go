package playerbar

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/llehouerou/tazaudio/internal/ui/styles"
	"github.com/llehouerou/tazaudio/internal/uistate"
)

const (
	expandedRows     = 5
	minExpandedWidth = 40
)

// renderExpanded lays out the item, the controls and the progress on
// separate rows.
func renderExpanded(s State, width int) string {
	t := styles.T()
	st := t.S()
	innerWidth := max(width-6, 0)

	title := s.Title
	if title == "" {
		title = "Unknown"
	}
	author := s.Author
	if author == "" {
		author = "taz"
	}

	rows := make([]string, 0, expandedRows)
	rows = append(rows,
		styles.GradientText(truncate(title, innerWidth), true, t.Accent, t.AccentEnd),
		st.Muted.Render(truncate(author, innerWidth)),
		"",
	)

	if s.Status == StatusLoading {
		rows = append(rows, st.Muted.Render("loading…"), "")
		return st.PanelFocus.Padding(0, 2).Width(width - 2).Render(strings.Join(rows, "\n"))
	}

	rows = append(rows, st.Subtle.Render(truncate(controlsLine(s), innerWidth)))

	status := statusSymbol(s.Status)
	timeStr := formatTime(s.Position, s.Duration)
	barWidth := max(innerWidth-lipgloss.Width(status)-4-lipgloss.Width(timeStr), 5)
	rows = append(rows, status+"  "+progressBar(s.Position, s.Duration, barWidth)+"  "+st.Muted.Render(timeStr))

	return st.PanelFocus.Padding(0, 2).Width(width - 2).Render(strings.Join(rows, "\n"))
}

// controlsLine lists the available controls. Hidden controls are left out,
// disabled ones are shown in parentheses.
func controlsLine(s State) string {
	var parts []string
	if c := control("prev", s.Controls.SkipPrevious); c != "" {
		parts = append(parts, c)
	}
	if c := control("next", s.Controls.SkipNext); c != "" {
		parts = append(parts, c)
	}
	if s.Controls.AutoPlayNext != uistate.ControlHidden {
		state := "off"
		if s.AutoPlayNext {
			state = "on"
		}
		parts = append(parts, control("auto-play "+state, s.Controls.AutoPlayNext))
	}
	speed := formatSpeed(s.Speed)
	if speed == "" {
		speed = "1x"
	}
	parts = append(parts, fmt.Sprintf("speed %s", speed))
	if s.Controls.SeekBreaks {
		parts = append(parts, "seek by breaks")
	}
	if s.Status == StatusFailed {
		parts = append(parts, "space to retry")
	}
	return strings.Join(parts, " · ")
}

func control(label string, v uistate.ControlValue) string {
	switch v {
	case uistate.ControlEnabled:
		return label
	case uistate.ControlDisabled:
		return "(" + label + ")"
	case uistate.ControlHidden:
	}
	return ""
}
