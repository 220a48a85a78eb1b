// Package overlay draws boxes on top of an already rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Center draws box in the middle of base, which is width columns wide and
// height lines high. Styled text on both sides is kept intact; base lines
// covered by the box are cut around it.
func Center(base, box string, width, height int) string {
	boxLines := strings.Split(box, "\n")
	boxWidth := 0
	for _, l := range boxLines {
		boxWidth = max(boxWidth, ansi.StringWidth(l))
	}
	top := max((height-len(boxLines))/2, 0)
	left := max((width-boxWidth)/2, 0)
	return Place(base, box, left, top, width)
}

// Place draws box with its top-left corner at column x of line y.
func Place(base, box string, x, y, width int) string {
	baseLines := strings.Split(base, "\n")
	for len(baseLines) < y {
		baseLines = append(baseLines, "")
	}

	for i, boxLine := range strings.Split(box, "\n") {
		row := y + i
		if row >= len(baseLines) {
			baseLines = append(baseLines, "")
		}
		line := baseLines[row]
		if w := ansi.StringWidth(line); w < width {
			line += strings.Repeat(" ", width-w)
		}

		end := x + ansi.StringWidth(boxLine)
		result := ansi.Truncate(line, x, "") + boxLine
		if end < width {
			result += ansi.Cut(line, end, width)
		}
		baseLines[row] = result
	}

	return strings.Join(baseLines, "\n")
}
