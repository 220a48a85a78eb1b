package playerbar

import (
	"strings"
	"time"

	"github.com/llehouerou/tazaudio/internal/ui/styles"
)

const (
	filledCell = "━"
	emptyCell  = "─"
)

// progressBar renders a width-cell bar, the played part in the accent
// gradient.
func progressBar(position, duration time.Duration, width int) string {
	if width <= 0 {
		return ""
	}
	var ratio float64
	if duration > 0 {
		ratio = min(max(float64(position)/float64(duration), 0), 1)
	}
	filled := min(int(float64(width)*ratio), width)

	t := styles.T()
	return styles.GradientBar(filledCell, filled, width, t.Accent, t.AccentEnd) +
		t.S().Subtle.Render(strings.Repeat(emptyCell, width-filled))
}
