package playerbar

import (
	"strings"

	"github.com/rivo/uniseg"
)

// truncate shortens s to maxWidth columns, ending with "…" when cut.
// Grapheme clusters are never split.
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if uniseg.StringWidth(s) <= maxWidth {
		return s
	}

	var b strings.Builder
	width := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		var w int
		cluster, rest, w, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if width+w > maxWidth-1 {
			break
		}
		b.WriteString(cluster)
		width += w
	}
	return b.String() + "…"
}
