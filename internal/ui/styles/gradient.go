package styles

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rivo/uniseg"
)

// GradientBar renders the filled part of a progress bar: filled copies of
// cell colored from `from` at the left edge towards `to` at the right edge
// of a width-cell bar. Colors are blended in HCL space so that the bar
// keeps its hue when it grows.
func GradientBar(cell string, filled, width int, from, to lipgloss.Color) string {
	if filled <= 0 || width <= 0 {
		return ""
	}
	filled = min(filled, width)

	colors := Blend(width, from, to)
	var b strings.Builder
	for i := range filled {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(hexOf(colors[i]))).Render(cell))
	}
	return b.String()
}

// GradientText colors each grapheme of text along the gradient.
func GradientText(text string, bold bool, from, to lipgloss.Color) string {
	var clusters []string
	gr := uniseg.NewGraphemes(text)
	for gr.Next() {
		clusters = append(clusters, gr.Str())
	}
	if len(clusters) == 0 {
		return ""
	}

	colors := Blend(len(clusters), from, to)
	var b strings.Builder
	for i, cluster := range clusters {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexOf(colors[i]))).Bold(bold)
		b.WriteString(style.Render(cluster))
	}
	return b.String()
}

// Blend returns size colors evenly spread from `from` to `to`.
func Blend(size int, from, to lipgloss.Color) []colorful.Color {
	if size <= 0 {
		return nil
	}
	c1 := toColorful(from)
	if size == 1 {
		return []colorful.Color{c1}
	}
	c2 := toColorful(to)

	colors := make([]colorful.Color, size)
	for i := range size {
		colors[i] = c1.BlendHcl(c2, float64(i)/float64(size-1)).Clamped()
	}
	colors[0], colors[size-1] = c1, c2
	return colors
}

// toColorful parses a #rrggbb color. ANSI palette indexes fall back to gray.
func toColorful(c lipgloss.Color) colorful.Color {
	if col, err := colorful.Hex(string(c)); err == nil {
		return col
	}
	col, _ := colorful.MakeColor(color.Gray{Y: 128})
	return col
}

func hexOf(c colorful.Color) string {
	return c.Hex()
}
