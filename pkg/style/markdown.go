package style

import (
	"github.com/arthur-debert/packweaver/pkg/ui"
	"github.com/charmbracelet/glamour"
)

// RenderMarkdown renders md for a terminal and returns it unchanged for
// every other format
func RenderMarkdown(md string, f ui.Format, width int) string {
	if f != ui.FormatTerminal {
		return md
	}

	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		options = append(options, glamour.WithWordWrap(width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return md
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return rendered
}
