// Package markdown provides the renderers the turn presenter delegates
// finished assistant text to.
package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/twakeham/pathfinder/pkg/chat"
)

// TermRenderer renders markdown for terminal display via glamour.
type TermRenderer struct {
	renderer *glamour.TermRenderer
}

var _ chat.Renderer = (*TermRenderer)(nil)

// NewTermRenderer creates a terminal markdown renderer wrapped at the
// given width. Width values below 1 disable wrapping.
func NewTermRenderer(width int) (*TermRenderer, error) {
	opts := []glamour.TermRendererOption{
		glamour.WithAutoStyle(),
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("creating glamour renderer: %w", err)
	}

	return &TermRenderer{renderer: r}, nil
}

func (t *TermRenderer) Render(text string) (string, error) {
	out, err := t.renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	// Glamour pads with surrounding blank lines; the column layout adds
	// its own spacing.
	return strings.Trim(out, "\n"), nil
}

// Plain passes content through untouched. Used where the consumer wants
// raw text, e.g. the HTTP turn views.
type Plain struct{}

var _ chat.Renderer = Plain{}

func (Plain) Render(text string) (string, error) {
	return text, nil
}
