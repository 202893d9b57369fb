package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/params"
)

var (
	userStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			PaddingBottom(1)

	columnStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	columnTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("13"))

	typingStyle = lipgloss.NewStyle().
			Faint(true).
			Italic(true)

	emptyStateStyle = lipgloss.NewStyle().
			Faint(true).
			Padding(2, 0).
			Align(lipgloss.Center)

	statusStyle = lipgloss.NewStyle().
			Faint(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

// columnWidth is the content width of one response column for a given
// terminal width: two columns, borders and padding accounted for.
func columnWidth(totalWidth int) int {
	w := totalWidth/2 - 4
	if w < 10 {
		w = 10
	}
	return w
}

// RenderTranscript turns the presenter output into the scrollable
// transcript body. The two response columns render independently and
// side by side; an empty transcript shows an explicit empty state.
// The replay command reuses it for one-shot rendering.
func RenderTranscript(transcript chat.Transcript, width int, spinner string) string {
	if transcript.Empty {
		return emptyStateStyle.Width(width).Render("No messages yet. Say something to compare two responses.")
	}

	colWidth := columnWidth(width)

	var b strings.Builder
	for i, turn := range transcript.Turns {
		if i > 0 {
			b.WriteString("\n")
		}

		if turn.HasUser {
			b.WriteString(userStyle.Render("You: " + turn.User))
			b.WriteString("\n")
		}

		left := renderColumn(turn.ResponseA, colWidth, spinner)
		right := renderColumn(turn.ResponseB, colWidth, spinner)
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right))
		b.WriteString("\n")
	}

	return b.String()
}

func renderColumn(response chat.ResponseView, width int, spinner string) string {
	title := columnTitleStyle.Render("Response " + string(response.Variant))

	var body string
	switch response.State {
	case chat.ResponseContent:
		body = response.Content
	case chat.ResponseTyping:
		body = typingStyle.Render(spinner + " typing...")
	case chat.ResponseEmpty:
		// This turn never requested the variant; the column stays blank.
		body = ""
	}

	return columnStyle.Width(width).Render(title + "\n" + body)
}

// statusBar shows the models, the knobs, and the preset classification.
func (m model) statusBar() string {
	preset := params.Classify(m.knobs)

	status := fmt.Sprintf("A:%s B:%s | temp %.2f top_p %.2f max %d [%s] | ctrl+p preset ctrl+t temp esc quit",
		m.opts.ModelA, m.opts.ModelB,
		m.knobs.Temperature, m.knobs.TopP, m.knobs.MaxTokens,
		preset,
	)
	if m.lastErr != nil {
		status = errorStyle.Render("error: "+m.lastErr.Error()) + " | " + status
	}

	return statusStyle.Render(ansi.Truncate(status, m.width, "..."))
}
