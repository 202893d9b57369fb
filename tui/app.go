// Package tui is the interactive terminal chat client: one input box,
// one running conversation, and two assistant response columns rendered
// side by side for comparison.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"

	"github.com/twakeham/pathfinder/pkg/chat"
	"github.com/twakeham/pathfinder/pkg/markdown"
	"github.com/twakeham/pathfinder/pkg/params"
	"github.com/twakeham/pathfinder/pkg/provider"
	"github.com/twakeham/pathfinder/pkg/store"
)

// Options configures a chat session.
type Options struct {
	Provider provider.Provider
	ModelA   string
	ModelB   string
	Params   params.Params

	// Recorder persists the session log when set; the view still
	// reconstructs from the in-memory snapshot.
	Recorder *store.Recorder
}

// Run starts the interactive chat and blocks until the user quits.
func Run(opts Options) error {
	program := tea.NewProgram(newModel(opts), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running chat ui: %w", err)
	}
	return nil
}

// replyMsg delivers one finished variant generation back into the
// update loop.
type replyMsg struct {
	variant          chat.Variant
	content          string
	model            string
	promptTokens     int
	completionTokens int
	err              error
}

type model struct {
	opts Options

	// log is the flat message log; turns are always recomputed from it,
	// never mutated incrementally.
	log     []chat.Message
	pending int // variant generations still in flight
	lastErr error

	knobs  params.Params
	preset int // index into params.Presets() last applied, -1 for none

	input    textarea.Model
	viewport viewport.Model
	spin     spinner.Model
	renderer chat.Renderer

	width  int
	height int
	ready  bool
}

func newModel(opts Options) model {
	input := textarea.New()
	input.Placeholder = "Send a message..."
	input.SetHeight(3)
	input.ShowLineNumbers = false
	input.Focus()

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return model{
		opts:     opts,
		knobs:    opts.Params.Clamp(),
		preset:   -1,
		input:    input,
		spin:     spin,
		renderer: markdown.Plain{},
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.spin.Tick)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.renderer = newRenderer(columnWidth(m.width))
		m.refresh()
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			// A sent message must not fall through to the textarea,
			// which would type a newline into the emptied input.
			if cmd := m.submit(); cmd != nil {
				return m, cmd
			}

		case "ctrl+p":
			m.cyclePreset()
			m.refresh()

		case "ctrl+t":
			// Nudge temperature to demonstrate custom detection.
			m.knobs.Temperature += 0.1
			if m.knobs.Temperature > params.MaxTemperature {
				m.knobs.Temperature = params.MinTemperature
			}
			m.knobs = m.knobs.Clamp()
		}

	case replyMsg:
		m.pending--
		if msg.err != nil {
			m.lastErr = msg.err
		} else {
			m.log = append(m.log, chat.Message{
				Role:    chat.RoleAssistant,
				Variant: msg.variant,
				Content: msg.content,
			})
			m.record(&store.Message{
				Role:             chat.RoleAssistant,
				Variant:          msg.variant,
				Content:          msg.content,
				Model:            msg.model,
				PromptTokens:     msg.promptTokens,
				CompletionTokens: msg.completionTokens,
			})
		}
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		if m.awaiting() {
			// Keep the typing placeholders animated.
			m.refresh()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *model) awaiting() bool {
	return m.pending > 0
}

// submit sends the typed message: it appends the user message to the
// log, marks both variants as pending, and launches one generation
// command per variant over the current log snapshot.
func (m *model) submit() tea.Cmd {
	content := strings.TrimSpace(m.input.Value())
	if content == "" || m.awaiting() {
		return nil
	}

	m.input.Reset()
	m.lastErr = nil
	m.log = append(m.log, chat.Message{Role: chat.RoleUser, Content: content})
	m.record(&store.Message{Role: chat.RoleUser, Content: content})
	m.pending = 2

	history := make([]chat.Message, len(m.log))
	copy(history, m.log)

	m.refresh()

	return tea.Batch(
		m.generate(chat.VariantA, m.opts.ModelA, history),
		m.generate(chat.VariantB, m.opts.ModelB, history),
	)
}

func (m *model) generate(variant chat.Variant, modelName string, history []chat.Message) tea.Cmd {
	prov := m.opts.Provider
	knobs := m.knobs

	return func() tea.Msg {
		reply, err := prov.Chat(context.Background(), history, modelName, knobs)
		return replyMsg{
			variant:          variant,
			content:          reply.Content,
			model:            modelName,
			promptTokens:     reply.PromptTokens,
			completionTokens: reply.CompletionTokens,
			err:              err,
		}
	}
}

// record persists one message when the session has a recorder.
func (m *model) record(msg *store.Message) {
	if m.opts.Recorder == nil {
		return
	}
	if err := m.opts.Recorder.Record(context.Background(), msg); err != nil {
		m.lastErr = err
	}
}

func (m *model) cyclePreset() {
	presets := params.Presets()
	m.preset = (m.preset + 1) % len(presets)
	m.knobs = params.Apply(presets[m.preset])
}

// refresh recomputes the transcript from the log and pushes it into the
// viewport, scrolled to the latest turn.
func (m *model) refresh() {
	turns := chat.Reconstruct(m.log)

	transcript, err := chat.Present(turns, m.awaiting(), m.renderer)
	if err != nil {
		m.lastErr = err
		return
	}

	m.viewport.SetContent(RenderTranscript(transcript, m.width, m.spin.View()))
	m.viewport.GotoBottom()
}

func (m *model) layout() {
	m.input.SetWidth(m.width - 2)

	viewportHeight := m.height - m.input.Height() - 3 // status bar + paddings
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.width, viewportHeight)
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
	}
}

func (m model) View() string {
	if !m.ready {
		return "Loading..."
	}

	return strings.Join([]string{
		m.viewport.View(),
		m.statusBar(),
		m.input.View(),
	}, "\n")
}

// newRenderer prefers glamour markdown and falls back to plain text on
// dumb terminals or renderer construction failure.
func newRenderer(width int) chat.Renderer {
	if termenv.ColorProfile() == termenv.Ascii {
		return markdown.Plain{}
	}

	r, err := markdown.NewTermRenderer(width)
	if err != nil {
		return markdown.Plain{}
	}
	return r
}
