package tui

import (
	"context"

	"github.com/andrew/rag-webapp/pkg/chat"
	"github.com/andrew/rag-webapp/pkg/models"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
)

const inputHeight = 3

// exchangeDoneMsg carries the webhook outcome back onto the event loop
type exchangeDoneMsg struct {
	result chat.Result
}

// Options configure the terminal UI
type Options struct {
	// Markdown renders assistant answers with glamour
	Markdown bool
	// Context is used for outbound requests; defaults to context.Background
	Context context.Context
	Logger  zerolog.Logger
}

type Model struct {
	ctrl  *chat.Controller
	state chat.State

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	markdown bool
	renderer *glamour.TermRenderer
	ctx      context.Context
	logger   zerolog.Logger

	width  int
	height int
	notice string // transient status such as clipboard results
}

func NewModel(ctrl *chat.Controller, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.SetWidth(80)
	// enter is ours; the newline binding inserts line breaks explicitly
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = loadingStyle

	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	m := Model{
		ctrl:     ctrl,
		input:    ta,
		viewport: viewport.New(80, 20),
		spinner:  sp,
		help:     help.New(),
		markdown: opts.Markdown,
		ctx:      ctx,
		logger:   opts.Logger,
		width:    80,
		height:   30,
	}
	m.resize()
	return m
}

// State returns the current conversation state
func (m Model) State() chat.State {
	s := m.state
	s.Draft = m.input.Value()
	return s
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case exchangeDoneMsg:
		m.state = m.ctrl.Resolve(m.state, msg.result)
		m.refreshViewport()
		return m, m.input.Focus()

	case spinner.TickMsg:
		if !m.state.InFlight {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Newline):
		if !m.state.InFlight {
			m.input.InsertString("\n")
		}
		return m, nil

	case key.Matches(msg, keys.Submit):
		return m.submit()

	case key.Matches(msg, keys.Copy):
		m.notice = m.copyLastAnswer()
		return m, nil

	case key.Matches(msg, keys.PageUp), key.Matches(msg, keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	if m.state.InFlight {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit starts an exchange for the current input. Repeated presses while an exchange
// is in flight fall through Begin as no-ops.
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.state.Draft = m.input.Value()
	next, ex, ok := m.ctrl.Begin(m.state)
	if !ok {
		return m, nil
	}
	m.state = next
	m.notice = ""
	if m.state.Draft == "" {
		m.input.Reset()
	}
	m.input.Blur()
	m.refreshViewport()

	ctrl, ctx := m.ctrl, m.ctx
	run := func() tea.Msg {
		return exchangeDoneMsg{result: ctrl.Run(ctx, ex)}
	}
	return m, tea.Batch(run, m.spinner.Tick)
}

func (m Model) lastAnswer() string {
	if m.ctrl.Mode() == chat.ModeSingle {
		return m.state.Answer
	}
	for i := len(m.state.Transcript) - 1; i >= 0; i-- {
		if msg := m.state.Transcript[i]; msg.Role == models.RoleAssistant {
			return msg.Text
		}
	}
	return ""
}

func (m Model) copyLastAnswer() string {
	answer := m.lastAnswer()
	if answer == "" {
		return "nothing to copy yet"
	}
	if err := clipboard.WriteAll(answer); err != nil {
		m.logger.Warn().Err(err).Msg("clipboard write failed")
		return "clipboard unavailable: " + err.Error()
	}
	return "answer copied to clipboard"
}

func (m *Model) resize() {
	m.input.SetWidth(max(m.width-2, 10))
	m.help.Width = m.width

	// title, subtitle, error banner, input, loading line, info and help lines
	chrome := 2 + 3 + inputHeight + 2 + 3
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 3)

	if m.markdown {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(max(m.width-4, 20)),
		)
		if err != nil {
			m.logger.Warn().Err(err).Msg("markdown renderer unavailable, using plain text")
			r = nil
		}
		m.renderer = r
	}
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoBottom()
}
