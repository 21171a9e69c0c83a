package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/studyhall/internal/adapters/driving/styles"
	"github.com/custodia-labs/studyhall/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/studyhall/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/studyhall/internal/core/domain"
)

// chromeHeight is the number of lines below the conversation: status, input and help.
const chromeHeight = 4

// entry is one rendered line of conversation.
type entry struct {
	role      domain.Role
	content   string
	truncated bool
	notice    bool
}

// App is the chat TUI following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	entries []entry
	pending bool
	status  string
	err     error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new chat TUI with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if ports == nil {
		return nil, fmt.Errorf("creating app: %w", ErrMissingChatService)
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your notes..."
	ti.Prompt = "> "
	ti.CharLimit = 2000
	ti.Focus()

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   styles.DefaultStyles(),
		keymap:   keymap.DefaultKeyMap(),
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:     help.New(),
		width:    80,
		height:   24,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("studyhall - "+a.ports.Key.SubjectID),
		a.loadHistory(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.HistoryLoaded:
		if msg.Err != nil {
			a.setError(fmt.Errorf("loading history: %w", msg.Err))
			return a, nil
		}
		for _, turn := range msg.Turns {
			a.entries = append(a.entries, entry{role: turn.Role, content: turn.Content})
		}
		a.refresh()
		return a, nil

	case messages.ReplyReceived:
		a.pending = false
		if msg.Err != nil {
			a.setError(msg.Err)
			return a, nil
		}
		a.err = nil
		a.status = ""
		a.entries = append(a.entries, entry{
			role:      domain.RoleAssistant,
			content:   msg.Reply.Reply,
			truncated: msg.Reply.Truncated,
			notice:    msg.Reply.NoMaterial,
		})
		a.refresh()
		return a, nil

	case messages.HistoryCleared:
		if msg.Err != nil {
			a.setError(fmt.Errorf("clearing history: %w", msg.Err))
			return a, nil
		}
		a.entries = nil
		a.err = nil
		a.status = fmt.Sprintf("Removed %d turns.", msg.Removed)
		a.refresh()
		return a, nil

	case spinner.TickMsg:
		if !a.pending {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keymap.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keymap.Send):
		question := strings.TrimSpace(a.input.Value())
		if question == "" || a.pending {
			return a, nil
		}
		a.input.Reset()
		a.pending = true
		a.err = nil
		a.status = ""
		a.entries = append(a.entries, entry{role: domain.RoleUser, content: question})
		a.refresh()
		return a, tea.Batch(a.ask(question), a.spinner.Tick)

	case key.Matches(msg, a.keymap.Clear):
		if a.pending {
			return a, nil
		}
		return a, a.clearHistory()

	case key.Matches(msg, a.keymap.ScrollUp), key.Matches(msg, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	var status string
	switch {
	case a.pending:
		status = a.spinner.View() + " " + a.styles.Muted.Render("thinking...")
	case a.err != nil:
		status = a.styles.Error.Render(a.err.Error())
	case a.status != "":
		status = a.styles.Muted.Render(a.status)
	}

	return strings.Join([]string{
		a.viewport.View(),
		status,
		a.input.View(),
		a.help.ShortHelpView(a.keymap.ShortHelp()),
	}, "\n")
}

// ask calls the chat service off the update loop.
func (a *App) ask(question string) tea.Cmd {
	chat, ctx, key := a.ports.Chat, a.ctx, a.ports.Key
	return func() tea.Msg {
		reply, err := chat.Ask(ctx, key, question)
		return messages.ReplyReceived{Question: question, Reply: reply, Err: err}
	}
}

func (a *App) loadHistory() tea.Cmd {
	chat, ctx, key, limit := a.ports.Chat, a.ctx, a.ports.Key, a.ports.HistoryLimit
	return func() tea.Msg {
		turns, err := chat.History(ctx, key, limit)
		return messages.HistoryLoaded{Turns: turns, Err: err}
	}
}

func (a *App) clearHistory() tea.Cmd {
	chat, ctx, key := a.ports.Chat, a.ctx, a.ports.Key
	return func() tea.Msg {
		removed, err := chat.ClearHistory(ctx, key)
		return messages.HistoryCleared{Removed: removed, Err: err}
	}
}

func (a *App) setError(err error) {
	a.err = err
	a.status = ""
}

// refresh re-renders the conversation into the viewport and scrolls to the end.
func (a *App) refresh() {
	a.viewport.SetContent(a.render())
	a.viewport.GotoBottom()
}

func (a *App) render() string {
	if len(a.entries) == 0 {
		return a.styles.Muted.Render(fmt.Sprintf("Ask anything about %s.", a.ports.Key.SubjectID))
	}

	body := lipgloss.NewStyle().Width(max(a.width-2, 20))
	blocks := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		var b strings.Builder
		switch {
		case e.notice:
			b.WriteString(a.styles.Warning.Render(e.content))
		case e.role == domain.RoleUser:
			b.WriteString(a.styles.UserLabel.Render("you"))
			b.WriteString("\n")
			b.WriteString(body.Render(e.content))
		default:
			b.WriteString(a.styles.AssistantLabel.Render("studyhall"))
			b.WriteString("\n")
			b.WriteString(body.Render(e.content))
			if e.truncated {
				b.WriteString("\n")
				b.WriteString(a.styles.Muted.Render("(based on a sample of your notes)"))
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// Run starts the TUI on the terminal and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.viewport.Width = width
	a.viewport.Height = max(height-chromeHeight, 1)
	a.input.Width = max(width-4, 10)
	a.help.Width = width
	a.refresh()
}

// Entries returns the number of conversation entries shown.
func (a *App) Entries() int {
	return len(a.entries)
}

// Pending reports whether a question is awaiting its answer.
func (a *App) Pending() bool {
	return a.pending
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}
