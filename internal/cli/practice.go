package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/speakpad/speakpad/internal/app"
	"github.com/speakpad/speakpad/internal/library"
	"github.com/speakpad/speakpad/internal/permissions"
	"github.com/speakpad/speakpad/internal/session"
	"github.com/speakpad/speakpad/internal/store"
)

func NewPracticeCmd(deps *Dependencies) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "practice",
		Short: "Interactive practice session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.App.Refresh(); err != nil {
				return err
			}
			m := newPracticeModel(deps)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err := p.Run()
			return err
		},
	}
	return cmd
}

type practiceMode int

const (
	modeBrowse practiceMode = iota
	modeRename
	modeSearch
)

type keyMap struct {
	Record  key.Binding
	Pause   key.Binding
	Discard key.Binding
	Play    key.Binding
	Delete  key.Binding
	Rename  key.Binding
	Search  key.Binding
	Up      key.Binding
	Down    key.Binding
	Help    key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Escape  key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Record, k.Play, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Record, k.Pause, k.Discard},
		{k.Play, k.Rename, k.Delete},
		{k.Search, k.Up, k.Down, k.Quit},
	}
}

var practiceKeys = keyMap{
	Record: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "record/stop"),
	),
	Pause: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "pause/resume"),
	),
	Discard: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "discard take"),
	),
	Play: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "play/stop"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Rename: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "rename"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
	),
	Escape: key.NewBinding(
		key.WithKeys("esc"),
	),
}

var (
	practiceTitleStyle = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("62")).
				Padding(0, 1)
	recordingBadgeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	pausedBadgeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	playingBadgeStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	groupLabelStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	selectedRowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("15")).Background(lipgloss.Color("57"))
	dimStyle            = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

type practiceModel struct {
	deps *Dependencies
	snap app.Snapshot
	mode practiceMode

	cursor    int
	textInput textinput.Model
	help      help.Model

	notice   string
	noticeAt time.Time

	tick   time.Duration
	width  int
	height int
}

type practiceTickMsg time.Time

func newPracticeModel(deps *Dependencies) practiceModel {
	ti := textinput.New()
	ti.CharLimit = 60
	ti.Width = 40

	tick := time.Duration(deps.Config.TickMillis) * time.Millisecond

	return practiceModel{
		deps:      deps,
		snap:      deps.App.Snapshot(),
		textInput: ti,
		help:      help.New(),
		tick:      tick,
	}
}

func (m practiceModel) tickCmd() tea.Cmd {
	return tea.Tick(m.tick, func(t time.Time) tea.Msg {
		return practiceTickMsg(t)
	})
}

func (m practiceModel) Init() tea.Cmd {
	return m.tickCmd()
}

// recordings flattens the grouped snapshot into a cursor-addressable list.
func (m practiceModel) recordings() []store.Metadata {
	var out []store.Metadata
	for _, g := range m.snap.Groups {
		out = append(out, g.Recordings...)
	}
	return out
}

func (m practiceModel) selected() (store.Metadata, bool) {
	recs := m.recordings()
	if len(recs) == 0 || m.cursor >= len(recs) {
		return store.Metadata{}, false
	}
	return recs[m.cursor], true
}

func (m *practiceModel) clampCursor() {
	n := len(m.recordings())
	if n == 0 {
		m.cursor = 0
	} else if m.cursor >= n {
		m.cursor = n - 1
	}
}

func (m *practiceModel) notify(msg string) {
	m.notice = msg
	m.noticeAt = time.Now()
}

func (m practiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case practiceTickMsg:
		m.snap = m.deps.App.Snapshot()
		m.clampCursor()
		if m.notice != "" && time.Since(m.noticeAt) > 3*time.Second {
			m.notice = ""
		}
		return m, m.tickCmd()

	case tea.KeyMsg:
		switch m.mode {
		case modeRename, modeSearch:
			return m.updateTextInput(msg)
		default:
			return m.updateBrowse(msg)
		}
	}

	return m, nil
}

func (m practiceModel) updateTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, practiceKeys.Enter):
		value := m.textInput.Value()
		switch m.mode {
		case modeRename:
			if sel, ok := m.selected(); ok {
				if err := m.deps.App.Rename(sel.ID, value); err != nil {
					m.notify(err.Error())
				}
			}
		case modeSearch:
			m.deps.App.SetSearch(value)
			m.cursor = 0
		}
		m.mode = modeBrowse
		m.textInput.Reset()
		m.snap = m.deps.App.Snapshot()
		m.clampCursor()
		return m, nil

	case key.Matches(msg, practiceKeys.Escape):
		m.mode = modeBrowse
		m.textInput.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m practiceModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, practiceKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, practiceKeys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, practiceKeys.Record):
		switch m.snap.CaptureState {
		case session.StateRecording, session.StatePaused:
			if _, err := m.deps.App.StopRecording(); err != nil {
				m.notify(err.Error())
			} else {
				m.notify("Saved")
			}
		default:
			if err := m.deps.App.StartRecording(m.ctx()); err != nil {
				if errors.Is(err, permissions.ErrDenied) {
					m.notify("Microphone access denied. Grant it in system settings and try again.")
				} else {
					m.notify(err.Error())
				}
			}
		}
		m.snap = m.deps.App.Snapshot()

	case key.Matches(msg, practiceKeys.Pause):
		switch m.snap.CaptureState {
		case session.StateRecording:
			if err := m.deps.App.PauseRecording(); err != nil {
				m.notify(err.Error())
			}
		case session.StatePaused:
			if err := m.deps.App.ResumeRecording(); err != nil {
				m.notify(err.Error())
			}
		}
		m.snap = m.deps.App.Snapshot()

	case key.Matches(msg, practiceKeys.Discard):
		switch m.snap.CaptureState {
		case session.StateRecording, session.StatePaused:
			if err := m.deps.App.DiscardRecording(); err != nil {
				m.notify(err.Error())
			} else {
				m.notify("Discarded")
			}
		}
		m.snap = m.deps.App.Snapshot()

	case key.Matches(msg, practiceKeys.Play):
		sel, ok := m.selected()
		if !ok {
			break
		}
		if m.snap.PlayingID == sel.ID {
			if err := m.deps.App.StopPlayback(); err != nil {
				m.notify(err.Error())
			}
		} else {
			if err := m.deps.App.Play(m.ctx(), sel.ID); err != nil {
				m.notify(err.Error())
			}
		}
		m.snap = m.deps.App.Snapshot()

	case key.Matches(msg, practiceKeys.Delete):
		if sel, ok := m.selected(); ok {
			if err := m.deps.App.Delete(sel.ID); err != nil {
				m.notify(err.Error())
			}
			m.snap = m.deps.App.Snapshot()
			m.clampCursor()
		}

	case key.Matches(msg, practiceKeys.Rename):
		if sel, ok := m.selected(); ok {
			m.mode = modeRename
			m.textInput.Placeholder = "New name"
			m.textInput.SetValue(sel.Name)
			m.textInput.Focus()
		}

	case key.Matches(msg, practiceKeys.Search):
		m.mode = modeSearch
		m.textInput.Placeholder = "Search recordings"
		m.textInput.SetValue(m.snap.Query)
		m.textInput.Focus()

	case key.Matches(msg, practiceKeys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, practiceKeys.Down):
		if m.cursor < len(m.recordings())-1 {
			m.cursor++
		}
	}

	return m, nil
}

// ctx returns the context for commands issued from keystrokes. Stream
// lifetimes are managed by the session and controller, not by the key event.
func (m practiceModel) ctx() context.Context { return context.Background() }

func (m practiceModel) View() string {
	var b strings.Builder

	b.WriteString(practiceTitleStyle.Render("speakpad"))
	b.WriteString("  ")
	b.WriteString(m.statusLine())
	b.WriteString("\n\n")

	if m.snap.Query != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("filter: %q", m.snap.Query)))
		b.WriteString("\n")
	}

	if len(m.snap.Groups) == 0 {
		b.WriteString(dimStyle.Render("No recordings. Press space to record."))
		b.WriteString("\n")
	} else {
		idx := 0
		for _, g := range m.snap.Groups {
			b.WriteString(groupLabelStyle.Render(g.Label))
			b.WriteString("\n")
			for _, r := range g.Recordings {
				line := fmt.Sprintf("  %s  %s", library.FormatDuration(r.Duration), r.Name)
				if r.ID == m.snap.PlayingID {
					line += "  " + playingBadgeStyle.Render("▶")
				}
				if idx == m.cursor {
					line = selectedRowStyle.Render(line)
				}
				b.WriteString(line)
				b.WriteString("\n")
				idx++
			}
		}
	}

	b.WriteString("\n")

	switch m.mode {
	case modeRename:
		b.WriteString("Rename: " + m.textInput.View() + "\n")
	case modeSearch:
		b.WriteString("Search: " + m.textInput.View() + "\n")
	}

	if m.notice != "" {
		b.WriteString(errorStyle.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(practiceKeys))
	return b.String()
}

func (m practiceModel) statusLine() string {
	switch m.snap.CaptureState {
	case session.StateRecording:
		return recordingBadgeStyle.Render("● REC " + library.FormatDuration(m.snap.Elapsed.Milliseconds()))
	case session.StatePaused:
		return pausedBadgeStyle.Render("⏸ PAUSED " + library.FormatDuration(m.snap.Elapsed.Milliseconds()))
	}
	if m.snap.PlayingID != "" {
		return playingBadgeStyle.Render("▶ playing " + m.snap.PlayingID)
	}
	return dimStyle.Render("idle")
}
