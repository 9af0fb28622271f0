// Package tui provides a Bubble Tea terminal user interface for novel-downloader.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/handiism/novel-downloader/internal/config"
	"github.com/handiism/novel-downloader/internal/download"
	events "github.com/handiism/novel-downloader/internal/progress"
	"github.com/handiism/novel-downloader/internal/provider"
)

// Styles for the TUI
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")).
			MarginBottom(1)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#95E1A3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A8DADC"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#4ECDC4")).
			Padding(1, 2)

	workStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F8B500"))

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4ECDC4"))
)

const maxLogs = 10

// State represents the current UI state.
type State int

const (
	StateInput State = iota
	StateInitializing
	StateSelecting
	StateDownloading
	StateComplete
	StateError
)

// LogEntry represents a log message in the UI.
type LogEntry struct {
	Message string
	Level   events.Level
}

// Model is the Bubble Tea model for the TUI.
type Model struct {
	state     State
	textInput textinput.Model
	spinner   spinner.Model
	progress  progress.Model
	settings  *config.Settings
	registry  provider.Registry
	logs      []LogEntry
	works     []string
	selected  []bool
	cursor    int
	err       error

	// Download context
	ctx    context.Context
	cancel context.CancelFunc

	// Download manager reference and the channel its events arrive on
	manager *download.Manager
	events  chan events.Event

	// Download progress
	stats download.Progress

	// Options
	verbose bool

	width  int
	height int
}

// NewModel creates a new TUI model.
func NewModel(settings *config.Settings, registry provider.Registry) Model {
	ti := textinput.New()
	ti.Placeholder = "https://www.linovelib.com/novel/2356.html"
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 50

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		state:     StateInput,
		textInput: ti,
		spinner:   sp,
		progress:  prog,
		settings:  settings,
		registry:  registry,
		logs:      make([]LogEntry, 0),
		ctx:       ctx,
		cancel:    cancel,
		events:    make(chan events.Event, 256),
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, waitForEvent(m.events))
}

// Message types
type (
	// ProgressMsg is sent for every progress event of the manager.
	ProgressMsg struct {
		Event events.Event
	}

	// InitDoneMsg is sent when initialization completes.
	InitDoneMsg struct {
		Works   []string
		Manager *download.Manager
		Err     error
	}

	// DownloadDoneMsg is sent when all downloads complete.
	DownloadDoneMsg struct {
		Progress download.Progress
		Err      error
	}

	// TickMsg is for periodic progress updates.
	TickMsg struct{}
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = msg.Width - 20
		if m.progress.Width > 80 {
			m.progress.Width = 80
		}
		if m.progress.Width < 20 {
			m.progress.Width = 20
		}
		return m, nil

	case tea.KeyMsg:
		if cmd, handled := m.handleKey(msg); handled {
			return m, cmd
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)

	case ProgressMsg:
		cmds = append(cmds, waitForEvent(m.events))
		if msg.Event.Level == events.LevelVerbose && !m.verbose {
			break
		}
		m.logs = append(m.logs, LogEntry{
			Message: msg.Event.Message,
			Level:   msg.Event.Level,
		})
		if len(m.logs) > maxLogs {
			m.logs = m.logs[len(m.logs)-maxLogs:]
		}

	case InitDoneMsg:
		if msg.Err != nil {
			m.state = StateError
			m.err = msg.Err
		} else {
			m.works = msg.Works
			m.manager = msg.Manager
			m.selected = make([]bool, len(msg.Works))
			for i := range m.selected {
				m.selected[i] = true
			}
			m.cursor = 0
			m.state = StateSelecting
		}

	case DownloadDoneMsg:
		m.stats = msg.Progress
		switch {
		case m.ctx.Err() != nil:
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
		case msg.Err != nil:
			m.state = StateError
			m.err = msg.Err
		default:
			m.state = StateComplete
		}

	case TickMsg:
		if m.manager != nil && m.state == StateDownloading {
			m.stats = m.manager.GetProgress()
			cmds = append(cmds, m.progress.SetPercent(percent(m.stats)), tickProgress())
		}

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		cmds = append(cmds, cmd)
	}

	// Update text input
	if m.state == StateInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey processes a key press. handled is true when the key must not
// reach the text input.
func (m *Model) handleKey(msg tea.KeyMsg) (cmd tea.Cmd, handled bool) {
	key := msg.String()

	switch key {
	case "ctrl+c":
		m.cancel()
		return tea.Quit, true

	case "esc":
		switch m.state {
		case StateInput:
			return tea.Quit, true
		case StateSelecting:
			m.reset()
			return nil, true
		case StateDownloading, StateInitializing:
			m.cancel()
			m.state = StateError
			m.err = fmt.Errorf("cancelled by user")
			return nil, true
		}
	}

	switch m.state {
	case StateInput:
		switch key {
		case "enter":
			address := strings.TrimSpace(m.textInput.Value())
			if address == "" {
				return nil, true
			}
			m.state = StateInitializing
			return tea.Batch(m.initializeDownload(address), m.spinner.Tick), true
		case "ctrl+b":
			m.settings.BridgeVolumes = !m.settings.BridgeVolumes
			return nil, true
		case "ctrl+s":
			m.settings.WriteConversionScript = !m.settings.WriteConversionScript
			return nil, true
		case "ctrl+j":
			m.settings.ConvertCoverToJPG = !m.settings.ConvertCoverToJPG
			return nil, true
		case "ctrl+v":
			m.verbose = !m.verbose
			return nil, true
		}

	case StateSelecting:
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.selected)-1 {
				m.cursor++
			}
		case " ", "x":
			if len(m.selected) > 0 {
				m.selected[m.cursor] = !m.selected[m.cursor]
			}
		case "a":
			all := !allSelected(m.selected)
			for i := range m.selected {
				m.selected[i] = all
			}
		case "enter":
			selection := m.selection()
			if len(selection) == 0 {
				return nil, true
			}
			m.state = StateDownloading
			return tea.Batch(m.startDownload(selection), tickProgress()), true
		}
		return nil, true

	case StateComplete, StateError:
		switch key {
		case "q":
			return tea.Quit, true
		case "r":
			m.reset()
			return nil, true
		}
	}

	return nil, false
}

// reset prepares the model for a new download.
func (m *Model) reset() {
	m.cancel()
	m.state = StateInput
	m.logs = nil
	m.works = nil
	m.selected = nil
	m.cursor = 0
	m.err = nil
	m.stats = download.Progress{}
	m.manager = nil
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.textInput.SetValue("")
	m.textInput.Focus()
}

// selection returns the indices of the selected works.
func (m Model) selection() []int {
	indices := make([]int, 0, len(m.selected))
	for i, s := range m.selected {
		if s {
			indices = append(indices, i)
		}
	}
	return indices
}

// tickProgress returns a command to tick progress updates.
func tickProgress() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(_ time.Time) tea.Msg {
		return TickMsg{}
	})
}

// waitForEvent returns a command that delivers the next manager event.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		return ProgressMsg{Event: <-ch}
	}
}

// forward returns a progress callback that queues events for the UI. Events
// are dropped rather than blocking a download when the UI falls behind.
func forward(ch chan<- events.Event) events.Func {
	return func(e events.Event) {
		select {
		case ch <- e:
		default:
		}
	}
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	// Header
	b.WriteString(titleStyle.Render("📚 Novel Downloader"))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Download light novels as markdown"))
	b.WriteString("\n\n")

	switch m.state {
	case StateInput:
		b.WriteString(m.viewInput())
	case StateInitializing:
		b.WriteString(m.viewInitializing())
	case StateSelecting:
		b.WriteString(m.viewSelecting())
	case StateDownloading:
		b.WriteString(m.viewDownloading())
	case StateComplete:
		b.WriteString(m.viewComplete())
	case StateError:
		b.WriteString(m.viewError())
	}

	// Footer
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(m.getHelpText()))

	return b.String()
}

func (m Model) viewInput() string {
	var b strings.Builder

	b.WriteString(subtitleStyle.Render("Enter novel URL:"))
	b.WriteString("\n\n")
	b.WriteString(m.textInput.View())
	b.WriteString("\n\n")

	b.WriteString(infoStyle.Render("Options:"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s Bridge volumes (ctrl+b)\n", check(m.settings.BridgeVolumes)))
	b.WriteString(fmt.Sprintf("  %s Write pandoc script (ctrl+s)\n", check(m.settings.WriteConversionScript)))
	b.WriteString(fmt.Sprintf("  %s Convert cover to JPG (ctrl+j)\n", check(m.settings.ConvertCoverToJPG)))
	b.WriteString(fmt.Sprintf("  %s Verbose/debug output (ctrl+v)\n", check(m.verbose)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("Output folder: %s", m.settings.OutputDir)))
	b.WriteString("\n")

	return b.String()
}

func (m Model) viewInitializing() string {
	var b strings.Builder

	b.WriteString(m.spinner.View())
	b.WriteString(" ")
	b.WriteString(subtitleStyle.Render("Fetching catalog..."))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewSelecting() string {
	var b strings.Builder

	b.WriteString(successStyle.Render(fmt.Sprintf("Found %d volume(s), choose what to download:", len(m.works))))
	b.WriteString("\n\n")
	for i, work := range m.works {
		cursor := "  "
		if i == m.cursor {
			cursor = cursorStyle.Render("> ")
		}
		b.WriteString(cursor)
		b.WriteString(workStyle.Render(fmt.Sprintf("%s %d. %s", check(m.selected[i]), i, work)))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewDownloading() string {
	var b strings.Builder

	b.WriteString(m.progress.ViewAs(percent(m.stats)))
	b.WriteString("\n")

	b.WriteString(infoStyle.Render(fmt.Sprintf(
		"Chapters: %d/%d | Images: %d/%d | Downloaded: %.2f MB",
		m.stats.ChaptersDone,
		m.stats.ChaptersTotal,
		m.stats.ImagesDone,
		m.stats.ImagesTotal,
		float64(m.stats.BytesReceived)/1024/1024,
	)))
	b.WriteString("\n\n")

	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewComplete() string {
	var b strings.Builder

	box := boxStyle.Render(fmt.Sprintf(
		"✨ Download Complete!\n\n"+
			"Volumes: %d\n"+
			"Chapters: %d\n"+
			"Images: %d\n"+
			"Size: %.2f MB",
		len(m.selection()),
		m.stats.ChaptersDone,
		m.stats.ImagesDone,
		float64(m.stats.BytesReceived)/1024/1024,
	))
	b.WriteString(box)
	b.WriteString("\n\n")
	b.WriteString(m.renderLogs())

	return b.String()
}

func (m Model) viewError() string {
	var b strings.Builder

	b.WriteString(errorStyle.Render("❌ Error occurred:"))
	b.WriteString("\n\n")
	if m.err != nil {
		b.WriteString(fmt.Sprintf("  %s", m.err.Error()))
	}

	return b.String()
}

func (m Model) renderLogs() string {
	var b strings.Builder

	for _, log := range m.logs {
		var style lipgloss.Style
		prefix := "•"
		switch log.Level {
		case events.LevelError:
			style = errorStyle
			prefix = "✗"
		case events.LevelWarning:
			style = warningStyle
			prefix = "!"
		case events.LevelSuccess:
			style = successStyle
			prefix = "✓"
		case events.LevelInfo:
			style = infoStyle
			prefix = "›"
		default:
			style = dimStyle
		}
		b.WriteString(style.Render(prefix + " " + log.Message))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) getHelpText() string {
	switch m.state {
	case StateInput:
		return "enter: start • ctrl+b/s/j/v: toggle options • esc: quit"
	case StateSelecting:
		return "↑/↓: move • space: toggle • a: all • enter: download • esc: back"
	case StateInitializing, StateDownloading:
		return "esc: cancel"
	case StateComplete, StateError:
		return "r: new download • q: quit"
	}
	return ""
}

// initializeDownload enumerates the works of address.
func (m Model) initializeDownload(address string) tea.Cmd {
	ctx, settings, registry, ch := m.ctx, m.settings, m.registry, m.events
	return func() tea.Msg {
		manager := download.NewManager(settings, registry, forward(ch))
		if err := manager.Initialize(ctx, address); err != nil {
			return InitDoneMsg{Err: err}
		}
		return InitDoneMsg{
			Works:   manager.WorkNames(),
			Manager: manager,
		}
	}
}

// startDownload starts the actual download in background.
func (m Model) startDownload(selection []int) tea.Cmd {
	ctx, manager := m.ctx, m.manager
	return func() tea.Msg {
		if manager == nil {
			return DownloadDoneMsg{Err: fmt.Errorf("no manager")}
		}
		err := manager.Download(ctx, selection)
		return DownloadDoneMsg{Progress: manager.GetProgress(), Err: err}
	}
}

func percent(p download.Progress) float64 {
	total := p.ChaptersTotal + p.ImagesTotal
	if total == 0 {
		return 0
	}
	return float64(p.ChaptersDone+p.ImagesDone) / float64(total)
}

func check(on bool) string {
	if on {
		return "[×]"
	}
	return "[ ]"
}

func allSelected(selected []bool) bool {
	for _, s := range selected {
		if !s {
			return false
		}
	}
	return true
}

// Run starts the TUI application.
func Run(settings *config.Settings, registry provider.Registry) error {
	p := tea.NewProgram(NewModel(settings, registry), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
