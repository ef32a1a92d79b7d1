package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/hazelfield/encore/internal/models"
	"github.com/hazelfield/encore/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	EventListView ViewState = iota
	ConfirmView
	RunView
	ResultView
)

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.PlaylistEngine
	events       []models.Event
	width        int
	height       int
	eventList    list.Model
	progressChan chan tasks.ProgressUpdate
	resultChan   chan runResult
	progress     tasks.ProgressUpdate
	report       *tasks.RunReport
	err          error
	help         help.Model
	keys         keyMap
}

type progressUpdateMsg tasks.ProgressUpdate

// runResult carries the engine's outcome from the run goroutine back into
// the update loop; model fields are only written from Update.
type runResult struct {
	report *tasks.RunReport
	err    error
}

type runCompleteMsg struct {
	report *tasks.RunReport
	err    error
}

// NewModel creates a new TUI model over the loaded events and pipeline engine.
func NewModel(ctx context.Context, events []models.Event, engine *tasks.PlaylistEngine) *Model {
	m := &Model{
		ctx:    ctx,
		view:   EventListView,
		engine: engine,
		events: events,
		help:   help.New(),
		keys:   newKeyMap(),
	}

	items := make([]list.Item, len(events))
	for i, event := range events {
		items[i] = eventItem{event: event}
	}
	m.eventList = list.New(items, list.NewDefaultDelegate(), 0, 0)
	m.eventList.Title = "Concerts"

	return m
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.eventList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case EventListView:
			return m.handleEventListKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case runCompleteMsg:
		m.report = msg.report
		m.err = msg.err
		m.view = ResultView
		m.progressChan = nil
		m.resultChan = nil
		return m, nil
	}

	if m.view == EventListView {
		var cmd tea.Cmd
		m.eventList, cmd = m.eventList.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.view != ResultView {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case EventListView:
		return m.renderEventList()
	case ConfirmView:
		return m.renderConfirm()
	case RunView:
		return m.renderRun()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleEventListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "enter":
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.eventList, cmd = m.eventList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "n", "esc":
		m.view = EventListView
		return m, nil
	case "y":
		m.view = RunView
		return m, m.startRun()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = EventListView
		m.report = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) startRun() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.resultChan = make(chan runResult, 1)
	progress, result := m.progressChan, m.resultChan

	go func() {
		report, err := m.engine.Run(m.ctx, progress)
		close(progress)
		result <- runResult{report: report, err: err}
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, result := m.progressChan, m.resultChan
	return func() tea.Msg {
		if progress == nil {
			return nil
		}

		update, ok := <-progress
		if !ok {
			res := <-result
			return runCompleteMsg{report: res.report, err: res.err}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderEventList() string {
	helpKeys := []key.Binding{m.keys.enter, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)
	return fmt.Sprintf("%s\n\n%s", m.eventList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	title := styles.title.Render(fmt.Sprintf("Build playlists for %d concerts?", len(m.events)))
	info := "\nOne playlist per concert, tracks in setlist order.\n"

	helpKeys := []key.Binding{m.keys.yes, m.keys.no, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n%s", title, info, helpView)
}

func (m *Model) renderRun() string {
	title := styles.title.Render("Building Playlists")

	var phase string
	switch m.progress.Phase {
	case tasks.ReadInput:
		phase = "Reading events..."
	case tasks.FetchSetlist:
		phase = fmt.Sprintf("Fetching setlists (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.MatchSongs:
		phase = fmt.Sprintf("Matching songs (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.BuildPlaylist:
		phase = "Building playlist..."
	default:
		phase = "Processing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, m.progress.Message)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Run failed: %v\n\nPress r to retry, q to quit", m.err))
	}

	if m.report == nil {
		return styles.err.Render("No report available\n\nPress r to retry, q to quit")
	}

	title := styles.ok.Render("✓ Run Complete!")
	info := fmt.Sprintf(
		"\nEvents: %d (%d skipped)\nPlaylists: %d created, %d updated\nSongs: %d matched, %d unmatched",
		m.report.EventsTotal,
		m.report.EventsSkipped,
		m.report.PlaylistsCreated,
		m.report.PlaylistsUpdated,
		m.report.SongsMatched,
		m.report.SongsFailed,
	)

	var warnings string
	if len(m.report.Warnings) > 0 {
		warnings = fmt.Sprintf("\n\n%s", styles.warn.Render(fmt.Sprintf("%d warnings:", len(m.report.Warnings))))
		for _, warning := range m.report.Warnings {
			warnings += fmt.Sprintf("\n  • %s", warning)
		}
	}

	helpKeys := []key.Binding{m.keys.restart, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, warnings, helpView)
}
