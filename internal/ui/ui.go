package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/shared"
	"github.com/xianrendesu-max/senninyoutubeviewerver3/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ProbingView ViewState = iota
	ReportView
)

// endpointItem wraps [tasks.ProbeResult] to implement [list.Item].
type endpointItem struct {
	result tasks.ProbeResult
}

func (i endpointItem) FilterValue() string { return i.result.Target.BaseURL }
func (i endpointItem) Title() string {
	mark := styles.ok.Render("●")
	if !i.result.Healthy {
		mark = styles.err.Render("●")
	}
	return fmt.Sprintf("%s %s", mark, i.result.Target.BaseURL)
}
func (i endpointItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.result.Target.Capability, shared.FormatLatency(i.result.Latency))
	switch {
	case i.result.Err != nil:
		desc = fmt.Sprintf("%s • %v", i.result.Target.Capability, i.result.Err)
	case !i.result.Healthy:
		desc = fmt.Sprintf("%s • status %d, payload rejected", i.result.Target.Capability, i.result.StatusCode)
	}
	return desc
}

type progressUpdateMsg tasks.ProgressUpdate

type probeCompleteMsg struct {
	report *tasks.ProbeReport
	err    error
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	engine       *tasks.ProbeEngine
	opts         tasks.ProbeOpts
	width        int
	height       int
	endpointList list.Model
	progressChan chan tasks.ProgressUpdate
	resultChan   chan probeCompleteMsg
	progress     tasks.ProgressUpdate
	report       *tasks.ProbeReport
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model over the given probe engine.
func NewModel(ctx context.Context, engine *tasks.ProbeEngine, opts tasks.ProbeOpts) *Model {
	return &Model{
		ctx:    ctx,
		view:   ProbingView,
		engine: engine,
		opts:   opts,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init kicks off the first pool sweep.
func (m *Model) Init() tea.Cmd {
	return m.startProbe()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.endpointList.Width() == 0 {
			m.endpointList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ProbingView:
			return m.handleProbingKeys(msg)
		case ReportView:
			return m.handleReportKeys(msg)
		}

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case probeCompleteMsg:
		m.report = msg.report
		m.err = msg.err
		m.view = ReportView
		m.progressChan = nil
		m.resultChan = nil
		if m.report != nil {
			items := make([]list.Item, len(m.report.Results))
			for i, res := range m.report.Results {
				items[i] = endpointItem{result: res}
			}
			m.endpointList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.endpointList.Title = fmt.Sprintf("Endpoints: %d healthy, %d unhealthy", m.report.Healthy, m.report.Unhealthy)
			m.endpointList.SetSize(m.width-4, m.height-8)
		}
		return m, nil
	}

	return m.updateList(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil && m.report == nil {
		return styles.err.Render(fmt.Sprintf("Probe failed: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case ProbingView:
		return m.renderProbing()
	case ReportView:
		return m.renderReport()
	default:
		return ""
	}
}

func (m *Model) handleProbingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handleReportKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.view = ProbingView
		m.report = nil
		m.err = nil
		m.progress = tasks.ProgressUpdate{}
		return m, m.startProbe()
	}

	var cmd tea.Cmd
	m.endpointList, cmd = m.endpointList.Update(msg)
	return m, cmd
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != ReportView {
		return m, nil
	}
	var cmd tea.Cmd
	m.endpointList, cmd = m.endpointList.Update(msg)
	return m, cmd
}

func (m *Model) startProbe() tea.Cmd {
	m.progressChan = make(chan tasks.ProgressUpdate, 50)
	m.resultChan = make(chan probeCompleteMsg, 1)

	progress, result := m.progressChan, m.resultChan
	go func() {
		report, err := m.engine.Probe(m.ctx, progress, m.opts)
		result <- probeCompleteMsg{report: report, err: err}
		close(progress)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, result := m.progressChan, m.resultChan
	return func() tea.Msg {
		if progress == nil {
			return probeCompleteMsg{}
		}

		update, ok := <-progress
		if !ok {
			return <-result
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderProbing() string {
	title := styles.title.Render("Probing endpoints")

	var phase string
	switch m.progress.Phase {
	case tasks.ProbeEndpoint:
		phase = fmt.Sprintf("Checking (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.ProbeDone:
		phase = "Collecting results..."
	default:
		phase = "Starting..."
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.quit})
	return fmt.Sprintf("%s\n\n%s\n%s\n\n%s", title, phase, m.progress.Message, helpView)
}

func (m *Model) renderReport() string {
	summary := ""
	if m.report != nil {
		line := fmt.Sprintf("Swept %d endpoints in %s", len(m.report.Results), shared.FormatLatency(m.report.Elapsed))
		if m.report.Unhealthy == 0 {
			summary = styles.ok.Render(line)
		} else {
			summary = styles.warn.Render(line)
		}
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.refresh, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", m.endpointList.View(), summary, helpView)
}
