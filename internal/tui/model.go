// Package tui is the interactive dashboard: one view showing the active
// dataset, its charts and the upload history.
package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
	"github.com/KaramelBytes/chemviz-cli/internal/render"
)

var (
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8CA1AE"))
	frameStyle  = lipgloss.NewStyle().Padding(0, 1)
)

// Options configures where files produced from the dashboard go.
type Options struct {
	ReportsDir string
	ChartsDir  string
	// ExportPath overrides the XLSX export location; empty uses ChartsDir.
	ExportPath string
}

type stateChangedMsg struct{}

type filesWrittenMsg struct {
	what  string
	paths []string
	err   error
}

// Model is the bubbletea model. Domain state lives in the Session so that
// overlapping requests fold in atomically as they complete.
type Model struct {
	sess *dashboard.Session
	opt  Options
	log  *zap.Logger

	spinner   spinner.Model
	input     textinput.Model
	inputting bool
	cursor    int
	inflight  int
	status    string
	width     int
}

// New builds the dashboard model around a session.
func New(sess *dashboard.Session, opt Options, log *zap.Logger) Model {
	if log == nil {
		log = zap.NewNop()
	}
	in := textinput.New()
	in.Placeholder = "path/to/dataset.csv"
	in.Prompt = "CSV file: "
	in.CharLimit = 4096

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot
	spin.Style = statusStyle

	// inflight starts at one for the history fetch issued by Init.
	return Model{sess: sess, opt: opt, log: log, spinner: spin, input: in, inflight: 1}
}

// Init fetches the history once when the view is first shown.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadHistoryCmd(m.sess))
}

func loadHistoryCmd(sess *dashboard.Session) tea.Cmd {
	return func() tea.Msg {
		sess.LoadHistory(context.Background())
		return stateChangedMsg{}
	}
}

func uploadCmd(sess *dashboard.Session) tea.Cmd {
	return func() tea.Msg {
		sess.Upload(context.Background())
		return stateChangedMsg{}
	}
}

func reportCmd(sess *dashboard.Session, id *int64, name, dir string) tea.Cmd {
	return func() tea.Msg {
		_, _ = sess.DownloadReport(context.Background(), id, name, dir)
		return stateChangedMsg{}
	}
}

func chartsCmd(sess *dashboard.Session, dir string) tea.Cmd {
	active := sess.Snapshot().Active()
	return func() tea.Msg {
		paths, err := render.WriteCharts(active, dir)
		return filesWrittenMsg{what: "charts", paths: paths, err: err}
	}
}

func exportCmd(sess *dashboard.Session, path string) tea.Cmd {
	active := sess.Snapshot().Active()
	return func() tea.Msg {
		if err := render.ExportXLSX(active, path); err != nil {
			return filesWrittenMsg{what: "workbook", err: err}
		}
		return filesWrittenMsg{what: "workbook", paths: []string{path}}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		if m.inflight <= 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case stateChangedMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		st := m.sess.Snapshot()
		if m.cursor >= len(st.History) {
			m.cursor = max(0, len(st.History)-1)
		}
		return m, nil

	case filesWrittenMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		if msg.err != nil {
			m.log.Warn("write files failed", zap.String("what", msg.what), zap.Error(msg.err))
			m.status = fmt.Sprintf("Could not write %s: %v", msg.what, msg.err)
			return m, nil
		}
		m.status = fmt.Sprintf("Wrote %s: %s", msg.what, strings.Join(msg.paths, ", "))
		return m, nil

	case tea.KeyMsg:
		if m.inputting {
			return m.updateInput(msg)
		}
		if k := msg.String(); k == "q" || k == "ctrl+c" {
			return m, tea.Quit
		}
		if m.sess.Snapshot().Notice.Text != "" {
			m.sess.Dispatch(dashboard.NoticeDismissed{})
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		if p := strings.TrimSpace(m.input.Value()); p != "" {
			m.sess.Choose(p)
			m.status = "Selected " + filepath.Base(p)
		}
		m.inputting = false
		m.input.Blur()
		return m, nil
	case "esc", "ctrl+c":
		m.inputting = false
		m.input.Blur()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.sess.Snapshot()
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "f":
		m.inputting = true
		m.input.SetValue(st.File)
		m.input.CursorEnd()
		return m, m.input.Focus()
	case "u":
		if st.File == "" {
			return m, nil
		}
		m.status = ""
		return m.launch(uploadCmd(m.sess))
	case "r":
		return m.launch(loadHistoryCmd(m.sess))
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(st.History)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		m.sess.Select(m.cursor)
		return m, nil
	case "esc":
		m.sess.Dispatch(dashboard.SelectionCleared{})
		return m, nil
	case "d":
		active := st.Active()
		if active == nil || active.ID == nil {
			return m, nil
		}
		return m.launch(reportCmd(m.sess, active.ID, active.Name, m.opt.ReportsDir))
	case "c":
		return m.launch(chartsCmd(m.sess, m.opt.ChartsDir))
	case "x":
		return m.launch(exportCmd(m.sess, m.exportPath()))
	}
	return m, nil
}

// launch starts a request without waiting for earlier ones to finish.
func (m Model) launch(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.inflight++
	if m.inflight == 1 {
		return m, tea.Batch(cmd, m.spinner.Tick)
	}
	return m, cmd
}

func (m Model) exportPath() string {
	if m.opt.ExportPath != "" {
		return m.opt.ExportPath
	}
	name := "dataset"
	if a := m.sess.Snapshot().Active(); a != nil && dataset.Stem(a.Name) != "" {
		name = dataset.Stem(a.Name)
	}
	return filepath.Join(m.opt.ChartsDir, name+"_summary.xlsx")
}

func (m Model) View() string {
	st := m.sess.Snapshot()
	var parts []string
	parts = append(parts, render.Dashboard(st, render.Options{Cursor: m.cursor}))
	if m.inputting {
		parts = append(parts, m.input.View())
	}
	if m.inflight > 0 || st.Loading {
		parts = append(parts, statusStyle.Render(m.spinner.View()+" working..."))
	} else if m.status != "" {
		parts = append(parts, statusStyle.Render(m.status))
	}
	parts = append(parts, helpStyle.Render("f choose file | u upload | r refresh | up/down move | enter select | esc clear | d report | c charts | x xlsx | q quit"))
	body := strings.Join(parts, "\n")
	if m.width > 0 {
		return frameStyle.Width(m.width - 2).Render(body)
	}
	return frameStyle.Render(body)
}
