package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

var (
	accent    = lipgloss.Color("#6366f1")
	muted     = lipgloss.Color("#94a3b8")
	ink       = lipgloss.Color("#1e293b")
	danger    = lipgloss.Color("#ef4444")
	barColor  = lipgloss.Color("#818cf8")
	sliceTint = []lipgloss.Color{"#6366f1", "#10b981", "#f59e0b", "#ef4444", "#8b5cf6"}

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(ink)
	mutedStyle   = lipgloss.NewStyle().Foreground(muted)
	errorStyle   = lipgloss.NewStyle().Foreground(danger).Bold(true)
	statLabel    = lipgloss.NewStyle().Foreground(muted).Bold(true)
	statValue    = lipgloss.NewStyle().Foreground(accent).Bold(true)
)

var statBox = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(accent).
	Padding(0, 1).
	Width(14).
	Align(lipgloss.Center)

// EmptyText is shown when there is no analyzable dataset.
const EmptyText = "Awaiting Analysis"

// EmptyHistoryText is shown for an empty history list.
const EmptyHistoryText = "(no datasets yet)"

const barWidth = 30

// Options tweaks dashboard rendering.
type Options struct {
	// Cursor highlights a history row (TUI); -1 disables it.
	Cursor int
	// HideHistory drops the history panel.
	HideHistory bool
}

// Dashboard renders the whole view for a state.
func Dashboard(s dashboard.State, opt Options) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ChemViz") + mutedStyle.Render(" equipment analytics"))
	b.WriteString("\n")
	if s.File != "" {
		b.WriteString(mutedStyle.Render("file: ") + s.File)
		if s.Loading {
			b.WriteString(mutedStyle.Render("  (analyzing...)"))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(Active(s.Active()))
	if !opt.HideHistory {
		b.WriteString("\n")
		b.WriteString(History(s, opt.Cursor))
	}
	if s.Notice.Text != "" {
		b.WriteString("\n")
		if s.Notice.Level == dashboard.NoticeError {
			b.WriteString(errorStyle.Render("! " + s.Notice.Text))
		} else {
			b.WriteString(mutedStyle.Render(s.Notice.Text))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Active renders the summary panel for the active dataset.
func Active(d *dataset.Dataset) string {
	var b strings.Builder
	switch dataset.Classify(d) {
	case dataset.KindAbsent:
		b.WriteString(mutedStyle.Render(EmptyText))
		b.WriteString("\n")
	case dataset.KindError:
		b.WriteString(mutedStyle.Render(EmptyText))
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("upload failed: ") + d.Summary.Error)
		b.WriteString("\n")
	case dataset.KindSummary:
		title := "Analysis Results"
		if d.Name != "" {
			title += ": " + d.Name
		}
		b.WriteString(headingStyle.Render(title))
		if d.ID != nil {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("  #%d", *d.ID)))
		}
		b.WriteString("\n")
		b.WriteString(Stats(&d.Summary))
		b.WriteString("\n")
		b.WriteString(Categories(&d.Summary))
		b.WriteString("\n")
		b.WriteString(Magnitudes(&d.Summary))
	}
	return b.String()
}

// Stats renders the four stat boxes.
func Stats(s *dataset.Summary) string {
	box := func(label, value string) string {
		return statBox.Render(statLabel.Render(strings.ToUpper(label)) + "\n" + statValue.Render(value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		box("Samples", fmt.Sprintf("%d", s.Count)),
		box("Flowrate", FormatAverage(s.AvgFlowrate)),
		box("Pressure", FormatAverage(s.AvgPressure)),
		box("Temperature", FormatAverage(s.AvgTemperature)),
	) + "\n"
}

// FormatAverage prints an optional average with one decimal, "--" when absent.
func FormatAverage(v *float64) string {
	if v == nil || math.IsNaN(*v) {
		return "--"
	}
	return fmt.Sprintf("%.1f", *v)
}

// Categories renders the equipment type distribution as percentage rows.
func Categories(s *dataset.Summary) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Equipment Distribution"))
	b.WriteString("\n")
	slices, ok := dashboard.CategoryChart(s)
	if !ok || len(slices) == 0 {
		b.WriteString(mutedStyle.Render("  (no type distribution)"))
		b.WriteString("\n")
		return b.String()
	}
	total := 0.0
	width := 0
	for _, sl := range slices {
		total += sl.Value
		if len(sl.Label) > width {
			width = len(sl.Label)
		}
	}
	for i, sl := range slices {
		pct := 0.0
		if total > 0 {
			pct = sl.Value / total * 100
		}
		dot := lipgloss.NewStyle().Foreground(sliceTint[i%len(sliceTint)]).Render("●")
		fmt.Fprintf(&b, "  %s %-*s %5.0f  %5.1f%%\n", dot, width, sl.Label, sl.Value, pct)
	}
	return b.String()
}

// Magnitudes renders the Flow/Press/Temp averages as horizontal bars.
func Magnitudes(s *dataset.Summary) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Performance Average"))
	b.WriteString("\n")
	bars, ok := dashboard.MagnitudeChart(s)
	if !ok {
		return b.String()
	}
	peak := 0.0
	for _, bar := range bars {
		if !math.IsNaN(bar.Value) && math.Abs(bar.Value) > peak {
			peak = math.Abs(bar.Value)
		}
	}
	fill := lipgloss.NewStyle().Foreground(barColor)
	for _, bar := range bars {
		if math.IsNaN(bar.Value) {
			fmt.Fprintf(&b, "  %-5s %s\n", bar.Label, mutedStyle.Render("n/a"))
			continue
		}
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(bar.Value) / peak * barWidth))
		}
		fmt.Fprintf(&b, "  %-5s %s %.1f\n", bar.Label, fill.Render(strings.Repeat("█", n)), bar.Value)
	}
	return b.String()
}

// History renders the list of prior datasets.
func History(s dashboard.State, cursor int) string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("History"))
	b.WriteString("\n")
	if !s.HistoryLoaded {
		b.WriteString(mutedStyle.Render("  loading..."))
		b.WriteString("\n")
		return b.String()
	}
	if len(s.History) == 0 {
		b.WriteString(mutedStyle.Render("  " + EmptyHistoryText))
		b.WriteString("\n")
		return b.String()
	}
	selected := s.SelectedIndex()
	for i := range s.History {
		mark := "  "
		if i == selected {
			mark = "* "
		}
		pointer := " "
		if i == cursor {
			pointer = ">"
		}
		line := fmt.Sprintf("%s%s%d. %s", pointer, mark, i+1, s.History[i].Label())
		if i == cursor {
			line = titleStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}
