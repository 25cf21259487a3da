package render

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

var pieColors = []drawing.Color{
	drawing.ColorFromHex("6366f1"),
	drawing.ColorFromHex("10b981"),
	drawing.ColorFromHex("f59e0b"),
	drawing.ColorFromHex("ef4444"),
	drawing.ColorFromHex("8b5cf6"),
}

// ErrNoChartData is returned when a summary has nothing to plot.
var ErrNoChartData = errors.New("no chart data")

// CategoryPNG renders the equipment distribution pie chart.
func CategoryPNG(s *dataset.Summary) ([]byte, error) {
	slices, ok := dashboard.CategoryChart(s)
	if !ok {
		return nil, ErrNoChartData
	}
	values := make([]chart.Value, 0, len(slices))
	for i, sl := range slices {
		if sl.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Label: sl.Label,
			Value: sl.Value,
			Style: chart.Style{FillColor: pieColors[i%len(pieColors)], StrokeColor: drawing.ColorWhite, StrokeWidth: 1.5},
		})
	}
	if len(values) == 0 {
		return nil, ErrNoChartData
	}
	pie := chart.PieChart{
		Title:  "Equipment Distribution",
		Width:  512,
		Height: 512,
		Values: values,
	}
	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render pie chart: %w", err)
	}
	return buf.Bytes(), nil
}

// MagnitudePNG renders the Flow/Press/Temp bar chart. Missing averages are
// drawn as zero-height bars.
func MagnitudePNG(s *dataset.Summary) ([]byte, error) {
	bars, ok := dashboard.MagnitudeChart(s)
	if !ok {
		return nil, ErrNoChartData
	}
	values := make([]chart.Value, 0, len(bars))
	nonZero := false
	for _, b := range bars {
		v := b.Value
		if math.IsNaN(v) {
			v = 0
		}
		if v != 0 {
			nonZero = true
		}
		values = append(values, chart.Value{
			Label: b.Label,
			Value: v,
			Style: chart.Style{FillColor: drawing.ColorFromHex("818cf8"), StrokeColor: drawing.ColorFromHex("818cf8")},
		})
	}
	if !nonZero {
		return nil, ErrNoChartData
	}
	bc := chart.BarChart{
		Title:      "Performance Average",
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		Width:      512,
		Height:     512,
		BarWidth:   80,
		Bars:       values,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render bar chart: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteCharts renders both charts for d into dir and returns the written
// paths. A chart with no data is skipped.
func WriteCharts(d *dataset.Dataset, dir string) ([]string, error) {
	if dataset.Classify(d) != dataset.KindSummary {
		return nil, ErrNoChartData
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir charts dir: %w", err)
	}
	stem := dataset.Stem(d.Name)
	if stem == "" {
		stem = "dataset"
	}
	var written []string
	for _, c := range []struct {
		suffix string
		render func(*dataset.Summary) ([]byte, error)
	}{
		{"_distribution.png", CategoryPNG},
		{"_averages.png", MagnitudePNG},
	} {
		b, err := c.render(&d.Summary)
		if errors.Is(err, ErrNoChartData) {
			continue
		}
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, stem+c.suffix)
		if err := os.WriteFile(path, b, 0o644); err != nil {
			return written, fmt.Errorf("write chart: %w", err)
		}
		written = append(written, path)
	}
	if len(written) == 0 {
		return nil, ErrNoChartData
	}
	return written, nil
}
