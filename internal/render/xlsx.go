package render

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/chemviz-cli/internal/dashboard"
	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

const (
	summarySheet      = "Summary"
	distributionSheet = "Distribution"
)

// ExportXLSX writes a workbook with the dataset's statistics, its type
// distribution and native pie/bar charts.
func ExportXLSX(d *dataset.Dataset, path string) error {
	if dataset.Classify(d) != dataset.KindSummary {
		return ErrNoChartData
	}
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummarySheet(f, d); err != nil {
		return err
	}
	if _, ok := dashboard.CategoryChart(&d.Summary); ok {
		if err := writeDistributionSheet(f, &d.Summary); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, d *dataset.Dataset) error {
	id := ""
	if d.ID != nil {
		id = fmt.Sprintf("%d", *d.ID)
	}
	uploaded := ""
	if !d.UploadedAt.IsZero() {
		uploaded = d.UploadedAt.Format("2006-01-02 15:04:05")
	}
	rows := [][]any{
		{"Dataset", d.Name},
		{"ID", id},
		{"Uploaded at", uploaded},
		{"Samples", d.Summary.Count},
	}
	for i, r := range rows {
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	// Averages block feeds the bar chart.
	start := len(rows) + 2
	if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", start), &[]any{"Metric", "Average"}); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	bars, _ := dashboard.MagnitudeChart(&d.Summary)
	for i, b := range bars {
		row := []any{b.Label, nil}
		if !math.IsNaN(b.Value) {
			row[1] = b.Value
		}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", start+1+i), &row); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	first, last := start+1, start+len(bars)
	return f.AddChart(summarySheet, "D2", &excelize.Chart{
		Type: excelize.Col,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("%s!$B$%d", summarySheet, start),
			Categories: fmt.Sprintf("%s!$A$%d:$A$%d", summarySheet, first, last),
			Values:     fmt.Sprintf("%s!$B$%d:$B$%d", summarySheet, first, last),
		}},
		Title:  []excelize.RichTextRun{{Text: "Performance Average"}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func writeDistributionSheet(f *excelize.File, s *dataset.Summary) error {
	if _, err := f.NewSheet(distributionSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}
	if err := f.SetSheetRow(distributionSheet, "A1", &[]any{"Type", "Count"}); err != nil {
		return fmt.Errorf("write distribution: %w", err)
	}
	slices, _ := dashboard.CategoryChart(s)
	for i, sl := range slices {
		if err := f.SetSheetRow(distributionSheet, fmt.Sprintf("A%d", i+2), &[]any{sl.Label, sl.Value}); err != nil {
			return fmt.Errorf("write distribution: %w", err)
		}
	}
	if len(slices) == 0 {
		return nil
	}
	last := len(slices) + 1
	return f.AddChart(distributionSheet, "D2", &excelize.Chart{
		Type: excelize.Pie,
		Series: []excelize.ChartSeries{{
			Name:       distributionSheet + "!$B$1",
			Categories: fmt.Sprintf("%s!$A$2:$A$%d", distributionSheet, last),
			Values:     fmt.Sprintf("%s!$B$2:$B$%d", distributionSheet, last),
		}},
		Title: []excelize.RichTextRun{{Text: "Equipment Distribution"}},
	})
}
