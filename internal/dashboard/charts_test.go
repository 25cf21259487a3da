package dashboard

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

func TestCategoryChart(t *testing.T) {
	var s dataset.Summary
	if err := json.Unmarshal([]byte(`{"count":10,"type_distribution":{"A":3,"B":7}}`), &s); err != nil {
		t.Fatal(err)
	}
	slices, ok := CategoryChart(&s)
	if !ok {
		t.Fatalf("expected category chart")
	}
	if len(slices) != 2 {
		t.Fatalf("want 2 slices, got %d", len(slices))
	}
	if slices[0] != (Slice{Label: "A", Value: 3}) || slices[1] != (Slice{Label: "B", Value: 7}) {
		t.Fatalf("unexpected slices %+v", slices)
	}
}

func TestCategoryChartAbsent(t *testing.T) {
	if _, ok := CategoryChart(nil); ok {
		t.Fatalf("nil summary must have no chart")
	}
	if _, ok := CategoryChart(&dataset.Summary{Count: 3}); ok {
		t.Fatalf("missing distribution must have no chart")
	}
}

func TestMagnitudeChartFixedOrder(t *testing.T) {
	var s dataset.Summary
	raw := `{"avg_temperature":5.6,"avg_pressure":3.4,"avg_flowrate":1.2}`
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		t.Fatal(err)
	}
	bars, ok := MagnitudeChart(&s)
	if !ok {
		t.Fatalf("expected magnitude chart")
	}
	want := []Bar{{BarFlow, 1.2}, {BarPress, 3.4}, {BarTemp, 5.6}}
	for i := range want {
		if bars[i] != want[i] {
			t.Fatalf("bar %d = %+v want %+v", i, bars[i], want[i])
		}
	}
}

func TestMagnitudeChartMissingAverages(t *testing.T) {
	bars, ok := MagnitudeChart(&dataset.Summary{Count: 1})
	if !ok || len(bars) != 3 {
		t.Fatalf("chart must exist with three bars, got %v %v", bars, ok)
	}
	for _, b := range bars {
		if !math.IsNaN(b.Value) {
			t.Fatalf("%s should be NaN, got %v", b.Label, b.Value)
		}
	}
	if _, ok := MagnitudeChart(nil); ok {
		t.Fatalf("nil summary must have no chart")
	}
}
