package dashboard

import (
	"math"

	"github.com/KaramelBytes/chemviz-cli/internal/dataset"
)

// Slice is one entry of the category (pie) chart.
type Slice struct {
	Label string
	Value float64
}

// Bar is one entry of the magnitude (bar) chart. Value is NaN when the
// backend did not report the average.
type Bar struct {
	Label string
	Value float64
}

// Magnitude chart labels, in display order.
const (
	BarFlow  = "Flow"
	BarPress = "Press"
	BarTemp  = "Temp"
)

// CategoryChart returns one slice per type distribution entry in wire order.
// ok is false when the summary or its distribution is absent.
func CategoryChart(s *dataset.Summary) (slices []Slice, ok bool) {
	if s == nil || s.TypeDistribution == nil {
		return nil, false
	}
	slices = make([]Slice, 0, len(*s.TypeDistribution))
	for _, c := range *s.TypeDistribution {
		slices = append(slices, Slice{Label: c.Label, Value: float64(c.Count)})
	}
	return slices, true
}

// MagnitudeChart returns the fixed Flow/Press/Temp series. It is present
// whenever a summary exists, even if individual averages are missing.
func MagnitudeChart(s *dataset.Summary) (bars []Bar, ok bool) {
	if s == nil {
		return nil, false
	}
	return []Bar{
		{Label: BarFlow, Value: valueOrNaN(s.AvgFlowrate)},
		{Label: BarPress, Value: valueOrNaN(s.AvgPressure)},
		{Label: BarTemp, Value: valueOrNaN(s.AvgTemperature)},
	}, true
}

func valueOrNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
