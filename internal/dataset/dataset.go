package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Summary is the aggregate statistics object the backend computes for one dataset.
// Averages are optional: a missing or null value stays nil.
type Summary struct {
	Count            int           `json:"count"`
	AvgFlowrate      *float64      `json:"avg_flowrate,omitempty"`
	AvgPressure      *float64      `json:"avg_pressure,omitempty"`
	AvgTemperature   *float64      `json:"avg_temperature,omitempty"`
	TypeDistribution *Distribution `json:"type_distribution,omitempty"`
	Error            string        `json:"error,omitempty"`
}

// HasError reports whether the summary only carries a display-only failure.
func (s *Summary) HasError() bool { return s != nil && s.Error != "" }

// Dataset is one uploaded dataset as returned by the upload and history endpoints.
type Dataset struct {
	ID         *int64    `json:"id,omitempty"`
	Name       string    `json:"name"`
	UploadedAt time.Time `json:"uploaded_at"`
	Summary    Summary   `json:"summary"`
}

// Failed builds the result stored when an upload request fails.
func Failed(name string, err error) *Dataset {
	msg := "upload failed"
	if err != nil {
		msg = err.Error()
	}
	return &Dataset{Name: name, Summary: Summary{Error: msg}}
}

// Label returns a short display label for lists.
func (d *Dataset) Label() string {
	if d == nil {
		return ""
	}
	name := d.Name
	if name == "" {
		name = "(unnamed)"
	}
	if d.UploadedAt.IsZero() {
		return name
	}
	return fmt.Sprintf("%s  %s", name, d.UploadedAt.Local().Format("2006-01-02 15:04"))
}

// Stem returns the display name without directory and without a trailing
// ".csv" (any case). It is empty when nothing is left.
func Stem(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if strings.HasSuffix(strings.ToLower(base), ".csv") {
		base = base[:len(base)-len(".csv")]
	}
	return base
}

// History is the backend's list of prior datasets, most recent first.
type History []Dataset

// Category is one label/count pair of a type distribution.
type Category struct {
	Label string
	Count int
}

// Distribution keeps the categories of a type distribution in the order the
// backend enumerated them.
type Distribution []Category

// Total sums all category counts.
func (d Distribution) Total() int {
	n := 0
	for _, c := range d {
		n += c.Count
	}
	return n
}

// UnmarshalJSON decodes a JSON object while preserving key order.
func (d *Distribution) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("type_distribution: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("type_distribution: expected object, got %v", tok)
	}
	out := Distribution{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("type_distribution: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("type_distribution: unexpected key %v", tok)
		}
		var n json.Number
		if err := dec.Decode(&n); err != nil {
			return fmt.Errorf("type_distribution[%s]: %w", key, err)
		}
		count, err := parseCount(n)
		if err != nil {
			return fmt.Errorf("type_distribution[%s]: %w", key, err)
		}
		out = append(out, Category{Label: key, Count: count})
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("type_distribution: %w", err)
	}
	*d = out
	return nil
}

// parseCount accepts whole, non-negative numbers; "3.0" is allowed, "2.5" is not.
func parseCount(n json.Number) (int, error) {
	if i, err := n.Int64(); err == nil {
		if i < 0 {
			return 0, fmt.Errorf("negative count %s", n)
		}
		return int(i), nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || f < 0 || f > math.MaxInt32 {
		return 0, fmt.Errorf("count %s is not a whole number", n)
	}
	return int(f), nil
}

// MarshalJSON encodes the distribution as a JSON object in slice order.
func (d Distribution) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
