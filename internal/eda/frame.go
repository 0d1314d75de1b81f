// Package eda generates the exploratory-analysis plot battery over a raw
// telemetry dataset. Unlike the daily summary it is column-generic: it
// works over whatever numeric columns the JSON carries and silently skips
// plots whose columns are missing.
package eda

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"battery-buddy/internal/telemetry"
)

// Frame is a column store over one dataset: every numeric column as a
// float64 slice, with NaN marking values missing in individual rows, plus
// parsed timestamps when the dataset carries a timestamp column.
type Frame struct {
	Timestamps []time.Time // empty when no timestamp column exists
	columns    []string
	data       map[string][]float64
}

// LoadFrame reads a JSON array of row objects from a file.
func LoadFrame(path string) (*Frame, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return ParseFrame(raw)
}

// ParseFrame decodes a JSON array of row objects into a Frame, sorted by
// timestamp when one is present.
func ParseFrame(raw []byte) (*Frame, error) {
	var records []map[string]any
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to decode dataset JSON: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset is empty")
	}

	names := map[string]bool{}
	hasTimestamp := false
	for _, rec := range records {
		for key, val := range rec {
			if key == "timestamp" {
				hasTimestamp = true
				continue
			}
			if _, ok := toFloat(val); ok {
				names[key] = true
			}
		}
	}

	if hasTimestamp {
		sort.SliceStable(records, func(i, j int) bool {
			ti, iok := parseTimestamp(records[i]["timestamp"])
			tj, jok := parseTimestamp(records[j]["timestamp"])
			if !iok || !jok {
				return false
			}
			return ti.Before(tj)
		})
	}

	f := &Frame{data: make(map[string][]float64, len(names))}
	for name := range names {
		f.columns = append(f.columns, name)
	}
	sort.Strings(f.columns)

	for _, rec := range records {
		if hasTimestamp {
			if t, ok := parseTimestamp(rec["timestamp"]); ok {
				f.Timestamps = append(f.Timestamps, t)
			} else {
				f.Timestamps = append(f.Timestamps, time.Time{})
			}
		}
		for _, name := range f.columns {
			v := math.NaN()
			if raw, ok := rec[name]; ok {
				if fv, ok := toFloat(raw); ok {
					v = fv
				}
			}
			f.data[name] = append(f.data[name], v)
		}
	}
	return f, nil
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

func parseTimestamp(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	var t telemetry.Time
	if err := t.UnmarshalJSON([]byte(`"` + s + `"`)); err != nil {
		return time.Time{}, false
	}
	return t.Time, !t.IsZero()
}

// Columns returns the numeric column names in sorted order.
func (f *Frame) Columns() []string {
	return f.columns
}

// Has reports whether every named column exists.
func (f *Frame) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := f.data[name]; !ok {
			return false
		}
	}
	return true
}

// Column returns the values of one column, NaN for missing cells.
func (f *Frame) Column(name string) []float64 {
	return f.data[name]
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.columns) == 0 {
		return len(f.Timestamps)
	}
	return len(f.data[f.columns[0]])
}

// HasTimestamps reports whether the dataset carried parseable timestamps.
func (f *Frame) HasTimestamps() bool {
	return len(f.Timestamps) > 0
}

// Mean ignores NaN cells; it returns NaN for an all-missing column.
func Mean(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// Variance ignores NaN cells.
func Variance(values []float64) float64 {
	m := Mean(values)
	if math.IsNaN(m) {
		return math.NaN()
	}
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		d := v - m
		sum += d * d
		n++
	}
	if n < 2 {
		return 0
	}
	return sum / float64(n-1)
}

// TopVarianceColumns returns up to max column names ordered by descending
// variance.
func (f *Frame) TopVarianceColumns(max int) []string {
	type colVar struct {
		name string
		v    float64
	}
	vars := make([]colVar, 0, len(f.columns))
	for _, name := range f.columns {
		v := Variance(f.data[name])
		if math.IsNaN(v) {
			continue
		}
		vars = append(vars, colVar{name, v})
	}
	sort.SliceStable(vars, func(i, j int) bool { return vars[i].v > vars[j].v })
	if len(vars) > max {
		vars = vars[:max]
	}
	out := make([]string, len(vars))
	for i, cv := range vars {
		out[i] = cv.name
	}
	return out
}
