package eda

import (
	"math"
	"reflect"
	"testing"
)

func TestParseFrameColumnsAndOrder(t *testing.T) {
	raw := []byte(`[
		{"timestamp":"2025-06-01 02:00:00","a":2,"b":20,"label":"x"},
		{"timestamp":"2025-06-01 01:00:00","a":1,"b":10,"label":"y"}
	]`)

	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	if got := f.Columns(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Expected numeric columns [a b], got %v", got)
	}
	if f.Len() != 2 {
		t.Errorf("Expected 2 rows, got %d", f.Len())
	}
	if !f.HasTimestamps() {
		t.Fatal("Expected timestamps to be parsed")
	}
	// Rows come back sorted by time, so column a is ascending.
	if got := f.Column("a"); got[0] != 1 || got[1] != 2 {
		t.Errorf("Expected rows sorted by timestamp, got column a = %v", got)
	}
}

func TestParseFrameMissingCellsAreNaN(t *testing.T) {
	raw := []byte(`[
		{"a":1,"b":10},
		{"a":2}
	]`)

	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	b := f.Column("b")
	if b[0] != 10 {
		t.Errorf("Expected b[0]=10, got %v", b[0])
	}
	if !math.IsNaN(b[1]) {
		t.Errorf("Expected NaN for missing cell, got %v", b[1])
	}
}

func TestParseFrameBoolColumns(t *testing.T) {
	raw := []byte(`[
		{"heavy_load": true},
		{"heavy_load": false}
	]`)

	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	got := f.Column("heavy_load")
	if got[0] != 1 || got[1] != 0 {
		t.Errorf("Expected bools encoded as 1/0, got %v", got)
	}
}

func TestParseFrameEmpty(t *testing.T) {
	if _, err := ParseFrame([]byte(`[]`)); err == nil {
		t.Error("Expected error for empty dataset")
	}
	if _, err := ParseFrame([]byte(`{`)); err == nil {
		t.Error("Expected error for invalid JSON")
	}
}

func TestMeanAndVarianceSkipNaN(t *testing.T) {
	vals := []float64{1, math.NaN(), 3}
	if m := Mean(vals); m != 2 {
		t.Errorf("Expected mean 2, got %v", m)
	}
	if v := Variance(vals); v != 2 {
		t.Errorf("Expected variance 2, got %v", v)
	}
	if !math.IsNaN(Mean([]float64{math.NaN()})) {
		t.Error("Expected NaN mean for all-missing column")
	}
}

func TestTopVarianceColumns(t *testing.T) {
	raw := []byte(`[
		{"flat":1,"wide":0,"mid":0},
		{"flat":1,"wide":100,"mid":5},
		{"flat":1,"wide":0,"mid":0}
	]`)

	f, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame failed: %v", err)
	}
	got := f.TopVarianceColumns(2)
	if !reflect.DeepEqual(got, []string{"wide", "mid"}) {
		t.Errorf("Expected [wide mid], got %v", got)
	}
}

func TestPairCorrelation(t *testing.T) {
	a := []float64{1, 2, math.NaN(), 4}
	b := []float64{2, 4, 99, 8}
	if r := pairCorrelation(a, b); math.Abs(r-1) > 1e-9 {
		t.Errorf("Expected correlation 1 over complete pairs, got %v", r)
	}
	if !math.IsNaN(pairCorrelation([]float64{1}, []float64{2})) {
		t.Error("Expected NaN for fewer than two complete pairs")
	}
}
