package report

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sivchari/fracalc/internal/config"
	"github.com/sivchari/fracalc/internal/history"
)

func newTestGenerator(t *testing.T, format string) (*Generator, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Output.Format = format
	cfg.Output.Color = false

	var buf bytes.Buffer

	generator, err := New(cfg, &buf)
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	return generator, &buf
}

func TestNew(t *testing.T) {
	cfg := config.Default()

	generator, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}

	if generator.config != cfg {
		t.Error("Generator config does not match provided config")
	}

	if generator.out == nil {
		t.Error("Expected generator to default to stdout")
	}
}

func TestGenerate_Text(t *testing.T) {
	generator, buf := newTestGenerator(t, "text")

	if err := generator.Generate(&Summary{Result: "1_1/4"}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := "The fraction returned by the operation is: 1_1/4\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}
}

func TestGenerate_Verbose(t *testing.T) {
	generator, buf := newTestGenerator(t, "text")
	generator.config.Verbose = true

	if err := generator.Generate(&Summary{Result: "2", Duration: 1500 * time.Microsecond}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := "The fraction returned by the operation is: 2\n(computed in 1.5ms)\n"
	if buf.String() != want {
		t.Errorf("Expected %q, got %q", want, buf.String())
	}

	buf.Reset()
	generator.config.Verbose = false

	if err := generator.Generate(&Summary{Result: "2", Duration: time.Millisecond}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if strings.Contains(buf.String(), "computed in") {
		t.Errorf("Duration printed without verbose: %q", buf.String())
	}
}

func TestGenerate_JSON(t *testing.T) {
	generator, buf := newTestGenerator(t, "json")

	summary := &Summary{
		Expression: "1/2 + 3/4",
		Left:       "1/2",
		Operator:   "+",
		Right:      "3/4",
		Result:     "1_1/4",
	}

	if err := generator.Generate(summary); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var got Summary
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v\n%s", err, buf.String())
	}

	if got.Result != "1_1/4" || got.Expression != "1/2 + 3/4" {
		t.Errorf("Unexpected summary %+v", got)
	}

	if got.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set")
	}
}

func TestEquation(t *testing.T) {
	generator, buf := newTestGenerator(t, "text")

	if err := generator.Equation(&Summary{Left: "1/2", Operator: "*", Right: "1_7/8"}); err != nil {
		t.Fatalf("Equation failed: %v", err)
	}

	if buf.String() != "Your equation is: 1/2 * 1_7/8\n" {
		t.Errorf("Unexpected output %q", buf.String())
	}

	jsonGenerator, jsonBuf := newTestGenerator(t, "json")
	if err := jsonGenerator.Equation(&Summary{Left: "1", Operator: "+", Right: "2"}); err != nil {
		t.Fatalf("Equation failed: %v", err)
	}

	if jsonBuf.Len() != 0 {
		t.Errorf("Expected no equation echo in JSON mode, got %q", jsonBuf.String())
	}
}

func TestHistory_Text(t *testing.T) {
	generator, buf := newTestGenerator(t, "text")

	ts := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	entries := []history.Entry{
		{Expression: "1/2 + 1/4", Operator: "+", Result: "3/4", Timestamp: ts},
		{Expression: "1/2 / 1/4", Operator: "/", Result: "2", Timestamp: ts},
	}
	stats := history.Stats{TotalEntries: 2, ByOperator: map[string]int{"+": 1, "/": 1}}

	if err := generator.History(entries, stats); err != nil {
		t.Fatalf("History failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Calculation History",
		"2024-03-04 05:06:07  1/2 + 1/4 = 3/4",
		"1/2 / 1/4 = 2",
		"Total calculations: 2",
		"+ 1 (50.0%)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestHistory_Empty(t *testing.T) {
	generator, buf := newTestGenerator(t, "text")

	if err := generator.History(nil, history.Stats{}); err != nil {
		t.Fatalf("History failed: %v", err)
	}

	if !strings.Contains(buf.String(), "No calculations recorded yet.") {
		t.Errorf("Unexpected output %q", buf.String())
	}
}

func TestHistory_JSON(t *testing.T) {
	generator, buf := newTestGenerator(t, "json")

	if err := generator.History(nil, history.Stats{}); err != nil {
		t.Fatalf("History failed: %v", err)
	}

	var got HistoryReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if got.Entries == nil {
		t.Error("Expected entries to be an empty array, not null")
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		part, total int
		want        float64
	}{
		{0, 0, 0},
		{1, 4, 25},
		{3, 3, 100},
	}

	for _, tt := range tests {
		if got := percentage(tt.part, tt.total); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("percentage(%d, %d) = %f, want %f", tt.part, tt.total, got, tt.want)
		}
	}
}
