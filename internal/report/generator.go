// Package report renders calculation results and history.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/sivchari/fracalc/internal/config"
	"github.com/sivchari/fracalc/internal/history"
)

// Generator handles report generation.
type Generator struct {
	config *config.Config
	out    io.Writer

	result *color.Color
	muted  *color.Color
}

// Summary is the outcome of one calculation.
type Summary struct {
	Expression string        `json:"expression"`
	Left       string        `json:"left"`
	Operator   string        `json:"operator"`
	Right      string        `json:"right"`
	Result     string        `json:"result"`
	Duration   time.Duration `json:"durationNs,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
}

// HistoryReport is the payload of the history listing.
type HistoryReport struct {
	Entries []history.Entry `json:"entries"`
	Stats   history.Stats   `json:"stats"`
}

// New creates a report generator writing to out; a nil out means stdout.
func New(cfg *config.Config, out io.Writer) (*Generator, error) {
	if out == nil {
		out = os.Stdout
	}

	g := &Generator{
		config: cfg,
		out:    out,
		result: color.New(color.FgGreen, color.Bold),
		muted:  color.New(color.Faint),
	}

	if !cfg.Output.Color {
		g.result.DisableColor()
		g.muted.DisableColor()
	}

	return g, nil
}

// Generate writes the calculation summary in the configured format.
func (g *Generator) Generate(summary *Summary) error {
	if summary.Timestamp.IsZero() {
		summary.Timestamp = time.Now()
	}

	switch g.config.Output.Format {
	case "json":
		return g.writeJSON(summary)
	default:
		if _, err := fmt.Fprintf(g.out, "%s %s\n", g.config.Output.Label, g.result.Sprint(summary.Result)); err != nil {
			return err
		}

		if !g.config.Verbose {
			return nil
		}

		_, err := fmt.Fprintln(g.out, g.muted.Sprintf("(computed in %s)", summary.Duration))

		return err
	}
}

// Equation echoes the parsed operands back to the user before the result.
// Only the text format prints anything.
func (g *Generator) Equation(summary *Summary) error {
	if g.config.Output.Format != "text" {
		return nil
	}

	_, err := fmt.Fprintf(g.out, "Your equation is: %s %s %s\n", summary.Left, summary.Operator, summary.Right)

	return err
}

// History writes the stored calculations and their statistics.
func (g *Generator) History(entries []history.Entry, stats history.Stats) error {
	if g.config.Output.Format == "json" {
		if entries == nil {
			entries = []history.Entry{}
		}

		return g.writeJSON(HistoryReport{Entries: entries, Stats: stats})
	}

	_, err := io.WriteString(g.out, g.formatHistory(entries, stats))

	return err
}

func (g *Generator) formatHistory(entries []history.Entry, stats history.Stats) string {
	var b strings.Builder

	if len(entries) == 0 {
		b.WriteString("No calculations recorded yet.\n")

		return b.String()
	}

	b.WriteString("Calculation History\n")
	b.WriteString("===================\n\n")

	for _, e := range entries {
		fmt.Fprintf(&b, "  %s  %s = %s\n",
			g.muted.Sprint(e.Timestamp.Format("2006-01-02 15:04:05")),
			e.Expression,
			g.result.Sprint(e.Result),
		)
	}

	fmt.Fprintf(&b, "\nTotal calculations: %d\n", stats.TotalEntries)

	for _, op := range []string{"+", "-", "*", "/"} {
		if n := stats.ByOperator[op]; n > 0 {
			fmt.Fprintf(&b, "  %s %d (%.1f%%)\n", op, n, percentage(n, stats.TotalEntries))
		}
	}

	return b.String()
}

func (g *Generator) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if _, err := fmt.Fprintln(g.out, string(data)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	return nil
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}

	return float64(part) / float64(total) * 100
}
