// Package fracalc provides the main API for evaluating fraction equations.
package fracalc

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sivchari/fracalc/internal/config"
	"github.com/sivchari/fracalc/internal/equation"
	"github.com/sivchari/fracalc/internal/fraction"
	"github.com/sivchari/fracalc/internal/history"
	"github.com/sivchari/fracalc/internal/report"
)

// Engine evaluates equations, records them and reports the results.
type Engine struct {
	config   *config.Config
	history  *history.Store
	reporter *report.Generator
	logger   zerolog.Logger
}

// Calculation is an evaluated equation.
type Calculation struct {
	Equation equation.Equation
	Left     fraction.Fraction
	Right    fraction.Fraction
	Result   fraction.Fraction
	Duration time.Duration
}

// Summary converts the calculation into its report form.
func (c *Calculation) Summary() *report.Summary {
	return &report.Summary{
		Expression: c.Equation.String(),
		Left:       c.Left.String(),
		Operator:   c.Equation.Operator.Symbol(),
		Right:      c.Right.String(),
		Result:     c.Result.String(),
		Duration:   c.Duration,
	}
}

type options struct {
	out    io.Writer
	logger *zerolog.Logger
}

// Option configures an Engine.
type Option func(*options)

// WithOutput sets where reports are written. Defaults to stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithLogger sets the logger. Defaults to the global zerolog logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// NewEngine creates a new engine from cfg.
func NewEngine(cfg *config.Config, opts ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	logger := log.With().Str("component", "engine").Logger()
	if o.logger != nil {
		logger = *o.logger
	}

	reporter, err := report.New(cfg, o.out)
	if err != nil {
		return nil, fmt.Errorf("failed to create reporter: %w", err)
	}

	e := &Engine{
		config:   cfg,
		reporter: reporter,
		logger:   logger,
	}

	if cfg.History.Enabled {
		store, err := history.New(cfg.History.File, cfg.History.MaxEntries)
		if err != nil {
			return nil, fmt.Errorf("failed to create history store: %w", err)
		}

		e.history = store
	}

	return e, nil
}

// Calculate parses expression, evaluates it and records it in the history.
func (e *Engine) Calculate(expression string) (*Calculation, error) {
	start := time.Now()

	eq, err := equation.ParseEquation(expression)
	if err != nil {
		e.logger.Debug().Str("expression", expression).Err(err).Msg("rejected equation")

		return nil, err
	}

	res, err := equation.EvaluateEquation(eq)
	if err != nil {
		e.logger.Debug().Str("expression", eq.String()).Err(err).Msg("evaluation failed")

		return nil, err
	}

	calc := &Calculation{
		Equation: eq,
		Left:     res.Left,
		Right:    res.Right,
		Result:   res.Value,
		Duration: time.Since(start),
	}

	e.logger.Debug().
		Str("expression", eq.String()).
		Str("operator", eq.Operator.Name()).
		Str("result", calc.Result.String()).
		Dur("duration", calc.Duration).
		Msg("evaluated equation")

	if e.history != nil {
		s := calc.Summary()
		e.history.Record(history.Entry{
			Expression: s.Expression,
			Left:       s.Left,
			Operator:   s.Operator,
			Right:      s.Right,
			Result:     s.Result,
		})
	}

	return calc, nil
}

// CalculateParts evaluates an equation entered one token at a time.
func (e *Engine) CalculateParts(left, operator, right string) (*Calculation, error) {
	return e.Calculate(strings.Join([]string{left, operator, right}, " "))
}

// Report echoes the equation and writes the result.
func (e *Engine) Report(calc *Calculation) error {
	summary := calc.Summary()

	if err := e.reporter.Equation(summary); err != nil {
		return fmt.Errorf("failed to write equation: %w", err)
	}

	if err := e.reporter.Generate(summary); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	return nil
}

// ShowHistory writes up to limit of the most recent calculations.
func (e *Engine) ShowHistory(limit int) error {
	if e.history == nil {
		return e.reporter.History(nil, history.Stats{})
	}

	return e.reporter.History(e.history.Entries(limit), e.history.GetStats())
}

// ClearHistory removes every recorded calculation.
func (e *Engine) ClearHistory() error {
	if e.history == nil {
		return nil
	}

	e.history.Clear()

	return e.history.Save()
}

// Close persists the history.
func (e *Engine) Close() error {
	if e.history == nil {
		return nil
	}

	if err := e.history.Save(); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	e.logger.Debug().Str("file", e.history.Path()).Msg("saved history")

	return nil
}
