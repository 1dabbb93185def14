// Package repl implements the interactive fraction calculator session.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sivchari/fracalc/internal/equation"
	"github.com/sivchari/fracalc/pkg/fracalc"
)

const (
	greeting = `Welcome to the Fraction Calculator!
Enter two operands and an operator (+, -, *, /). Operands may be fractions (3/4),
whole numbers (5) or mixed numbers (1_1/2). You can also type a whole equation
such as "1/2 * 3_3/4" at the first prompt. Type "quit" to leave.`

	operandPrompt  = "Please enter the %s operand as a fraction (x/y), an integer (x) or a mixed number (a_x/y): "
	operatorPrompt = "Please select an operator (+, -, *, /): "
	farewell       = "Thank you, ending session"
)

// errQuit is returned by prompt when the user asks to leave.
var errQuit = errors.New("quit")

// Calculator evaluates and reports equations.
type Calculator interface {
	Calculate(expression string) (*fracalc.Calculation, error)
	CalculateParts(left, operator, right string) (*fracalc.Calculation, error)
	Report(calc *fracalc.Calculation) error
}

// Session is an interactive read-evaluate-print loop.
//
// Input is read by a background goroutine started on the first read. It
// stops after Close, once its pending read from in returns.
type Session struct {
	in       io.Reader
	out      io.Writer
	calc     Calculator
	greeting bool
	once     bool
	logger   zerolog.Logger

	start     sync.Once
	closeOnce sync.Once
	lines     chan line
	done      chan struct{}
}

type line struct {
	text string
	err  error
}

// Option configures a Session.
type Option func(*Session)

// WithGreeting toggles the welcome banner printed by Run.
func WithGreeting(enabled bool) Option {
	return func(s *Session) {
		s.greeting = enabled
	}
}

// WithSingleCalculation makes Run return after the first successful result.
func WithSingleCalculation() Option {
	return func(s *Session) {
		s.once = true
	}
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// New creates a session reading from in and writing prompts to out.
func New(in io.Reader, out io.Writer, calc Calculator, opts ...Option) *Session {
	s := &Session{
		in:       in,
		out:      out,
		calc:     calc,
		greeting: true,
		logger:   log.With().Str("component", "repl").Logger(),
		lines:    make(chan line),
		done:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Close stops the input goroutine. Reads after Close report io.EOF.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	return nil
}

func (s *Session) scan() {
	defer close(s.lines)

	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		if !s.send(line{text: scanner.Text()}) {
			return
		}
	}

	if err := scanner.Err(); err != nil {
		s.send(line{err: err})
	}
}

func (s *Session) send(l line) bool {
	select {
	case s.lines <- l:
		return true
	case <-s.done:
		return false
	}
}

// Run prompts for equations until the user quits, input ends or ctx is done.
func (s *Session) Run(ctx context.Context) error {
	if s.greeting {
		fmt.Fprintln(s.out, greeting)
	}

	for {
		calc, err := s.readCalculation(ctx)

		switch {
		case errors.Is(err, errQuit), errors.Is(err, io.EOF), errors.Is(err, context.Canceled):
			fmt.Fprintln(s.out)
			fmt.Fprintln(s.out, farewell)

			return nil
		case err != nil:
			return err
		}

		if err := s.calc.Report(calc); err != nil {
			return err
		}

		if s.once {
			return nil
		}
	}
}

// Confirm asks a yes/no question and reports whether the answer was "y".
func (s *Session) Confirm(ctx context.Context, question string) (bool, error) {
	fmt.Fprint(s.out, question)

	answer, err := s.readLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}

		return false, err
	}

	return strings.EqualFold(strings.TrimSpace(answer), "y"), nil
}

func (s *Session) readCalculation(ctx context.Context) (*fracalc.Calculation, error) {
	for {
		first, err := s.prompt(ctx, fmt.Sprintf(operandPrompt, "first"), func(text string) bool {
			return isOperand(text) || isEquation(text)
		})
		if err != nil {
			return nil, err
		}

		if isEquation(first) {
			calc, err := s.calc.Calculate(first)
			if err != nil {
				s.printError(err)

				continue
			}

			return calc, nil
		}

		operator, err := s.prompt(ctx, operatorPrompt, func(text string) bool {
			_, ok := equation.ParseOperator(text)

			return ok
		})
		if err != nil {
			return nil, err
		}

		second, err := s.prompt(ctx, fmt.Sprintf(operandPrompt, "second"), isOperand)
		if err != nil {
			return nil, err
		}

		calc, err := s.calc.CalculateParts(first, operator, second)
		if err != nil {
			s.printError(err)

			continue
		}

		return calc, nil
	}
}

// prompt asks until accept approves the trimmed answer.
func (s *Session) prompt(ctx context.Context, text string, accept func(string) bool) (string, error) {
	for {
		fmt.Fprint(s.out, text)

		answer, err := s.readLine(ctx)
		if err != nil {
			return "", err
		}

		answer = strings.TrimSpace(answer)

		switch {
		case isQuit(answer):
			return "", errQuit
		case accept(answer):
			return answer, nil
		}

		s.logger.Debug().Str("input", answer).Msg("rejected input")
		fmt.Fprintf(s.out, "Sorry, %q is not valid here.\n", answer)
	}
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	select {
	case <-s.done:
		return "", io.EOF
	default:
	}

	s.start.Do(func() {
		go s.scan()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-s.done:
		return "", io.EOF
	case l, ok := <-s.lines:
		if !ok {
			return "", io.EOF
		}

		return l.text, l.err
	}
}

func (s *Session) printError(err error) {
	s.logger.Debug().Err(err).Msg("calculation failed")
	fmt.Fprintf(s.out, "Error: %v\n", err)
}

func isOperand(text string) bool {
	_, err := equation.ParseFraction(text)

	return err == nil
}

func isEquation(text string) bool {
	_, err := equation.ParseEquation(text)

	return err == nil
}

func isQuit(text string) bool {
	switch strings.ToLower(text) {
	case "q", "quit", "exit":
		return true
	default:
		return false
	}
}
