package repl

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sivchari/fracalc/internal/config"
	"github.com/sivchari/fracalc/pkg/fracalc"
)

func newSession(t *testing.T, input string, opts ...Option) (*Session, *bytes.Buffer) {
	t.Helper()

	cfg := config.Default()
	cfg.Output.Color = false
	cfg.History.Enabled = false

	var out bytes.Buffer

	engine, err := fracalc.NewEngine(cfg, fracalc.WithOutput(&out), fracalc.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)

	return New(strings.NewReader(input), &out, engine, opts...), &out
}

func TestRun_TokenByToken(t *testing.T) {
	session, out := newSession(t, "1/2\n+\n1/4\nquit\n", WithGreeting(false))

	require.NoError(t, session.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Please enter the first operand")
	assert.Contains(t, got, "Please select an operator")
	assert.Contains(t, got, "Please enter the second operand")
	assert.Contains(t, got, "Your equation is: 1/2 + 1/4")
	assert.Contains(t, got, "The fraction returned by the operation is: 3/4")
	assert.Contains(t, got, farewell)
	assert.NotContains(t, got, "Welcome")
}

func TestRun_RepromptsInvalidInput(t *testing.T) {
	input := strings.Join([]string{
		"f3/4",  // invalid operand
		"1/0",   // zero denominator
		"1_1/2", // valid
		"%",     // invalid operator
		"*",
		"",     // empty second operand
		"1/-2", // negative denominator is outside the grammar
		"2",
	}, "\n") + "\n"

	session, out := newSession(t, input, WithGreeting(false), WithSingleCalculation())

	require.NoError(t, session.Run(context.Background()))

	got := out.String()
	assert.Equal(t, 3, strings.Count(got, "Please enter the first operand"))
	assert.Equal(t, 2, strings.Count(got, "Please select an operator"))
	assert.Equal(t, 3, strings.Count(got, "Please enter the second operand"))
	assert.Contains(t, got, `Sorry, "f3/4" is not valid here.`)
	assert.Contains(t, got, `Sorry, "1/0" is not valid here.`)
	assert.Contains(t, got, `Sorry, "%" is not valid here.`)
	assert.Contains(t, got, `Sorry, "1/-2" is not valid here.`)
	assert.Contains(t, got, "The fraction returned by the operation is: 3")
	assert.NotContains(t, got, farewell)
}

func TestRun_WholeEquation(t *testing.T) {
	session, out := newSession(t, "1/2 / 1/4\n-1/2 + 3/4\n")

	require.NoError(t, session.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Welcome to the Fraction Calculator!")
	assert.Contains(t, got, "The fraction returned by the operation is: 2\n")
	assert.Contains(t, got, "The fraction returned by the operation is: 1/4\n")
	assert.Contains(t, got, farewell)
}

func TestRun_CalculationErrorContinues(t *testing.T) {
	session, out := newSession(t, "1/2 / 0\n1\n-\n3\nexit\n", WithGreeting(false))

	require.NoError(t, session.Run(context.Background()))

	got := out.String()
	assert.Contains(t, got, "Error: division by zero")
	assert.Contains(t, got, "The fraction returned by the operation is: -2\n")
}

func TestRun_QuitMidway(t *testing.T) {
	session, out := newSession(t, "1/2\nq\n", WithGreeting(false))

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, out.String(), farewell)
	assert.NotContains(t, out.String(), "The fraction returned")
}

func TestRun_ContextCanceled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	cfg := config.Default()
	cfg.History.Enabled = false
	cfg.Output.Color = false

	var out bytes.Buffer

	engine, err := fracalc.NewEngine(cfg, fracalc.WithOutput(io.Discard), fracalc.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	session := New(reader, &out, engine, WithGreeting(false), WithLogger(zerolog.Nop()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- session.Run(ctx)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestRun_ReadError(t *testing.T) {
	engine, err := fracalc.NewEngine(func() *config.Config {
		cfg := config.Default()
		cfg.History.Enabled = false

		return cfg
	}(), fracalc.WithOutput(io.Discard), fracalc.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	session := New(failingReader{}, io.Discard, engine, WithGreeting(false), WithLogger(zerolog.Nop()))

	err = session.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

type countingReader struct {
	reads atomic.Int32
	r     io.Reader
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.reads.Add(1)

	return c.r.Read(p)
}

func TestNew_ReadsLazily(t *testing.T) {
	in := &countingReader{r: strings.NewReader("1 + 1\n")}

	engine, err := fracalc.NewEngine(func() *config.Config {
		cfg := config.Default()
		cfg.History.Enabled = false

		return cfg
	}(), fracalc.WithOutput(io.Discard), fracalc.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	session := New(in, io.Discard, engine, WithLogger(zerolog.Nop()))
	require.NoError(t, session.Close())

	_, err = session.readLine(context.Background())
	require.ErrorIs(t, err, io.EOF)
	assert.Zero(t, in.reads.Load(), "a closed session must not touch its input")
}

func TestClose_StopsReader(t *testing.T) {
	session, out := newSession(t, "1/2\n+\n1/4\nleftover\nmore\n", WithGreeting(false), WithSingleCalculation())

	require.NoError(t, session.Run(context.Background()))
	assert.Contains(t, out.String(), "The fraction returned by the operation is: 3/4")

	require.NoError(t, session.Close())
	require.NoError(t, session.Close())

	_, err := session.readLine(context.Background())
	require.ErrorIs(t, err, io.EOF)

	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-session.lines:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"  Y \n", true},
		{"n\n", false},
		{"yes\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			session, out := newSession(t, tt.input)

			got, err := session.Confirm(context.Background(), "Continue? ")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Continue? ", out.String())
		})
	}
}
