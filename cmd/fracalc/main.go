// Package main provides the CLI interface for the fracalc fraction calculator.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/sivchari/fracalc/internal/config"
	"github.com/sivchari/fracalc/internal/equation"
	"github.com/sivchari/fracalc/internal/repl"
	"github.com/sivchari/fracalc/pkg/fracalc"
)

const version = "0.1.0"

type cli struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	v      *viper.Viper

	configFile string
	verbose    bool
	noPrompt   bool

	cfg *config.Config
}

func newRootCmd(in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{
		in:     in,
		out:    out,
		errOut: errOut,
		v:      viper.New(),
	}

	rootCmd := &cobra.Command{
		Use:   "fracalc [operand operator operand]",
		Short: "A calculator for fractions, mixed numbers and integers",
		Long: `fracalc applies one of + - * / to two operands and prints the simplified result.

Operands may be integers (3), fractions (3/4) or mixed numbers (1_3/4).
Only the leading part of an operand may be negative (-3/4, -1_1/2).

Run without arguments to start an interactive session.`,
		Example: `  fracalc 1/2 + 3/4
  fracalc 1_1/2 '*' -3/4
  fracalc --output json 3 / 9`,
		Version:           version,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		RunE:              c.runRoot,
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&c.configFile, "config", "", "config file (default is .fracalc.yaml)")
	flags.String("log-level", "disabled", "log level (debug, info, warn, error, disabled)")
	flags.String("output", "text", "output format (text, json)")
	flags.Bool("no-color", false, "disable colored output")
	flags.Bool("no-history", false, "do not record calculations")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "verbose output (debug logging)")
	rootCmd.Flags().BoolVar(&c.noPrompt, "no-prompt", false, "exit instead of offering interactive input when arguments are invalid")

	for _, name := range []string{"log-level", "output", "no-color", "no-history"} {
		_ = c.v.BindPFlag(name, flags.Lookup(name))
	}

	c.v.SetEnvPrefix("FRACALC")
	c.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	c.v.AutomaticEnv()

	rootCmd.AddCommand(c.replCmd(), c.historyCmd(), c.configCmd(), versionCmd())

	return rootCmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fracalc version %s\n", version)
		},
	}
}

func (c *cli) replCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "repl",
		Aliases: []string{"interactive"},
		Short:   "Start an interactive calculator session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			engine, err := c.newEngine()
			if err != nil {
				return err
			}
			defer closeEngine(engine)

			session := c.newSession(engine, repl.WithGreeting(c.cfg.Interactive.Greeting))
			defer session.Close()

			return session.Run(cmd.Context())
		},
	}
}

func (c *cli) historyCmd() *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous calculations",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c.cfg.History.Enabled = true

			engine, err := fracalc.NewEngine(c.cfg, fracalc.WithOutput(c.out))
			if err != nil {
				return fmt.Errorf("failed to create engine: %w", err)
			}

			if clearAll {
				if err := engine.ClearHistory(); err != nil {
					return fmt.Errorf("failed to clear history: %w", err)
				}

				fmt.Fprintf(c.out, "Cleared history in %s\n", c.cfg.History.File)

				return nil
			}

			return engine.ShowHistory(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of recent calculations to show (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all recorded calculations")

	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage fracalc configuration",
		Long:  "Commands for managing fracalc configuration files",
		// Config commands must work even when the current config is broken.
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			initLogging(c.v.GetString("log-level"), c.errOut)

			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [file]",
		Short: "Initialize a new fracalc configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")

			filename := config.DefaultFile
			if len(args) > 0 {
				filename = args[0]
			}

			if _, err := os.Stat(filename); err == nil && !force {
				return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", filename)
			}

			if err := config.Default().Save(filename); err != nil {
				return err
			}

			fmt.Fprintf(c.out, "✅ Created %s\n", filename)

			return nil
		},
	}
	initCmd.Flags().Bool("force", false, "overwrite existing config file")

	validateCmd := &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			configFile := c.configFile
			if len(args) > 0 {
				configFile = args[0]
			}

			if _, err := config.Load(configFile); err != nil {
				fmt.Fprintf(c.out, "❌ Configuration validation failed: %v\n", err)

				return err
			}

			fmt.Fprintf(c.out, "✅ Configuration is valid\n")

			return nil
		},
	}

	configCmd.AddCommand(initCmd, validateCmd)

	return configCmd
}

// setup loads the configuration, applies flag and environment overrides and
// configures logging.
func (c *cli) setup(_ *cobra.Command, _ []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load(c.configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if c.v.IsSet("log-level") {
		cfg.LogLevel = c.v.GetString("log-level")
	}

	if c.v.IsSet("output") {
		cfg.Output.Format = c.v.GetString("output")
	}

	if c.v.GetBool("no-color") || !isTerminal(c.out) {
		cfg.Output.Color = false
	}

	if c.v.GetBool("no-history") {
		cfg.History.Enabled = false
	}

	if c.verbose {
		cfg.Verbose = true
		if cfg.LogLevel == "disabled" {
			cfg.LogLevel = "debug"
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	c.cfg = cfg
	initLogging(cfg.LogLevel, c.errOut)

	log.Debug().Str("config", c.configFile).Str("output", cfg.Output.Format).Msg("configuration loaded")

	return nil
}

// initLogging configures the global logger.
func initLogging(level string, w io.Writer) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.Disabled)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w)})
}

func (c *cli) runRoot(cmd *cobra.Command, args []string) error {
	engine, err := c.newEngine()
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	if len(args) == 0 {
		session := c.newSession(engine, repl.WithGreeting(c.cfg.Interactive.Greeting))
		defer session.Close()

		return session.Run(cmd.Context())
	}

	expression := strings.Join(args, " ")

	calc, err := engine.Calculate(expression)
	if err != nil {
		return c.handleInvalidArguments(cmd.Context(), engine, expression, err)
	}

	if c.cfg.Output.Format == "text" {
		fmt.Fprintln(c.out, "Woohoo! Everything was passed in correctly.")
	}

	return engine.Report(calc)
}

func (c *cli) handleInvalidArguments(ctx context.Context, engine *fracalc.Engine, expression string, cause error) error {
	fmt.Fprintf(c.errOut, "Oh no! I wasn't able to understand %q: %v\n", expression, cause)
	fmt.Fprintln(c.errOut, "I can only handle arguments passed in a format like the following: 1/2 * 3/4")

	if c.noPrompt || !c.cfg.Interactive.ConfirmOnInvalidArgs {
		return fmt.Errorf("invalid arguments: %w", cause)
	}

	// Manual entry after bad arguments computes a single result.
	session := c.newSession(engine, repl.WithGreeting(false), repl.WithSingleCalculation())
	defer session.Close()

	ok, err := session.Confirm(ctx, "Would you like to enter your arguments manually? (y to continue, anything else to exit): ")
	if err != nil {
		return err
	}

	if !ok {
		fmt.Fprintln(c.out, "Thank you, ending session")

		return nil
	}

	return session.Run(ctx)
}

func (c *cli) newEngine() (*fracalc.Engine, error) {
	engine, err := fracalc.NewEngine(c.cfg, fracalc.WithOutput(c.out))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return engine, nil
}

func (c *cli) newSession(engine *fracalc.Engine, opts ...repl.Option) *repl.Session {
	return repl.New(c.in, c.out, engine, opts...)
}

func closeEngine(engine *fracalc.Engine) {
	if err := engine.Close(); err != nil {
		log.Warn().Err(err).Msg("failed to save history")
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && term.IsTerminal(int(f.Fd()))
}

// protectNegativeOperands inserts "--" before the first root command operand
// that starts with a minus sign so that it is not parsed as a shorthand flag.
// Values of root flags and everything after a subcommand are left alone.
func protectNegativeOperands(root *cobra.Command, args []string) []string {
	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch {
		case arg == "--":
			return args
		case strings.HasPrefix(arg, "-") && equation.IsOperand(arg):
			out := make([]string, 0, len(args)+1)
			out = append(out, args[:i]...)
			out = append(out, "--")

			return append(out, args[i:]...)
		case strings.HasPrefix(arg, "-"):
			if takesValue(root, arg) {
				i++
			}
		case isSubcommand(root, arg):
			return args
		}
	}

	return args
}

// takesValue reports whether arg is a root flag whose value is the next argument.
func takesValue(root *cobra.Command, arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}

	var flag *pflag.Flag

	if name, ok := strings.CutPrefix(arg, "--"); ok {
		flag = root.Flag(name)
	} else if len(arg) == 2 {
		flag = root.Flags().ShorthandLookup(arg[1:])
		if flag == nil {
			flag = root.PersistentFlags().ShorthandLookup(arg[1:])
		}
	}

	return flag != nil && flag.NoOptDefVal == ""
}

func isSubcommand(root *cobra.Command, arg string) bool {
	if arg == "help" || arg == "completion" {
		return true
	}

	for _, cmd := range root.Commands() {
		if cmd.Name() == arg || cmd.HasAlias(arg) {
			return true
		}
	}

	return false
}

// Execute runs the CLI with args and returns the process exit code.
func Execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	rootCmd := newRootCmd(in, out, errOut)
	rootCmd.SetArgs(protectNegativeOperands(rootCmd, args))

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err)

		return 1
	}

	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := Execute(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}
