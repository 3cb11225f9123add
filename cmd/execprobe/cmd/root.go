// Package cmd implements the CLI commands for execprobe.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jmylchreest/execprobe/internal/config"
	"github.com/jmylchreest/execprobe/internal/observability"
	"github.com/jmylchreest/execprobe/internal/version"
)

// Exit statuses beyond the generic 1.
const (
	exitFailure     = 1
	exitInterrupted = 130
)

// ExitError carries a process exit status. A nil Err means the message, if
// any, has already been printed.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an error returned by Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return exitFailure
}

// app holds the state shared by the commands of one invocation.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     *config.Config
	logger  *slog.Logger
}

// NewRootCommand builds the execprobe command tree.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:     "execprobe [api-key]",
		Short:   "Smoke-test a remote code-execution API",
		Version: version.Short(),
		Long: `execprobe checks the health endpoint of a code-execution API, then sends
each test case to its execute endpoint and prints whether the output matched.

The API key is taken from the first argument, or else from EXECPROBE_API_KEY
or the api.key config value. The placeholder key "` + config.PlaceholderAPIKey + `" is refused.`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runProbe,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default is ./.execprobe.yaml or $HOME/.execprobe.yaml)")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (text, json, pretty)")
	pf.String("color", "", "console colour (auto, always, never)")
	a.bind("logging.level", pf.Lookup("log-level"))
	a.bind("logging.format", pf.Lookup("log-format"))
	a.bind("output.color", pf.Lookup("color"))

	f := rootCmd.Flags()
	f.String("execute-url", "", "execute endpoint of the API under test")
	f.String("health-url", "", "health endpoint (default derived from --execute-url)")
	f.String("origin", "", "Origin header sent with every request")
	f.String("language", "", "language sent in each payload")
	f.Int("timeout", 0, "server-side execution timeout in seconds sent in each payload")
	f.Duration("http-timeout", 0, "client-side timeout per request (0 waits indefinitely)")
	f.String("cases", "", "load test cases from a YAML, JSON or TOML file or URL")
	f.Bool("strict", false, "exit 1 when the health check or any test case fails")
	a.bind("api.execute_url", f.Lookup("execute-url"))
	a.bind("api.health_url", f.Lookup("health-url"))
	a.bind("api.origin", f.Lookup("origin"))
	a.bind("api.language", f.Lookup("language"))
	a.bind("api.timeout", f.Lookup("timeout"))
	a.bind("http.timeout", f.Lookup("http-timeout"))
	a.bind("cases.file", f.Lookup("cases"))
	a.bind("run.strict", f.Lookup("strict"))

	rootCmd.AddCommand(
		newVersionCommand(),
		newConfigCommand(),
		newCasesCommand(),
	)
	return rootCmd
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if !errors.As(err, &exitErr) || exitErr.Err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// bind ties a viper key to a flag. Viper only takes the flag value when it
// was set on the command line, so the precedence is flag > env > file > default.
func (a *app) bind(key string, flag *pflag.Flag) {
	if err := a.v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("failed to bind flag %q to key %q: %v", flag.Name, key, err))
	}
}

// setup loads configuration and installs the logger before any command runs.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.ReadInto(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.FromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.setLogger(cmd)

	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("using config file", slog.String("path", used))
	}
	return nil
}

func (a *app) setLogger(cmd *cobra.Command) {
	a.logger = observability.NewLoggerWithWriter(a.cfg.Logging, cmd.ErrOrStderr(), a.cfg.API.Key)
	observability.SetDefault(a.logger)
}
