// wcc-mcp exposes the Oracle WebCenter Content REST API as MCP tools,
// over stdio (default) or JSON-RPC on HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/matiasleandrokruk/wccmcp/internal/infra/config"
	"github.com/matiasleandrokruk/wccmcp/internal/version"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// usageError marks flag and argument problems so run can exit with exitUsage.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// options carries the persistent flags shared by every command.
type options struct {
	configFile string
	envFile    string
	logLevel   string
	logFormat  string

	http bool
	host string
	port int
	path string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "Error:", err) //nolint:errcheck
	var ue usageError
	if errors.As(err, &ue) {
		return exitUsage
	}
	return exitError
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	var showVersion bool

	root := &cobra.Command{
		Use:   "wcc-mcp",
		Short: "MCP server for the Oracle WebCenter Content REST API",
		Long: `wcc-mcp exposes the Oracle WebCenter Content REST API as MCP tools.

By default it speaks MCP over stdin/stdout. With --http it answers
JSON-RPC requests on a single HTTP endpoint instead.

Credentials come from WCC_BASE_URL, WCC_USERNAME and WCC_PASSWORD,
a YAML file (--config) or a dotenv file (--env-file).`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Fprintln(stdout, version.String()) //nolint:errcheck
				return nil
			}
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := newLogger(stderr, cfg)
			return serve(cmd.Context(), cfg, logger)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err: err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configFile, "config", "", "YAML configuration file")
	pf.StringVar(&opts.envFile, "env-file", "", "dotenv file loaded into the environment before reading configuration")
	pf.StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&opts.logFormat, "log-format", "", "log format (json or console)")

	f := root.Flags()
	f.BoolVar(&showVersion, "version", false, "show version information")
	f.BoolVar(&opts.http, "http", false, "serve JSON-RPC over HTTP instead of stdio")
	f.StringVar(&opts.host, "host", "", "HTTP listen host")
	f.IntVar(&opts.port, "port", 0, "HTTP listen port")
	f.StringVar(&opts.path, "path", "", "HTTP endpoint path")

	root.AddCommand(newToolsCommand(stdout))
	root.AddCommand(newTokenCommand(opts, stdout))
	return root
}

// load applies the env file, the YAML file and the environment, then any flag set on cmd.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadFile(o.configFile)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("http") {
		cfg.HTTPMode = o.http
	}
	if changed("host") {
		cfg.HTTPHost = o.host
	}
	if changed("port") {
		cfg.HTTPPort = o.port
	}
	if changed("path") {
		cfg.HTTPPath = o.path
	}
	if changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = o.logFormat
	}
	return cfg, nil
}

// newLogger writes to stderr only; stdout carries the protocol in stdio mode.
func newLogger(stderr io.Writer, cfg config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	out := stderr
	if cfg.ConsoleLogs() {
		out = zerolog.ConsoleWriter{Out: stderr, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Str("service", version.Name).Logger()
}
