package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ducks/internal/config"
	"github.com/vango-dev/ducks/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ╺┳┓╻ ╻┏━╸╻┏ ┏━┓
   ┃┃┃ ┃┃  ┣┻┓┗━┓
  ╺┻┛┗━┛┗━╸╹ ╹┗━┛
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath  string
	verbose     bool
	errorFormat string
	noColor     bool
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := &globalFlags{}
	rootCmd := newRootCmd(flags, stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		if flags.noColor || os.Getenv("NO_COLOR") != "" {
			errors.DisableColors()
			defer errors.EnableColors()
		}
		errors.Fprint(stderr, err, flags.errorFormat)
		return 1
	}
	return 0
}

func newRootCmd(flags *globalFlags, stdout, stderr io.Writer) *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "ducks",
		Short: "CRUD resource bindings for reducer stores",
		Long: `ducks binds remote REST collections to a reducer store.

Each configured resource gets a reducer over {data, errors} and the
default actions $QUERY, $GET, $CREATE, $UPDATE and $DELETE.

  • ducks serve   runs an in-memory REST backend for the configured resources
  • ducks exec    dispatches one action and prints the resulting state
  • ducks list    shows the configured resources and their action types
  • ducks explain describes an error code`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to ducks.json (default: nearest ducks.json)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.errorFormat, "error-format", errors.OutputText, "Error output: text, compact or json")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "Disable colored error output")

	rootCmd.AddCommand(
		serveCmd(flags),
		execCmd(flags),
		listCmd(flags),
		explainCmd(),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig loads and validates the configuration selected by the flags.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger from the log section.
func newLogger(cfg *config.Config, verbose bool, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// printBanner prints the ducks ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
