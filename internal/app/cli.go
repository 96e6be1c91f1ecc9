// Package app wires the command-line interface for futoshiki-results.
package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"futoshiki-results/internal/config"
	"futoshiki-results/internal/logger"
	"futoshiki-results/internal/sysinfo"
)

const toolName = "futoshiki-results"

const version = "1.2.0"

var exitFn = os.Exit

type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit %d", e.code)
}

type cliOptions struct {
	CSVPath    string
	SummaryDir string
	LogLevel   string
	Quiet      bool

	Version    bool
	ConfigFile string
}

// Run is the program entrypoint for cmd/futoshiki-results/main.go.
func Run() {
	exitFn(run())
}

func run() int {
	cmd := newRootCommand()
	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		return 1
	}
	return 0
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	cmd := &cobra.Command{
		Use:           toolName + " [flags] <log file or directory>",
		Short:         "Parse Futoshiki solver benchmark logs into the results dataset",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Version {
				fmt.Printf("%s version %s\n", toolName, version)
				return nil
			}
			if len(args) != 1 {
				return fmt.Errorf("expected exactly one log file or directory argument")
			}

			cfg, err := resolveConfig(opts)
			if err != nil {
				fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
				return exitError{code: 1}
			}

			logger.SetLogger(logger.NewStderr(effectiveLevel(cfg)))
			defer logger.SetLogger(nil)

			if code := runParse(args[0], cfg); code != 0 {
				return exitError{code: code}
			}
			return nil
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true

	addRootFlags(cmd.Flags(), opts)
	cmd.AddCommand(newVersionCommand(), newExportCommand(), newCheckCoresCommand())

	return cmd
}

func addRootFlags(fs *pflag.FlagSet, opts *cliOptions) {
	fs.StringVar(&opts.ConfigFile, "config", "", "Config file path (default: $HOME/.futoshiki-results/config.*)")
	fs.BoolVarP(&opts.Version, "version", "v", false, "Print version and exit")

	fs.StringVar(&opts.CSVPath, "csv", "", "Path of the reconciled dataset CSV (default: "+config.DefaultCSVPath+")")
	fs.StringVar(&opts.SummaryDir, "summary-dir", "", "Directory for per-log text summaries (default: "+config.DefaultSummaryDir+")")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Log level: debug, info, warn, error (default: "+config.DefaultLogLevel+")")
	fs.BoolVarP(&opts.Quiet, "quiet", "q", false, "Only log warnings and errors")
}

func resolveConfig(opts *cliOptions) (config.Config, error) {
	v, err := config.NewViper(opts.ConfigFile)
	if err != nil {
		return config.Config{}, err
	}
	return config.Resolve(v, opts.CSVPath, opts.SummaryDir, opts.LogLevel, opts.Quiet), nil
}

func effectiveLevel(cfg config.Config) string {
	if cfg.Quiet {
		return "warn"
	}
	return cfg.LogLevel
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version and exit",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("%s version %s\n", toolName, version)
			return nil
		},
	}
}

func newCheckCoresCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "check-cores",
		Short:         "Report this host's core and thread topology",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(sysinfo.Collect().Render())
			return nil
		},
	}
}
