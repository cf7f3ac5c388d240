package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/umalloc/internal/logger"
)

// envPrefix namespaces every flag's environment variable:
// --min-grow-units is also read from UMALLOC_MIN_GROW_UNITS.
const envPrefix = "UMALLOC"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	Verbose   bool   `mapstructure:"verbose"`
	Quiet     bool   `mapstructure:"quiet"`
	JSON      bool   `mapstructure:"json"`
	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogDir    string `mapstructure:"log-dir"`
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "umallocctl",
		Short: "Drive and inspect the umalloc free-list allocator",
		Long: `umallocctl runs workloads against the umalloc next-fit allocator,
replays explicit allocation sequences while showing the free list, and reports
host diagnostics.

Every flag can also be set through the environment with the UMALLOC_ prefix,
for example UMALLOC_MIN_GROW_UNITS=64.`,
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output and debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().String("log-level", "debug", "Minimum log level when verbose (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "text", "Log format when verbose (text or json)")
	cmd.PersistentFlags().String("log-dir", "", "Write logs to a dated file in this directory")

	cmd.AddCommand(
		newStressCmd(),
		newReplayCmd(),
		newProcsCmd(),
		newVersionCmd(),
	)
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadOptions fills out from flags, letting UMALLOC_* environment variables
// override flag defaults. Explicitly set flags win over both.
func loadOptions(flags *pflag.FlagSet, out any) error {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(flags); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}
	if err := v.Unmarshal(out); err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	return nil
}

// setup initializes logging from the global options and returns the printer
// commands write through.
func setup(cmd *cobra.Command, g globalOptions) (*printer, error) {
	level, err := logger.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}
	err = logger.Init(logger.Options{
		Enabled: g.Verbose,
		Level:   level,
		Format:  g.LogFormat,
		LogDir:  g.LogDir,
		Writer:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}
	return &printer{
		w:       cmd.OutOrStdout(),
		p:       message.NewPrinter(language.English),
		verbose: g.Verbose,
		quiet:   g.Quiet,
	}, nil
}

// printer formats command output. Numbers are grouped by thousands.
type printer struct {
	w       io.Writer
	p       *message.Printer
	verbose bool
	quiet   bool
}

// info prints a message if not in quiet mode
func (o *printer) info(format string, args ...any) {
	if !o.quiet {
		o.p.Fprintf(o.w, format, args...)
	}
}

// verbosef prints a message if verbose mode is enabled
func (o *printer) verbosef(format string, args ...any) {
	if o.verbose && !o.quiet {
		o.p.Fprintf(o.w, format, args...)
	}
}

// json outputs data as indented JSON
func (o *printer) json(v any) error {
	encoder := json.NewEncoder(o.w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
