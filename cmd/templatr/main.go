package main

import (
	"fmt"
	"os"

	"fortio.org/safecast"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/go-templatr/templatr/pkg/templatr"
)

// newRootCmd builds the command tree. Commands are created per call so tests
// can run them in isolation.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "templatr",
		Short:         "Fill placeholders in Word documents",
		Long:          `templatr replaces {{markers}} in a DOCX template with text, lists, tables and images described in a JSON data file`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("config", "", "path to a TOML configuration file")
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().BoolP("verbose", "v", false, "log every directive")
	root.PersistentFlags().Bool("strict", false, "fail on markers that cannot be resolved")

	root.AddCommand(newFillCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newBatchCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// main runs the root command and exits with status 1 on failure.
func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		p := newPrinter(root, os.Stderr)
		p.failure("%v", err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration from --config, the environment and
// the persistent flags, in that order of precedence from lowest to highest.
func loadConfig(cmd *cobra.Command) (*templatr.Config, error) {
	flags := cmd.Root().PersistentFlags()

	path, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	var config *templatr.Config
	if path != "" {
		config, err = templatr.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
	} else {
		config = templatr.ConfigFromEnvironment()
	}

	if flags.Changed("strict") {
		config.StrictMode, _ = flags.GetBool("strict")
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		config.LogLevel = "debug"
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// newEngine creates an engine logging to the command's stderr.
func newEngine(cmd *cobra.Command, config *templatr.Config) *templatr.Engine {
	logger := templatr.NewLogger(cmd.ErrOrStderr(), templatr.ParseLogLevel(config.LogLevel))
	return templatr.NewWithOptions(templatr.WithConfig(config), templatr.WithLogger(logger))
}

// isTerminal reports whether f is a terminal
func isTerminal(f *os.File) bool {
	fd, err := safecast.Conv[int](f.Fd())
	if err != nil {
		return false
	}
	return term.IsTerminal(fd)
}
