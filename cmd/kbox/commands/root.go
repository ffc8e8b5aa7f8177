// SPDX-License-Identifier: MPL-2.0

// Package commands contains all CLI commands for kbox.
package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pirog/kalabox-cli/internal/config"
	"github.com/pirog/kalabox-cli/internal/dispatch"
	"github.com/pirog/kalabox-cli/internal/issue"
	"github.com/pirog/kalabox-cli/internal/provider"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables debug logging
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "kbox",
		Short: "Readiness-gated container management",
		Long: TitleStyle.Render("kbox") + SubtitleStyle.Render(" - readiness-gated container management") + `

kbox manages application containers through a pluggable backend engine.
Before any operation it verifies, exactly once per run, that the
configured provider is installed, running, and configured; the checks
are cached so repeated operations stay fast.

` + SubtitleStyle.Render("Examples:") + `
  kbox status              Check whether the provider is up right now
  kbox up                  Bring the backend engine up
  kbox list myapp          List containers belonging to myapp
  kbox create --image nginx:stable --name web --app myapp
  kbox init                Seed the default config file`,
		// Operation failures are rendered by renderError with suggestions;
		// cobra and fang must not print them a second time.
		SilenceErrors: true,
		SilenceUsage:  true,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the per-OS config dir)")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(initCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

// initRootConfig applies the --config override and the verbose setting
// before any command runs.
func initRootConfig() {
	if cfgFile != "" {
		config.SetConfigFileOverride(cfgFile)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err))
	}
	if cfg != nil && !verbose {
		verbose = cfg.UI.Verbose
	}
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// newDispatcher builds the process-wide dispatcher from configuration:
// resolve the provider, construct the dispatcher, select the backend.
func newDispatcher() (*dispatch.Dispatcher, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	p, err := provider.New(cfg.Provider, provider.Options{Machine: cfg.Machine})
	if err != nil {
		return nil, err
	}
	d := dispatch.New(dispatch.Options{Provider: p})
	if err := d.SelectBackend(cfg.Engine); err != nil {
		return nil, err
	}
	return d, nil
}

// formatErrorForDisplay formats an error for user display, using the
// ActionableError rendering when available.
func formatErrorForDisplay(err error) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format()
	}
	return err.Error()
}

// renderError prints an operation failure and returns a bare error so cobra
// reports a non-zero exit without reprinting the message.
func renderError(op string, err error) error {
	wrapped := issue.NewContext().
		WithOperation(op).
		WithSuggestion(suggestionFor(err)).
		Wrap(err).
		Build()
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(wrapped))
	return errSilent
}

// errSilent signals a failure already rendered to the user.
var errSilent = errors.New("")

// suggestionFor maps well-known gate failures to a next step.
func suggestionFor(err error) string {
	switch {
	case errors.Is(err, provider.ErrNotInstalled):
		return "Install the provider (docker-machine or docker) and create the machine"
	case errors.Is(err, provider.ErrNotRunning):
		return "Run 'kbox up' to start the backend"
	case errors.Is(err, dispatch.ErrNoBackend):
		return "Check the engine name in your config file"
	default:
		return "Re-run with --verbose for details"
	}
}
