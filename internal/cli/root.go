// Package cli implements the storefront command tree.
package cli

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/config"
	"github.com/roach88/storefront/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config *config.Config

	logCloser io.Closer
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront - a shopping client core",
		Long: `A client for the storefront backend: catalog queries with suggestion
lookup, a session that never outlives the process, and route gating.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			opts.Config = cfg

			closer, err := logging.Setup(logging.Options{
				Level:   cfg.LogLevel,
				Verbose: opts.Verbose,
				File:    cfg.LogFile,
				Stderr:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return WrapExitError(ExitCommandError, "set up logging", err)
			}
			opts.logCloser = closer
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if opts.logCloser != nil {
				return opts.logCloser.Close()
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")

	cmd.AddCommand(NewItemsCommand(opts))
	cmd.AddCommand(NewSuggestCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))
	cmd.AddCommand(NewScenarioCommand(opts))
	cmd.AddCommand(NewMockServerCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}
