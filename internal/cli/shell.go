package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/app"
	"github.com/roach88/storefront/internal/shell"
)

// ShellOptions holds flags for the shell command.
type ShellOptions struct {
	*RootOptions
	BagDedup bool
}

// NewShellCommand creates the shell command.
func NewShellCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ShellOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive storefront session",
		Long: `Start a session: any stored session is discarded, the catalog is
loaded, and commands are read from stdin until quit or EOF. Type help
for the command list.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := opts.formatter(cmd)

			a, err := app.New(*opts.Config, app.WithBagDedup(opts.BagDedup))
			if err != nil {
				return f.Fail(err)
			}
			defer a.Close()

			if err := a.Start(cmd.Context()); err != nil {
				msg := shell.Describe(err)
				if api.IsRetryable(err) {
					msg += " (try retry)"
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", msg)
			}

			sh := shell.New(a, cmd.OutOrStdout())
			return sh.Run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().BoolVar(&opts.BagDedup, "bag-dedup", false, "ignore repeated bag adds of the same item")
	return cmd
}
