package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/mockapi"
)

// NewMockServerCommand creates the mock-server command.
func NewMockServerCommand(rootOpts *RootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve the mock backend",
		Long: `Serve a stand-in backend with the seed catalog, in-memory accounts,
JWT bearer auth, addresses and orders under /api. Stops on SIGINT or
SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := mockapi.New()
			errc := make(chan error, 1)
			go func() { errc <- srv.Listen(listen) }()
			slog.Info("mock backend listening", "addr", listen)

			select {
			case err := <-errc:
				if err != nil {
					return WrapExitError(ExitFailure, "mock backend stopped", err)
				}
				return nil
			case <-ctx.Done():
				slog.Info("shutting down mock backend")
				return srv.Shutdown()
			}
		},
	}

	cmd.Flags().StringVar(&listen, "listen", ":8080", "listen address")
	return cmd
}
