package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers cross-origin requests",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			client, err := newClient(rootOpts)
			if err != nil {
				return f.Fail(err)
			}

			msg, err := client.Ping(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(map[string]string{"message": msg, "api_url": client.BaseURL()}, func(w io.Writer) {
				fmt.Fprintln(w, msg)
			})
		},
	}
}
