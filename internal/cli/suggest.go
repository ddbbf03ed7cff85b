package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/query"
	"github.com/roach88/storefront/internal/state"
)

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <prefix>",
		Short: "Look up item name suggestions",
		Long: `Print item names completing a prefix. Prefixes shorter than the
configured threshold (two characters at least) print nothing and send
no request.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			client, err := newClient(rootOpts)
			if err != nil {
				return f.Fail(err)
			}

			o := query.New(state.New(), client,
				query.WithSuggestTTL(0),
				query.WithMinSuggestChars(rootOpts.Config.SuggestMinChars),
			)
			if err := o.Suggest(cmd.Context(), args[0]); err != nil {
				return f.Fail(err)
			}

			names := o.Search().Suggestions
			return f.Success(names, func(w io.Writer) {
				for _, n := range names {
					fmt.Fprintln(w, n)
				}
			})
		},
	}
}
