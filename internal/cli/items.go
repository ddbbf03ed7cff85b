package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/api"
	"github.com/roach88/storefront/internal/catalog"
	"github.com/roach88/storefront/internal/query"
	"github.com/roach88/storefront/internal/state"
)

// ItemsOptions holds flags for the items command.
type ItemsOptions struct {
	*RootOptions
	Category string
	Search   string
	Exact    string
}

// NewItemsCommand creates the items command.
func NewItemsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ItemsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "items",
		Short: "Query the catalog",
		Long: `Run one catalog query and print the items.

Examples:
  storefront items
  storefront items --category Men
  storefront items --search boost --format json
  storefront items --exact "Old Skool"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runItems(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "items of one category")
	cmd.Flags().StringVar(&opts.Search, "search", "", "free-text search")
	cmd.Flags().StringVar(&opts.Exact, "exact", "", "items with exactly this name")
	cmd.MarkFlagsMutuallyExclusive("category", "search", "exact")

	return cmd
}

func runItems(cmd *cobra.Command, opts *ItemsOptions) error {
	f := opts.formatter(cmd)
	client, err := newClient(opts.RootOptions)
	if err != nil {
		return f.Fail(err)
	}

	store := state.New()
	o := query.New(store, client)
	ctx := cmd.Context()

	switch {
	case cmd.Flags().Changed("category"):
		err = o.SelectCategory(ctx, opts.Category)
	case cmd.Flags().Changed("search"):
		err = o.SubmitSearch(ctx, opts.Search)
	case cmd.Flags().Changed("exact"):
		err = o.PickSuggestion(ctx, opts.Exact)
	default:
		err = o.ShowAll(ctx)
	}
	if err != nil {
		return f.Fail(err)
	}

	items := store.GetState().Catalog
	return f.Success(items, func(w io.Writer) { printItems(w, items) })
}

func newClient(opts *RootOptions) (*api.Client, error) {
	return api.New(opts.Config.APIURL, api.WithTimeout(opts.Config.RequestTimeout))
}

func printItems(w io.Writer, items []catalog.Item) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%3d  %-14s %-22s Rs %.2f", it.ID, it.Brand, it.Name, it.CurrentPrice)
		if it.DiscountPercent > 0 {
			fmt.Fprintf(w, "  (%d%% off Rs %.2f)", it.DiscountPercent, it.OriginalPrice)
		}
		fmt.Fprintln(w)
	}
}
