package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/strapd/internal/search"
	"github.com/khanglvm/strapd/internal/usage"
)

// NewSearchCmd creates the 'search' command for full-text tool search.
func NewSearchCmd(app *App) *cobra.Command {
	var limit int
	var category string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tools by name and description",
		Long: `Search the catalog with fuzzy and prefix matching on tool names,
titles and descriptions. Results of similar relevance are ordered by your usage.`,
		Example: `  strapd search base64
  strapd search "case" --category string
  strapd search hash -n 3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, app, args[0], category, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", search.DefaultLimit, "Maximum number of results")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only search tools in this category")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, app *App, text, category string, limit int, jsonOutput bool) error {
	var (
		indexer *search.Indexer
		state   usage.State
	)

	// Building the index and loading usage history are independent.
	var g errgroup.Group
	g.Go(func() error {
		idx, err := search.NewIndexer(app.logger)
		if err != nil {
			return err
		}
		if err := idx.IndexCatalog(app.catalog); err != nil {
			idx.Close()
			return err
		}
		indexer = idx
		return nil
	})
	g.Go(func() error {
		tracker, err := app.Tracker()
		if err != nil {
			return err
		}
		state = tracker.Snapshot()
		return nil
	})
	err := g.Wait()
	app.Close()
	if indexer != nil {
		defer indexer.Close()
	}
	if err != nil {
		return err
	}

	results, err := indexer.RankedSearch(text, strings.ToLower(category), limit, state)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Fprintf(out, "No tools match %q.\n", text)
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tSCORE\tDESCRIPTION")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", r.ToolID, r.Category, r.Score, r.Description)
	}
	return tw.Flush()
}
