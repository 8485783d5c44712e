package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/khanglvm/strapd/internal/toolkit"
	"github.com/khanglvm/strapd/internal/usage"
)

// toolEntry is the JSON form of a tool in list output.
type toolEntry struct {
	Name        string           `json:"name"`
	Title       string           `json:"title"`
	Category    toolkit.Category `json:"category"`
	Description string           `json:"description"`
	Count       int              `json:"count,omitempty"`
}

// NewListCmd creates the 'list' command for listing tools, most used first.
func NewListCmd(app *App) *cobra.Command {
	var jsonOutput bool
	var category string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List available tools, most used first",
		Long: `Display every tool in the catalog. Tools you use most often and most
recently are listed first; the rest keep catalog order.`,
		Example: `  strapd list
  strapd ls --category encoding
  strapd list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, app, category, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Only list tools in this category")

	return cmd
}

func runList(cmd *cobra.Command, app *App, category string, jsonOutput bool) error {
	tools := app.catalog.All()
	if category != "" {
		tools = app.catalog.ByCategory(toolkit.Category(strings.ToLower(category)))
		if len(tools) == 0 {
			return fmt.Errorf("unknown category %q", category)
		}
	}

	tracker, err := app.Tracker()
	if err != nil {
		return err
	}
	defer app.Close()

	state := tracker.Snapshot()
	ranked := usage.Rank(tools, state)

	if jsonOutput {
		return writeToolsJSON(cmd.OutOrStdout(), ranked, state)
	}
	writeToolsTable(cmd.OutOrStdout(), ranked, state)
	return nil
}

// NewTopCmd creates the 'top' command for showing the most used tools.
func NewTopCmd(app *App) *cobra.Command {
	var limit int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show your most used tools",
		Example: `  strapd top
  strapd top -n 10 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") {
				limit = app.cfg.Usage.TopLimit
			}
			return runTop(cmd, app, limit, jsonOutput)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", usage.DefaultTopLimit, "Number of tools to show (default from config)")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runTop(cmd *cobra.Command, app *App, limit int, jsonOutput bool) error {
	tracker, err := app.Tracker()
	if err != nil {
		return err
	}
	defer app.Close()

	state := tracker.Snapshot()
	var tools []*toolkit.Tool
	for _, id := range usage.TopIDs(state, limit) {
		if tool, ok := app.catalog.Get(id); ok {
			tools = append(tools, tool)
		}
	}

	if jsonOutput {
		return writeToolsJSON(cmd.OutOrStdout(), tools, state)
	}
	if len(tools) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No usage recorded yet.")
		fmt.Fprintln(cmd.OutOrStdout(), "Run a tool with 'strapd run <tool>' to start.")
		return nil
	}
	writeToolsTable(cmd.OutOrStdout(), tools, state)
	return nil
}

func writeToolsJSON(w io.Writer, tools []*toolkit.Tool, state usage.State) error {
	entries := make([]toolEntry, 0, len(tools))
	for _, tool := range tools {
		rec, _ := state.Lookup(tool.ID())
		entries = append(entries, toolEntry{
			Name:        tool.Name,
			Title:       tool.Title,
			Category:    tool.Category,
			Description: tool.Description,
			Count:       rec.Count,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

func writeToolsTable(w io.Writer, tools []*toolkit.Tool, state usage.State) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tUSES\tDESCRIPTION")
	for _, tool := range tools {
		uses := "-"
		if rec, ok := state.Lookup(tool.ID()); ok {
			uses = fmt.Sprint(rec.Count)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", tool.Name, tool.Category, uses, tool.Description)
	}
	tw.Flush()
}
