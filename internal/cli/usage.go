package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/usage"
)

// NewUsageCmd creates the 'usage' command group for managing usage history.
func NewUsageCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Manage tool usage history",
		Long: `View, export, import and clear the usage history that orders tool lists.

Each tool scores 0.7 x (uses / most uses) + 0.3 / (1 + days since last use).`,
	}

	cmd.AddCommand(newUsageShowCmd(app))
	cmd.AddCommand(newUsageExportCmd(app))
	cmd.AddCommand(newUsageImportCmd(app))
	cmd.AddCommand(newUsageClearCmd(app))

	return cmd
}

// usageRow is the JSON form of one usage record.
type usageRow struct {
	usage.Record
	Score float64 `json:"score"`
}

func newUsageShowCmd(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show usage records with their scores",
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker()
			if err != nil {
				return err
			}
			defer app.Close()

			state := tracker.Snapshot()
			out := cmd.OutOrStdout()
			if !tracker.IsEnabled() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Usage tracking is disabled in config.")
			}

			rows := scoreRecords(state, usage.SystemClock{}.Now())
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			if len(rows) == 0 {
				fmt.Fprintln(out, "No usage recorded yet.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TOOL\tUSES\tLAST USED\tSCORE")
			for _, row := range rows {
				last := humanize.Time(time.UnixMilli(row.LastUsed))
				fmt.Fprintf(tw, "%s\t%d\t%s\t%.3f\n", row.ToolID, row.Count, last, row.Score)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// scoreRecords pairs every record with its current score, in ranking order.
func scoreRecords(state usage.State, now int64) []usageRow {
	records := state.Records()

	most := 0
	for _, rec := range records {
		if rec.Count > most {
			most = rec.Count
		}
	}

	rows := make([]usageRow, 0, len(records))
	for _, rec := range records {
		rows = append(rows, usageRow{Record: rec, Score: usage.Score(rec, most, now)})
	}
	return rows
}

func newUsageExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export usage history as JSON",
		Example: `  strapd usage export > usage.json
  strapd usage export -o usage.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tracker, err := app.Tracker()
			if err != nil {
				return err
			}
			defer app.Close()

			data := usage.Serialize(tracker.Snapshot())
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), data)
				return nil
			}

			if err := os.WriteFile(output, []byte(data+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d records to %s\n", tracker.Snapshot().Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")

	return cmd
}

func newUsageImportCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace usage history with an exported file",
		Long: `Replace the current usage history with a file written by 'strapd usage export'.
Unreadable parts of the file are skipped; the ranking is rebuilt on the next use.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			state, err := usage.DeserializeWithError(string(data))
			if err != nil {
				app.logger.Warn("imported usage file was partly unreadable",
					zap.String("path", args[0]), zap.Error(err))
			}

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}
			defer app.Close()

			tracker.Replace(state)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records from %s\n", state.Len(), args[0])
			return nil
		},
	}

	return cmd
}

func newUsageClearCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget all usage history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprint(cmd.OutOrStdout(), "Clear all usage history? [y/N] ")
				answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				answer = strings.ToLower(strings.TrimSpace(answer))
				if answer != "y" && answer != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted.")
					return nil
				}
			}

			tracker, err := app.Tracker()
			if err != nil {
				return err
			}
			defer app.Close()

			if err := tracker.Reset(); err != nil {
				return fmt.Errorf("failed to clear usage: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Usage history cleared.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
