package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanglvm/strapd/internal/version"
)

// NewVersionCmd creates the 'version' command.
func NewVersionCmd(app *App) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the current version, commit hash, and build date.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:  %s\n", version.Version)
			fmt.Fprintf(out, "Commit:   %s\n", version.Commit)
			fmt.Fprintf(out, "Built:    %s\n", version.Date)

			if !check {
				return nil
			}

			checker, err := version.NewChecker(app.logger)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
			defer cancel()

			latest, err := checker.Check(ctx)
			if err != nil {
				return fmt.Errorf("update check failed: %w", err)
			}
			switch {
			case version.Version == "dev":
				fmt.Fprintln(out, "Development build, update check skipped.")
			case latest == "":
				fmt.Fprintln(out, "Up to date.")
			default:
				fmt.Fprintf(out, "Update available: %s\n", latest)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check for a newer release")

	return cmd
}
