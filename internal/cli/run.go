package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/toolkit"
)

// NewRunCmd creates the 'run' command, which executes one tool.
func NewRunCmd(app *App) *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "run <tool> [input]",
		Short: "Run a tool",
		Long: `Run a tool from the catalog and print its output.

The optional positional argument fills the tool's "input" parameter; pass "-"
to read it from stdin. Other parameters are set with --set name=value.
A successful run is recorded in usage history.`,
		Example: `  strapd run base64-encode "hello world"
  echo '{"a":1}' | strapd run json-beautify -
  strapd run unit-convert --set value=5 --set from=km --set to=mi
  strapd run uuid-v7 --set count=3`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTool(cmd, app, args, sets)
		},
	}

	cmd.Flags().StringArrayVarP(&sets, "set", "s", nil, "Set a tool input (name=value, repeatable)")

	return cmd
}

// parseSets turns name=value pairs into tool inputs.
func parseSets(sets []string) (toolkit.Inputs, error) {
	in := make(toolkit.Inputs, len(sets)+1)
	for _, pair := range sets {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --set %q: expected name=value", pair)
		}
		in[name] = value
	}
	return in, nil
}

func runTool(cmd *cobra.Command, app *App, args, sets []string) error {
	name := args[0]
	if _, ok := app.catalog.Get(name); !ok {
		return fmt.Errorf("unknown tool %q (see 'strapd list')", name)
	}

	in, err := parseSets(sets)
	if err != nil {
		return err
	}

	if len(args) == 2 {
		value := args[1]
		if value == "-" {
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			value = strings.TrimRight(string(data), "\r\n")
		}
		in[toolkit.InputKey] = value
	}

	result, err := app.catalog.Execute(cmd.Context(), name, in)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Output)

	tracker, err := app.Tracker()
	if err != nil {
		app.logger.Warn("usage tracking unavailable", zap.Error(err))
		return nil
	}
	defer app.Close()

	if err := tracker.Use(name); err != nil {
		app.logger.Warn("failed to record tool use", zap.String("tool", name), zap.Error(err))
	}
	return nil
}
