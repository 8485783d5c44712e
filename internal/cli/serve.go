package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/mcp"
	"github.com/khanglvm/strapd/internal/version"
)

// NewServeCmd creates the 'serve' command for running the MCP server.
func NewServeCmd(app *App) *cobra.Command {
	var checkUpdates bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server (stdio transport)",
		Long: `Start an MCP server on stdin/stdout that exposes every tool to AI clients.

tools/list returns the catalog ordered by your usage, and every successful
tools/call is recorded. Logs go to stderr.`,
		Example: `  # Run directly
  strapd serve

  # Add to an MCP client
  claude mcp add strapd -- strapd serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, app, checkUpdates)
		},
	}

	cmd.Flags().BoolVar(&checkUpdates, "check-updates", true, "Check for a newer release in the background")

	return cmd
}

// runServe serves until stdin closes or SIGINT/SIGTERM/SIGQUIT arrives.
func runServe(cmd *cobra.Command, app *App, checkUpdates bool) error {
	tracker, err := app.Tracker()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if checkUpdates {
		go checkForUpdates(ctx, app.logger)
	}

	server := mcp.NewServer(app.catalog, tracker,
		mcp.WithLogger(app.logger),
		mcp.WithIO(cmd.InOrStdin(), cmd.OutOrStdout()))

	app.logger.Info("mcp server started", zap.Int("tools", app.catalog.Len()))

	// Run blocks on stdin, so a signal must not wait for it.
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Run(ctx)
	}()

	select {
	case <-ctx.Done():
		app.logger.Info("shutting down", zap.Error(context.Cause(ctx)))
		return nil
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		app.logger.Info("stdin closed, mcp server stopped")
		return nil
	}
}

func checkForUpdates(ctx context.Context, logger *zap.Logger) {
	checker, err := version.NewChecker(logger)
	if err != nil {
		logger.Debug("update check unavailable", zap.Error(err))
		return
	}

	latest, err := checker.Check(ctx)
	if err != nil {
		logger.Debug("update check failed", zap.Error(err))
		return
	}
	if latest != "" {
		logger.Warn("a newer strapd release is available",
			zap.String("current", version.Version),
			zap.String("latest", latest))
	}
}
