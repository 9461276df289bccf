package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Interval time.Duration
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all reconciliation passes",
		Long: `Run every reconciliation pass once, in pipeline order: initialize,
accounts, consolidate (both directions), refresh.

With --interval the pipeline repeats on that cadence until SIGINT or
SIGTERM.

Example:
  onboardsync run
  onboardsync run --interval 15m --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(opts, cmd)
		},
	}

	cmd.Flags().DurationVar(&opts.Interval, "interval", 0, "repeat the pipeline on this cadence (0 runs once)")

	return cmd
}

func runPipeline(opts *RunOptions, cmd *cobra.Command) error {
	rt, err := loadRuntime(opts.RootOptions)
	if err != nil {
		return err
	}
	defer rt.Close()

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	reports := rt.engine.RunAll(ctx)
	if err := f.Reports(reports); err != nil {
		return err
	}
	if opts.Interval == 0 {
		return reportsError(reports)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pipeline scheduled every %s. Press Ctrl-C to stop.\n", opts.Interval)
	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("pipeline stopped")
			return nil
		case <-ticker.C:
			reports := rt.engine.RunAll(ctx)
			if err := f.Reports(reports); err != nil {
				return err
			}
		}
	}
}
