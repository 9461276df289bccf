package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rawdlite/onboardsync/internal/config"
	"github.com/rawdlite/onboardsync/internal/journal"
)

// StatusOptions holds flags for the status command.
type StatusOptions struct {
	*RootOptions
	Limit int
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatusOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "status [run-token]",
		Short: "Show recent pass runs from the journal",
		Long: `Show the most recent pass runs recorded in the journal, newest first.
With a run token, show that run's per-record outcomes instead.

The journal path comes from the configuration file; --journal overrides it
and also works without any configuration file.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStatus(opts, cmd, args)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "number of runs to show")

	return cmd
}

func showStatus(opts *StatusOptions, cmd *cobra.Command, args []string) error {
	path := opts.Journal
	if path == "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "configuration", err)
		}
		path = cfg.JournalPath()
	}

	store, err := journal.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		records, err := store.RunRecords(ctx, args[0])
		if err != nil {
			return WrapExitError(ExitCommandError, "read journal", err)
		}
		if opts.Format == "json" {
			return json.NewEncoder(out).Encode(CLIResponse{Status: "ok", Data: records})
		}
		if len(records) == 0 {
			fmt.Fprintln(out, "no records for this run")
			return nil
		}
		for _, r := range records {
			fmt.Fprintf(out, "%4d  %-9s %s", r.Seq, r.Outcome, r.Key)
			if r.Detail != "" {
				fmt.Fprintf(out, "  (%s)", r.Detail)
			}
			fmt.Fprintln(out)
		}
		return nil
	}

	runs, err := store.RecentRuns(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "read journal", err)
	}
	if opts.Format == "json" {
		return json.NewEncoder(out).Encode(CLIResponse{Status: "ok", Data: runs})
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}
	for _, r := range runs {
		outcome := r.Outcome
		if outcome == "" {
			outcome = "running"
		}
		fmt.Fprintf(out, "%s  %-32s %-8s %d processed, %d skipped, %d failed  %s\n",
			r.StartedAt.Format("2006-01-02 15:04:05"), r.Pass, outcome,
			r.Processed, r.Skipped, r.Failed, r.Token)
	}
	return nil
}
