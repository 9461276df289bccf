package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rawdlite/onboardsync/internal/engine"
)

// executePasses is the shared body of the single-pass commands: load the
// runtime, run, render, and fold pass-fatal errors into the exit code.
func executePasses(cmd *cobra.Command, opts *RootOptions, run func(ctx context.Context, eng *engine.Engine) []*engine.PassReport) error {
	rt, err := loadRuntime(opts)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reports := run(ctx, rt.engine)

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if err := f.Reports(reports); err != nil {
		return err
	}
	return reportsError(reports)
}

// NewInitializeCommand creates the initialize command.
func NewInitializeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initialize",
		Short: "Create work items for person documents without one",
		Long: `Scan the document store for person documents that carry no work item
link, canonicalize their identifiers, derive missing usernames and create a
linked work item in status New for each.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePasses(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine) []*engine.PassReport {
				return []*engine.PassReport{eng.Initialize(ctx)}
			})
		},
	}
}

// NewAccountsCommand creates the accounts command.
func NewAccountsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "Provision accounts for scheduled work items",
		Long: `Provision directory and tracker accounts for every work item in status
Scheduled. Each requested account type is attempted independently; any
success advances the item to In progress, and items whose person document
cannot be resolved are commented and reverted to In specification.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePasses(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine) []*engine.PassReport {
				return []*engine.PassReport{eng.CreateAccounts(ctx)}
			})
		},
	}
}

// NewConsolidateCommand creates the consolidate command.
func NewConsolidateCommand(rootOpts *RootOptions) *cobra.Command {
	var direction string

	cmd := &cobra.Command{
		Use:   "consolidate",
		Short: "Merge identity fields between tracker and documents",
		Long: `Merge identity fields for every work item in status In progress. The
direction names the destination: "document" copies tracker fields onto the
person documents, "tracker" copies document fields onto the work items,
"both" (the default) runs both directions in that order.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePasses(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine) []*engine.PassReport {
				switch direction {
				case "document":
					return []*engine.PassReport{eng.ConsolidateTrackerToDocument(ctx)}
				case "tracker":
					return []*engine.PassReport{eng.ConsolidateDocumentToTracker(ctx)}
				default:
					return []*engine.PassReport{
						eng.ConsolidateTrackerToDocument(ctx),
						eng.ConsolidateDocumentToTracker(ctx),
					}
				}
			})
		},
		PreRunE: func(cmd *cobra.Command, args []string) error {
			switch direction {
			case "document", "tracker", "both":
				return nil
			}
			return NewExitError(ExitCommandError, "invalid --direction: must be document, tracker or both")
		},
	}

	cmd.Flags().StringVar(&direction, "direction", "both", "merge destination (document|tracker|both)")
	return cmd
}

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh account snapshots on person documents",
		Long: `List every account in the directory service and the tracker user
registry, resolve each to its owning person document through the match
predicate chain, and refresh the stored profile snapshots. Unowned and
ambiguous accounts are skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executePasses(cmd, rootOpts, func(ctx context.Context, eng *engine.Engine) []*engine.PassReport {
				return []*engine.PassReport{eng.RefreshAccounts(ctx)}
			})
		},
	}
}
