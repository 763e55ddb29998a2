package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/formhub/backend/internal/model"
)

// SyncCmd returns the sync command: run a sync for one site or all of them.
func SyncCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "sync [siteID]",
		Short: "Pull form submissions from a remote site into the hub",
		Long: `Runs the synchronization engine from the command line.

Examples:
  formhub sync 3        # sync one site
  formhub sync --all    # sync every active site`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(args) == 0 {
				return fmt.Errorf("provide a site id or --all")
			}

			e, err := newEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.close()

			if all {
				results, err := e.sync.SyncAllSites(cmd.Context())
				if err != nil {
					return err
				}
				for _, r := range results {
					printResult(r)
				}
				return nil
			}

			siteID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || siteID <= 0 {
				return fmt.Errorf("invalid site id %q", args[0])
			}
			result, err := e.sync.SyncSite(cmd.Context(), siteID)
			if err != nil {
				return err
			}
			printResult(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Sync every active site")

	return cmd
}

func printResult(r model.SyncResult) {
	fmt.Printf("site %d: %s  %s\n", r.SiteID, statusLabel(r.Status), r.Message)
	if r.Status == model.SyncStatusCompleted || r.Status == model.SyncStatusPartialFailure {
		fmt.Printf("  forms: %d  synced: %d", r.FormsFound, r.SubmissionsSynced)
		if r.FormsSkipped > 0 || r.EntriesSkipped > 0 {
			fmt.Printf("  skipped: %d forms, %d entries", r.FormsSkipped, r.EntriesSkipped)
		}
		fmt.Println()
	}
}

func statusLabel(s model.SyncStatus) string {
	switch s {
	case model.SyncStatusCompleted:
		return color.New(color.FgGreen).Sprint("completed")
	case model.SyncStatusPartialFailure:
		return color.New(color.FgYellow).Sprint("partial")
	case model.SyncStatusInProgress:
		return color.New(color.FgYellow).Sprint("in progress")
	default:
		return color.New(color.FgRed).Sprint("failed")
	}
}
