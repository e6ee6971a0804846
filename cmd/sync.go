package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carboneio/sclone/core/utils"
	"github.com/carboneio/sclone/feature/pairsync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync   bool
	maxDeletions int
)

// syncCmd runs a single cycle.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization cycle",
	Long: `Lists both storages, computes the operations and applies them.

Examples:
  # Preview the operations without touching the storages
  sclone sync --dry-run

  # Allow a larger purge than the configured limit
  sclone sync --max-deletions 500`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Write the plan artifact and stop before any change")
	syncCmd.Flags().IntVar(&maxDeletions, "max-deletions", 100, "Abort when more objects would be deleted from one side (-1 disables)")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	if cmd.Flags().Changed("max-deletions") {
		rt.cfg.Sync.MaxDeletions = maxDeletions
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := rt.service(ctx)
	if err != nil {
		return err
	}

	report, err := svc.RunOnce(ctx, pairsync.RunOptions{DryRun: dryRunSync})
	if errors.Is(err, pairsync.ErrAlreadyRunning) {
		rt.log.Warn("Another sync holds the lock, nothing done", zap.String("lock_file", rt.cfg.Sync.LockFile))
		return nil
	}
	printReport(report)
	return err
}

func printReport(r *pairsync.Report) {
	fmt.Println("\n=== Sync Report ===")
	fmt.Printf("Pair: %s (%s)\n", r.Pair, r.Mode)
	fmt.Printf("Status: %s\n", r.Status)
	fmt.Printf("Stage: %s\n", r.Stage)
	fmt.Printf("Planned: %d upload to target, %d delete from target, %d upload to source, %d delete from source\n",
		r.Planned.UploadTarget, r.Planned.DeleteTarget, r.Planned.UploadSource, r.Planned.DeleteSource)
	fmt.Printf("Uploaded: %d (%s)\n", r.Uploaded, utils.FormatBytes(r.Bytes))
	fmt.Printf("Deleted: %d\n", r.Deleted)
	fmt.Printf("Failed: %d\n", r.Failed)
	fmt.Printf("Execution Time: %s\n", utils.FormatDuration(r.Duration))
	if r.PlanPath != "" {
		fmt.Printf("Plan: %s\n", r.PlanPath)
	}
}
