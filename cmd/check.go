package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/carboneio/sclone/core/storage"
	"github.com/carboneio/sclone/core/utils"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// checkCmd verifies both storages before a first sync.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that both storages are reachable and summarize their content",
	Long:  `Pings the source and the target, then lists them and prints object counts and sizes. Nothing is modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := bootstrap()
		if err != nil {
			return err
		}
		defer rt.log.Sync()

		ctx := cmd.Context()
		src, tgt, err := rt.adapters(ctx)
		if err != nil {
			return err
		}

		startTime := time.Now()
		var srcSummary, tgtSummary storageSummary
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			srcSummary, err = summarize(gctx, "source", src)
			return err
		})
		g.Go(func() (err error) {
			tgtSummary, err = summarize(gctx, "target", tgt)
			return err
		})
		if err := g.Wait(); err != nil {
			return err
		}

		fmt.Println("\n=== Storage Check ===")
		for _, s := range []storageSummary{srcSummary, tgtSummary} {
			fmt.Printf("%s (%s:%s): %d objects, %s\n", s.side, s.kind, s.bucket, s.objects, utils.FormatBytes(s.bytes))
		}
		fmt.Printf("Execution Time: %s\n", utils.FormatDuration(time.Since(startTime)))

		rt.log.Info("Storage check completed",
			zap.Int("source_objects", srcSummary.objects),
			zap.Int("target_objects", tgtSummary.objects),
		)
		return nil
	},
}

type storageSummary struct {
	side    string
	kind    storage.Kind
	bucket  string
	objects int
	bytes   int64
}

func summarize(ctx context.Context, side string, a storage.Adapter) (storageSummary, error) {
	s := storageSummary{side: side, kind: a.Kind(), bucket: a.Bucket()}
	if err := a.Ping(ctx); err != nil {
		return s, fmt.Errorf("%s storage unreachable: %w", side, err)
	}
	entries, err := a.List(ctx, storage.ListOptions{})
	if err != nil {
		return s, fmt.Errorf("failed to list %s storage: %w", side, err)
	}
	s.objects = len(entries)
	for _, e := range entries {
		s.bytes += e.Bytes
	}
	return s, nil
}

func init() {
	RootCmd.AddCommand(checkCmd)
}
