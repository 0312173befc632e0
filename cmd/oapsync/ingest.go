package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"oap_import/internal/domain"
	"oap_import/internal/feed"
	"oap_import/internal/ingest"
)

func init() {
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(usersCmd)
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <feed>...",
	Short: "Load harvested record feeds into the raw item store",
	Long: `Load harvested record feeds into the raw item store.

Feeds may be gzip-compressed. A record replaces the stored one only when it
is newer; invalid records are logged and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

var usersCmd = &cobra.Command{
	Use:   "users <file>",
	Short: "Load the user directory (e-mail to proprietary id)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsers,
}

type feedResult struct {
	Feed  string              `json:"feed"`
	Stats *domain.IngestStats `json:"stats"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	svc := ingest.NewService(a.items, a.users, a.tx, a.log, a.cfg.Sync.BatchSize)

	var results []feedResult
	for _, path := range args {
		r, err := feed.Open(path, a.cfg.Sync.Campuses)
		if err != nil {
			return withCode(ExitDataError, err)
		}
		stats, err := svc.IngestItems(ctx, r)
		r.Close()
		if err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}
		results = append(results, feedResult{Feed: path, Stats: stats})
	}
	return printJSON(cmd.OutOrStdout(), results)
}

func runUsers(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	r, err := feed.OpenUsers(args[0])
	if err != nil {
		return withCode(ExitDataError, err)
	}
	defer r.Close()

	svc := ingest.NewService(a.items, a.users, a.tx, a.log, a.cfg.Sync.BatchSize)
	stats, err := svc.IngestUsers(ctx, r)
	if err != nil {
		return fmt.Errorf("ingest users: %w", err)
	}
	return printJSON(cmd.OutOrStdout(), stats)
}
