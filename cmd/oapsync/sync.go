package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"oap_import/internal/scheduler"
)

var (
	syncForce bool
	syncOnly  string
)

func init() {
	for _, cmd := range []*cobra.Command{syncCmd, daemonCmd} {
		cmd.Flags().BoolVar(&syncForce, "force", false, "Re-import every group even when its record is unchanged")
		cmd.Flags().StringVar(&syncOnly, "only", "", "Only sync groups with an id from this campus")
	}
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(daemonCmd)
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Group the raw items and push them to the research-information system",
	Long: `Group the raw items and push them to the research-information system.

Every group with at least one known user gets an OAP identifier (minted on
first sight), its record is imported when it changed since the last run, and
each of its users is linked to it.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run sync now and then every sync.interval until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runDaemon,
}

func (a *app) applySyncFlags() error {
	if syncForce {
		a.cfg.Sync.Force = true
	}
	if syncOnly != "" {
		a.cfg.Sync.OnlyCampus = syncOnly
	}
	return withCode(ExitConfigError, a.cfg.Validate())
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.applySyncFlags(); err != nil {
		return err
	}
	svc, release, err := a.syncService()
	if err != nil {
		return err
	}
	defer release()

	stats, err := svc.Sync(ctx)
	if stats != nil {
		if perr := printJSON(cmd.OutOrStdout(), stats); perr != nil && err == nil {
			err = perr
		}
	}
	return err
}

func runDaemon(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.applySyncFlags(); err != nil {
		return err
	}
	svc, release, err := a.syncService()
	if err != nil {
		return err
	}
	defer release()

	a.log.Info().
		Dur("interval", a.cfg.Sync.Interval).
		Strs("campuses", a.cfg.Sync.Campuses).
		Msg("starting oap syncer")

	err = scheduler.NewScheduler(svc, a.cfg.Sync.Interval, a.log).Start(ctx)
	if errors.Is(err, context.Canceled) {
		a.log.Info().Msg("received shutdown signal")
		return nil
	}
	return err
}
