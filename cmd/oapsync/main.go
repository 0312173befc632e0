// Package main provides the oapsync CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var configPath string

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "oapsync",
	Short: "Reconcile campus publication feeds into OA publications",
	Long: `oapsync collects publication records harvested from the campuses, groups
records that describe the same publication, gives every group a persistent
OAP identifier and pushes the groups to the research-information system.

Typical run:
  oapsync users people.xml
  oapsync ingest ucla.xml.gz uci.xml.gz eschol.xml.gz
  oapsync sync

Results are written to stdout as JSON; logs go to stderr.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to config file")
	rootCmd.Version = Version
}
