package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/database"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
)

// openStore can be mocked for testing
var openStore = database.Open

// recordCmd stores a snapshot of every protocol in the history store
var recordCmd = &cobra.Command{
	Use:   "record [udp|tcp|icmp]...",
	Short: "Record protocol statistics to the history store",
	Long: "Take a snapshot of the selected protocols (all by default), save it to the " +
		"snapshot store and prune snapshots older than the configured retention.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		protos, err := parseProtocols(args)
		if err != nil {
			return err
		}
		snaps, err := captureAll(protos)
		if err != nil {
			return err
		}

		store, err := openStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.SaveBatch(snaps); err != nil {
			return err
		}
		if err := store.SetMeta("platform", host.Name()); err != nil {
			logger.Warn("Failed to record platform metadata: %v", err)
		}

		cutoff := time.Now().Add(-cfg.Store.Retention)
		pruned, err := store.Prune(cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune snapshots older than %s: %w", cutoff.Format(time.RFC3339), err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %d snapshots, pruned %d\n", len(snaps), pruned)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(recordCmd)
}
