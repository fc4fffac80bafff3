package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperengineering/macrolog"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize with the Larder server",
	Long: `Synchronize the local nutrition store with the Larder server.

Sync is rate-limited: at most 5 attempts per 3 minutes, with a 5 second
cooldown between attempts.

Example:
  macrolog sync            # Run a sync cycle now
  macrolog sync --status   # Show cooldown state without syncing`,
	RunE: runSync,
}

var syncStatus bool

func init() {
	syncCmd.Flags().BoolVar(&syncStatus, "status", false, "Show cooldown state without syncing")
}

func runSync(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if syncStatus {
		onCooldown, err := client.IsSyncOnCooldown()
		if err != nil {
			return err
		}
		if onCooldown {
			fmt.Println("Sync is on cooldown.")
		} else {
			fmt.Println("Sync is available.")
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	start := time.Now()
	err = client.Sync(ctx)
	switch {
	case err == nil:
		fmt.Printf("Sync complete (took %s)\n", time.Since(start).Round(time.Millisecond))
		return nil
	case errors.Is(err, macrolog.ErrSyncThrottled):
		// Throttling already surfaced a notification; not a failure.
		return nil
	default:
		return err
	}
}
