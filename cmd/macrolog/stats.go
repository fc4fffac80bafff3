package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show local store statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	stats, err := client.Stats()
	if err != nil {
		return err
	}

	fmt.Printf("Days tracked:    %d\n", stats.DayCount)
	fmt.Printf("Meals recorded:  %d\n", stats.MealCount)
	fmt.Printf("Templates:       %d\n", stats.TemplateCount)
	if !stats.LastLocalUpdate.IsZero() {
		fmt.Printf("Last update:     %s\n", stats.LastLocalUpdate.Format("2006-01-02 15:04:05"))
	}
	if !stats.LastServerSync.IsZero() {
		fmt.Printf("Last sync:       %s\n", stats.LastServerSync.Format("2006-01-02 15:04:05"))
	}
	fmt.Printf("Schema version:  %s\n", stats.SchemaVersion)
	return nil
}
