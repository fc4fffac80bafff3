package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var waterCmd = &cobra.Command{
	Use:   "water <ml>",
	Short: "Add water intake",
	Long: `Add water intake for a date. Amounts accumulate.

Example:
  macrolog water 500
  macrolog water 250 --date 2026-08-01`,
	Args: cobra.ExactArgs(1),
	RunE: runWater,
}

var (
	waterDate  string
	waterReset bool
)

func init() {
	waterCmd.Flags().StringVar(&waterDate, "date", "", "Date (YYYY-MM-DD, default today)")
	waterCmd.Flags().BoolVar(&waterReset, "reset", false, "Reset the day's water intake instead of adding")
}

func runWater(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	date := resolveDate(waterDate)
	if waterReset {
		return client.ResetWater(date)
	}

	ml, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	return client.AddWater(date, ml)
}
