package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var weightCmd = &cobra.Command{
	Use:   "weight <value>",
	Short: "Record a weight measurement",
	Long: `Record a weight measurement for a date. One entry per date; a second
measurement on the same date replaces the first.`,
	Args: cobra.ExactArgs(1),
	RunE: runWeight,
}

var (
	weightDate string
	weightNote string
)

func init() {
	weightCmd.Flags().StringVar(&weightDate, "date", "", "Date (YYYY-MM-DD, default today)")
	weightCmd.Flags().StringVar(&weightNote, "note", "", "Optional note")
}

func runWeight(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	value, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return err
	}
	return client.UpsertWeight(resolveDate(weightDate), value, weightNote)
}
