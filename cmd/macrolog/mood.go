package main

import (
	"strconv"

	"github.com/spf13/cobra"
)

var moodCmd = &cobra.Command{
	Use:   "mood <rating>",
	Short: "Record a mood rating (1-5)",
	Args:  cobra.ExactArgs(1),
	RunE:  runMood,
}

var (
	moodDate string
	moodNote string
)

func init() {
	moodCmd.Flags().StringVar(&moodDate, "date", "", "Date (YYYY-MM-DD, default today)")
	moodCmd.Flags().StringVar(&moodNote, "note", "", "Optional free-text note")
}

func runMood(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	rating, err := strconv.Atoi(args[0])
	if err != nil {
		return err
	}
	return client.SetMood(resolveDate(moodDate), rating, moodNote)
}
