package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Show a day's log",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDay,
}

func runDay(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	date := today()
	if len(args) == 1 {
		date = args[0]
	}

	log, ok := client.Day(date)
	if !ok {
		fmt.Printf("Nothing recorded for %s.\n", date)
		return nil
	}

	fmt.Printf("%s\n", log.Date)
	for _, m := range log.Meals {
		fmt.Printf("  %-10s %-30s x%.2f  %6.0f kcal  [%s]\n",
			m.Type, m.Item.Name, m.Quantity, m.Item.Calories*m.Quantity, m.ID)
	}
	fmt.Printf("Totals: %.0f kcal, P %.1f g, C %.1f g, F %.1f g\n",
		log.Totals.Calories, log.Totals.Protein, log.Totals.Carbs, log.Totals.Fat)
	if log.WaterML > 0 {
		fmt.Printf("Water:  %.0f ml\n", log.WaterML)
	}
	if log.Weight != nil {
		fmt.Printf("Weight: %.1f\n", log.Weight.Weight)
	}
	if log.Mood > 0 {
		fmt.Printf("Mood:   %d/5", log.Mood)
		if log.Note != "" {
			fmt.Printf(" (%s)", log.Note)
		}
		fmt.Println()
	}
	return nil
}
