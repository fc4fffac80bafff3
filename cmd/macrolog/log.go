package main

import (
	"fmt"

	"github.com/hyperengineering/macrolog"
	"github.com/spf13/cobra"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Record and manage meals",
}

var (
	logDate     string
	logName     string
	logCalories float64
	logProtein  float64
	logCarbs    float64
	logFat      float64
	logQty      float64
	logType     string
	logTemplate string
)

var logAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a meal",
	Long: `Record a meal for a date, either from scratch or from a template.

Example:
  macrolog log add --name "Oatmeal" --calories 150 --protein 5 --carbs 27 --fat 3
  macrolog log add --template 01J3ZK... --qty 0.5 --type snack`,
	RunE: runLogAdd,
}

var logRemoveCmd = &cobra.Command{
	Use:   "remove <meal-id>",
	Short: "Remove a meal",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogRemove,
}

func init() {
	logAddCmd.Flags().StringVar(&logDate, "date", "", "Date (YYYY-MM-DD, default today)")
	logAddCmd.Flags().StringVar(&logName, "name", "", "Food name")
	logAddCmd.Flags().Float64Var(&logCalories, "calories", 0, "Calories per serving")
	logAddCmd.Flags().Float64Var(&logProtein, "protein", 0, "Protein grams per serving")
	logAddCmd.Flags().Float64Var(&logCarbs, "carbs", 0, "Carb grams per serving")
	logAddCmd.Flags().Float64Var(&logFat, "fat", 0, "Fat grams per serving")
	logAddCmd.Flags().Float64Var(&logQty, "qty", 1, "Quantity multiplier (fractional servings allowed)")
	logAddCmd.Flags().StringVar(&logType, "type", "snack", "Meal type: breakfast, lunch, dinner, snack")
	logAddCmd.Flags().StringVar(&logTemplate, "template", "", "Record from a stored template id")

	logRemoveCmd.Flags().StringVar(&logDate, "date", "", "Date (YYYY-MM-DD, default today)")

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logRemoveCmd)
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	date := resolveDate(logDate)
	mealType := macrolog.MealType(logType)

	var entry *macrolog.MealEntry
	if logTemplate != "" {
		entry, err = client.AddMealFromTemplate(date, logTemplate, logQty, mealType)
	} else {
		item := macrolog.FoodItem{
			Name:     logName,
			Calories: logCalories,
			Protein:  logProtein,
			Carbs:    logCarbs,
			Fat:      logFat,
		}
		entry, err = client.AddMeal(date, item, logQty, mealType)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Recorded %s (%s) on %s [%s]\n", entry.Item.Name, entry.Type, entry.Date, entry.ID)
	return nil
}

func runLogRemove(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return client.RemoveMeal(resolveDate(logDate), args[0])
}
