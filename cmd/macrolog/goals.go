package main

import (
	"fmt"

	"github.com/hyperengineering/macrolog"
	"github.com/spf13/cobra"
)

var goalsCmd = &cobra.Command{
	Use:   "goals",
	Short: "Show or update nutrition goals",
	RunE:  runGoals,
}

var (
	goalsCalories float64
	goalsProtein  float64
	goalsCarbs    float64
	goalsFat      float64
	goalsWater    float64
	goalsWeight   float64
	goalsSet      bool
)

func init() {
	goalsCmd.Flags().BoolVar(&goalsSet, "set", false, "Update goals with the given flags")
	goalsCmd.Flags().Float64Var(&goalsCalories, "calories", 0, "Calorie target")
	goalsCmd.Flags().Float64Var(&goalsProtein, "protein", 0, "Protein target (g)")
	goalsCmd.Flags().Float64Var(&goalsCarbs, "carbs", 0, "Carb target (g)")
	goalsCmd.Flags().Float64Var(&goalsFat, "fat", 0, "Fat target (g)")
	goalsCmd.Flags().Float64Var(&goalsWater, "water", 0, "Water target (ml)")
	goalsCmd.Flags().Float64Var(&goalsWeight, "target-weight", 0, "Target weight")
}

func runGoals(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	if goalsSet {
		return client.UpdateGoals(macrolog.Goals{
			Calories:     goalsCalories,
			Protein:      goalsProtein,
			Carbs:        goalsCarbs,
			Fat:          goalsFat,
			WaterML:      goalsWater,
			TargetWeight: goalsWeight,
		})
	}

	g := client.Goals()
	fmt.Printf("Calories: %.0f kcal\n", g.Calories)
	fmt.Printf("Protein:  %.0f g\n", g.Protein)
	fmt.Printf("Carbs:    %.0f g\n", g.Carbs)
	fmt.Printf("Fat:      %.0f g\n", g.Fat)
	fmt.Printf("Water:    %.0f ml\n", g.WaterML)
	if g.TargetWeight > 0 {
		fmt.Printf("Weight:   %.1f\n", g.TargetWeight)
	}
	return nil
}
