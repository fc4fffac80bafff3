package main

import (
	"fmt"

	"github.com/hyperengineering/macrolog"
	"github.com/spf13/cobra"
)

var templateCmd = &cobra.Command{
	Use:     "template",
	Aliases: []string{"tpl"},
	Short:   "Manage reusable food templates",
}

var (
	tplName     string
	tplCalories float64
	tplProtein  float64
	tplCarbs    float64
	tplFat      float64
	tplServing  string
	tplCategory string
	tplBrand    string
)

var templateAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Store a reusable food definition",
	RunE:  runTemplateAdd,
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE:  runTemplateList,
}

var templateFavoriteCmd = &cobra.Command{
	Use:   "favorite <id>",
	Short: "Toggle a template's favorite flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateFavorite,
}

var templateDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a template",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplateDelete,
}

func init() {
	templateAddCmd.Flags().StringVar(&tplName, "name", "", "Food name")
	templateAddCmd.Flags().Float64Var(&tplCalories, "calories", 0, "Calories per serving")
	templateAddCmd.Flags().Float64Var(&tplProtein, "protein", 0, "Protein grams per serving")
	templateAddCmd.Flags().Float64Var(&tplCarbs, "carbs", 0, "Carb grams per serving")
	templateAddCmd.Flags().Float64Var(&tplFat, "fat", 0, "Fat grams per serving")
	templateAddCmd.Flags().StringVar(&tplServing, "serving", "", "Serving-size descriptor")
	templateAddCmd.Flags().StringVar(&tplCategory, "category", "", "Category tag")
	templateAddCmd.Flags().StringVar(&tplBrand, "brand", "", "Brand")

	templateCmd.AddCommand(templateAddCmd)
	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateFavoriteCmd)
	templateCmd.AddCommand(templateDeleteCmd)
}

func runTemplateAdd(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	tpl, err := client.AddTemplate(macrolog.FoodTemplate{
		Name:        tplName,
		Calories:    tplCalories,
		Protein:     tplProtein,
		Carbs:       tplCarbs,
		Fat:         tplFat,
		ServingSize: tplServing,
		Category:    tplCategory,
		Brand:       tplBrand,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Stored template %s [%s]\n", tpl.Name, tpl.ID)
	return nil
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	templates := client.Templates()
	if len(templates) == 0 {
		fmt.Println("No templates stored.")
		return nil
	}

	for _, t := range templates {
		marker := " "
		if t.Favorite {
			marker = "*"
		}
		fmt.Printf("%s %-30s %6.0f kcal  P%.0f C%.0f F%.0f  [%s]\n",
			marker, t.Name, t.Calories, t.Protein, t.Carbs, t.Fat, t.ID)
	}
	return nil
}

func runTemplateFavorite(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return client.ToggleFavorite(args[0])
}

func runTemplateDelete(cmd *cobra.Command, args []string) error {
	client, err := openClient()
	if err != nil {
		return err
	}
	defer client.Close()

	return client.DeleteTemplate(args[0])
}
