package spoon

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Manage saved meals (my meals)",
}

var (
	mealName       string
	mealDirections string
	mealPhoto      string
	mealFoods      []string
	mealItems      []string
)

var mealCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Save a meal from catalog foods and hand-entered items",
	Long: `Save a meal. Items keep the order given:
  --food ID:AMOUNT[:UNIT]             a catalog food, nutrition derived from the food
  --item NAME:KCAL[:CARBS:PROTEIN:FAT] a hand-entered item`,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.MyMealInput{Name: mealName, Directions: mealDirections, PhotoURI: mealPhoto}
		for _, raw := range mealFoods {
			it, err := parseMealFood(raw)
			if err != nil {
				return err
			}
			in.Items = append(in.Items, it)
		}
		for _, raw := range mealItems {
			it, err := parseMealItem(raw)
			if err != nil {
				return err
			}
			in.Items = append(in.Items, it)
		}
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.CreateMyMeal(cmd.Context(), sqldb, in, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved meal %d: %s (%d items, %.0f kcal)\n", m.ID, m.Name, len(m.Items), m.TotalKcal)
			return nil
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			meals, err := service.ListMyMeals(cmd.Context(), sqldb)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tKCAL\tC\tP\tF")
			for _, m := range meals {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", m.ID, m.Name, m.TotalKcal, m.TotalCarbs, m.TotalProtein, m.TotalFat)
			}
			return nil
		})
	},
}

var mealShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a saved meal and its items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			m, err := service.GetMyMeal(cmd.Context(), sqldb, id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %.0f kcal | C %.1fg | P %.1fg | F %.1fg\n", m.Name, m.TotalKcal, m.TotalCarbs, m.TotalProtein, m.TotalFat)
			for _, it := range m.Items {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\t%g %s\t%.0f kcal\n", it.Name, it.Amount, it.Unit, it.Kcal)
			}
			if m.Directions != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Directions: %s\n", m.Directions)
			}
			return nil
		})
	},
}

var (
	mealLogDate     string
	mealLogMeal     string
	mealLogServings float64
)

var mealLogCmd = &cobra.Command{
	Use:   "log <id>",
	Short: "Log a saved meal to the diary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		date, err := resolveDate(mealLogDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			e, err := service.LogMyMeal(cmd.Context(), sqldb, id, mealLogServings, date, model.MealType(mealLogMeal), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d: %s %.0f kcal (%s)\n", e.ID, e.DisplayName(), e.Kcal, e.MealType)
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("meal id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteMyMeal(cmd.Context(), sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal %d\n", id)
			return nil
		})
	},
}

// parseMealFood reads ID:AMOUNT[:UNIT]; the unit defaults to grams.
func parseMealFood(raw string) (service.MyMealItemInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return service.MyMealItemInput{}, fmt.Errorf("invalid --food %q (expected ID:AMOUNT[:UNIT])", raw)
	}
	id, err := parseInt64Arg("food id", parts[0])
	if err != nil {
		return service.MyMealItemInput{}, err
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return service.MyMealItemInput{}, fmt.Errorf("invalid amount in --food %q", raw)
	}
	it := service.MyMealItemInput{FoodID: &id, Amount: amount, Unit: "g"}
	if len(parts) == 3 {
		it.Unit = strings.TrimSpace(parts[2])
	}
	return it, nil
}

// parseMealItem reads NAME:KCAL[:CARBS:PROTEIN:FAT] as one serving.
func parseMealItem(raw string) (service.MyMealItemInput, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 5 {
		return service.MyMealItemInput{}, fmt.Errorf("invalid --item %q (expected NAME:KCAL[:CARBS:PROTEIN:FAT])", raw)
	}
	values := make([]float64, 4)
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return service.MyMealItemInput{}, fmt.Errorf("invalid number %q in --item %q", p, raw)
		}
		values[i] = v
	}
	return service.MyMealItemInput{
		Name:    strings.TrimSpace(parts[0]),
		Amount:  1,
		Unit:    "serving",
		Kcal:    values[0],
		Carbs:   values[1],
		Protein: values[2],
		Fat:     values[3],
	}, nil
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealCreateCmd, mealListCmd, mealShowCmd, mealLogCmd, mealDeleteCmd)

	f := mealCreateCmd.Flags()
	f.StringVar(&mealName, "name", "", "Meal name")
	f.StringVar(&mealDirections, "directions", "", "Preparation notes")
	f.StringVar(&mealPhoto, "photo", "", "Photo URI")
	f.StringArrayVar(&mealFoods, "food", nil, "Catalog food ID:AMOUNT[:UNIT] (repeatable)")
	f.StringArrayVar(&mealItems, "item", nil, "Hand-entered NAME:KCAL[:CARBS:PROTEIN:FAT] (repeatable)")
	_ = mealCreateCmd.MarkFlagRequired("name")

	mealLogCmd.Flags().StringVar(&mealLogDate, "date", "", "Date YYYY-MM-DD (default today)")
	mealLogCmd.Flags().StringVar(&mealLogMeal, "meal", "", "breakfast, lunch, dinner or snack")
	mealLogCmd.Flags().Float64Var(&mealLogServings, "servings", 1, "Servings")
	_ = mealLogCmd.MarkFlagRequired("meal")
}
