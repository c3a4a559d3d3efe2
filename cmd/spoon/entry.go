package spoon

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage diary entries",
}

var (
	entryDate     string
	entryMeal     string
	entryFoodID   int64
	entryBarcode  string
	entryAmount   float64
	entryUnit     string
	entryName     string
	entryKcal     float64
	entryCarbs    float64
	entryProtein  float64
	entryFat      float64
	entryMealID   int64
	entryServings float64
)

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log a food, a scanned product, a saved meal or a quick-add entry",
	Long: `Log a diary entry. The flow is picked from the flags:
  --food-id     a catalog food scaled by --amount and --unit
  --barcode     a product resolved through the barcode providers
  --my-meal     a saved meal multiplied by --servings
  otherwise     a quick-add entry from --name and --kcal`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(entryDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			src, err := entrySource(cmd, sqldb)
			if err != nil {
				return err
			}
			e, err := service.LogEntry(cmd.Context(), sqldb, src, date, model.MealType(entryMeal), time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d: %s %.0f kcal (%s)\n", e.ID, e.DisplayName(), e.Kcal, e.MealType)
			return nil
		})
	},
}

func entrySource(cmd *cobra.Command, sqldb *sql.DB) (service.LogSource, error) {
	ctx := cmd.Context()
	switch {
	case cmd.Flags().Changed("food-id"):
		f, err := service.GetFood(ctx, sqldb, entryFoodID)
		if err != nil {
			return nil, err
		}
		return service.FromSearch{Food: f, Amount: entryAmount, Unit: entryUnit, CustomName: entryName}, nil
	case strings.TrimSpace(entryBarcode) != "":
		providers, err := barcodeProviders(ctx, sqldb)
		if err != nil {
			return nil, err
		}
		res, err := service.LookupBarcode(ctx, sqldb, providers, entryBarcode, time.Now())
		if err != nil {
			return nil, err
		}
		return service.FromBarcode{Barcode: entryBarcode, Food: res.Food, Amount: entryAmount, Unit: entryUnit}, nil
	case cmd.Flags().Changed("my-meal"):
		m, err := service.GetMyMeal(ctx, sqldb, entryMealID)
		if err != nil {
			return nil, err
		}
		return service.FromMyMeal{Meal: m, Servings: entryServings}, nil
	default:
		if !cmd.Flags().Changed("kcal") {
			return nil, fmt.Errorf("--kcal is required for a quick-add entry")
		}
		return service.Custom{Name: entryName, Kcal: entryKcal, Carbs: entryCarbs, Protein: entryProtein, Fat: entryFat}, nil
	}
}

var entryListDate string

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(entryListDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			entries, err := service.ListEntriesForDate(cmd.Context(), sqldb, date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tMEAL\tNAME\tAMOUNT\tKCAL\tC\tP\tF\tSOURCE")
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%g %s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\n",
					e.ID, e.MealType, e.DisplayName(), e.Amount, e.Unit, e.Kcal, e.Carbs, e.Protein, e.Fat, e.Source)
			}
			return nil
		})
	},
}

var (
	updateMeal   string
	updateAmount float64
	updateName   string
)

var entryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Move an entry, rescale its amount or rename it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		in := service.UpdateEntryInput{ID: id}
		if cmd.Flags().Changed("meal") {
			m := model.MealType(updateMeal)
			in.MealType = &m
		}
		if cmd.Flags().Changed("amount") {
			in.Amount = &updateAmount
		}
		if cmd.Flags().Changed("name") {
			in.CustomName = &updateName
		}
		if in.MealType == nil && in.Amount == nil && in.CustomName == nil {
			return fmt.Errorf("set at least one of --meal, --amount, --name")
		}
		return withDB(func(sqldb *sql.DB) error {
			e, err := service.UpdateEntry(cmd.Context(), sqldb, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d: %s %.0f kcal (%s)\n", e.ID, e.DisplayName(), e.Kcal, e.MealType)
			return nil
		})
	},
}

var entryDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteEntry(cmd.Context(), sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryListCmd, entryUpdateCmd, entryDeleteCmd)

	f := entryAddCmd.Flags()
	f.StringVar(&entryDate, "date", "", "Date YYYY-MM-DD (default today)")
	f.StringVar(&entryMeal, "meal", "", "breakfast, lunch, dinner or snack")
	f.Int64Var(&entryFoodID, "food-id", 0, "Catalog food id")
	f.StringVar(&entryBarcode, "barcode", "", "Product barcode")
	f.Int64Var(&entryMealID, "my-meal", 0, "Saved meal id")
	f.Float64Var(&entryServings, "servings", 1, "Servings of the saved meal")
	f.Float64Var(&entryAmount, "amount", 100, "Amount in --unit")
	f.StringVar(&entryUnit, "unit", "g", "Unit: g, kg, oz, lb, ml, l, cup, tbsp, tsp, serving")
	f.StringVar(&entryName, "name", "", "Quick-add name, or a display name for a catalog food")
	f.Float64Var(&entryKcal, "kcal", 0, "Quick-add calories")
	f.Float64Var(&entryCarbs, "carbs", 0, "Quick-add carbs in grams")
	f.Float64Var(&entryProtein, "protein", 0, "Quick-add protein in grams")
	f.Float64Var(&entryFat, "fat", 0, "Quick-add fat in grams")
	_ = entryAddCmd.MarkFlagRequired("meal")

	entryListCmd.Flags().StringVar(&entryListDate, "date", "", "Date YYYY-MM-DD (default today)")

	entryUpdateCmd.Flags().StringVar(&updateMeal, "meal", "", "breakfast, lunch, dinner or snack")
	entryUpdateCmd.Flags().Float64Var(&updateAmount, "amount", 0, "New amount, nutrition rescales")
	entryUpdateCmd.Flags().StringVar(&updateName, "name", "", "Display name")
}
