package spoon

import (
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var foodCmd = &cobra.Command{
	Use:   "food",
	Short: "Search, create and look up foods",
}

var (
	foodSearchLimit int
	foodJSON        bool
)

var foodSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the local catalog and the configured providers",
	Long:  "Search the local catalog and the configured providers. Without a query the popular USDA and Open Food Facts foods are listed.",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			_, state, err := newState(ctx, sqldb)
			if err != nil {
				return err
			}
			defer closeState(ctx, state)
			limit := foodSearchLimit
			if limit <= 0 {
				if limit, err = service.SearchLimit(ctx, sqldb); err != nil {
					return err
				}
			}
			r, _ := state.Search(ctx, query, limit)
			if r.Degraded() {
				logger.Warn("search results are partial", "kind", r.Kind.String(), "error", r.Err)
			}
			if foodJSON {
				return printJSON(cmd.OutOrStdout(), r.Value)
			}
			printFoods(cmd.OutOrStdout(), r.Value)
			return nil
		})
	},
}

var foodShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a food",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("food id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			f, err := service.GetFood(cmd.Context(), sqldb, id)
			if err != nil {
				return err
			}
			if foodJSON {
				return printJSON(cmd.OutOrStdout(), f)
			}
			printFood(cmd.OutOrStdout(), f)
			return nil
		})
	},
}

var (
	newFoodName     string
	newFoodBrand    string
	newFoodKcal     float64
	newFoodCarbs    float64
	newFoodProtein  float64
	newFoodFat      float64
	newFoodFiber    float64
	newFoodSugar    float64
	newFoodSodium   float64
	newFoodServing  string
	newFoodGrams    float64
	newFoodBarcode  string
	newFoodCategory string
)

var foodAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a custom food (values per 100 g)",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.CustomFoodInput{
			Name:         newFoodName,
			Brand:        newFoodBrand,
			Carbs:        newFoodCarbs,
			Protein:      newFoodProtein,
			Fat:          newFoodFat,
			Fiber:        newFoodFiber,
			Sugar:        newFoodSugar,
			Sodium:       newFoodSodium,
			ServingLabel: newFoodServing,
			Barcode:      newFoodBarcode,
			Category:     newFoodCategory,
		}
		if cmd.Flags().Changed("kcal") {
			in.Kcal = &newFoodKcal
		}
		if cmd.Flags().Changed("grams-per-serving") {
			in.GramsPerServing = &newFoodGrams
		}
		return withDB(func(sqldb *sql.DB) error {
			f, err := service.CreateCustomFood(cmd.Context(), sqldb, in, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added food %d: %s\n", f.ID, f.Name)
			return nil
		})
	},
}

var foodBarcodeCmd = &cobra.Command{
	Use:   "barcode <code>",
	Short: "Look up a product by barcode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			providers, err := barcodeProviders(ctx, sqldb)
			if err != nil {
				return err
			}
			res, err := service.LookupBarcode(ctx, sqldb, providers, args[0], time.Now())
			if err != nil {
				return err
			}
			if foodJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			origin := "live"
			if res.FromCache {
				origin = "cache"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider: %s (%s)\n", res.Provider, origin)
			printFood(cmd.OutOrStdout(), res.Food)
			return nil
		})
	},
}

var foodCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the barcode lookup cache",
}

var (
	cacheProvider string
	cacheBarcode  string
	cacheLimit    int
)

var foodCacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached barcode lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListBarcodeCache(cmd.Context(), sqldb, cacheProvider, cacheLimit)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "PROVIDER\tBARCODE\tNAME\tEXPIRES")
			for _, it := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\n", it.Provider, it.Barcode, it.Name, it.ExpiresAt.Local().Format("2006-01-02"))
			}
			return nil
		})
	},
}

var foodCachePurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Remove cached barcode lookups",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			n, err := service.PurgeBarcodeCache(cmd.Context(), sqldb, cacheProvider, cacheBarcode)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Purged %d cache row(s)\n", n)
			return nil
		})
	},
}

func printFoods(w io.Writer, foods []model.Food) {
	fmt.Fprintln(w, "ID\tSOURCE\tNAME\tBRAND\tKCAL/100G\tC\tP\tF")
	for _, f := range foods {
		id := "-"
		if f.ID > 0 {
			id = fmt.Sprint(f.ID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f\t%.1f\t%.1f\t%.1f\n", id, f.Source, f.Name, f.Brand,
			f.KcalPer100g, f.CarbsPer100g, f.ProteinPer100g, f.FatPer100g)
	}
}

func printFood(w io.Writer, f model.Food) {
	if f.ID > 0 {
		fmt.Fprintf(w, "ID: %d\n", f.ID)
	}
	fmt.Fprintf(w, "Food: %s\n", f.Name)
	if f.Brand != "" {
		fmt.Fprintf(w, "Brand: %s\n", f.Brand)
	}
	if f.Barcode != "" {
		fmt.Fprintf(w, "Barcode: %s\n", f.Barcode)
	}
	fmt.Fprintf(w, "Source: %s\n", f.Source)
	fmt.Fprintf(w, "Per 100 g: %.0f kcal | C %.1fg | P %.1fg | F %.1fg\n", f.KcalPer100g, f.CarbsPer100g, f.ProteinPer100g, f.FatPer100g)
	if f.GramsPerServing != nil {
		fmt.Fprintf(w, "Serving: %s (%.0f g)\n", f.ServingLabel, *f.GramsPerServing)
	}
}

func init() {
	rootCmd.AddCommand(foodCmd)
	foodCmd.AddCommand(foodSearchCmd, foodShowCmd, foodAddCmd, foodBarcodeCmd, foodCacheCmd)
	foodCacheCmd.AddCommand(foodCacheListCmd, foodCachePurgeCmd)

	foodSearchCmd.Flags().IntVar(&foodSearchLimit, "limit", 0, "Maximum results (default from config, 20)")
	for _, c := range []*cobra.Command{foodSearchCmd, foodShowCmd, foodBarcodeCmd} {
		c.Flags().BoolVar(&foodJSON, "json", false, "Print as JSON")
	}

	f := foodAddCmd.Flags()
	f.StringVar(&newFoodName, "name", "", "Food name")
	f.StringVar(&newFoodBrand, "brand", "", "Brand")
	f.Float64Var(&newFoodKcal, "kcal", 0, "Calories per 100 g")
	f.Float64Var(&newFoodCarbs, "carbs", 0, "Carbs per 100 g")
	f.Float64Var(&newFoodProtein, "protein", 0, "Protein per 100 g")
	f.Float64Var(&newFoodFat, "fat", 0, "Fat per 100 g")
	f.Float64Var(&newFoodFiber, "fiber", 0, "Fiber per 100 g")
	f.Float64Var(&newFoodSugar, "sugar", 0, "Sugar per 100 g")
	f.Float64Var(&newFoodSodium, "sodium", 0, "Sodium per 100 g")
	f.StringVar(&newFoodServing, "serving", "", "Serving label, e.g. \"1 bar\"")
	f.Float64Var(&newFoodGrams, "grams-per-serving", 0, "Grams in one serving")
	f.StringVar(&newFoodBarcode, "barcode", "", "Product barcode")
	f.StringVar(&newFoodCategory, "category", "", "Category")

	foodCacheListCmd.Flags().StringVar(&cacheProvider, "provider", "", "Only this provider")
	foodCacheListCmd.Flags().IntVar(&cacheLimit, "limit", 100, "Maximum rows")
	foodCachePurgeCmd.Flags().StringVar(&cacheProvider, "provider", "", "Only this provider")
	foodCachePurgeCmd.Flags().StringVar(&cacheBarcode, "barcode", "", "Only this barcode")
}
