package spoon

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var (
	reportFrom string
	reportTo   string
	reportDays int
	reportJSON bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize intake and goal adherence over a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := resolveDate(reportTo)
		if err != nil {
			return err
		}
		from := reportFrom
		if from == "" {
			if reportDays <= 0 {
				return fmt.Errorf("--days must be > 0")
			}
			end, _ := time.Parse("2006-01-02", to)
			from = end.AddDate(0, 0, -(reportDays - 1)).Format("2006-01-02")
		}
		return withDB(func(sqldb *sql.DB) error {
			r, err := service.AnalyticsRange(cmd.Context(), sqldb, from, to, time.Now())
			if err != nil {
				return err
			}
			if reportJSON {
				return printJSON(cmd.OutOrStdout(), r)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Range: %s to %s (%d logged days)\n", r.FromDate, r.ToDate, r.DaysWithEntries)
			fmt.Fprintf(out, "Goal: %d kcal/day\n", r.CalorieGoal)
			fmt.Fprintf(out, "Average: %.0f kcal | C %.1fg | P %.1fg | F %.1fg\n", r.Average.Kcal, r.Average.Carbs, r.Average.Protein, r.Average.Fat)
			if r.HighestDay != nil {
				fmt.Fprintf(out, "Highest: %s %.0f kcal\nLowest: %s %.0f kcal\n", r.HighestDay.Date, r.HighestDay.Kcal, r.LowestDay.Date, r.LowestDay.Kcal)
			}
			a := r.Adherence
			fmt.Fprintf(out, "Within goal: %d/%d days (%.0f%%), streak %d, best %d\n", a.WithinGoalDays, a.EvaluatedDays, a.PercentWithin, a.CurrentStreak, a.LongestStreak)
			for _, m := range r.ByMeal {
				fmt.Fprintf(out, "  %s\t%.0f kcal\n", m.Meal, m.Kcal)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date YYYY-MM-DD (default --days before --to)")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date YYYY-MM-DD (default today)")
	reportCmd.Flags().IntVar(&reportDays, "days", 7, "Range length when --from is empty")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Print as JSON")
}
