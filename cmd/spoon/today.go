package spoon

import (
	"database/sql"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/diary"
)

var (
	todayDate string
	todayJSON bool
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's intake, exercise and remaining calories",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(todayDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			_, state, err := newState(ctx, sqldb)
			if err != nil {
				return err
			}
			defer closeState(ctx, state)
			sum := state.Today(ctx, date)
			if todayJSON {
				return printJSON(cmd.OutOrStdout(), sum)
			}
			printSummary(cmd.OutOrStdout(), sum)
			return nil
		})
	},
}

func printSummary(w io.Writer, s diary.Summary) {
	fmt.Fprintf(w, "Date: %s\n", s.Date)
	fmt.Fprintf(w, "Goal: %d kcal\n", s.CalorieGoal)
	fmt.Fprintf(w, "Food: %.0f kcal | C %.1fg | P %.1fg | F %.1fg\n", s.Food.Kcal, s.Food.Carbs, s.Food.Protein, s.Food.Fat)
	for _, m := range s.Meals {
		if len(m.Entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "  %s: %.0f kcal\n", m.Meal, m.Totals.Kcal)
		for _, e := range m.Entries {
			fmt.Fprintf(w, "    %s\t%.0f kcal\n", e.DisplayName(), e.Kcal)
		}
	}
	fmt.Fprintf(w, "Exercise: %d kcal (workouts %d, %d steps %d)\n", s.ExerciseKcal, s.WorkoutKcal, s.Steps, s.StepKcal)
	fmt.Fprintf(w, "Remaining: %.0f kcal [%s, %.0f%%]\n", s.Remaining, s.State, s.Progress*100)
	fmt.Fprintf(w, "Macro targets: C %dg | P %dg | F %dg\n", s.MacroTargets.CarbsG, s.MacroTargets.ProteinG, s.MacroTargets.FatG)
	if s.SplitMismatch {
		fmt.Fprintf(w, "Warning: macro split totals %d%%\n", s.MacroSplit.Total())
	}
	if len(s.Degraded) > 0 {
		fmt.Fprintf(w, "Warning: could not read %s; showing defaults\n", strings.Join(s.Degraded, ", "))
	}
}

func init() {
	rootCmd.AddCommand(todayCmd)
	todayCmd.Flags().StringVar(&todayDate, "date", "", "Date YYYY-MM-DD (default today)")
	todayCmd.Flags().BoolVar(&todayJSON, "json", false, "Print as JSON")
}
