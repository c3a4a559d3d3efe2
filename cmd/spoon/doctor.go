package spoon

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var doctorFix bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			report, err := service.RunDoctor(ctx, sqldb, doctorFix, time.Now())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries with a missing food: %d\n", report.DanglingEntryFoods)
			fmt.Fprintf(out, "Orphan meal items: %d\n", report.OrphanMealItems)
			fmt.Fprintf(out, "Meals with drifted totals: %d\n", report.MealTotalMismatches)
			fmt.Fprintf(out, "Expired barcode cache rows: %d\n", report.ExpiredCacheRows)
			fmt.Fprintf(out, "Macro split mismatch: %t\n", report.SplitMismatch)
			if doctorFix {
				fmt.Fprintf(out, "Fixed rows: %d\n", report.FixedRows)
				// Re-check so the exit status reflects the final state.
				if report, err = service.RunDoctor(ctx, sqldb, false, time.Now()); err != nil {
					return err
				}
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Attempt safe auto-fixes")
}
