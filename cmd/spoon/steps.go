package spoon

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Record pedometer step counts",
}

var stepsDate string

var stepsSetCmd = &cobra.Command{
	Use:   "set <steps>",
	Short: "Set the step count for a day",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid step count %q", args[0])
		}
		date, err := resolveDate(stepsDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.SetSteps(cmd.Context(), sqldb, date, steps, time.Now()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %d steps for %s\n", steps, date)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(stepsCmd)
	stepsCmd.AddCommand(stepsSetCmd)
	stepsSetCmd.Flags().StringVar(&stepsDate, "date", "", "Date YYYY-MM-DD (default today)")
}
