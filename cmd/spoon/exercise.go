package spoon

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var exerciseCmd = &cobra.Command{
	Use:   "exercise",
	Short: "Manage exercise logs",
}

var (
	exerciseName     string
	exerciseCategory string
	exerciseDuration int
	exerciseMET      float64
	exerciseDistance float64
	exerciseSets     int
	exerciseReps     int
	exerciseWeight   float64
	exerciseDate     string
	exerciseTime     string
)

var exerciseAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Log an exercise; calories use the current profile weight",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := service.ExerciseInput{
			Date:        exerciseDate,
			Time:        exerciseTime,
			Category:    model.ExerciseCategory(exerciseCategory),
			Name:        exerciseName,
			DurationMin: exerciseDuration,
			MET:         exerciseMET,
		}
		f := cmd.Flags()
		if f.Changed("distance") {
			in.DistanceKm = &exerciseDistance
		}
		if f.Changed("sets") {
			in.Sets = &exerciseSets
		}
		if f.Changed("reps") {
			in.Reps = &exerciseReps
		}
		if f.Changed("weight") {
			in.WeightKg = &exerciseWeight
		}
		return withDB(func(sqldb *sql.DB) error {
			e, err := service.CreateExercise(cmd.Context(), sqldb, in, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added exercise %d: %s %d min, %d kcal\n", e.ID, e.Name, e.DurationMin, e.Calories)
			return nil
		})
	},
}

var exerciseListDate string

var exerciseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List exercise logs for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := resolveDate(exerciseListDate)
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			items, err := service.ListExercisesForDate(cmd.Context(), sqldb, date)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tCATEGORY\tNAME\tDURATION_MIN\tKCAL\tMET")
			for _, e := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%d\t%d\t%.1f\n", e.ID, e.Time, e.Category, e.Name, e.DurationMin, e.Calories, e.MET)
			}
			return nil
		})
	},
}

var exerciseDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an exercise log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("exercise id", args[0])
		if err != nil {
			return err
		}
		return withDB(func(sqldb *sql.DB) error {
			if err := service.DeleteExercise(cmd.Context(), sqldb, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted exercise %d\n", id)
			return nil
		})
	},
}

var exerciseTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List built-in exercise types and their MET values",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "NAME\tCATEGORY\tMET")
		for _, t := range nutrition.ExerciseTypes() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%.1f\n", t.Name, t.Category, t.MET)
		}
	},
}

func init() {
	rootCmd.AddCommand(exerciseCmd)
	exerciseCmd.AddCommand(exerciseAddCmd, exerciseListCmd, exerciseDeleteCmd, exerciseTypesCmd)

	f := exerciseAddCmd.Flags()
	f.StringVar(&exerciseName, "name", "", "Exercise name, e.g. running (see `spoon exercise types`)")
	f.StringVar(&exerciseCategory, "category", "", "cardio or strength (default from the catalog)")
	f.IntVar(&exerciseDuration, "duration", 0, "Duration in minutes (5-300)")
	f.Float64Var(&exerciseMET, "met", 0, "Override the MET value")
	f.Float64Var(&exerciseDistance, "distance", 0, "Distance in km (cardio)")
	f.IntVar(&exerciseSets, "sets", 0, "Sets (strength)")
	f.IntVar(&exerciseReps, "reps", 0, "Reps per set (strength)")
	f.Float64Var(&exerciseWeight, "weight", 0, "Lifted weight in kg (strength)")
	f.StringVar(&exerciseDate, "date", "", "Date YYYY-MM-DD (default today)")
	f.StringVar(&exerciseTime, "time", "", "Time HH:MM")
	_ = exerciseAddCmd.MarkFlagRequired("name")
	_ = exerciseAddCmd.MarkFlagRequired("duration")

	exerciseListCmd.Flags().StringVar(&exerciseListDate, "date", "", "Date YYYY-MM-DD (default today)")
}
