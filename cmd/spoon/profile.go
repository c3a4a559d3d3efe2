package spoon

import (
	"database/sql"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show and edit body profile, goals and macro split",
}

var profileJSON bool

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show profile and computed goals",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			_, state, err := newState(cmd.Context(), sqldb)
			if err != nil {
				return err
			}
			defer closeState(cmd.Context(), state)
			p := state.Profile()
			if profileJSON {
				return printJSON(cmd.OutOrStdout(), p)
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

var (
	profSex         string
	profDOB         string
	profAge         int
	profHeight      float64
	profWeight      float64
	profStartWeight float64
	profGoalWeight  float64
	profActivity    string
	profWeeklyGoal  string
	profCarbs       int
	profProtein     int
	profFat         int
	profDraft       bool
)

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update profile fields and recompute goals",
	Long:  "Update profile fields and recompute goals. The macro split must total 100% unless --draft is set.",
	RunE: func(cmd *cobra.Command, args []string) error {
		u := profileUpdateFromFlags(cmd)
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			_, state, err := newState(ctx, sqldb)
			if err != nil {
				return err
			}
			defer closeState(ctx, state)
			if !profDraft {
				p, err := state.ConfirmProfile(ctx, u)
				if err != nil {
					return err
				}
				printProfile(cmd.OutOrStdout(), p)
				return nil
			}
			p, err := state.UpdateProfile(u)
			if err != nil {
				return err
			}
			if err := state.Flush(ctx); err != nil {
				return err
			}
			printProfile(cmd.OutOrStdout(), p)
			return nil
		})
	},
}

var profileBalanceCmd = &cobra.Command{
	Use:   "balance-macros",
	Short: "Adjust the macro split so it totals 100%",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDB(func(sqldb *sql.DB) error {
			ctx := cmd.Context()
			_, state, err := newState(ctx, sqldb)
			if err != nil {
				return err
			}
			defer closeState(ctx, state)
			split := state.BalanceMacros()
			if err := state.Flush(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Macros: C %d%% | P %d%% | F %d%%\n", split.CarbsPct, split.ProteinPct, split.FatPct)
			return nil
		})
	},
}

func profileUpdateFromFlags(cmd *cobra.Command) service.ProfileUpdate {
	var u service.ProfileUpdate
	f := cmd.Flags()
	if f.Changed("sex") {
		v := model.Sex(profSex)
		u.Sex = &v
	}
	if f.Changed("dob") {
		u.DateOfBirth = &profDOB
	}
	if f.Changed("age") {
		u.Age = &profAge
	}
	if f.Changed("height") {
		u.HeightCm = &profHeight
	}
	if f.Changed("weight") {
		u.WeightKg = &profWeight
	}
	if f.Changed("start-weight") {
		u.StartingWeightKg = &profStartWeight
	}
	if f.Changed("goal-weight") {
		u.GoalWeightKg = &profGoalWeight
	}
	if f.Changed("activity") {
		v := model.ActivityLevel(profActivity)
		u.ActivityLevel = &v
	}
	if f.Changed("weekly-goal") {
		v := model.WeeklyGoal(profWeeklyGoal)
		u.WeeklyGoal = &v
	}
	if f.Changed("carbs") {
		u.MacroCarbsPct = &profCarbs
	}
	if f.Changed("protein") {
		u.MacroProteinPct = &profProtein
	}
	if f.Changed("fat") {
		u.MacroFatPct = &profFat
	}
	return u
}

func printProfile(w io.Writer, p model.Profile) {
	split := service.MacroSplit(p)
	grams := split.Grams(p.CalorieGoal)
	fmt.Fprintf(w, "Sex: %s\n", p.Sex)
	if p.DateOfBirth != nil {
		fmt.Fprintf(w, "Date of birth: %s\n", p.DateOfBirth.Format("2006-01-02"))
	} else if p.Age != nil {
		fmt.Fprintf(w, "Age: %d\n", *p.Age)
	}
	fmt.Fprintf(w, "Height: %.1f cm\nWeight: %.1f kg\n", p.HeightCm, p.WeightKg)
	if p.GoalWeightKg > 0 {
		fmt.Fprintf(w, "Goal weight: %.1f kg\n", p.GoalWeightKg)
	}
	fmt.Fprintf(w, "Activity: %s\nWeekly goal: %s\n", p.ActivityLevel, p.WeeklyGoal)
	fmt.Fprintf(w, "BMR: %.0f kcal | TDEE: %.0f kcal\n", p.BMR, p.TDEE)
	fmt.Fprintf(w, "Daily goal: %d kcal\n", p.CalorieGoal)
	fmt.Fprintf(w, "Macros: C %d%% (%dg) | P %d%% (%dg) | F %d%% (%dg)\n",
		split.CarbsPct, grams.CarbsG, split.ProteinPct, grams.ProteinG, split.FatPct, grams.FatG)
	if split.Mismatch() {
		fmt.Fprintf(w, "Warning: macro split totals %d%%, run `spoon profile balance-macros`\n", split.Total())
	}
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd, profileSetCmd, profileBalanceCmd)

	profileShowCmd.Flags().BoolVar(&profileJSON, "json", false, "Print as JSON")

	f := profileSetCmd.Flags()
	f.StringVar(&profSex, "sex", "", "male or female")
	f.StringVar(&profDOB, "dob", "", "Date of birth YYYY-MM-DD (empty clears)")
	f.IntVar(&profAge, "age", 0, "Age in years, used when no date of birth is set")
	f.Float64Var(&profHeight, "height", 0, "Height in cm")
	f.Float64Var(&profWeight, "weight", 0, "Current weight in kg")
	f.Float64Var(&profStartWeight, "start-weight", 0, "Starting weight in kg")
	f.Float64Var(&profGoalWeight, "goal-weight", 0, "Goal weight in kg")
	f.StringVar(&profActivity, "activity", "", "sedentary, lightly_active, active or very_active")
	f.StringVar(&profWeeklyGoal, "weekly-goal", "", "lose_2, lose_1_5, lose_1, lose_0_5, maintain, gain_0_5 or gain_1")
	f.IntVar(&profCarbs, "carbs", 0, "Carbs % of calories")
	f.IntVar(&profProtein, "protein", 0, "Protein % of calories")
	f.IntVar(&profFat, "fat", 0, "Fat % of calories")
	f.BoolVar(&profDraft, "draft", false, "Save without checking the macro split")
}
