// Package diary assembles the daily summary shown on the home screen and by
// `spoon today`: intake per meal, exercise and step burn, remaining calories
// and ring state. Every read degrades independently so a failing table never
// blanks the whole day.
package diary

import (
	"context"
	"log/slog"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/result"
)

// StepSource reports the step count recorded for a day.
type StepSource interface {
	StepsForDate(ctx context.Context, date string) (int, error)
}

// Sources is the persistence side of the summary.
type Sources interface {
	StepSource
	Profile(ctx context.Context) (model.Profile, error)
	EntriesForDate(ctx context.Context, date string) ([]model.DiaryEntry, error)
	ExercisesForDate(ctx context.Context, date string) ([]model.ExerciseEntry, error)
}

type MealSummary struct {
	Meal    model.MealType     `json:"meal"`
	Totals  nutrition.Totals   `json:"totals"`
	Entries []model.DiaryEntry `json:"entries"`
}

type Summary struct {
	Date          string                `json:"date"`
	CalorieGoal   int                   `json:"calorie_goal"`
	Food          nutrition.Totals      `json:"food"`
	Meals         []MealSummary         `json:"meals"`
	Exercises     []model.ExerciseEntry `json:"exercises"`
	WorkoutKcal   int                   `json:"workout_kcal"`
	Steps         int                   `json:"steps"`
	StepKcal      int                   `json:"step_kcal"`
	ExerciseKcal  int                   `json:"exercise_kcal"`
	Remaining     float64               `json:"remaining"`
	Progress      float64               `json:"progress"`
	State         nutrition.RingState   `json:"state"`
	MacroSplit    nutrition.Split       `json:"macro_split"`
	SplitMismatch bool                  `json:"split_mismatch"`
	MacroTargets  nutrition.MacroGrams  `json:"macro_targets"`
	// Degraded names the reads that failed and fell back to defaults.
	Degraded []string `json:"degraded,omitempty"`
}

// DefaultProfile stands in when the stored profile cannot be read.
func DefaultProfile() model.Profile {
	p := model.Profile{
		Sex:             model.SexMale,
		ActivityLevel:   model.ActivityLightlyActive,
		WeeklyGoal:      model.WeeklyMaintain,
		MacroCarbsPct:   50,
		MacroProteinPct: 20,
		MacroFatPct:     30,
	}
	nutrition.ApplyGoals(&p, time.Time{})
	return p
}

// Build never fails. Each collaborator error is logged and recorded in
// Summary.Degraded while the rest of the summary is still computed.
func Build(ctx context.Context, src Sources, date string, logger *slog.Logger) Summary {
	if logger == nil {
		logger = slog.Default()
	}
	s := Summary{Date: date}

	p, err := src.Profile(ctx)
	profile := read(logger, &s, "profile", result.From(p, err, result.KindStorage), DefaultProfile())
	e, err := src.EntriesForDate(ctx, date)
	entries := read(logger, &s, "entries", result.From(e, err, result.KindStorage), []model.DiaryEntry{})
	x, err := src.ExercisesForDate(ctx, date)
	exercises := read(logger, &s, "exercises", result.From(x, err, result.KindStorage), []model.ExerciseEntry{})
	n, err := src.StepsForDate(ctx, date)
	steps := read(logger, &s, "steps", result.From(n, err, result.KindStorage), 0)

	goal := float64(profile.CalorieGoal)
	s.CalorieGoal = profile.CalorieGoal
	s.Food = nutrition.DailyTotals(entries)
	s.Meals = groupByMeal(entries)
	s.Exercises = exercises
	s.WorkoutKcal = nutrition.WorkoutCalories(exercises)
	s.Steps = steps
	s.StepKcal = nutrition.StepCalories(steps, profile.WeightKg)
	s.ExerciseKcal = nutrition.ExerciseCalories(exercises, steps, profile.WeightKg)
	s.Remaining = nutrition.Remaining(goal, s.Food.Kcal, float64(s.ExerciseKcal))
	s.Progress = nutrition.Progress(s.Food.Kcal, goal)
	s.State = nutrition.StateFor(s.Remaining)
	s.MacroSplit = nutrition.Split{CarbsPct: profile.MacroCarbsPct, ProteinPct: profile.MacroProteinPct, FatPct: profile.MacroFatPct}
	s.SplitMismatch = s.MacroSplit.Mismatch()
	s.MacroTargets = s.MacroSplit.Grams(profile.CalorieGoal)
	return s
}

func read[T any](logger *slog.Logger, s *Summary, name string, r result.Result[T], fallback T) T {
	if !r.Degraded() {
		return r.Value
	}
	logger.Warn("diary read degraded", "read", name, "date", s.Date, "kind", r.Kind.String(), "error", r.Err)
	s.Degraded = append(s.Degraded, name)
	return fallback
}

func groupByMeal(entries []model.DiaryEntry) []MealSummary {
	totals := nutrition.TotalsByMeal(entries)
	out := make([]MealSummary, 0, len(model.MealTypes))
	for _, m := range model.MealTypes {
		ms := MealSummary{Meal: m, Totals: totals[m], Entries: []model.DiaryEntry{}}
		for _, e := range entries {
			if e.MealType == m {
				ms.Entries = append(ms.Entries, e)
			}
		}
		out = append(out, ms)
	}
	return out
}
