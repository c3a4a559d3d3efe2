package service_test

import (
	"context"
	"testing"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

func TestAnalyticsRangeTotalsAndAdherence(t *testing.T) {
	sqldb := newTestDB(t)
	ctx := context.Background()

	seed := []struct {
		date string
		meal model.MealType
		kcal float64
	}{
		{"2026-03-10", model.MealBreakfast, 500},
		{"2026-03-10", model.MealDinner, 700},
		{"2026-03-11", model.MealLunch, 3000},
		{"2026-03-12", model.MealDinner, 2700},
		{"2026-03-20", model.MealDinner, 100},
	}
	for _, s := range seed {
		if _, err := service.LogEntry(ctx, sqldb, service.Custom{Name: "Meal", Kcal: s.kcal, Carbs: s.kcal / 8}, s.date, s.meal, testNow); err != nil {
			t.Fatalf("seed %s: %v", s.date, err)
		}
	}
	if _, err := service.CreateExercise(ctx, sqldb, service.ExerciseInput{Date: "2026-03-12", Name: "jogging", DurationMin: 30}, testNow); err != nil {
		t.Fatalf("seed exercise: %v", err)
	}

	report, err := service.AnalyticsRange(ctx, sqldb, "2026-03-10", "2026-03-12", testNow)
	if err != nil {
		t.Fatalf("analytics range: %v", err)
	}
	if report.DaysWithEntries != 3 || report.Total.Kcal != 6900 || report.Average.Kcal != 2300 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.HighestDay == nil || report.HighestDay.Date != "2026-03-11" || report.LowestDay.Date != "2026-03-10" {
		t.Fatalf("unexpected extremes: high %+v low %+v", report.HighestDay, report.LowestDay)
	}

	last := report.Days[2]
	if last.ExerciseKcal != 245 {
		t.Fatalf("expected 245 kcal jogging burn, got %d", last.ExerciseKcal)
	}
	if last.Remaining != float64(report.CalorieGoal)-2700+245 {
		t.Fatalf("unexpected remaining %v for goal %d", last.Remaining, report.CalorieGoal)
	}

	a := report.Adherence
	if a.EvaluatedDays != 3 || a.WithinGoalDays != 2 || a.CurrentStreak != 1 || a.LongestStreak != 1 {
		t.Fatalf("unexpected adherence: %+v", a)
	}
	if len(report.ByMeal) != 3 || report.ByMeal[0].Meal != model.MealDinner || report.ByMeal[0].Kcal != 3400 {
		t.Fatalf("unexpected meal breakdown: %+v", report.ByMeal)
	}
}

func TestAnalyticsRangeValidation(t *testing.T) {
	sqldb := newTestDB(t)
	ctx := context.Background()

	if _, err := service.AnalyticsRange(ctx, sqldb, "2026-03-12", "2026-03-10", testNow); !service.IsValidation(err) {
		t.Fatalf("expected validation error for reversed range, got %v", err)
	}
	if _, err := service.AnalyticsRange(ctx, sqldb, "yesterday", "2026-03-10", testNow); !service.IsValidation(err) {
		t.Fatalf("expected validation error for bad date, got %v", err)
	}

	report, err := service.AnalyticsRange(ctx, sqldb, "2026-03-01", "2026-03-31", testNow)
	if err != nil {
		t.Fatalf("empty range: %v", err)
	}
	if report.DaysWithEntries != 0 || report.HighestDay != nil || report.Adherence.PercentWithin != 0 {
		t.Fatalf("expected empty report, got %+v", report)
	}
}
