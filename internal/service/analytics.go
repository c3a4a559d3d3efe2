package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
)

type MealBreakdown struct {
	Meal    model.MealType `json:"meal"`
	Kcal    float64        `json:"kcal"`
	Carbs   float64        `json:"carbs"`
	Protein float64        `json:"protein"`
	Fat     float64        `json:"fat"`
}

type DaySummary struct {
	Date         string  `json:"date"`
	Kcal         float64 `json:"kcal"`
	Carbs        float64 `json:"carbs"`
	Protein      float64 `json:"protein"`
	Fat          float64 `json:"fat"`
	ExerciseKcal int     `json:"exercise_kcal"`
	Steps        int     `json:"steps"`
	Remaining    float64 `json:"remaining"`
}

// WithinGoal reports whether the day ended with calories to spare.
func (d DaySummary) WithinGoal() bool {
	return d.Remaining >= 0
}

type AdherenceSummary struct {
	EvaluatedDays  int     `json:"evaluated_days"`
	WithinGoalDays int     `json:"within_goal_days"`
	PercentWithin  float64 `json:"percent_within_goal"`
	CurrentStreak  int     `json:"current_streak"`
	LongestStreak  int     `json:"longest_streak"`
}

type AnalyticsReport struct {
	FromDate        string           `json:"from_date"`
	ToDate          string           `json:"to_date"`
	CalorieGoal     int              `json:"calorie_goal"`
	Total           nutrition.Totals `json:"total"`
	Average         nutrition.Totals `json:"average"`
	DaysWithEntries int              `json:"days_with_entries"`
	HighestDay      *DaySummary      `json:"highest_day,omitempty"`
	LowestDay       *DaySummary      `json:"lowest_day,omitempty"`
	Adherence       AdherenceSummary `json:"adherence"`
	ByMeal          []MealBreakdown  `json:"by_meal"`
	Days            []DaySummary     `json:"days"`
}

// AnalyticsRange summarizes the diary between from and to inclusive. Days
// are judged against the current profile goal plus that day's exercise and
// step burn; days without entries are not evaluated.
func AnalyticsRange(ctx context.Context, db *sql.DB, from, to string, now time.Time) (*AnalyticsReport, error) {
	fromDay, err := time.Parse(dateLayout, from)
	if err != nil {
		return nil, invalid("from", "invalid date %q (expected YYYY-MM-DD)", from)
	}
	toDay, err := time.Parse(dateLayout, to)
	if err != nil {
		return nil, invalid("to", "invalid date %q (expected YYYY-MM-DD)", to)
	}
	if fromDay.After(toDay) {
		return nil, invalid("from", "from date must be <= to date")
	}

	p, err := GetProfile(ctx, db, now)
	if err != nil {
		return nil, err
	}
	report := &AnalyticsReport{FromDate: from, ToDate: to, CalorieGoal: p.CalorieGoal}

	days, err := loadDaySummaries(ctx, db, from, to)
	if err != nil {
		return nil, err
	}
	if err := addDayBurn(ctx, db, days, p.WeightKg); err != nil {
		return nil, err
	}
	for i := range days {
		d := &days[i]
		d.Remaining = nutrition.Remaining(float64(p.CalorieGoal), d.Kcal, float64(d.ExerciseKcal))
		report.Total = report.Total.Add(nutrition.Totals{Kcal: d.Kcal, Carbs: d.Carbs, Protein: d.Protein, Fat: d.Fat})
	}
	report.Days = days
	report.DaysWithEntries = len(days)
	if n := float64(len(days)); n > 0 {
		report.Average = nutrition.Totals{
			Kcal:    report.Total.Kcal / n,
			Carbs:   report.Total.Carbs / n,
			Protein: report.Total.Protein / n,
			Fat:     report.Total.Fat / n,
		}
		report.HighestDay, report.LowestDay = extremeDays(days)
	}
	report.Adherence = adherence(days)

	if report.ByMeal, err = loadMealBreakdown(ctx, db, from, to); err != nil {
		return nil, err
	}
	return report, nil
}

func loadDaySummaries(ctx context.Context, db *sql.DB, from, to string) ([]DaySummary, error) {
	rows, err := db.QueryContext(ctx, `
SELECT date, SUM(kcal), SUM(carbs), SUM(protein), SUM(fat)
FROM diary_entries
WHERE date >= ? AND date <= ?
GROUP BY date
ORDER BY date ASC
`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query day summaries: %w", err)
	}
	defer rows.Close()

	items := make([]DaySummary, 0)
	for rows.Next() {
		var d DaySummary
		if err := rows.Scan(&d.Date, &d.Kcal, &d.Carbs, &d.Protein, &d.Fat); err != nil {
			return nil, fmt.Errorf("scan day summary: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day summaries: %w", err)
	}
	return items, nil
}

func addDayBurn(ctx context.Context, db *sql.DB, days []DaySummary, weightKg float64) error {
	for i := range days {
		d := &days[i]
		var workouts int
		if err := db.QueryRowContext(ctx, `SELECT IFNULL(SUM(calories), 0) FROM exercise_entries WHERE date = ?`, d.Date).Scan(&workouts); err != nil {
			return fmt.Errorf("sum exercise for %s: %w", d.Date, err)
		}
		steps, err := StepsForDate(ctx, db, d.Date)
		if err != nil {
			return err
		}
		d.Steps = steps
		d.ExerciseKcal = workouts + nutrition.StepCalories(steps, weightKg)
	}
	return nil
}

func loadMealBreakdown(ctx context.Context, db *sql.DB, from, to string) ([]MealBreakdown, error) {
	rows, err := db.QueryContext(ctx, `
SELECT meal_type, SUM(kcal), SUM(carbs), SUM(protein), SUM(fat)
FROM diary_entries
WHERE date >= ? AND date <= ?
GROUP BY meal_type
ORDER BY SUM(kcal) DESC
`, from, to)
	if err != nil {
		return nil, fmt.Errorf("query meal breakdown: %w", err)
	}
	defer rows.Close()

	items := make([]MealBreakdown, 0)
	for rows.Next() {
		var m MealBreakdown
		if err := rows.Scan(&m.Meal, &m.Kcal, &m.Carbs, &m.Protein, &m.Fat); err != nil {
			return nil, fmt.Errorf("scan meal breakdown: %w", err)
		}
		items = append(items, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal breakdown: %w", err)
	}
	return items, nil
}

// adherence counts streaks over consecutive logged days; a gap in the
// calendar does not break a streak.
func adherence(days []DaySummary) AdherenceSummary {
	out := AdherenceSummary{EvaluatedDays: len(days)}
	run := 0
	for _, d := range days {
		if d.WithinGoal() {
			out.WithinGoalDays++
			run++
			if run > out.LongestStreak {
				out.LongestStreak = run
			}
			continue
		}
		run = 0
	}
	out.CurrentStreak = run
	if out.EvaluatedDays > 0 {
		out.PercentWithin = float64(out.WithinGoalDays) / float64(out.EvaluatedDays) * 100
	}
	return out
}

func extremeDays(days []DaySummary) (*DaySummary, *DaySummary) {
	if len(days) == 0 {
		return nil, nil
	}
	copied := make([]DaySummary, len(days))
	copy(copied, days)
	sort.SliceStable(copied, func(i, j int) bool {
		return copied[i].Kcal < copied[j].Kcal
	})
	low := copied[0]
	high := copied[len(copied)-1]
	return &high, &low
}
