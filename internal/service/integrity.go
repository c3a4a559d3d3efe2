package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type DoctorReport struct {
	DanglingEntryFoods  int  `json:"dangling_entry_foods"`
	OrphanMealItems     int  `json:"orphan_meal_items"`
	MealTotalMismatches int  `json:"meal_total_mismatches"`
	ExpiredCacheRows    int  `json:"expired_cache_rows"`
	SplitMismatch       bool `json:"split_mismatch"`
	FixedRows           int  `json:"fixed_rows,omitempty"`
}

// Healthy ignores expired cache rows; they are refetched on demand.
func (r DoctorReport) Healthy() bool {
	return r.DanglingEntryFoods == 0 && r.OrphanMealItems == 0 && r.MealTotalMismatches == 0 && !r.SplitMismatch
}

// RunDoctor counts rows that break the store's invariants. With fix set it
// recomputes drifted my-meal totals, drops orphan items and purges expired
// barcode cache rows. Entries pointing at a missing food keep their
// snapshot and are only reported.
func RunDoctor(ctx context.Context, db *sql.DB, fix bool, now time.Time) (DoctorReport, error) {
	var report DoctorReport
	checks := []struct {
		dest  *int
		query string
		args  []any
	}{
		{&report.DanglingEntryFoods, `
SELECT COUNT(1) FROM diary_entries e LEFT JOIN foods f ON f.id = e.food_id
WHERE e.food_id IS NOT NULL AND f.id IS NULL`, nil},
		{&report.OrphanMealItems, `
SELECT COUNT(1) FROM my_meal_items i LEFT JOIN my_meals m ON m.id = i.my_meal_id
WHERE m.id IS NULL`, nil},
		{&report.MealTotalMismatches, `
SELECT COUNT(1) FROM my_meals m
WHERE ABS(m.total_kcal - (SELECT IFNULL(SUM(kcal), 0) FROM my_meal_items WHERE my_meal_id = m.id)) > 0.5`, nil},
		{&report.ExpiredCacheRows, `SELECT COUNT(1) FROM barcode_cache WHERE expires_at < ?`,
			[]any{now.UTC().Format(time.RFC3339)}},
	}
	for _, c := range checks {
		if err := db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dest); err != nil {
			return report, fmt.Errorf("doctor check: %w", err)
		}
	}

	p, err := GetProfile(ctx, db, now)
	if err != nil {
		return report, fmt.Errorf("doctor profile check: %w", err)
	}
	report.SplitMismatch = MacroSplit(p).Mismatch()

	if !fix {
		return report, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return report, fmt.Errorf("doctor fix begin tx: %w", err)
	}
	defer tx.Rollback()
	fixes := []struct {
		query string
		args  []any
	}{
		{`DELETE FROM my_meal_items WHERE my_meal_id NOT IN (SELECT id FROM my_meals)`, nil},
		{`
UPDATE my_meals SET
  total_kcal = (SELECT IFNULL(SUM(kcal), 0) FROM my_meal_items WHERE my_meal_id = my_meals.id),
  total_carbs = (SELECT IFNULL(SUM(carbs), 0) FROM my_meal_items WHERE my_meal_id = my_meals.id),
  total_protein = (SELECT IFNULL(SUM(protein), 0) FROM my_meal_items WHERE my_meal_id = my_meals.id),
  total_fat = (SELECT IFNULL(SUM(fat), 0) FROM my_meal_items WHERE my_meal_id = my_meals.id)
WHERE ABS(total_kcal - (SELECT IFNULL(SUM(kcal), 0) FROM my_meal_items WHERE my_meal_id = my_meals.id)) > 0.5`, nil},
		{`DELETE FROM barcode_cache WHERE expires_at < ?`, []any{now.UTC().Format(time.RFC3339)}},
	}
	for _, f := range fixes {
		res, err := tx.ExecContext(ctx, f.query, f.args...)
		if err != nil {
			return report, fmt.Errorf("doctor fix: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return report, fmt.Errorf("doctor fix rows affected: %w", err)
		}
		report.FixedRows += int(n)
	}
	if err := tx.Commit(); err != nil {
		return report, fmt.Errorf("doctor fix commit: %w", err)
	}
	return report, nil
}
