package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

func TestRunDoctorFindsAndFixesDrift(t *testing.T) {
	sqldb := newTestDB(t)
	ctx := context.Background()

	meal, err := service.CreateMyMeal(ctx, sqldb, service.MyMealInput{
		Name:  "Toast",
		Items: []service.MyMealItemInput{{Name: "Bread", Amount: 1, Unit: "slice", Kcal: 80, Carbs: 14, Protein: 3, Fat: 1}},
	}, testNow)
	if err != nil {
		t.Fatalf("create meal: %v", err)
	}
	if _, err := sqldb.Exec(`UPDATE my_meals SET total_kcal = 500 WHERE id = ?`, meal.ID); err != nil {
		t.Fatalf("corrupt totals: %v", err)
	}
	if _, err := sqldb.Exec(`
INSERT INTO barcode_cache(provider, barcode, food_json, fetched_at, expires_at)
VALUES('openfoodfacts', '12345678', '{}', ?, ?)`,
		testNow.Add(-60*24*time.Hour).Format(time.RFC3339), testNow.Add(-time.Hour).Format(time.RFC3339)); err != nil {
		t.Fatalf("insert expired cache row: %v", err)
	}

	report, err := service.RunDoctor(ctx, sqldb, false, testNow)
	if err != nil {
		t.Fatalf("doctor: %v", err)
	}
	if report.MealTotalMismatches != 1 || report.ExpiredCacheRows != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if report.Healthy() {
		t.Fatalf("expected unhealthy report")
	}

	report, err = service.RunDoctor(ctx, sqldb, true, testNow)
	if err != nil {
		t.Fatalf("doctor fix: %v", err)
	}
	if report.FixedRows != 2 {
		t.Fatalf("expected 2 fixed rows, got %+v", report)
	}

	report, err = service.RunDoctor(ctx, sqldb, false, testNow)
	if err != nil {
		t.Fatalf("doctor recheck: %v", err)
	}
	if !report.Healthy() || report.ExpiredCacheRows != 0 {
		t.Fatalf("expected clean report after fix, got %+v", report)
	}
	got, err := service.GetMyMeal(ctx, sqldb, meal.ID)
	if err != nil {
		t.Fatalf("get meal: %v", err)
	}
	if got.TotalKcal != 80 {
		t.Fatalf("expected recomputed total 80, got %v", got.TotalKcal)
	}
}
