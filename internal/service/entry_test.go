package service_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

func TestEntryCRUD(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	created, err := service.CreateEntry(ctx, db, service.CreateEntryInput{
		Date:     "2026-03-14",
		MealType: model.MealBreakfast,
		FoodName: "Oatmeal",
		Amount:   2,
		Unit:     "serving",
		Kcal:     300,
		Carbs:    54,
		Protein:  10,
		Fat:      5,
	}, testNow)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if created.Source != model.EntrySourceCustom {
		t.Fatalf("expected default source custom, got %q", created.Source)
	}

	items, err := service.ListEntriesForDate(ctx, db, "2026-03-14")
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(items) != 1 || items[0].FoodName != "Oatmeal" || items[0].Kcal != 300 {
		t.Fatalf("unexpected entries: %+v", items)
	}

	amount := 1.0
	lunch := model.MealLunch
	updated, err := service.UpdateEntry(ctx, db, service.UpdateEntryInput{ID: created.ID, Amount: &amount, MealType: &lunch})
	if err != nil {
		t.Fatalf("update entry: %v", err)
	}
	if updated.Kcal != 150 || updated.Carbs != 27 || updated.MealType != model.MealLunch {
		t.Fatalf("expected halved nutrition at lunch, got %+v", updated)
	}

	if err := service.DeleteEntry(ctx, db, created.ID); err != nil {
		t.Fatalf("delete entry: %v", err)
	}
	if err := service.DeleteEntry(ctx, db, created.ID); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
	if _, err := service.GetEntry(ctx, db, created.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	cases := []struct {
		name  string
		in    service.CreateEntryInput
		field string
	}{
		{"missing name", service.CreateEntryInput{MealType: model.MealLunch, Amount: 1}, "food_name"},
		{"bad meal", service.CreateEntryInput{FoodName: "x", MealType: "brunch", Amount: 1}, "meal_type"},
		{"negative kcal", service.CreateEntryInput{FoodName: "x", MealType: model.MealLunch, Amount: 1, Kcal: -1}, "kcal"},
		{"zero amount", service.CreateEntryInput{FoodName: "x", MealType: model.MealLunch}, "amount"},
		{"bad date", service.CreateEntryInput{FoodName: "x", MealType: model.MealLunch, Amount: 1, Date: "14/03/2026"}, "date"},
	}
	for _, tc := range cases {
		_, err := service.CreateEntry(ctx, db, tc.in, testNow)
		var verr *service.ValidationError
		if !errors.As(err, &verr) || verr.Field != tc.field {
			t.Fatalf("%s: expected %s validation error, got %v", tc.name, tc.field, err)
		}
	}
}

func TestCreateEntryDefaultsToToday(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e, err := service.CreateEntry(context.Background(), db, service.CreateEntryInput{
		MealType: model.MealSnack, CustomName: "Cookie", Amount: 1, Kcal: 80,
	}, testNow)
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if e.Date != "2026-03-14" || e.FoodName != "Cookie" {
		t.Fatalf("unexpected entry: %+v", e)
	}
}

func TestLogSourcesProjectCanonicalEntries(t *testing.T) {
	t.Parallel()
	grams := 40.0
	food := model.Food{ID: 7, Name: "Granola", KcalPer100g: 450, CarbsPer100g: 60, ProteinPer100g: 10, FatPer100g: 20, GramsPerServing: &grams}

	cases := []struct {
		name   string
		src    service.LogSource
		source model.EntrySource
		kcal   float64
	}{
		{"search grams", service.FromSearch{Food: food, Amount: 50, Unit: "g"}, model.EntrySourceDatabase, 225},
		{"search servings", service.FromSearch{Food: food, Amount: 2, Unit: "serving"}, model.EntrySourceDatabase, 360},
		{"scan", service.FromScan{Food: food, Amount: 100}, model.EntrySourceScan, 450},
		{"barcode", service.FromBarcode{Barcode: "0123456789012", Food: food, Amount: 1, Unit: "serving"}, model.EntrySourceScan, 180},
		{"my meal", service.FromMyMeal{Meal: model.MyMeal{Name: "Bowl", TotalKcal: 500}, Servings: 1.5}, model.EntrySourceMyMeal, 750},
		{"custom", service.Custom{Name: "Latte", Kcal: 120}, model.EntrySourceCustom, 120},
	}
	for _, tc := range cases {
		in, err := service.ProjectEntry(tc.src, "2026-03-14", model.MealBreakfast, testNow)
		if err != nil {
			t.Fatalf("%s: project: %v", tc.name, err)
		}
		if in.Source != tc.source {
			t.Fatalf("%s: expected source %q, got %q", tc.name, tc.source, in.Source)
		}
		if math.Abs(in.Kcal-tc.kcal) > 1e-9 {
			t.Fatalf("%s: expected %.1f kcal, got %.4f", tc.name, tc.kcal, in.Kcal)
		}
	}
}

func TestLogSourceRejectsInvalidInput(t *testing.T) {
	t.Parallel()
	food := model.Food{Name: "Chips", KcalPer100g: 530}
	bad := []service.LogSource{
		service.FromBarcode{Barcode: "12ab", Food: food, Amount: 1},
		service.FromSearch{Food: food, Amount: 1, Unit: "handful"},
		service.FromSearch{Food: food, Amount: 0, Unit: "g"},
		service.FromMyMeal{Meal: model.MyMeal{Name: "x"}, Servings: -1},
		service.Custom{Kcal: 100},
	}
	for i, src := range bad {
		if _, err := service.ProjectEntry(src, "", model.MealSnack, testNow); !service.IsValidation(err) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

func TestLogEntryPersistsSnapshot(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	food, err := service.CreateCustomFood(ctx, db, service.CustomFoodInput{Name: "Trail mix", Kcal: floatPtr(500), Fat: 30}, testNow)
	if err != nil {
		t.Fatalf("create food: %v", err)
	}
	e, err := service.LogEntry(ctx, db, service.FromSearch{Food: food, Amount: 30, Unit: "g"}, "2026-03-14", model.MealSnack, testNow)
	if err != nil {
		t.Fatalf("log entry: %v", err)
	}
	if e.FoodID == nil || *e.FoodID != food.ID || math.Abs(e.Kcal-150) > 1e-9 || math.Abs(e.Fat-9) > 1e-9 {
		t.Fatalf("unexpected logged entry: %+v", e)
	}
}
