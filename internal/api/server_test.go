package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/api"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/db"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/diary"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/foodsearch"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/session"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

type fakeBarcode struct {
	food model.Food
}

func (f fakeBarcode) Name() string { return "openfoodfacts" }

func (f fakeBarcode) LookupBarcode(_ context.Context, code string) (model.Food, error) {
	if code != f.food.Barcode {
		return model.Food{}, errors.New("product not found")
	}
	return f.food, nil
}

// setupServer wires a server over a fresh database with no search providers,
// so searches are answered from the local catalog.
func setupServer(t *testing.T) (http.Handler, *service.Store) {
	t.Helper()
	h, store, _ := setupServerState(t)
	return h, store
}

func setupServerState(t *testing.T) (http.Handler, *service.Store, *session.State) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	sqldb, err := db.Open(filepath.Join(t.TempDir(), "spoon.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(sqldb); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}

	store := service.NewStore(sqldb)
	store.Now = func() time.Time { return testNow }
	state := session.New(context.Background(), store, &foodsearch.Aggregator{Catalog: store}, session.Options{
		SaveDelay: time.Hour,
		Now:       store.Now,
	})
	t.Cleanup(func() {
		_ = state.Close(context.Background())
		_ = sqldb.Close()
	})

	srv := &api.Server{
		Store: store,
		State: state,
		Barcode: []service.BarcodeProvider{fakeBarcode{food: model.Food{
			Name: "Oat Drink", Brand: "Oatly", KcalPer100g: 46, CarbsPer100g: 6.6,
			ProteinPer100g: 1, FatPer100g: 1.5, Source: model.FoodSourceOFF, Barcode: "7394376616037",
		}}},
	}
	return srv.Handler(), store, state
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHealthSetsRequestID(t *testing.T) {
	h, _ := setupServer(t)
	w := doRequest(h, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestSearchFallsBackToLocalCatalog(t *testing.T) {
	h, _ := setupServer(t)
	w := doRequest(h, http.MethodGet, "/api/foods/search?q=banana", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Query string       `json:"query"`
		Foods []model.Food `json:"foods"`
	}
	decode(t, w, &resp)
	if resp.Query != "banana" || len(resp.Foods) == 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.Foods[0].Name != "Banana, raw" {
		t.Fatalf("expected Banana, raw first, got %q", resp.Foods[0].Name)
	}

	if w := doRequest(h, http.MethodGet, "/api/foods/search?q=banana&limit=zero", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", w.Code)
	}
}

func TestLogEntryShowsInDiary(t *testing.T) {
	h, store := setupServer(t)
	foods, err := store.MatchFoods(context.Background(), "banana", 1)
	if err != nil || len(foods) != 1 {
		t.Fatalf("match banana: %v %v", foods, err)
	}

	body := `{"date":"2026-03-14","meal_type":"breakfast","food_id":` +
		jsonInt(foods[0].ID) + `,"amount":200,"unit":"g"}`
	w := doRequest(h, http.MethodPost, "/api/entries", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var entry model.DiaryEntry
	decode(t, w, &entry)
	if entry.Kcal != 178 || entry.Source != model.EntrySourceDatabase {
		t.Fatalf("unexpected entry: %+v", entry)
	}

	w = doRequest(h, http.MethodPost, "/api/entries",
		`{"date":"2026-03-14","meal_type":"snack","name":"Coffee","kcal":5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for quick add, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(h, http.MethodGet, "/api/diary/2026-03-14", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var sum diary.Summary
	decode(t, w, &sum)
	if sum.Food.Kcal != 183 {
		t.Fatalf("expected 183 kcal eaten, got %v", sum.Food.Kcal)
	}
	if sum.Remaining != float64(sum.CalorieGoal)-183 {
		t.Fatalf("remaining %v does not match goal %d", sum.Remaining, sum.CalorieGoal)
	}
	if len(sum.Degraded) != 0 {
		t.Fatalf("unexpected degraded reads: %v", sum.Degraded)
	}

	w = doRequest(h, http.MethodPatch, "/api/entries/"+jsonInt(entry.ID), `{"amount":100,"meal_type":"lunch"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var updated model.DiaryEntry
	decode(t, w, &updated)
	if updated.Kcal != 89 || updated.MealType != model.MealLunch {
		t.Fatalf("unexpected update: %+v", updated)
	}

	if w := doRequest(h, http.MethodDelete, "/api/entries/"+jsonInt(entry.ID), ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	// Deleting again is not an error.
	if w := doRequest(h, http.MethodDelete, "/api/entries/"+jsonInt(entry.ID), ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected idempotent 204, got %d", w.Code)
	}
}

func TestCreateEntryValidation(t *testing.T) {
	h, _ := setupServer(t)

	w := doRequest(h, http.MethodPost, "/api/entries", `{"date":"2026-03-14","meal_type":"brunch","name":"Toast","kcal":80}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	decode(t, w, &resp)
	if resp["field"] != "meal_type" {
		t.Fatalf("expected meal_type field, got %v", resp)
	}

	w = doRequest(h, http.MethodPost, "/api/entries", `{"date":"2026-03-14","meal_type":"lunch","food_id":9999,"amount":1,"unit":"g"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown food, got %d", w.Code)
	}

	w = doRequest(h, http.MethodPost, "/api/entries", `{"date":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", w.Code)
	}
}

func TestProfileEditAndSync(t *testing.T) {
	h, store := setupServer(t)

	w := doRequest(h, http.MethodPut, "/api/profile", `{"macro_c":60}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Profile       model.Profile `json:"profile"`
		SplitMismatch bool          `json:"split_mismatch"`
	}
	decode(t, w, &resp)
	if !resp.SplitMismatch {
		t.Fatalf("expected a split mismatch for 60/20/30")
	}

	// The explicit save refuses a split that does not total 100.
	if w := doRequest(h, http.MethodPost, "/api/users/sync", ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}

	if w := doRequest(h, http.MethodPost, "/api/profile/macros/balance", ""); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	w = doRequest(h, http.MethodPost, "/api/users/sync", `{"weight_kg":82}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	decode(t, w, &resp)
	if resp.SplitMismatch {
		t.Fatalf("expected a balanced split, got %+v", resp.Profile)
	}

	saved, err := store.Profile(context.Background())
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if saved.WeightKg != 82 {
		t.Fatalf("expected saved weight 82, got %v", saved.WeightKg)
	}
	if saved.MacroCarbsPct+saved.MacroProteinPct+saved.MacroFatPct != 100 {
		t.Fatalf("expected saved split to total 100, got %+v", saved)
	}
}

func TestRejectedSyncLeavesProfileUntouched(t *testing.T) {
	h, store, state := setupServerState(t)
	ctx := context.Background()
	before, err := store.Profile(ctx)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}

	w := doRequest(h, http.MethodPost, "/api/users/sync", `{"macro_c":70,"macro_p":30,"macro_f":30}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", w.Code, w.Body.String())
	}
	if err := state.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	saved, err := store.Profile(ctx)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if saved.MacroCarbsPct != before.MacroCarbsPct || saved.MacroProteinPct != before.MacroProteinPct || saved.MacroFatPct != before.MacroFatPct {
		t.Fatalf("rejected split was stored: before %+v after %+v", before, saved)
	}

	var resp struct {
		SplitMismatch bool `json:"split_mismatch"`
	}
	decode(t, doRequest(h, http.MethodGet, "/api/profile", ""), &resp)
	if resp.SplitMismatch {
		t.Fatalf("rejected split leaked into the working profile")
	}
}

func TestDiaryUsesEditedGoalBeforeSave(t *testing.T) {
	h, store := setupServer(t)

	w := doRequest(h, http.MethodPut, "/api/profile", `{"weekly_goal":"lose_2"}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Profile model.Profile `json:"profile"`
	}
	decode(t, w, &resp)

	saved, err := store.Profile(context.Background())
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if saved.CalorieGoal == resp.Profile.CalorieGoal {
		t.Fatalf("expected the edit to still be pending, store already has %d", saved.CalorieGoal)
	}

	var sum diary.Summary
	decode(t, doRequest(h, http.MethodGet, "/api/diary/2026-03-14", ""), &sum)
	if sum.CalorieGoal != resp.Profile.CalorieGoal {
		t.Fatalf("diary goal %d, edited goal %d", sum.CalorieGoal, resp.Profile.CalorieGoal)
	}
}

func TestBarcodeLookupCachesProduct(t *testing.T) {
	h, _ := setupServer(t)

	w := doRequest(h, http.MethodGet, "/api/foods/barcode/7394376616037", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res service.BarcodeLookupResult
	decode(t, w, &res)
	if res.Provider != "openfoodfacts" || res.Food.ID == 0 {
		t.Fatalf("unexpected lookup: %+v", res)
	}

	// The stored product now answers locally.
	w = doRequest(h, http.MethodGet, "/api/foods/barcode/7394376616037", "")
	decode(t, w, &res)
	if res.Provider != "local" {
		t.Fatalf("expected local hit, got %q", res.Provider)
	}

	if w := doRequest(h, http.MethodGet, "/api/foods/barcode/12", ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for short code, got %d", w.Code)
	}
	if w := doRequest(h, http.MethodGet, "/api/foods/barcode/00000000", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown code, got %d", w.Code)
	}
}

func TestMyMealLifecycle(t *testing.T) {
	h, _ := setupServer(t)

	w := doRequest(h, http.MethodPost, "/api/my-meals", `{"name":"Snack plate","items":[
		{"name":"Crackers","amount":30,"unit":"g","kcal":130,"carbs":20,"protein":3,"fat":4},
		{"name":"Cheese","amount":20,"unit":"g","kcal":80,"carbs":0,"protein":5,"fat":7}]}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var meal model.MyMeal
	decode(t, w, &meal)
	if meal.TotalKcal != 210 || len(meal.Items) != 2 {
		t.Fatalf("unexpected meal: %+v", meal)
	}

	w = doRequest(h, http.MethodPost, "/api/my-meals/"+jsonInt(meal.ID)+"/log",
		`{"date":"2026-03-14","meal_type":"snack","servings":0.5}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var entry model.DiaryEntry
	decode(t, w, &entry)
	if entry.Kcal != 105 || entry.Source != model.EntrySourceMyMeal {
		t.Fatalf("unexpected logged meal: %+v", entry)
	}

	w = doRequest(h, http.MethodGet, "/api/my-meals", "")
	var meals []model.MyMeal
	decode(t, w, &meals)
	if len(meals) != 1 {
		t.Fatalf("expected 1 meal, got %d", len(meals))
	}

	if w := doRequest(h, http.MethodDelete, "/api/my-meals/"+jsonInt(meal.ID), ""); w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if w := doRequest(h, http.MethodDelete, "/api/my-meals/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestExerciseAndStepsReduceRemaining(t *testing.T) {
	h, _ := setupServer(t)

	w := doRequest(h, http.MethodPost, "/api/exercises",
		`{"date":"2026-03-14","category":"cardio","name":"Running","duration_min":30}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var ex model.ExerciseEntry
	decode(t, w, &ex)
	if ex.Calories <= 0 {
		t.Fatalf("expected a positive burn, got %+v", ex)
	}

	if w := doRequest(h, http.MethodPut, "/api/steps/2026-03-14", `{"steps":8000}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := doRequest(h, http.MethodPut, "/api/steps/2026-03-14", `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without steps, got %d", w.Code)
	}

	w = doRequest(h, http.MethodGet, "/api/diary/2026-03-14", "")
	var sum diary.Summary
	decode(t, w, &sum)
	if sum.Steps != 8000 || sum.StepKcal <= 0 {
		t.Fatalf("unexpected steps: %+v", sum)
	}
	if sum.ExerciseKcal != sum.WorkoutKcal+sum.StepKcal || sum.WorkoutKcal != ex.Calories {
		t.Fatalf("unexpected exercise totals: %+v", sum)
	}
	if sum.Remaining != float64(sum.CalorieGoal+sum.ExerciseKcal) {
		t.Fatalf("expected remaining to include the burn, got %v", sum.Remaining)
	}

	w = doRequest(h, http.MethodPost, "/api/exercises",
		`{"date":"2026-03-14","category":"cardio","name":"Running","duration_min":0}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for zero duration, got %d", w.Code)
	}
}

func TestReportCoversRange(t *testing.T) {
	h, _ := setupServer(t)

	for _, body := range []string{
		`{"date":"2026-03-12","meal_type":"lunch","name":"Soup","kcal":400}`,
		`{"date":"2026-03-14","meal_type":"dinner","name":"Pasta","kcal":900}`,
	} {
		if w := doRequest(h, http.MethodPost, "/api/entries", body); w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
		}
	}

	w := doRequest(h, http.MethodGet, "/api/report?from=2026-03-10&to=2026-03-14", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var r service.AnalyticsReport
	decode(t, w, &r)
	if r.DaysWithEntries != 2 || r.Total.Kcal != 1300 || r.HighestDay == nil || r.HighestDay.Date != "2026-03-14" {
		t.Fatalf("unexpected report: %+v", r)
	}

	if w := doRequest(h, http.MethodGet, "/api/report?from=2026-03-15&to=2026-03-14", ""); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for reversed range, got %d", w.Code)
	}
}

func jsonInt(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
