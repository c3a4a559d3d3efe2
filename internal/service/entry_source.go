package service

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

// LogSource is one of the closed set of logging flows that produce a diary
// entry: FromSearch, FromScan, FromBarcode, FromMyMeal and Custom. Each
// carries only the fields its flow has and projects onto CreateEntryInput.
type LogSource interface {
	project() (CreateEntryInput, error)
}

// FromSearch logs an amount of a catalog or search-result food.
type FromSearch struct {
	Food       model.Food
	Amount     float64
	Unit       string
	CustomName string
}

// FromScan logs a food recognised from a photo or nutrition label.
type FromScan struct {
	Food   model.Food
	Amount float64
	Unit   string
}

// FromBarcode logs a product resolved by barcode lookup.
type FromBarcode struct {
	Barcode string
	Food    model.Food
	Amount  float64
	Unit    string
}

// FromMyMeal logs a saved meal as a single entry.
type FromMyMeal struct {
	Meal     model.MyMeal
	Servings float64
}

// Custom is a quick-add with hand-entered nutrition.
type Custom struct {
	Name    string
	Kcal    float64
	Carbs   float64
	Protein float64
	Fat     float64
}

func (s FromSearch) project() (CreateEntryInput, error) {
	in, err := foodEntry(s.Food, s.Amount, s.Unit, model.EntrySourceDatabase)
	if err != nil {
		return CreateEntryInput{}, err
	}
	in.CustomName = strings.TrimSpace(s.CustomName)
	return in, nil
}

func (s FromScan) project() (CreateEntryInput, error) {
	return foodEntry(s.Food, s.Amount, s.Unit, model.EntrySourceScan)
}

func (s FromBarcode) project() (CreateEntryInput, error) {
	if !isValidBarcode(strings.TrimSpace(s.Barcode)) {
		return CreateEntryInput{}, invalid("barcode", "invalid barcode %q (expected 8-14 digits)", s.Barcode)
	}
	return foodEntry(s.Food, s.Amount, s.Unit, model.EntrySourceScan)
}

func (s FromMyMeal) project() (CreateEntryInput, error) {
	servings := s.Servings
	if servings == 0 {
		servings = 1
	}
	if servings < 0 {
		return CreateEntryInput{}, invalid("servings", "must be > 0")
	}
	if strings.TrimSpace(s.Meal.Name) == "" {
		return CreateEntryInput{}, invalid("my_meal", "meal is required")
	}
	return CreateEntryInput{
		FoodName: s.Meal.Name,
		Amount:   servings,
		Unit:     "serving",
		Source:   model.EntrySourceMyMeal,
		Kcal:     s.Meal.TotalKcal * servings,
		Carbs:    s.Meal.TotalCarbs * servings,
		Protein:  s.Meal.TotalProtein * servings,
		Fat:      s.Meal.TotalFat * servings,
	}, nil
}

func (s Custom) project() (CreateEntryInput, error) {
	return CreateEntryInput{
		FoodName: s.Name,
		Amount:   1,
		Unit:     "serving",
		Source:   model.EntrySourceCustom,
		Kcal:     s.Kcal,
		Carbs:    s.Carbs,
		Protein:  s.Protein,
		Fat:      s.Fat,
	}, nil
}

func foodEntry(f model.Food, amount float64, unit string, source model.EntrySource) (CreateEntryInput, error) {
	if strings.TrimSpace(f.Name) == "" {
		return CreateEntryInput{}, invalid("food", "food is required")
	}
	if strings.TrimSpace(unit) == "" {
		unit = "g"
	}
	p, err := ScalePortion(f, amount, unit)
	if err != nil {
		return CreateEntryInput{}, err
	}
	in := CreateEntryInput{
		FoodName: f.Name,
		Amount:   amount,
		Unit:     strings.ToLower(strings.TrimSpace(unit)),
		Source:   source,
		Kcal:     p.Kcal,
		Carbs:    p.Carbs,
		Protein:  p.Protein,
		Fat:      p.Fat,
	}
	if f.ID > 0 {
		id := f.ID
		in.FoodID = &id
	}
	return in, nil
}

// ProjectEntry returns the canonical entry a source would create, without
// persisting it.
func ProjectEntry(src LogSource, date string, meal model.MealType, now time.Time) (CreateEntryInput, error) {
	in, err := src.project()
	if err != nil {
		return CreateEntryInput{}, err
	}
	in.Date = date
	in.MealType = meal
	if err := validateCreateEntry(&in, now); err != nil {
		return CreateEntryInput{}, err
	}
	return in, nil
}

// LogEntry projects src and persists the snapshot.
func LogEntry(ctx context.Context, db *sql.DB, src LogSource, date string, meal model.MealType, now time.Time) (model.DiaryEntry, error) {
	in, err := ProjectEntry(src, date, meal, now)
	if err != nil {
		return model.DiaryEntry{}, err
	}
	return CreateEntry(ctx, db, in, now)
}
