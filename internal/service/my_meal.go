package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

type MyMealInput struct {
	Name       string            `json:"name"`
	PhotoURI   string            `json:"photo_uri"`
	Directions string            `json:"directions"`
	Items      []MyMealItemInput `json:"items"`
}

// MyMealItemInput either references a food (FoodID plus amount and unit,
// nutrition derived from the food) or carries hand-entered nutrition.
type MyMealItemInput struct {
	FoodID  *int64  `json:"food_id,omitempty"`
	Name    string  `json:"name"`
	Amount  float64 `json:"amount"`
	Unit    string  `json:"unit"`
	Kcal    float64 `json:"kcal"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// CreateMyMeal inserts the meal and its ordered items in one transaction.
// Totals are the sum of the item values.
func CreateMyMeal(ctx context.Context, db *sql.DB, in MyMealInput, now time.Time) (model.MyMeal, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.MyMeal{}, invalid("name", "meal name is required")
	}
	if len(in.Items) == 0 {
		return model.MyMeal{}, invalid("items", "a meal needs at least one item")
	}

	meal := model.MyMeal{
		Name:       in.Name,
		PhotoURI:   strings.TrimSpace(in.PhotoURI),
		Directions: strings.TrimSpace(in.Directions),
		Items:      make([]model.MyMealItem, 0, len(in.Items)),
	}
	for i, it := range in.Items {
		item, err := resolveMealItem(ctx, db, it)
		if err != nil {
			return model.MyMeal{}, fmt.Errorf("item %d: %w", i+1, err)
		}
		item.SortOrder = i
		meal.Items = append(meal.Items, item)
		meal.TotalKcal += item.Kcal
		meal.TotalCarbs += item.Carbs
		meal.TotalProtein += item.Protein
		meal.TotalFat += item.Fat
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.MyMeal{}, fmt.Errorf("begin my meal tx: %w", err)
	}
	defer tx.Rollback()

	createdAt := now.UTC().Format(time.RFC3339)
	res, err := tx.ExecContext(ctx, `
INSERT INTO my_meals(name, total_kcal, total_carbs, total_protein, total_fat, photo_uri, directions, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?)
`, meal.Name, meal.TotalKcal, meal.TotalCarbs, meal.TotalProtein, meal.TotalFat, meal.PhotoURI, meal.Directions, createdAt)
	if err != nil {
		return model.MyMeal{}, fmt.Errorf("insert my meal: %w", err)
	}
	meal.ID, err = res.LastInsertId()
	if err != nil {
		return model.MyMeal{}, fmt.Errorf("resolve my meal id: %w", err)
	}
	for i := range meal.Items {
		item := &meal.Items[i]
		item.MyMealID = meal.ID
		res, err := tx.ExecContext(ctx, `
INSERT INTO my_meal_items(my_meal_id, food_id, name, amount, unit, kcal, carbs, protein, fat, sort_order)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, meal.ID, item.FoodID, item.Name, item.Amount, item.Unit, item.Kcal, item.Carbs, item.Protein, item.Fat, item.SortOrder)
		if err != nil {
			return model.MyMeal{}, fmt.Errorf("insert my meal item: %w", err)
		}
		if item.ID, err = res.LastInsertId(); err != nil {
			return model.MyMeal{}, fmt.Errorf("resolve my meal item id: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return model.MyMeal{}, fmt.Errorf("commit my meal: %w", err)
	}
	meal.CreatedAt = parseTimestamp(createdAt)
	return meal, nil
}

func resolveMealItem(ctx context.Context, db *sql.DB, in MyMealItemInput) (model.MyMealItem, error) {
	item := model.MyMealItem{
		FoodID:  in.FoodID,
		Name:    strings.TrimSpace(in.Name),
		Amount:  in.Amount,
		Unit:    strings.TrimSpace(in.Unit),
		Kcal:    in.Kcal,
		Carbs:   in.Carbs,
		Protein: in.Protein,
		Fat:     in.Fat,
	}
	if item.Amount <= 0 {
		return model.MyMealItem{}, invalid("amount", "must be > 0")
	}
	if item.Unit == "" {
		item.Unit = "g"
	}
	if in.FoodID != nil {
		f, err := GetFood(ctx, db, *in.FoodID)
		if err != nil {
			return model.MyMealItem{}, err
		}
		p, err := ScalePortion(f, item.Amount, item.Unit)
		if err != nil {
			return model.MyMealItem{}, err
		}
		if item.Name == "" {
			item.Name = f.Name
		}
		item.Kcal, item.Carbs, item.Protein, item.Fat = p.Kcal, p.Carbs, p.Protein, p.Fat
	}
	if item.Name == "" {
		return model.MyMealItem{}, invalid("name", "item name is required")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"kcal", item.Kcal}, {"carbs", item.Carbs}, {"protein", item.Protein}, {"fat", item.Fat}} {
		if err := validateNonNegativeFloat(f.name, f.value); err != nil {
			return model.MyMealItem{}, err
		}
	}
	return item, nil
}

// ListMyMeals returns meals newest first, without items.
func ListMyMeals(ctx context.Context, db *sql.DB) ([]model.MyMeal, error) {
	rows, err := db.QueryContext(ctx, `
SELECT id, name, total_kcal, total_carbs, total_protein, total_fat, photo_uri, directions, created_at
FROM my_meals ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list my meals: %w", err)
	}
	defer rows.Close()
	out := make([]model.MyMeal, 0)
	for rows.Next() {
		m, err := scanMyMeal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate my meals: %w", err)
	}
	return out, nil
}

func GetMyMeal(ctx context.Context, db *sql.DB, id int64) (model.MyMeal, error) {
	m, err := scanMyMeal(db.QueryRowContext(ctx, `
SELECT id, name, total_kcal, total_carbs, total_protein, total_fat, photo_uri, directions, created_at
FROM my_meals WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.MyMeal{}, fmt.Errorf("my meal %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.MyMeal{}, err
	}

	rows, err := db.QueryContext(ctx, `
SELECT id, my_meal_id, food_id, name, amount, unit, kcal, carbs, protein, fat, sort_order
FROM my_meal_items WHERE my_meal_id = ? ORDER BY sort_order ASC, id ASC`, id)
	if err != nil {
		return model.MyMeal{}, fmt.Errorf("list my meal items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			it     model.MyMealItem
			foodID sql.NullInt64
		)
		if err := rows.Scan(&it.ID, &it.MyMealID, &foodID, &it.Name, &it.Amount, &it.Unit,
			&it.Kcal, &it.Carbs, &it.Protein, &it.Fat, &it.SortOrder); err != nil {
			return model.MyMeal{}, fmt.Errorf("scan my meal item: %w", err)
		}
		if foodID.Valid {
			v := foodID.Int64
			it.FoodID = &v
		}
		m.Items = append(m.Items, it)
	}
	if err := rows.Err(); err != nil {
		return model.MyMeal{}, fmt.Errorf("iterate my meal items: %w", err)
	}
	return m, nil
}

// DeleteMyMeal cascades to the items and is idempotent.
func DeleteMyMeal(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM my_meals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete my meal %d: %w", id, err)
	}
	return nil
}

// LogMyMeal adds the meal to the diary as a single my_meal entry.
func LogMyMeal(ctx context.Context, db *sql.DB, id int64, servings float64, date string, meal model.MealType, now time.Time) (model.DiaryEntry, error) {
	m, err := GetMyMeal(ctx, db, id)
	if err != nil {
		return model.DiaryEntry{}, err
	}
	return LogEntry(ctx, db, FromMyMeal{Meal: m, Servings: servings}, date, meal, now)
}

func scanMyMeal(row rowScanner) (model.MyMeal, error) {
	var (
		m         model.MyMeal
		createdAt string
	)
	err := row.Scan(&m.ID, &m.Name, &m.TotalKcal, &m.TotalCarbs, &m.TotalProtein, &m.TotalFat, &m.PhotoURI, &m.Directions, &createdAt)
	if err == sql.ErrNoRows {
		return model.MyMeal{}, err
	}
	if err != nil {
		return model.MyMeal{}, fmt.Errorf("scan my meal: %w", err)
	}
	m.CreatedAt = parseTimestamp(createdAt)
	m.Items = []model.MyMealItem{}
	return m, nil
}
