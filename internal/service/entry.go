package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

type CreateEntryInput struct {
	Date       string
	MealType   model.MealType
	FoodID     *int64
	FoodName   string
	CustomName string
	Amount     float64
	Unit       string
	Source     model.EntrySource
	Kcal       float64
	Carbs      float64
	Protein    float64
	Fat        float64
}

// UpdateEntryInput is the explicit edit flow. Changing the amount rescales
// the snapshotted nutrition proportionally.
type UpdateEntryInput struct {
	ID         int64
	MealType   *model.MealType
	Amount     *float64
	CustomName *string
}

const entryColumns = `id, date, meal_type, food_id, food_name, custom_name, amount, unit, source, kcal, carbs, protein, fat, created_at`

func validMealType(m model.MealType) bool {
	for _, t := range model.MealTypes {
		if t == m {
			return true
		}
	}
	return false
}

func validEntrySource(s model.EntrySource) bool {
	switch s {
	case model.EntrySourceDatabase, model.EntrySourceScan, model.EntrySourceMyMeal, model.EntrySourceCustom:
		return true
	}
	return false
}

func validateCreateEntry(in *CreateEntryInput, now time.Time) error {
	in.FoodName = strings.TrimSpace(in.FoodName)
	in.CustomName = strings.TrimSpace(in.CustomName)
	in.Unit = strings.TrimSpace(in.Unit)
	if in.FoodName == "" && in.CustomName == "" {
		return invalid("food_name", "entry name is required")
	}
	if in.FoodName == "" {
		in.FoodName = in.CustomName
	}
	date, err := NormalizeDate(in.Date, now)
	if err != nil {
		return err
	}
	in.Date = date
	in.MealType = model.MealType(strings.ToLower(strings.TrimSpace(string(in.MealType))))
	if !validMealType(in.MealType) {
		return invalid("meal_type", "must be one of breakfast, lunch, dinner, snack")
	}
	if in.Source == "" {
		in.Source = model.EntrySourceCustom
	}
	if !validEntrySource(in.Source) {
		return invalid("source", "unknown entry source %q", in.Source)
	}
	if in.Amount <= 0 {
		return invalid("amount", "must be > 0")
	}
	if in.Unit == "" {
		in.Unit = "serving"
	}
	for _, f := range []struct {
		name  string
		value float64
	}{{"kcal", in.Kcal}, {"carbs", in.Carbs}, {"protein", in.Protein}, {"fat", in.Fat}} {
		if err := validateNonNegativeFloat(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func CreateEntry(ctx context.Context, db *sql.DB, in CreateEntryInput, now time.Time) (model.DiaryEntry, error) {
	if err := validateCreateEntry(&in, now); err != nil {
		return model.DiaryEntry{}, err
	}
	createdAt := now.UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
INSERT INTO diary_entries(date, meal_type, food_id, food_name, custom_name, amount, unit, source, kcal, carbs, protein, fat, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, in.Date, in.MealType, in.FoodID, in.FoodName, in.CustomName, in.Amount, in.Unit, in.Source,
		in.Kcal, in.Carbs, in.Protein, in.Fat, createdAt)
	if err != nil {
		return model.DiaryEntry{}, fmt.Errorf("insert diary entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.DiaryEntry{}, fmt.Errorf("resolve inserted entry id: %w", err)
	}
	return model.DiaryEntry{
		ID:         id,
		Date:       in.Date,
		MealType:   in.MealType,
		FoodID:     in.FoodID,
		FoodName:   in.FoodName,
		CustomName: in.CustomName,
		Amount:     in.Amount,
		Unit:       in.Unit,
		Source:     in.Source,
		Kcal:       in.Kcal,
		Carbs:      in.Carbs,
		Protein:    in.Protein,
		Fat:        in.Fat,
		CreatedAt:  parseTimestamp(createdAt),
	}, nil
}

func ListEntriesForDate(ctx context.Context, db *sql.DB, date string) ([]model.DiaryEntry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, invalid("date", "invalid date %q (expected YYYY-MM-DD)", date)
	}
	rows, err := db.QueryContext(ctx, `SELECT `+entryColumns+` FROM diary_entries WHERE date = ? ORDER BY created_at ASC, id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.DiaryEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diary entries: %w", err)
	}
	return out, nil
}

func GetEntry(ctx context.Context, db *sql.DB, id int64) (model.DiaryEntry, error) {
	row := db.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM diary_entries WHERE id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return model.DiaryEntry{}, fmt.Errorf("diary entry %d: %w", id, ErrNotFound)
	}
	return e, err
}

func UpdateEntry(ctx context.Context, db *sql.DB, in UpdateEntryInput) (model.DiaryEntry, error) {
	e, err := GetEntry(ctx, db, in.ID)
	if err != nil {
		return model.DiaryEntry{}, err
	}
	if in.MealType != nil {
		m := model.MealType(strings.ToLower(strings.TrimSpace(string(*in.MealType))))
		if !validMealType(m) {
			return model.DiaryEntry{}, invalid("meal_type", "must be one of breakfast, lunch, dinner, snack")
		}
		e.MealType = m
	}
	if in.Amount != nil {
		if *in.Amount <= 0 {
			return model.DiaryEntry{}, invalid("amount", "must be > 0")
		}
		factor := *in.Amount / e.Amount
		e.Kcal *= factor
		e.Carbs *= factor
		e.Protein *= factor
		e.Fat *= factor
		e.Amount = *in.Amount
	}
	if in.CustomName != nil {
		e.CustomName = strings.TrimSpace(*in.CustomName)
	}

	_, err = db.ExecContext(ctx, `
UPDATE diary_entries
SET meal_type = ?, amount = ?, custom_name = ?, kcal = ?, carbs = ?, protein = ?, fat = ?
WHERE id = ?
`, e.MealType, e.Amount, e.CustomName, e.Kcal, e.Carbs, e.Protein, e.Fat, e.ID)
	if err != nil {
		return model.DiaryEntry{}, fmt.Errorf("update diary entry %d: %w", e.ID, err)
	}
	return e, nil
}

// DeleteEntry is idempotent: deleting a missing id is not an error.
func DeleteEntry(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM diary_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete diary entry %d: %w", id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.DiaryEntry, error) {
	var (
		e         model.DiaryEntry
		foodID    sql.NullInt64
		createdAt string
	)
	if err := row.Scan(&e.ID, &e.Date, &e.MealType, &foodID, &e.FoodName, &e.CustomName, &e.Amount, &e.Unit,
		&e.Source, &e.Kcal, &e.Carbs, &e.Protein, &e.Fat, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return model.DiaryEntry{}, err
		}
		return model.DiaryEntry{}, fmt.Errorf("scan diary entry: %w", err)
	}
	if foodID.Valid {
		id := foodID.Int64
		e.FoodID = &id
	}
	e.CreatedAt = parseTimestamp(createdAt)
	return e, nil
}
