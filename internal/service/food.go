package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

// CustomFoodInput holds per-100 g values. Kcal is a pointer so that a
// missing value can be told apart from zero.
type CustomFoodInput struct {
	Name            string   `json:"name"`
	Brand           string   `json:"brand"`
	Kcal            *float64 `json:"kcal_per_100g"`
	Carbs           float64  `json:"carbs_per_100g"`
	Protein         float64  `json:"protein_per_100g"`
	Fat             float64  `json:"fat_per_100g"`
	Fiber           float64  `json:"fiber_per_100g"`
	Sugar           float64  `json:"sugar_per_100g"`
	Sodium          float64  `json:"sodium_per_100g"`
	ServingLabel    string   `json:"serving_label"`
	GramsPerServing *float64 `json:"grams_per_serving"`
	Barcode         string   `json:"barcode"`
	Category        string   `json:"category"`
}

const foodColumns = `id, name, brand, kcal_per_100g, carbs_per_100g, protein_per_100g, fat_per_100g, fiber_per_100g,
sugar_per_100g, sodium_per_100g, serving_label, grams_per_serving, source, barcode, category, created_at`

// matchCandidateFactor leaves headroom for the in-memory ranking, which
// normalizes whitespace the SQL tiers do not.
const matchCandidateFactor = 4

// CreateCustomFood appends a user food. Custom foods are never updated.
func CreateCustomFood(ctx context.Context, db *sql.DB, in CustomFoodInput, now time.Time) (model.Food, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.Food{}, invalid("name", "food name is required")
	}
	if in.Kcal == nil {
		return model.Food{}, invalid("kcal_per_100g", "calories are required")
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"kcal_per_100g", *in.Kcal}, {"carbs_per_100g", in.Carbs}, {"protein_per_100g", in.Protein},
		{"fat_per_100g", in.Fat}, {"fiber_per_100g", in.Fiber}, {"sugar_per_100g", in.Sugar}, {"sodium_per_100g", in.Sodium},
	} {
		if err := validateNonNegativeFloat(f.name, f.value); err != nil {
			return model.Food{}, err
		}
	}
	if in.GramsPerServing != nil && *in.GramsPerServing <= 0 {
		return model.Food{}, invalid("grams_per_serving", "must be > 0")
	}
	if b := strings.TrimSpace(in.Barcode); b != "" && !isValidBarcode(b) {
		return model.Food{}, invalid("barcode", "invalid barcode %q (expected 8-14 digits)", b)
	}
	return insertFood(ctx, db, model.Food{
		Name:            in.Name,
		Brand:           strings.TrimSpace(in.Brand),
		KcalPer100g:     *in.Kcal,
		CarbsPer100g:    in.Carbs,
		ProteinPer100g:  in.Protein,
		FatPer100g:      in.Fat,
		FiberPer100g:    in.Fiber,
		SugarPer100g:    in.Sugar,
		SodiumPer100g:   in.Sodium,
		ServingLabel:    strings.TrimSpace(in.ServingLabel),
		GramsPerServing: in.GramsPerServing,
		Source:          model.FoodSourceCustom,
		Barcode:         strings.TrimSpace(in.Barcode),
		Category:        strings.TrimSpace(in.Category),
	}, now)
}

// SaveProviderFood stores an external food once per (source, name, brand)
// and returns the stored row.
func SaveProviderFood(ctx context.Context, db *sql.DB, f model.Food, now time.Time) (model.Food, error) {
	if f.Source == model.FoodSourceCustom || f.Source == "" {
		return model.Food{}, fmt.Errorf("provider food must have an external source")
	}
	row := db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE source = ? AND name = ? AND brand = ?`,
		f.Source, strings.TrimSpace(f.Name), strings.TrimSpace(f.Brand))
	existing, err := scanFood(row)
	if err == nil {
		return existing, nil
	}
	if err != sql.ErrNoRows {
		return model.Food{}, err
	}
	f.Name = strings.TrimSpace(f.Name)
	f.Brand = strings.TrimSpace(f.Brand)
	return insertFood(ctx, db, f, now)
}

func insertFood(ctx context.Context, db *sql.DB, f model.Food, now time.Time) (model.Food, error) {
	createdAt := now.UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
INSERT INTO foods(name, brand, kcal_per_100g, carbs_per_100g, protein_per_100g, fat_per_100g, fiber_per_100g,
                  sugar_per_100g, sodium_per_100g, serving_label, grams_per_serving, source, barcode, category, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, f.Name, f.Brand, f.KcalPer100g, f.CarbsPer100g, f.ProteinPer100g, f.FatPer100g, f.FiberPer100g,
		f.SugarPer100g, f.SodiumPer100g, f.ServingLabel, f.GramsPerServing, f.Source, f.Barcode, f.Category, createdAt)
	if err != nil {
		return model.Food{}, fmt.Errorf("insert food: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Food{}, fmt.Errorf("resolve inserted food id: %w", err)
	}
	f.ID = id
	f.CreatedAt = parseTimestamp(createdAt)
	return f, nil
}

func GetFood(ctx context.Context, db *sql.DB, id int64) (model.Food, error) {
	f, err := scanFood(db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return model.Food{}, fmt.Errorf("food %d: %w", id, ErrNotFound)
	}
	return f, err
}

func FoodByBarcode(ctx context.Context, db *sql.DB, barcode string) (model.Food, bool, error) {
	f, err := scanFood(db.QueryRowContext(ctx, `SELECT `+foodColumns+` FROM foods WHERE barcode = ? ORDER BY source = 'CUSTOM' DESC, id DESC LIMIT 1`, barcode))
	if err == sql.ErrNoRows {
		return model.Food{}, false, nil
	}
	if err != nil {
		return model.Food{}, false, err
	}
	return f, true, nil
}

// PopularFoods returns bundled and provider foods, alphabetically.
func PopularFoods(ctx context.Context, db *sql.DB, limit int) ([]model.Food, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	return queryFoods(ctx, db, `
SELECT `+foodColumns+` FROM foods
WHERE source IN ('USDA', 'OFF')
ORDER BY name COLLATE NOCASE ASC
LIMIT ?`, limit)
}

// MatchFoods returns foods whose name or brand contains query.
func MatchFoods(ctx context.Context, db *sql.DB, query string, limit int) ([]model.Food, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Food{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	escaped := escapeLike(query)
	pattern := "%" + escaped + "%"
	// Tiers match foodsearch.RankLocal so the cut never drops an exact or
	// prefix match in favor of an alphabetically earlier substring match.
	return queryFoods(ctx, db, `
SELECT `+foodColumns+` FROM foods
WHERE name LIKE ? ESCAPE '\' OR brand LIKE ? ESCAPE '\'
ORDER BY
  CASE
    WHEN lower(trim(name)) = lower(?) THEN 0
    WHEN name LIKE ? ESCAPE '\' THEN 1
    WHEN brand LIKE ? ESCAPE '\' THEN 2
    ELSE 3
  END,
  name COLLATE NOCASE ASC
LIMIT ?`, pattern, pattern, query, escaped+"%", pattern, limit*matchCandidateFactor)
}

func queryFoods(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Food, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query foods: %w", err)
	}
	defer rows.Close()
	out := make([]model.Food, 0)
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate foods: %w", err)
	}
	return out, nil
}

func scanFood(row rowScanner) (model.Food, error) {
	var (
		f         model.Food
		grams     sql.NullFloat64
		createdAt string
	)
	err := row.Scan(&f.ID, &f.Name, &f.Brand, &f.KcalPer100g, &f.CarbsPer100g, &f.ProteinPer100g, &f.FatPer100g,
		&f.FiberPer100g, &f.SugarPer100g, &f.SodiumPer100g, &f.ServingLabel, &grams, &f.Source, &f.Barcode,
		&f.Category, &createdAt)
	if err == sql.ErrNoRows {
		return model.Food{}, err
	}
	if err != nil {
		return model.Food{}, fmt.Errorf("scan food: %w", err)
	}
	if grams.Valid {
		g := grams.Float64
		f.GramsPerServing = &g
	}
	f.CreatedAt = parseTimestamp(createdAt)
	return f, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
