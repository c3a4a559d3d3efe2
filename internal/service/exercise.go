package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
)

var clockPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

type ExerciseInput struct {
	Date        string
	Time        string
	Category    model.ExerciseCategory
	Name        string
	DurationMin int
	// MET overrides the catalog value when > 0.
	MET        float64
	DistanceKm *float64
	Sets       *int
	Reps       *int
	WeightKg   *float64
}

const exerciseColumns = `id, date, time, category, name, duration_min, calories, distance_km, sets, reps, weight_kg, met, created_at`

// CreateExercise freezes the calorie burn using the profile weight at
// creation time.
func CreateExercise(ctx context.Context, db *sql.DB, in ExerciseInput, now time.Time) (model.ExerciseEntry, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return model.ExerciseEntry{}, invalid("name", "exercise name is required")
	}
	if !nutrition.ValidDuration(in.DurationMin) {
		return model.ExerciseEntry{}, invalid("duration_min", "must be between %d and %d minutes", nutrition.MinExerciseMinutes, nutrition.MaxExerciseMinutes)
	}
	date, err := NormalizeDate(in.Date, now)
	if err != nil {
		return model.ExerciseEntry{}, err
	}
	in.Time = strings.TrimSpace(in.Time)
	if in.Time != "" && !clockPattern.MatchString(in.Time) {
		return model.ExerciseEntry{}, invalid("time", "invalid time %q (expected HH:MM)", in.Time)
	}

	met := in.MET
	if known, ok := nutrition.LookupExercise(in.Name); ok {
		if in.Category == "" {
			in.Category = known.Category
		}
		if met <= 0 {
			met = known.MET
		}
	}
	if in.Category == "" {
		in.Category = model.ExerciseCardio
	}
	if in.Category != model.ExerciseCardio && in.Category != model.ExerciseStrength {
		return model.ExerciseEntry{}, invalid("category", "must be cardio or strength")
	}
	if met <= 0 {
		met = nutrition.DefaultMET(in.Category)
	}
	if err := validateExerciseDetails(in); err != nil {
		return model.ExerciseEntry{}, err
	}

	weight := 0.0
	if p, err := GetProfile(ctx, db, now); err == nil {
		weight = p.WeightKg
	}
	calories := nutrition.ExerciseBurn(met, weight, in.DurationMin)

	createdAt := now.UTC().Format(time.RFC3339)
	res, err := db.ExecContext(ctx, `
INSERT INTO exercise_entries(date, time, category, name, duration_min, calories, distance_km, sets, reps, weight_kg, met, created_at)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, date, in.Time, in.Category, in.Name, in.DurationMin, calories, in.DistanceKm, in.Sets, in.Reps, in.WeightKg, met, createdAt)
	if err != nil {
		return model.ExerciseEntry{}, fmt.Errorf("add exercise entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.ExerciseEntry{}, fmt.Errorf("resolve exercise entry id: %w", err)
	}
	return model.ExerciseEntry{
		ID:          id,
		Date:        date,
		Time:        in.Time,
		Category:    in.Category,
		Name:        in.Name,
		DurationMin: in.DurationMin,
		Calories:    calories,
		DistanceKm:  in.DistanceKm,
		Sets:        in.Sets,
		Reps:        in.Reps,
		WeightKg:    in.WeightKg,
		MET:         met,
		CreatedAt:   parseTimestamp(createdAt),
	}, nil
}

// Distance belongs to cardio; sets, reps and lifted weight to strength.
func validateExerciseDetails(in ExerciseInput) error {
	if in.Category == model.ExerciseCardio && (in.Sets != nil || in.Reps != nil || in.WeightKg != nil) {
		return invalid("category", "sets, reps and weight only apply to strength exercises")
	}
	if in.Category == model.ExerciseStrength && in.DistanceKm != nil {
		return invalid("category", "distance only applies to cardio exercises")
	}
	if in.DistanceKm != nil && *in.DistanceKm <= 0 {
		return invalid("distance_km", "must be > 0")
	}
	if in.Sets != nil && *in.Sets <= 0 {
		return invalid("sets", "must be > 0")
	}
	if in.Reps != nil && *in.Reps <= 0 {
		return invalid("reps", "must be > 0")
	}
	if in.WeightKg != nil && *in.WeightKg <= 0 {
		return invalid("weight_kg", "must be > 0")
	}
	return nil
}

func ListExercisesForDate(ctx context.Context, db *sql.DB, date string) ([]model.ExerciseEntry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, invalid("date", "invalid date %q (expected YYYY-MM-DD)", date)
	}
	rows, err := db.QueryContext(ctx, `SELECT `+exerciseColumns+` FROM exercise_entries WHERE date = ? ORDER BY time ASC, id ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("list exercise entries: %w", err)
	}
	defer rows.Close()

	out := make([]model.ExerciseEntry, 0)
	for rows.Next() {
		var (
			e          model.ExerciseEntry
			distanceKm sql.NullFloat64
			sets, reps sql.NullInt64
			weightKg   sql.NullFloat64
			createdAt  string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Time, &e.Category, &e.Name, &e.DurationMin, &e.Calories,
			&distanceKm, &sets, &reps, &weightKg, &e.MET, &createdAt); err != nil {
			return nil, fmt.Errorf("scan exercise entry: %w", err)
		}
		if distanceKm.Valid {
			v := distanceKm.Float64
			e.DistanceKm = &v
		}
		if sets.Valid {
			v := int(sets.Int64)
			e.Sets = &v
		}
		if reps.Valid {
			v := int(reps.Int64)
			e.Reps = &v
		}
		if weightKg.Valid {
			v := weightKg.Float64
			e.WeightKg = &v
		}
		e.CreatedAt = parseTimestamp(createdAt)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate exercise entries: %w", err)
	}
	return out, nil
}

// DeleteExercise is idempotent.
func DeleteExercise(ctx context.Context, db *sql.DB, id int64) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM exercise_entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete exercise entry %d: %w", id, err)
	}
	return nil
}
