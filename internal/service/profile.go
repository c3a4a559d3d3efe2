package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
)

// ProfileUpdate is a partial edit. Nil fields are left unchanged.
type ProfileUpdate struct {
	Sex              *model.Sex           `json:"sex,omitempty"`
	DateOfBirth      *string              `json:"date_of_birth,omitempty"`
	Age              *int                 `json:"age,omitempty"`
	HeightCm         *float64             `json:"height_cm,omitempty"`
	WeightKg         *float64             `json:"weight_kg,omitempty"`
	StartingWeightKg *float64             `json:"starting_weight_kg,omitempty"`
	GoalWeightKg     *float64             `json:"goal_weight_kg,omitempty"`
	ActivityLevel    *model.ActivityLevel `json:"activity_level,omitempty"`
	WeeklyGoal       *model.WeeklyGoal    `json:"weekly_goal,omitempty"`
	MacroCarbsPct    *int                 `json:"macro_c,omitempty"`
	MacroProteinPct  *int                 `json:"macro_p,omitempty"`
	MacroFatPct      *int                 `json:"macro_f,omitempty"`
}

// Apply copies the set fields onto p. An empty date of birth clears it.
func (u ProfileUpdate) Apply(p *model.Profile) error {
	if u.Sex != nil {
		if *u.Sex != model.SexMale && *u.Sex != model.SexFemale {
			return invalid("sex", "must be male or female")
		}
		p.Sex = *u.Sex
	}
	if u.DateOfBirth != nil {
		if *u.DateOfBirth == "" {
			p.DateOfBirth = nil
		} else {
			dob, err := time.Parse(dateLayout, *u.DateOfBirth)
			if err != nil {
				return invalid("date_of_birth", "invalid date %q (expected YYYY-MM-DD)", *u.DateOfBirth)
			}
			p.DateOfBirth = &dob
		}
	}
	if u.Age != nil {
		if *u.Age <= 0 {
			return invalid("age", "must be > 0")
		}
		age := *u.Age
		p.Age = &age
	}
	if u.HeightCm != nil {
		if *u.HeightCm <= 0 {
			return invalid("height_cm", "must be > 0")
		}
		p.HeightCm = *u.HeightCm
	}
	if u.WeightKg != nil {
		if *u.WeightKg <= 0 {
			return invalid("weight_kg", "must be > 0")
		}
		p.WeightKg = *u.WeightKg
	}
	if u.StartingWeightKg != nil {
		if err := validateNonNegativeFloat("starting_weight_kg", *u.StartingWeightKg); err != nil {
			return err
		}
		p.StartingWeightKg = *u.StartingWeightKg
	}
	if u.GoalWeightKg != nil {
		if err := validateNonNegativeFloat("goal_weight_kg", *u.GoalWeightKg); err != nil {
			return err
		}
		p.GoalWeightKg = *u.GoalWeightKg
	}
	if u.ActivityLevel != nil {
		if !nutrition.ValidActivityLevel(*u.ActivityLevel) {
			return invalid("activity_level", "unknown activity level %q", *u.ActivityLevel)
		}
		p.ActivityLevel = *u.ActivityLevel
	}
	if u.WeeklyGoal != nil {
		if !nutrition.ValidWeeklyGoal(*u.WeeklyGoal) {
			return invalid("weekly_goal", "unknown weekly goal %q", *u.WeeklyGoal)
		}
		p.WeeklyGoal = *u.WeeklyGoal
	}
	for _, m := range []struct {
		field string
		src   *int
		dst   *int
	}{
		{"macro_c", u.MacroCarbsPct, &p.MacroCarbsPct},
		{"macro_p", u.MacroProteinPct, &p.MacroProteinPct},
		{"macro_f", u.MacroFatPct, &p.MacroFatPct},
	} {
		if m.src == nil {
			continue
		}
		if *m.src < 0 || *m.src > 100 {
			return invalid(m.field, "must be between 0 and 100")
		}
		*m.dst = *m.src
	}
	return nil
}

func MacroSplit(p model.Profile) nutrition.Split {
	return nutrition.Split{CarbsPct: p.MacroCarbsPct, ProteinPct: p.MacroProteinPct, FatPct: p.MacroFatPct}
}

func GetProfile(ctx context.Context, db *sql.DB, now time.Time) (model.Profile, error) {
	var (
		p         model.Profile
		dob       sql.NullString
		age       sql.NullInt64
		updatedAt string
	)
	err := db.QueryRowContext(ctx, `
SELECT sex, date_of_birth, age, height_cm, weight_kg, starting_weight_kg, goal_weight_kg,
       activity_level, weekly_goal, macro_carbs_pct, macro_protein_pct, macro_fat_pct,
       bmr, tdee, calorie_goal, updated_at
FROM profile WHERE id = 1`).Scan(
		&p.Sex, &dob, &age, &p.HeightCm, &p.WeightKg, &p.StartingWeightKg, &p.GoalWeightKg,
		&p.ActivityLevel, &p.WeeklyGoal, &p.MacroCarbsPct, &p.MacroProteinPct, &p.MacroFatPct,
		&p.BMR, &p.TDEE, &p.CalorieGoal, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return model.Profile{}, fmt.Errorf("profile: %w", ErrNotFound)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("get profile: %w", err)
	}
	if dob.Valid && dob.String != "" {
		if t, err := time.Parse(dateLayout, dob.String); err == nil {
			p.DateOfBirth = &t
		}
	}
	if age.Valid {
		v := int(age.Int64)
		p.Age = &v
	}
	p.UpdatedAt = parseTimestamp(updatedAt)
	if p.CalorieGoal == 0 {
		// Never saved since seeding.
		nutrition.ApplyGoals(&p, now)
	}
	return p, nil
}

// SaveProfile recomputes the derived goal fields and persists the profile.
// Macro percentages are stored as given; use ConfirmProfile for an explicit
// save that rejects splits not totalling 100.
func SaveProfile(ctx context.Context, db *sql.DB, p model.Profile, now time.Time) (model.Profile, error) {
	if p.Sex == "" {
		p.Sex = model.SexMale
	}
	if p.ActivityLevel == "" {
		p.ActivityLevel = model.ActivityLightlyActive
	}
	if p.WeeklyGoal == "" {
		p.WeeklyGoal = model.WeeklyMaintain
	}
	nutrition.ApplyGoals(&p, now)
	p.UpdatedAt = now.UTC()

	var dob any
	if p.DateOfBirth != nil && !p.DateOfBirth.IsZero() {
		dob = p.DateOfBirth.Format(dateLayout)
	}
	var age any
	if p.Age != nil {
		age = *p.Age
	}
	height := p.HeightCm
	if height <= 0 {
		height = nutrition.DefaultHeightCm
	}
	weight := p.WeightKg
	if weight <= 0 {
		weight = nutrition.DefaultWeightKg
	}

	_, err := db.ExecContext(ctx, `
INSERT INTO profile(id, sex, date_of_birth, age, height_cm, weight_kg, starting_weight_kg, goal_weight_kg,
                    activity_level, weekly_goal, macro_carbs_pct, macro_protein_pct, macro_fat_pct,
                    bmr, tdee, calorie_goal, updated_at)
VALUES(1, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  sex=excluded.sex, date_of_birth=excluded.date_of_birth, age=excluded.age,
  height_cm=excluded.height_cm, weight_kg=excluded.weight_kg,
  starting_weight_kg=excluded.starting_weight_kg, goal_weight_kg=excluded.goal_weight_kg,
  activity_level=excluded.activity_level, weekly_goal=excluded.weekly_goal,
  macro_carbs_pct=excluded.macro_carbs_pct, macro_protein_pct=excluded.macro_protein_pct,
  macro_fat_pct=excluded.macro_fat_pct, bmr=excluded.bmr, tdee=excluded.tdee,
  calorie_goal=excluded.calorie_goal, updated_at=excluded.updated_at
`, p.Sex, dob, age, height, weight, p.StartingWeightKg, p.GoalWeightKg,
		p.ActivityLevel, p.WeeklyGoal, p.MacroCarbsPct, p.MacroProteinPct, p.MacroFatPct,
		p.BMR, p.TDEE, p.CalorieGoal, p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// ConfirmProfile is the explicit save path.
func ConfirmProfile(ctx context.Context, db *sql.DB, p model.Profile, now time.Time) (model.Profile, error) {
	if err := nutrition.ValidateForSave(MacroSplit(p)); err != nil {
		return model.Profile{}, err
	}
	return SaveProfile(ctx, db, p, now)
}

// BalanceProfileMacros applies nutrition.Balance to the stored split.
func BalanceProfileMacros(p *model.Profile) nutrition.Split {
	s := nutrition.Balance(MacroSplit(*p))
	p.MacroCarbsPct, p.MacroProteinPct, p.MacroFatPct = s.CarbsPct, s.ProteinPct, s.FatPct
	return s
}
