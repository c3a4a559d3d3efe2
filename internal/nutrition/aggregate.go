package nutrition

import (
	"math"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const (
	walkingMET   = 3.0
	stepsPerHour = 6000.0

	nearLimitKcal = 200.0
)

type Totals struct {
	Kcal    float64 `json:"kcal"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

func (t Totals) Add(o Totals) Totals {
	return Totals{
		Kcal:    t.Kcal + o.Kcal,
		Carbs:   t.Carbs + o.Carbs,
		Protein: t.Protein + o.Protein,
		Fat:     t.Fat + o.Fat,
	}
}

// DailyTotals folds a day's entries. Values are not rounded.
func DailyTotals(entries []model.DiaryEntry) Totals {
	var t Totals
	for _, e := range entries {
		t = t.Add(Totals{Kcal: e.Kcal, Carbs: e.Carbs, Protein: e.Protein, Fat: e.Fat})
	}
	return t
}

// TotalsByMeal splits DailyTotals per meal type.
func TotalsByMeal(entries []model.DiaryEntry) map[model.MealType]Totals {
	out := make(map[model.MealType]Totals, len(model.MealTypes))
	for _, e := range entries {
		out[e.MealType] = out[e.MealType].Add(Totals{Kcal: e.Kcal, Carbs: e.Carbs, Protein: e.Protein, Fat: e.Fat})
	}
	return out
}

func Remaining(goal, foodKcal, exerciseKcal float64) float64 {
	return goal - foodKcal + exerciseKcal
}

// StepCalories treats 6000 steps as one hour of walking at 3.0 MET.
func StepCalories(steps int, weightKg float64) int {
	if steps <= 0 {
		return 0
	}
	hours := float64(steps) / stepsPerHour
	return int(math.Round(walkingMET * EffectiveWeight(weightKg) * hours))
}

func WorkoutCalories(entries []model.ExerciseEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Calories
	}
	return total
}

// ExerciseCalories is logged workouts plus the pedometer estimate.
func ExerciseCalories(entries []model.ExerciseEntry, steps int, weightKg float64) int {
	return WorkoutCalories(entries) + StepCalories(steps, weightKg)
}

// Progress is the ring fill ratio, capped at 1.
func Progress(foodKcal, goal float64) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(foodKcal/goal, 1.0)
}

type RingState string

const (
	RingNominal   RingState = "nominal"
	RingNearLimit RingState = "near_limit"
	RingOver      RingState = "over"
)

func StateFor(remaining float64) RingState {
	switch {
	case remaining > nearLimitKcal:
		return RingNominal
	case remaining > 0:
		return RingNearLimit
	default:
		return RingOver
	}
}
