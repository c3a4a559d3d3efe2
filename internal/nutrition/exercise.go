package nutrition

import (
	"math"
	"sort"
	"strings"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const (
	MinExerciseMinutes = 5
	MaxExerciseMinutes = 300
)

type ExerciseType struct {
	Name     string                 `json:"name"`
	Category model.ExerciseCategory `json:"category"`
	MET      float64                `json:"met"`
}

var exerciseTypes = []ExerciseType{
	{Name: "walking", Category: model.ExerciseCardio, MET: 3.5},
	{Name: "brisk walking", Category: model.ExerciseCardio, MET: 4.3},
	{Name: "hiking", Category: model.ExerciseCardio, MET: 6.0},
	{Name: "jogging", Category: model.ExerciseCardio, MET: 7.0},
	{Name: "running", Category: model.ExerciseCardio, MET: 9.8},
	{Name: "cycling", Category: model.ExerciseCardio, MET: 7.5},
	{Name: "stationary bike", Category: model.ExerciseCardio, MET: 6.8},
	{Name: "swimming", Category: model.ExerciseCardio, MET: 8.0},
	{Name: "rowing", Category: model.ExerciseCardio, MET: 7.0},
	{Name: "elliptical", Category: model.ExerciseCardio, MET: 5.0},
	{Name: "jump rope", Category: model.ExerciseCardio, MET: 12.3},
	{Name: "dancing", Category: model.ExerciseCardio, MET: 5.5},
	{Name: "hiit", Category: model.ExerciseCardio, MET: 8.0},
	{Name: "yoga", Category: model.ExerciseStrength, MET: 2.5},
	{Name: "pilates", Category: model.ExerciseStrength, MET: 3.0},
	{Name: "weight lifting", Category: model.ExerciseStrength, MET: 6.0},
	{Name: "bodyweight training", Category: model.ExerciseStrength, MET: 3.8},
	{Name: "circuit training", Category: model.ExerciseStrength, MET: 8.0},
}

const (
	defaultCardioMET   = 7.0
	defaultStrengthMET = 5.0
)

// ExerciseTypes returns the built-in catalog sorted by name.
func ExerciseTypes() []ExerciseType {
	out := make([]ExerciseType, len(exerciseTypes))
	copy(out, exerciseTypes)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupExercise finds a catalog entry by case-insensitive name.
func LookupExercise(name string) (ExerciseType, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, t := range exerciseTypes {
		if t.Name == name {
			return t, true
		}
	}
	return ExerciseType{}, false
}

// DefaultMET is used for exercises missing from the catalog.
func DefaultMET(category model.ExerciseCategory) float64 {
	if category == model.ExerciseStrength {
		return defaultStrengthMET
	}
	return defaultCardioMET
}

// ExerciseBurn is round(MET x weight x hours). Weight defaults to 70 kg.
func ExerciseBurn(met, weightKg float64, durationMin int) int {
	if met <= 0 || durationMin <= 0 {
		return 0
	}
	return int(math.Round(met * EffectiveWeight(weightKg) * float64(durationMin) / 60))
}

func ValidDuration(min int) bool {
	return min >= MinExerciseMinutes && min <= MaxExerciseMinutes
}
