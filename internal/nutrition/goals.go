package nutrition

import (
	"math"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const (
	DefaultWeightKg = 70.0
	DefaultHeightCm = 170.0
	DefaultAge      = 30

	MinAge = 13
	MaxAge = 100

	MinHeightCm = 120.0
	MaxHeightCm = 230.0
	MinWeightKg = 30.0
	MaxWeightKg = 300.0

	defaultActivityFactor = 1.60
)

// activityFactors maps activity levels to their TDEE multiplier. Unknown
// levels fall back to defaultActivityFactor.
var activityFactors = map[model.ActivityLevel]float64{
	model.ActivitySedentary:     1.40,
	model.ActivityLightlyActive: 1.60,
	model.ActivityActive:        1.80,
	model.ActivityVeryActive:    2.00,
}

// weeklyGoalDeltas is the daily kcal adjustment for a weekly weight-change
// target, at roughly 500 kcal/day per pound per week.
var weeklyGoalDeltas = map[model.WeeklyGoal]float64{
	model.WeeklyLose2:    -1000,
	model.WeeklyLose1_5:  -750,
	model.WeeklyLose1:    -500,
	model.WeeklyLose0_5:  -250,
	model.WeeklyMaintain: 0,
	model.WeeklyGain0_5:  250,
	model.WeeklyGain1:    500,
}

type Goals struct {
	BMR         float64 `json:"bmr"`
	TDEE        float64 `json:"tdee"`
	CalorieGoal int     `json:"calorie_goal"`
}

func ActivityFactor(level model.ActivityLevel) float64 {
	if f, ok := activityFactors[level]; ok {
		return f
	}
	return defaultActivityFactor
}

func WeeklyGoalDelta(goal model.WeeklyGoal) float64 {
	return weeklyGoalDeltas[goal]
}

func ValidActivityLevel(level model.ActivityLevel) bool {
	_, ok := activityFactors[level]
	return ok
}

func ValidWeeklyGoal(goal model.WeeklyGoal) bool {
	_, ok := weeklyGoalDeltas[goal]
	return ok
}

// ComputeGoals derives BMR, TDEE and the daily calorie goal. Missing or out
// of range inputs are defaulted or clamped; it never fails.
func ComputeGoals(p model.Profile, now time.Time) Goals {
	weight := EffectiveWeight(p.WeightKg)
	height := effectiveHeight(p.HeightCm)
	age := ProfileAge(p, now)

	bmr := BMR(p.Sex, weight, height, age)
	tdee := bmr * ActivityFactor(p.ActivityLevel)
	goal := math.Round((tdee+WeeklyGoalDelta(p.WeeklyGoal))/10) * 10

	return Goals{BMR: bmr, TDEE: tdee, CalorieGoal: int(goal)}
}

// ApplyGoals recomputes the cached goal fields on p.
func ApplyGoals(p *model.Profile, now time.Time) Goals {
	g := ComputeGoals(*p, now)
	p.BMR = g.BMR
	p.TDEE = g.TDEE
	p.CalorieGoal = g.CalorieGoal
	return g
}

// BMR uses the Mifflin-St Jeor equation.
func BMR(sex model.Sex, weightKg, heightCm float64, age int) float64 {
	c := -161.0
	if sex == model.SexMale {
		c = 5
	}
	return 10*weightKg + 6.25*heightCm - 5*float64(age) + c
}

// AgeOn returns whole years between dob and now, clamped to [MinAge, MaxAge].
func AgeOn(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return clampAge(age)
}

// ProfileAge prefers the date of birth, then an explicit age, then DefaultAge.
func ProfileAge(p model.Profile, now time.Time) int {
	switch {
	case p.DateOfBirth != nil && !p.DateOfBirth.IsZero():
		return AgeOn(*p.DateOfBirth, now)
	case p.Age != nil && *p.Age > 0:
		return clampAge(*p.Age)
	default:
		return DefaultAge
	}
}

// EffectiveWeight returns the weight used for calculations, defaulting when unset.
func EffectiveWeight(weightKg float64) float64 {
	if weightKg <= 0 {
		return DefaultWeightKg
	}
	return clampFloat(weightKg, MinWeightKg, MaxWeightKg)
}

func effectiveHeight(heightCm float64) float64 {
	if heightCm <= 0 {
		return DefaultHeightCm
	}
	return clampFloat(heightCm, MinHeightCm, MaxHeightCm)
}

func clampAge(age int) int {
	if age < MinAge {
		return MinAge
	}
	if age > MaxAge {
		return MaxAge
	}
	return age
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
