package nutrition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

func intPtr(v int) *int { return &v }

func dob(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var refNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func TestComputeGoalsMaleReference(t *testing.T) {
	t.Parallel()
	p := model.Profile{
		Sex:           model.SexMale,
		Age:           intPtr(30),
		HeightCm:      180,
		WeightKg:      80,
		ActivityLevel: model.ActivityActive,
		WeeklyGoal:    model.WeeklyLose1,
	}
	g := ComputeGoals(p, refNow)
	// 800 + 1125 - 150 + 5
	require.InDelta(t, 1780.0, g.BMR, 1e-9)
	require.InDelta(t, 1780.0*1.8, g.TDEE, 1e-9)
	// round((3204 - 500)/10)*10
	require.Equal(t, 2700, g.CalorieGoal)
}

func TestComputeGoalsAlwaysMultipleOfTen(t *testing.T) {
	t.Parallel()
	levels := []model.ActivityLevel{model.ActivitySedentary, model.ActivityLightlyActive, model.ActivityActive, model.ActivityVeryActive}
	goals := []model.WeeklyGoal{model.WeeklyLose2, model.WeeklyLose1_5, model.WeeklyLose1, model.WeeklyLose0_5, model.WeeklyMaintain, model.WeeklyGain0_5, model.WeeklyGain1}
	for _, sex := range []model.Sex{model.SexMale, model.SexFemale} {
		for _, level := range levels {
			for _, wg := range goals {
				for w := 30.0; w <= 300; w += 37.3 {
					for h := 120.0; h <= 230; h += 13.7 {
						p := model.Profile{Sex: sex, Age: intPtr(41), HeightCm: h, WeightKg: w, ActivityLevel: level, WeeklyGoal: wg}
						g := ComputeGoals(p, refNow)
						require.Zero(t, g.CalorieGoal%10, "goal %d for %+v", g.CalorieGoal, p)
					}
				}
			}
		}
	}
}

func TestBMRSexConstantDifference(t *testing.T) {
	t.Parallel()
	for _, tc := range []struct {
		w, h float64
		age  int
	}{
		{70, 170, 30},
		{52.5, 158.3, 19},
		{140, 201, 77},
	} {
		diff := BMR(model.SexMale, tc.w, tc.h, tc.age) - BMR(model.SexFemale, tc.w, tc.h, tc.age)
		require.InDelta(t, 166.0, diff, 1e-9)
	}
}

func TestComputeGoalsDefaultsMissingInputs(t *testing.T) {
	t.Parallel()
	g := ComputeGoals(model.Profile{}, refNow)
	// female constant, 70 kg, 170 cm, default age, factor 1.60
	bmr := 10*DefaultWeightKg + 6.25*DefaultHeightCm - 5*float64(DefaultAge) - 161
	require.InDelta(t, bmr, g.BMR, 1e-9)
	require.InDelta(t, bmr*1.60, g.TDEE, 1e-9)
}

func TestUnknownActivityLevelFallsBack(t *testing.T) {
	t.Parallel()
	require.Equal(t, 1.60, ActivityFactor("couch"))
	require.Equal(t, 1.40, ActivityFactor(model.ActivitySedentary))
	require.Equal(t, 2.00, ActivityFactor(model.ActivityVeryActive))
}

func TestWeeklyGoalDeltas(t *testing.T) {
	t.Parallel()
	require.Equal(t, -1000.0, WeeklyGoalDelta(model.WeeklyLose2))
	require.Equal(t, -750.0, WeeklyGoalDelta(model.WeeklyLose1_5))
	require.Equal(t, 0.0, WeeklyGoalDelta(model.WeeklyMaintain))
	require.Equal(t, 500.0, WeeklyGoalDelta(model.WeeklyGain1))
	require.Equal(t, 0.0, WeeklyGoalDelta("bulk"))
}

func TestAgeOnBirthdayBoundary(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		dob  *time.Time
		want int
	}{
		{"birthday passed", dob(1990, time.January, 10), 36},
		{"birthday today", dob(1990, time.June, 15), 36},
		{"birthday tomorrow", dob(1990, time.June, 16), 35},
		{"birthday later this year", dob(1990, time.December, 1), 35},
		{"too young clamps", dob(2020, time.January, 1), MinAge},
		{"too old clamps", dob(1900, time.January, 1), MaxAge},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, AgeOn(*tc.dob, refNow))
		})
	}
}

func TestProfileAgePrefersDateOfBirth(t *testing.T) {
	t.Parallel()
	p := model.Profile{DateOfBirth: dob(2000, time.January, 1), Age: intPtr(50)}
	require.Equal(t, 26, ProfileAge(p, refNow))
	p.DateOfBirth = nil
	require.Equal(t, 50, ProfileAge(p, refNow))
	p.Age = intPtr(8)
	require.Equal(t, MinAge, ProfileAge(p, refNow))
}

func TestApplyGoalsWritesCachedFields(t *testing.T) {
	t.Parallel()
	p := model.Profile{Sex: model.SexFemale, Age: intPtr(28), HeightCm: 165, WeightKg: 60, ActivityLevel: model.ActivityLightlyActive, WeeklyGoal: model.WeeklyMaintain}
	g := ApplyGoals(&p, refNow)
	require.Equal(t, g.CalorieGoal, p.CalorieGoal)
	require.Equal(t, g.BMR, p.BMR)
	require.Equal(t, g.TDEE, p.TDEE)
	// 600 + 1031.25 - 140 - 161 = 1330.25; x1.6 = 2128.4
	require.Equal(t, 2130, p.CalorieGoal)
}

func TestHeightAndWeightAreClamped(t *testing.T) {
	t.Parallel()
	tall := ComputeGoals(model.Profile{Sex: model.SexMale, Age: intPtr(30), HeightCm: 400, WeightKg: 1000}, refNow)
	capped := ComputeGoals(model.Profile{Sex: model.SexMale, Age: intPtr(30), HeightCm: MaxHeightCm, WeightKg: MaxWeightKg}, refNow)
	require.Equal(t, capped, tall)
}
