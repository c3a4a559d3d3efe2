package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

func TestGetProfileComputesGoalsForSeededRow(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	p, err := service.GetProfile(context.Background(), db, testNow)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.CalorieGoal <= 0 || p.CalorieGoal%10 != 0 {
		t.Fatalf("expected positive goal rounded to 10, got %d", p.CalorieGoal)
	}
	if p.MacroCarbsPct+p.MacroProteinPct+p.MacroFatPct != 100 {
		t.Fatalf("expected default split to total 100, got %+v", p)
	}
}

func TestSaveProfileRecomputesGoals(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	dob := time.Date(1990, 6, 1, 0, 0, 0, 0, time.UTC)
	saved, err := service.SaveProfile(ctx, db, model.Profile{
		Sex:             model.SexMale,
		DateOfBirth:     &dob,
		HeightCm:        180,
		WeightKg:        80,
		ActivityLevel:   model.ActivitySedentary,
		WeeklyGoal:      model.WeeklyLose1,
		MacroCarbsPct:   40,
		MacroProteinPct: 30,
		MacroFatPct:     30,
	}, testNow)
	if err != nil {
		t.Fatalf("save profile: %v", err)
	}
	// age 35: 800 + 1125 - 175 + 5 = 1755; x1.4 = 2457; -500 -> 1960
	if saved.BMR != 1755 {
		t.Fatalf("expected BMR 1755, got %v", saved.BMR)
	}
	if saved.CalorieGoal != 1960 {
		t.Fatalf("expected goal 1960, got %d", saved.CalorieGoal)
	}

	got, err := service.GetProfile(ctx, db, testNow)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if got.CalorieGoal != 1960 || got.DateOfBirth == nil || !got.DateOfBirth.Equal(dob) {
		t.Fatalf("unexpected stored profile: %+v", got)
	}
}

func TestSaveProfileAllowsMismatchedSplitButConfirmRejects(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	ctx := context.Background()

	p, err := service.GetProfile(ctx, db, testNow)
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	p.MacroCarbsPct = 60
	if _, err := service.SaveProfile(ctx, db, p, testNow); err != nil {
		t.Fatalf("debounced save should accept a live edit: %v", err)
	}

	_, err = service.ConfirmProfile(ctx, db, p, testNow)
	if !service.IsValidation(err) {
		t.Fatalf("expected validation error for 110%% split, got %v", err)
	}

	service.BalanceProfileMacros(&p)
	if _, err := service.ConfirmProfile(ctx, db, p, testNow); err != nil {
		t.Fatalf("balanced split should save: %v", err)
	}
}

func TestProfileUpdateApply(t *testing.T) {
	t.Parallel()
	p := model.Profile{Sex: model.SexFemale, WeightKg: 60}
	weight := 65.5
	level := model.ActivityActive
	dob := "1995-02-28"
	if err := (service.ProfileUpdate{WeightKg: &weight, ActivityLevel: &level, DateOfBirth: &dob}).Apply(&p); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if p.WeightKg != 65.5 || p.ActivityLevel != model.ActivityActive || p.DateOfBirth == nil {
		t.Fatalf("unexpected profile after apply: %+v", p)
	}

	bad := model.ActivityLevel("couch")
	err := (service.ProfileUpdate{ActivityLevel: &bad}).Apply(&p)
	var verr *service.ValidationError
	if !errors.As(err, &verr) || verr.Field != "activity_level" {
		t.Fatalf("expected activity_level validation error, got %v", err)
	}

	pct := 120
	if err := (service.ProfileUpdate{MacroFatPct: &pct}).Apply(&p); !service.IsValidation(err) {
		t.Fatalf("expected macro range validation error, got %v", err)
	}
}
