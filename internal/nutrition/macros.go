package nutrition

import (
	"fmt"
	"math"
)

type MacroKind string

const (
	MacroCarbs   MacroKind = "carbs"
	MacroProtein MacroKind = "protein"
	MacroFat     MacroKind = "fat"
)

// KcalPerGram is 4 for carbs and protein, 9 for fat.
func KcalPerGram(kind MacroKind) float64 {
	if kind == MacroFat {
		return 9
	}
	return 4
}

// GramsFor converts a share of the daily calorie goal into grams of a macro.
func GramsFor(pct int, kind MacroKind, dailyCalorieGoal int) int {
	kcal := float64(dailyCalorieGoal) * float64(pct) / 100
	return int(math.Round(kcal / KcalPerGram(kind)))
}

// Split holds macro percentages of the daily calorie goal.
type Split struct {
	CarbsPct   int `json:"carbs_pct"`
	ProteinPct int `json:"protein_pct"`
	FatPct     int `json:"fat_pct"`
}

func (s Split) Total() int {
	return s.CarbsPct + s.ProteinPct + s.FatPct
}

// Mismatch reports the live-edit warning state: the split does not sum to 100.
func (s Split) Mismatch() bool {
	return s.Total() != 100
}

type MacroGrams struct {
	CarbsG   int `json:"carbs_g"`
	ProteinG int `json:"protein_g"`
	FatG     int `json:"fat_g"`
}

func (s Split) Grams(dailyCalorieGoal int) MacroGrams {
	return MacroGrams{
		CarbsG:   GramsFor(s.CarbsPct, MacroCarbs, dailyCalorieGoal),
		ProteinG: GramsFor(s.ProteinPct, MacroProtein, dailyCalorieGoal),
		FatG:     GramsFor(s.FatPct, MacroFat, dailyCalorieGoal),
	}
}

// Balance spreads 100 - total across the split: carbs and protein each get
// round(diff/3), fat gets the exact remainder. Values are clamped to
// [0,100]; any residual left by clamping goes to fat, then protein, then
// carbs, so the result always totals 100.
func Balance(s Split) Split {
	diff := 100 - s.Total()
	if diff == 0 {
		return s
	}
	share := int(math.Round(float64(diff) / 3))
	out := Split{
		CarbsPct:   clampPct(s.CarbsPct + share),
		ProteinPct: clampPct(s.ProteinPct + share),
		FatPct:     clampPct(s.FatPct + diff - 2*share),
	}

	residual := 100 - out.Total()
	for _, p := range []*int{&out.FatPct, &out.ProteinPct, &out.CarbsPct} {
		if residual == 0 {
			break
		}
		next := clampPct(*p + residual)
		residual -= next - *p
		*p = next
	}
	return out
}

// ValidationError is a user-facing rejection of an explicit save.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateForSave rejects splits that do not total exactly 100.
func ValidateForSave(s Split) error {
	if total := s.Total(); total != 100 {
		return &ValidationError{
			Field:   "macros",
			Message: fmt.Sprintf("macro percentages must total 100 (currently %d)", total),
		}
	}
	for _, v := range []int{s.CarbsPct, s.ProteinPct, s.FatPct} {
		if v < 0 || v > 100 {
			return &ValidationError{Field: "macros", Message: "each macro percentage must be between 0 and 100"}
		}
	}
	return nil
}

func clampPct(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
