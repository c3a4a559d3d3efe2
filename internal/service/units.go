package service

import (
	"fmt"
	"strings"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

type unitKind string

const (
	unitKindMass    unitKind = "mass"
	unitKindVolume  unitKind = "volume"
	unitKindServing unitKind = "serving"
)

type unitDef struct {
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[string]unitDef{
	// mass (base = g)
	"mg":  {kind: unitKindMass, toBaseUnit: 0.001},
	"g":   {kind: unitKindMass, toBaseUnit: 1},
	"kg":  {kind: unitKindMass, toBaseUnit: 1000},
	"oz":  {kind: unitKindMass, toBaseUnit: 28.349523125},
	"lb":  {kind: unitKindMass, toBaseUnit: 453.59237},
	"lbs": {kind: unitKindMass, toBaseUnit: 453.59237},

	// volume (base = ml)
	"ml":    {kind: unitKindVolume, toBaseUnit: 1},
	"l":     {kind: unitKindVolume, toBaseUnit: 1000},
	"tsp":   {kind: unitKindVolume, toBaseUnit: 4.92892159375},
	"tbsp":  {kind: unitKindVolume, toBaseUnit: 14.78676478125},
	"cup":   {kind: unitKindVolume, toBaseUnit: 236.5882365},
	"fl-oz": {kind: unitKindVolume, toBaseUnit: 29.5735295625},

	"serving":  {kind: unitKindServing, toBaseUnit: 1},
	"servings": {kind: unitKindServing, toBaseUnit: 1},
}

// nominalServingGrams is used for foods without a known serving weight.
const nominalServingGrams = 100.0

// Portion is the nutrition of an amount of a food.
type Portion struct {
	Grams   float64 `json:"grams"`
	Kcal    float64 `json:"kcal"`
	Carbs   float64 `json:"carbs"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
}

// PortionGrams converts amount+unit to grams. Volumes assume 1 g/ml.
func PortionGrams(f model.Food, amount float64, unit string) (float64, error) {
	if amount <= 0 {
		return 0, invalid("amount", "must be > 0")
	}
	def, ok := resolveUnit(unit)
	if !ok {
		return 0, invalid("unit", "unsupported unit %q", unit)
	}
	switch def.kind {
	case unitKindMass, unitKindVolume:
		return amount * def.toBaseUnit, nil
	case unitKindServing:
		grams := nominalServingGrams
		if f.GramsPerServing != nil && *f.GramsPerServing > 0 {
			grams = *f.GramsPerServing
		}
		return amount * grams, nil
	default:
		return 0, fmt.Errorf("unsupported unit kind %q", def.kind)
	}
}

// ScalePortion multiplies the per-100 g values by grams/100.
func ScalePortion(f model.Food, amount float64, unit string) (Portion, error) {
	grams, err := PortionGrams(f, amount, unit)
	if err != nil {
		return Portion{}, err
	}
	factor := grams / 100
	return Portion{
		Grams:   grams,
		Kcal:    f.KcalPer100g * factor,
		Carbs:   f.CarbsPer100g * factor,
		Protein: f.ProteinPer100g * factor,
		Fat:     f.FatPer100g * factor,
	}, nil
}

func ConvertAmount(value float64, fromUnit, toUnit string, densityGML float64) (float64, error) {
	if value <= 0 {
		return 0, fmt.Errorf("amount must be > 0")
	}
	from, ok := resolveUnit(fromUnit)
	if !ok || from.kind == unitKindServing {
		return 0, fmt.Errorf("unsupported unit %q", fromUnit)
	}
	to, ok := resolveUnit(toUnit)
	if !ok || to.kind == unitKindServing {
		return 0, fmt.Errorf("unsupported unit %q", toUnit)
	}

	if from.kind == to.kind {
		base := value * from.toBaseUnit
		return base / to.toBaseUnit, nil
	}

	if densityGML <= 0 {
		return 0, fmt.Errorf("density-g-per-ml must be > 0 for mass/volume conversion")
	}

	var grams float64
	switch from.kind {
	case unitKindMass:
		grams = value * from.toBaseUnit
	case unitKindVolume:
		grams = value * from.toBaseUnit * densityGML
	}

	switch to.kind {
	case unitKindMass:
		return grams / to.toBaseUnit, nil
	default:
		return grams / densityGML / to.toBaseUnit, nil
	}
}

func resolveUnit(unit string) (unitDef, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	def, ok := unitTable[u]
	return def, ok
}
