package model

import "time"

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

type ActivityLevel string

const (
	ActivitySedentary     ActivityLevel = "sedentary"
	ActivityLightlyActive ActivityLevel = "lightly_active"
	ActivityActive        ActivityLevel = "active"
	ActivityVeryActive    ActivityLevel = "very_active"
)

type WeeklyGoal string

const (
	WeeklyLose2    WeeklyGoal = "lose_2"
	WeeklyLose1_5  WeeklyGoal = "lose_1_5"
	WeeklyLose1    WeeklyGoal = "lose_1"
	WeeklyLose0_5  WeeklyGoal = "lose_0_5"
	WeeklyMaintain WeeklyGoal = "maintain"
	WeeklyGain0_5  WeeklyGoal = "gain_0_5"
	WeeklyGain1    WeeklyGoal = "gain_1"
)

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

// EntrySource records which logging flow produced a diary entry.
type EntrySource string

const (
	EntrySourceDatabase EntrySource = "database"
	EntrySourceScan     EntrySource = "scan"
	EntrySourceMyMeal   EntrySource = "my_meal"
	EntrySourceCustom   EntrySource = "custom"
)

type ExerciseCategory string

const (
	ExerciseCardio   ExerciseCategory = "cardio"
	ExerciseStrength ExerciseCategory = "strength"
)

type FoodSource string

const (
	FoodSourceUSDA      FoodSource = "USDA"
	FoodSourceOFF       FoodSource = "OFF"
	FoodSourceFatSecret FoodSource = "FATSECRET"
	FoodSourceCustom    FoodSource = "CUSTOM"
)

type Profile struct {
	Sex              Sex           `json:"sex"`
	DateOfBirth      *time.Time    `json:"date_of_birth,omitempty"`
	Age              *int          `json:"age,omitempty"`
	HeightCm         float64       `json:"height_cm"`
	WeightKg         float64       `json:"weight_kg"`
	StartingWeightKg float64       `json:"starting_weight_kg"`
	GoalWeightKg     float64       `json:"goal_weight_kg"`
	ActivityLevel    ActivityLevel `json:"activity_level"`
	WeeklyGoal       WeeklyGoal    `json:"weekly_goal"`
	MacroCarbsPct    int           `json:"macro_c"`
	MacroProteinPct  int           `json:"macro_p"`
	MacroFatPct      int           `json:"macro_f"`
	BMR              float64       `json:"bmr"`
	TDEE             float64       `json:"tdee"`
	CalorieGoal      int           `json:"calorie_goal"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

type DiaryEntry struct {
	ID         int64       `json:"id"`
	Date       string      `json:"date"`
	MealType   MealType    `json:"meal_type"`
	FoodID     *int64      `json:"food_id,omitempty"`
	FoodName   string      `json:"food_name"`
	CustomName string      `json:"custom_name,omitempty"`
	Amount     float64     `json:"amount"`
	Unit       string      `json:"unit"`
	Source     EntrySource `json:"source"`
	Kcal       float64     `json:"kcal"`
	Carbs      float64     `json:"carbs"`
	Protein    float64     `json:"protein"`
	Fat        float64     `json:"fat"`
	CreatedAt  time.Time   `json:"created_at"`
}

// DisplayName prefers the user override over the catalog name.
func (e DiaryEntry) DisplayName() string {
	if e.CustomName != "" {
		return e.CustomName
	}
	return e.FoodName
}

type ExerciseEntry struct {
	ID          int64            `json:"id"`
	Date        string           `json:"date"`
	Time        string           `json:"time,omitempty"`
	Category    ExerciseCategory `json:"category"`
	Name        string           `json:"name"`
	DurationMin int              `json:"duration_min"`
	Calories    int              `json:"calories"`
	DistanceKm  *float64         `json:"distance_km,omitempty"`
	Sets        *int             `json:"sets,omitempty"`
	Reps        *int             `json:"reps,omitempty"`
	WeightKg    *float64         `json:"weight_kg,omitempty"`
	MET         float64          `json:"met"`
	CreatedAt   time.Time        `json:"created_at"`
}

// Food is a catalog item. Nutrient fields are per 100 g.
type Food struct {
	ID              int64      `json:"id,omitempty"`
	Name            string     `json:"name"`
	Brand           string     `json:"brand,omitempty"`
	KcalPer100g     float64    `json:"kcal_per_100g"`
	CarbsPer100g    float64    `json:"carbs_per_100g"`
	ProteinPer100g  float64    `json:"protein_per_100g"`
	FatPer100g      float64    `json:"fat_per_100g"`
	FiberPer100g    float64    `json:"fiber_per_100g"`
	SugarPer100g    float64    `json:"sugar_per_100g"`
	SodiumPer100g   float64    `json:"sodium_per_100g"`
	ServingLabel    string     `json:"serving_label,omitempty"`
	GramsPerServing *float64   `json:"grams_per_serving,omitempty"`
	Source          FoodSource `json:"source"`
	Barcode         string     `json:"barcode,omitempty"`
	Category        string     `json:"category,omitempty"`
	CreatedAt       time.Time  `json:"created_at,omitempty"`
}

type MyMeal struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	TotalKcal    float64      `json:"total_kcal"`
	TotalCarbs   float64      `json:"total_carbs"`
	TotalProtein float64      `json:"total_protein"`
	TotalFat     float64      `json:"total_fat"`
	PhotoURI     string       `json:"photo_uri,omitempty"`
	Directions   string       `json:"directions,omitempty"`
	Items        []MyMealItem `json:"items"`
	CreatedAt    time.Time    `json:"created_at"`
}

type MyMealItem struct {
	ID        int64   `json:"id"`
	MyMealID  int64   `json:"my_meal_id"`
	FoodID    *int64  `json:"food_id,omitempty"`
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Unit      string  `json:"unit"`
	Kcal      float64 `json:"kcal"`
	Carbs     float64 `json:"carbs"`
	Protein   float64 `json:"protein"`
	Fat       float64 `json:"fat"`
	SortOrder int     `json:"sort_order"`
}

type StepCount struct {
	Date  string `json:"date"`
	Steps int    `json:"steps"`
}
