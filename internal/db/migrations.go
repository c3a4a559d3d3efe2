package db

import (
	"database/sql"
	"fmt"
)

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "initial_schema",
		sql: `
CREATE TABLE IF NOT EXISTS profile (
  id INTEGER PRIMARY KEY CHECK(id = 1),
  sex TEXT NOT NULL DEFAULT 'male' CHECK(sex IN ('male', 'female')),
  date_of_birth TEXT,
  age INTEGER CHECK(age > 0),
  height_cm REAL NOT NULL DEFAULT 170 CHECK(height_cm > 0),
  weight_kg REAL NOT NULL DEFAULT 70 CHECK(weight_kg > 0),
  starting_weight_kg REAL NOT NULL DEFAULT 0 CHECK(starting_weight_kg >= 0),
  goal_weight_kg REAL NOT NULL DEFAULT 0 CHECK(goal_weight_kg >= 0),
  activity_level TEXT NOT NULL DEFAULT 'lightly_active',
  weekly_goal TEXT NOT NULL DEFAULT 'maintain',
  macro_carbs_pct INTEGER NOT NULL DEFAULT 50 CHECK(macro_carbs_pct BETWEEN 0 AND 100),
  macro_protein_pct INTEGER NOT NULL DEFAULT 20 CHECK(macro_protein_pct BETWEEN 0 AND 100),
  macro_fat_pct INTEGER NOT NULL DEFAULT 30 CHECK(macro_fat_pct BETWEEN 0 AND 100),
  bmr REAL NOT NULL DEFAULT 0,
  tdee REAL NOT NULL DEFAULT 0,
  calorie_goal INTEGER NOT NULL DEFAULT 0,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS foods (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  brand TEXT NOT NULL DEFAULT '',
  kcal_per_100g REAL NOT NULL CHECK(kcal_per_100g >= 0),
  carbs_per_100g REAL NOT NULL DEFAULT 0 CHECK(carbs_per_100g >= 0),
  protein_per_100g REAL NOT NULL DEFAULT 0 CHECK(protein_per_100g >= 0),
  fat_per_100g REAL NOT NULL DEFAULT 0 CHECK(fat_per_100g >= 0),
  fiber_per_100g REAL NOT NULL DEFAULT 0 CHECK(fiber_per_100g >= 0),
  sugar_per_100g REAL NOT NULL DEFAULT 0 CHECK(sugar_per_100g >= 0),
  sodium_per_100g REAL NOT NULL DEFAULT 0 CHECK(sodium_per_100g >= 0),
  serving_label TEXT NOT NULL DEFAULT '',
  grams_per_serving REAL CHECK(grams_per_serving > 0),
  source TEXT NOT NULL CHECK(source IN ('USDA', 'OFF', 'FATSECRET', 'CUSTOM')),
  barcode TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_foods_name ON foods(name COLLATE NOCASE);
CREATE INDEX IF NOT EXISTS idx_foods_barcode ON foods(barcode);
CREATE UNIQUE INDEX IF NOT EXISTS idx_foods_provider_name ON foods(source, name, brand) WHERE source <> 'CUSTOM';

CREATE TABLE IF NOT EXISTS diary_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  meal_type TEXT NOT NULL CHECK(meal_type IN ('breakfast', 'lunch', 'dinner', 'snack')),
  food_id INTEGER,
  food_name TEXT NOT NULL,
  custom_name TEXT NOT NULL DEFAULT '',
  amount REAL NOT NULL CHECK(amount > 0),
  unit TEXT NOT NULL,
  source TEXT NOT NULL CHECK(source IN ('database', 'scan', 'my_meal', 'custom')),
  kcal REAL NOT NULL CHECK(kcal >= 0),
  carbs REAL NOT NULL DEFAULT 0 CHECK(carbs >= 0),
  protein REAL NOT NULL DEFAULT 0 CHECK(protein >= 0),
  fat REAL NOT NULL DEFAULT 0 CHECK(fat >= 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(food_id) REFERENCES foods(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_diary_entries_date ON diary_entries(date);

CREATE TABLE IF NOT EXISTS exercise_entries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  date TEXT NOT NULL,
  time TEXT NOT NULL DEFAULT '',
  category TEXT NOT NULL CHECK(category IN ('cardio', 'strength')),
  name TEXT NOT NULL,
  duration_min INTEGER NOT NULL CHECK(duration_min BETWEEN 5 AND 300),
  calories INTEGER NOT NULL CHECK(calories >= 0),
  distance_km REAL CHECK(distance_km > 0),
  sets INTEGER CHECK(sets > 0),
  reps INTEGER CHECK(reps > 0),
  weight_kg REAL CHECK(weight_kg > 0),
  met REAL NOT NULL CHECK(met > 0),
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_exercise_entries_date ON exercise_entries(date);
`,
	},
	{
		version: 2,
		name:    "my_meals",
		sql: `
CREATE TABLE IF NOT EXISTS my_meals (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  total_kcal REAL NOT NULL DEFAULT 0 CHECK(total_kcal >= 0),
  total_carbs REAL NOT NULL DEFAULT 0 CHECK(total_carbs >= 0),
  total_protein REAL NOT NULL DEFAULT 0 CHECK(total_protein >= 0),
  total_fat REAL NOT NULL DEFAULT 0 CHECK(total_fat >= 0),
  photo_uri TEXT NOT NULL DEFAULT '',
  directions TEXT NOT NULL DEFAULT '',
  created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS my_meal_items (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  my_meal_id INTEGER NOT NULL,
  food_id INTEGER,
  name TEXT NOT NULL,
  amount REAL NOT NULL CHECK(amount > 0),
  unit TEXT NOT NULL,
  kcal REAL NOT NULL DEFAULT 0 CHECK(kcal >= 0),
  carbs REAL NOT NULL DEFAULT 0 CHECK(carbs >= 0),
  protein REAL NOT NULL DEFAULT 0 CHECK(protein >= 0),
  fat REAL NOT NULL DEFAULT 0 CHECK(fat >= 0),
  sort_order INTEGER NOT NULL DEFAULT 0,
  FOREIGN KEY(my_meal_id) REFERENCES my_meals(id) ON DELETE CASCADE,
  FOREIGN KEY(food_id) REFERENCES foods(id) ON DELETE SET NULL
);

CREATE INDEX IF NOT EXISTS idx_my_meal_items_meal ON my_meal_items(my_meal_id, sort_order);
`,
	},
	{
		version: 3,
		name:    "step_counts",
		sql: `
CREATE TABLE IF NOT EXISTS step_counts (
  date TEXT PRIMARY KEY,
  steps INTEGER NOT NULL CHECK(steps >= 0),
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
	{
		version: 4,
		name:    "barcode_cache",
		sql: `
CREATE TABLE IF NOT EXISTS barcode_cache (
  provider TEXT NOT NULL,
  barcode TEXT NOT NULL,
  food_json TEXT NOT NULL,
  fetched_at DATETIME NOT NULL,
  expires_at DATETIME NOT NULL,
  PRIMARY KEY(provider, barcode)
);

CREATE INDEX IF NOT EXISTS idx_barcode_cache_expires_at ON barcode_cache(expires_at);
`,
	},
	{
		version: 5,
		name:    "app_config",
		sql: `
CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`,
	},
}

type seedFood struct {
	name                      string
	source                    string
	kcal, carbs, protein, fat float64
	servingLabel              string
	gramsPerServing           float64
	category                  string
}

// Popular foods shown for an empty search before the user has logged anything.
var defaultFoods = []seedFood{
	{"Apple, raw", "USDA", 52, 13.8, 0.3, 0.2, "1 medium", 182, "Fruits"},
	{"Banana, raw", "USDA", 89, 22.8, 1.1, 0.3, "1 medium", 118, "Fruits"},
	{"Egg, whole, boiled", "USDA", 155, 1.1, 12.6, 10.6, "1 large", 50, "Dairy and Egg Products"},
	{"Chicken breast, roasted", "USDA", 165, 0, 31, 3.6, "1 breast", 172, "Poultry"},
	{"Rice, white, cooked", "USDA", 130, 28.2, 2.7, 0.3, "1 cup", 158, "Cereal Grains and Pasta"},
	{"Oats, rolled", "USDA", 379, 67.7, 13.2, 6.5, "1/2 cup", 40, "Breakfast Cereals"},
	{"Broccoli, raw", "USDA", 34, 6.6, 2.8, 0.4, "1 cup chopped", 91, "Vegetables"},
	{"Salmon, Atlantic, cooked", "USDA", 206, 0, 22.1, 12.4, "1 fillet", 154, "Finfish and Shellfish"},
	{"Whole milk", "OFF", 64, 4.8, 3.3, 3.6, "1 cup", 244, "Dairies"},
	{"Greek yogurt, plain", "OFF", 97, 3.9, 9, 5, "1 pot", 170, "Yogurts"},
	{"Peanut butter", "OFF", 588, 20, 25, 50, "2 tbsp", 32, "Spreads"},
	{"Whole wheat bread", "OFF", 247, 41, 13, 3.4, "1 slice", 32, "Breads"},
}

func ApplyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(`SELECT 1 FROM schema_migrations WHERE version = ?`, m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version, name) VALUES(?, ?)`, m.version, m.name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	if _, err := db.Exec(`INSERT OR IGNORE INTO profile(id) VALUES(1)`); err != nil {
		return fmt.Errorf("seed default profile: %w", err)
	}
	for _, f := range defaultFoods {
		if _, err := db.Exec(`
INSERT OR IGNORE INTO foods(name, source, kcal_per_100g, carbs_per_100g, protein_per_100g, fat_per_100g, serving_label, grams_per_serving, category)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.name, f.source, f.kcal, f.carbs, f.protein, f.fat, f.servingLabel, f.gramsPerServing, f.category,
		); err != nil {
			return fmt.Errorf("seed default food %s: %w", f.name, err)
		}
	}

	return nil
}
