package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

// Store binds the package functions to one database and clock. It is the
// persistence collaborator for the diary aggregator, the search catalog and
// the session state.
type Store struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{DB: db, Now: time.Now}
}

func (s *Store) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Store) Profile(ctx context.Context) (model.Profile, error) {
	return GetProfile(ctx, s.DB, s.now())
}

func (s *Store) SaveProfile(ctx context.Context, p model.Profile) (model.Profile, error) {
	return SaveProfile(ctx, s.DB, p, s.now())
}

func (s *Store) EntriesForDate(ctx context.Context, date string) ([]model.DiaryEntry, error) {
	return ListEntriesForDate(ctx, s.DB, date)
}

func (s *Store) CreateEntry(ctx context.Context, in CreateEntryInput) (model.DiaryEntry, error) {
	return CreateEntry(ctx, s.DB, in, s.now())
}

func (s *Store) LogEntry(ctx context.Context, src LogSource, date string, meal model.MealType) (model.DiaryEntry, error) {
	return LogEntry(ctx, s.DB, src, date, meal, s.now())
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	return DeleteEntry(ctx, s.DB, id)
}

func (s *Store) ExercisesForDate(ctx context.Context, date string) ([]model.ExerciseEntry, error) {
	return ListExercisesForDate(ctx, s.DB, date)
}

func (s *Store) StepsForDate(ctx context.Context, date string) (int, error) {
	return StepsForDate(ctx, s.DB, date)
}

func (s *Store) PopularFoods(ctx context.Context, limit int) ([]model.Food, error) {
	return PopularFoods(ctx, s.DB, limit)
}

func (s *Store) MatchFoods(ctx context.Context, query string, limit int) ([]model.Food, error) {
	return MatchFoods(ctx, s.DB, query, limit)
}
