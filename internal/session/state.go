// Package session holds the in-memory application state behind the CLI and
// the REST API: the working profile, the latest search results and the
// save queue that persists profile edits.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/diary"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/foodsearch"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/nutrition"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/result"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/service"
)

// Store is the persistence the state needs.
type Store interface {
	diary.Sources
	SaveProfile(ctx context.Context, p model.Profile) (model.Profile, error)
}

type Options struct {
	SaveDelay time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

type State struct {
	store    Store
	searcher *foodsearch.Aggregator
	tracker  foodsearch.Tracker
	saves    *SaveQueue[model.Profile]
	logger   *slog.Logger
	now      func() time.Time

	mu      sync.RWMutex
	profile model.Profile
	query   string
	results []model.Food
}

// New loads the stored profile. A failed read starts from the default
// profile and is logged.
func New(ctx context.Context, store Store, searcher *foodsearch.Aggregator, opts Options) *State {
	s := &State{
		store:    store,
		searcher: searcher,
		logger:   opts.Logger,
		now:      opts.Now,
		results:  []model.Food{},
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.saves = NewSaveQueue(func(ctx context.Context, p model.Profile) error {
		_, err := store.SaveProfile(ctx, p)
		return err
	}, opts.SaveDelay, s.logger)

	p, err := store.Profile(ctx)
	if err != nil {
		s.logger.Warn("profile load failed, using defaults", "error", err)
		p = diary.DefaultProfile()
	}
	s.profile = p
	return s
}

func (s *State) Profile() model.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

// UpdateProfile applies a partial edit, recomputes the goals and queues a
// debounced save. The macro split is not checked here.
func (s *State) UpdateProfile(u service.ProfileUpdate) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.profile
	if err := u.Apply(&p); err != nil {
		return model.Profile{}, err
	}
	nutrition.ApplyGoals(&p, s.now())
	s.profile = p
	s.saves.Submit(p)
	return p, nil
}

// ConfirmProfile is the explicit save. The edit is applied to a copy and
// the split must total 100 before anything is queued, so a rejected save
// leaves both the working profile and the store untouched. The write
// happens before returning.
func (s *State) ConfirmProfile(ctx context.Context, u service.ProfileUpdate) (model.Profile, error) {
	s.mu.Lock()
	p := s.profile
	if err := u.Apply(&p); err != nil {
		s.mu.Unlock()
		return model.Profile{}, err
	}
	if err := nutrition.ValidateForSave(service.MacroSplit(p)); err != nil {
		s.mu.Unlock()
		return model.Profile{}, err
	}
	nutrition.ApplyGoals(&p, s.now())
	s.profile = p
	s.saves.Submit(p)
	s.mu.Unlock()

	if err := s.saves.Flush(ctx); err != nil {
		return model.Profile{}, fmt.Errorf("save profile: %w", err)
	}
	return p, nil
}

// BalanceMacros fixes the working split so it totals 100 and queues a save.
func (s *State) BalanceMacros() nutrition.Split {
	s.mu.Lock()
	defer s.mu.Unlock()
	split := service.BalanceProfileMacros(&s.profile)
	s.saves.Submit(s.profile)
	return split
}

// Search runs the aggregator and publishes the results only if no newer
// search started meanwhile. The returned bool reports whether it published.
func (s *State) Search(ctx context.Context, query string, limit int) (result.Result[[]model.Food], bool) {
	gen := s.tracker.Begin()
	r := s.searcher.Search(ctx, query, limit)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracker.IsCurrent(gen) {
		s.logger.Debug("discarding stale search results", "query", query)
		return r, false
	}
	s.query = query
	s.results = r.Value
	return r, true
}

func (s *State) Results() (string, []model.Food) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query, s.results
}

// Today builds the diary summary for date against the working profile, so
// an edit still waiting on its debounced save is already reflected.
func (s *State) Today(ctx context.Context, date string) diary.Summary {
	return diary.Build(ctx, workingSources{Sources: s.store, state: s}, date, s.logger)
}

type workingSources struct {
	diary.Sources
	state *State
}

func (w workingSources) Profile(context.Context) (model.Profile, error) {
	return w.state.Profile(), nil
}

// Flush writes any pending profile edit now.
func (s *State) Flush(ctx context.Context) error {
	return s.saves.Flush(ctx)
}

// Close writes any pending profile edit.
func (s *State) Close(ctx context.Context) error {
	return s.saves.Close(ctx)
}
