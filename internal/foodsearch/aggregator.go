// Package foodsearch merges the local food catalog with external nutrition
// providers into one ranked, de-duplicated result list.
package foodsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/result"
)

const (
	DefaultLimit       = 20
	MaxLimit           = 50
	MinExternalResults = 10

	defaultProviderTimeout = 15 * time.Second
	maxConcurrentProviders = 4
)

// Provider is an external nutrition source returning per-100 g foods.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]model.Food, error)
}

// Catalog is the local food table.
type Catalog interface {
	PopularFoods(ctx context.Context, limit int) ([]model.Food, error)
	MatchFoods(ctx context.Context, query string, limit int) ([]model.Food, error)
}

type Aggregator struct {
	Catalog   Catalog
	Providers []Provider
	// MinExternal is the external result count below which local matches
	// are mixed in. Zero means MinExternalResults.
	MinExternal     int
	ProviderTimeout time.Duration
	Logger          *slog.Logger
}

// Search never fails: provider and catalog errors degrade to whatever
// results are still available and are reported on the Result.
func (a *Aggregator) Search(ctx context.Context, query string, limit int) result.Result[[]model.Food] {
	limit = clampLimit(limit)
	query = strings.TrimSpace(query)
	if query == "" {
		return a.popular(ctx, limit)
	}

	external, extErr := a.searchExternal(ctx, query, limit)
	external = Merge(external, nil)
	if len(external) >= a.minExternal() {
		return result.From(truncate(external, limit), extErr, result.KindProvider)
	}

	var local []model.Food
	var localErr error
	if a.Catalog != nil {
		local, localErr = a.Catalog.MatchFoods(ctx, query, limit)
		if localErr != nil {
			a.logger().Warn("local food match failed", "query", query, "error", localErr)
			local = nil
		}
	}
	RankLocal(query, local)
	merged := truncate(Merge(external, local), limit)

	switch {
	case extErr != nil:
		return result.Fallback(result.KindProvider, errors.Join(extErr, localErr), merged)
	case localErr != nil:
		return result.Fallback(result.KindStorage, localErr, merged)
	default:
		return result.OK(merged)
	}
}

func (a *Aggregator) popular(ctx context.Context, limit int) result.Result[[]model.Food] {
	if a.Catalog == nil {
		return result.OK([]model.Food{})
	}
	foods, err := a.Catalog.PopularFoods(ctx, limit)
	if err != nil {
		a.logger().Warn("popular foods lookup failed", "error", err)
		return result.Fallback(result.KindStorage, err, []model.Food{})
	}
	out := make([]model.Food, 0, len(foods))
	for _, f := range foods {
		if isPopularSource(f.Source) {
			out = append(out, f)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return NormalizeName(out[i].Name) < NormalizeName(out[j].Name)
	})
	return result.OK(truncate(out, limit))
}

// searchExternal keeps a single provider's own ranking; results from
// several providers are fetched concurrently and re-ranked by relevance.
func (a *Aggregator) searchExternal(ctx context.Context, query string, limit int) ([]model.Food, error) {
	switch len(a.Providers) {
	case 0:
		return nil, nil
	case 1:
		return a.callProvider(ctx, a.Providers[0], query, limit)
	}

	batches := make([][]model.Food, len(a.Providers))
	errs := make([]error, len(a.Providers))
	var g errgroup.Group
	g.SetLimit(maxConcurrentProviders)
	for i, p := range a.Providers {
		i, p := i, p
		g.Go(func() error {
			batches[i], errs[i] = a.callProvider(ctx, p, query, limit)
			return nil
		})
	}
	_ = g.Wait()

	all := make([]model.Food, 0, limit*len(a.Providers))
	for _, b := range batches {
		all = append(all, b...)
	}
	SortByRelevance(query, all)
	return truncate(all, limit), errors.Join(errs...)
}

func (a *Aggregator) callProvider(ctx context.Context, p Provider, query string, limit int) ([]model.Food, error) {
	timeout := a.ProviderTimeout
	if timeout <= 0 {
		timeout = defaultProviderTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	foods, err := p.Search(ctx, query, limit)
	if err != nil {
		a.logger().Warn("food provider search failed", "provider", p.Name(), "query", query, "error", err)
		return nil, fmt.Errorf("%s: %w", p.Name(), err)
	}
	return foods, nil
}

func (a *Aggregator) minExternal() int {
	if a.MinExternal > 0 {
		return a.MinExternal
	}
	return MinExternalResults
}

func (a *Aggregator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Tracker hands out search generations so a slow response for an old
// query cannot overwrite results of a newer one.
type Tracker struct {
	gen atomic.Uint64
}

func (t *Tracker) Begin() uint64 {
	return t.gen.Add(1)
}

func (t *Tracker) IsCurrent(gen uint64) bool {
	return t.gen.Load() == gen
}
