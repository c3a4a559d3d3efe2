package foodsearch

import (
	"sort"
	"strings"

	"github.com/echoshade800/spoon-calorie-v2-sub000/internal/model"
)

const (
	scoreExact     = 100.0
	scorePrefix    = 80.0
	scoreSubstring = 60.0
	scoreOverlap   = 40.0
)

// NormalizeName is the de-duplication key: trimmed, lower-cased name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// RelevanceScore ranks a result name against the query for cross-provider
// merging: exact 100, prefix 80, substring 60, otherwise the share of
// query words present in the name scaled to 40.
func RelevanceScore(query, name string) float64 {
	q := NormalizeName(query)
	n := NormalizeName(name)
	switch {
	case q == "" || n == "":
		return 0
	case n == q:
		return scoreExact
	case strings.HasPrefix(n, q):
		return scorePrefix
	case strings.Contains(n, q):
		return scoreSubstring
	}

	queryWords := strings.Fields(q)
	nameWords := map[string]bool{}
	for _, w := range strings.Fields(n) {
		nameWords[w] = true
	}
	matched := 0
	for _, w := range queryWords {
		if nameWords[w] {
			matched++
		}
	}
	return float64(matched) / float64(len(queryWords)) * scoreOverlap
}

// SortByRelevance orders foods by descending score, then name.
func SortByRelevance(query string, foods []model.Food) {
	type scored struct {
		food  model.Food
		score float64
	}
	tmp := make([]scored, len(foods))
	for i := range foods {
		tmp[i] = scored{food: foods[i], score: RelevanceScore(query, foods[i].Name)}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].score != tmp[j].score {
			return tmp[i].score > tmp[j].score
		}
		return NormalizeName(tmp[i].food.Name) < NormalizeName(tmp[j].food.Name)
	})
	for i := range tmp {
		foods[i] = tmp[i].food
	}
}

// localTier orders local matches: exact name, name prefix, brand
// substring, everything else.
func localTier(query string, f model.Food) int {
	q := NormalizeName(query)
	n := NormalizeName(f.Name)
	switch {
	case n == q:
		return 0
	case strings.HasPrefix(n, q):
		return 1
	case q != "" && strings.Contains(NormalizeName(f.Brand), q):
		return 2
	default:
		return 3
	}
}

// RankLocal sorts local catalog matches by tier, then alphabetically.
func RankLocal(query string, foods []model.Food) {
	sort.SliceStable(foods, func(i, j int) bool {
		ti, tj := localTier(query, foods[i]), localTier(query, foods[j])
		if ti != tj {
			return ti < tj
		}
		return NormalizeName(foods[i].Name) < NormalizeName(foods[j].Name)
	})
}

// Merge appends local matches to external results, dropping case-insensitive
// name duplicates. On a collision the local food replaces the external one
// in place.
func Merge(external, local []model.Food) []model.Food {
	out := make([]model.Food, 0, len(external)+len(local))
	index := map[string]int{}
	fromLocal := map[string]bool{}
	for _, f := range external {
		key := NormalizeName(f.Name)
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = len(out)
		out = append(out, f)
	}
	for _, f := range local {
		key := NormalizeName(f.Name)
		if i, dup := index[key]; dup {
			if !fromLocal[key] {
				out[i] = f
				fromLocal[key] = true
			}
			continue
		}
		index[key] = len(out)
		fromLocal[key] = true
		out = append(out, f)
	}
	return out
}

func isPopularSource(s model.FoodSource) bool {
	return s == model.FoodSourceUSDA || s == model.FoodSourceOFF
}

func truncate(foods []model.Food, limit int) []model.Food {
	if limit > 0 && len(foods) > limit {
		return foods[:limit]
	}
	return foods
}
