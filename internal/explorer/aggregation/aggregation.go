// Package aggregation derives distributions and ranked subsets from an in-memory topic collection.
// Every function is pure: the input slice is never reordered and identical input yields identical output.
package aggregation

import (
	"sort"

	"neuranest-explorer/internal/entity"
)

// EmergingGemMinScore is the exclusive lower bound on opportunity score for an emerging gem.
const EmergingGemMinScore = 40.0

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

type StageCount struct {
	Stage entity.Stage `json:"stage"`
	Count int          `json:"count"`
}

// GroupByCategory counts topics per category, count descending then name ascending.
func GroupByCategory(topics []entity.Topic) []CategoryCount {
	counts := make(map[string]int)
	for _, t := range topics {
		counts[t.Category]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for category, n := range counts {
		out = append(out, CategoryCount{Category: category, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// GroupByStage counts topics per stage in entity.StageOrder, zero-filled.
func GroupByStage(topics []entity.Topic) []StageCount {
	counts := make(map[entity.Stage]int, len(entity.StageOrder))
	for _, t := range topics {
		counts[entity.ParseStage(string(t.Stage))]++
	}

	out := make([]StageCount, len(entity.StageOrder))
	for i, stage := range entity.StageOrder {
		out[i] = StageCount{Stage: stage, Count: counts[stage]}
	}
	return out
}

// TopMovers ranks by opportunity score descending.
func TopMovers(topics []entity.Topic, n int) []entity.Topic {
	return rank(topics, n, opportunity, true, nil)
}

// LowCompetition ranks by competition index ascending.
func LowCompetition(topics []entity.Topic, n int) []entity.Topic {
	return rank(topics, n, competition, false, nil)
}

// EmergingGems ranks emerging topics scoring above EmergingGemMinScore by opportunity descending.
func EmergingGems(topics []entity.Topic, n int) []entity.Topic {
	return rank(topics, n, opportunity, true, func(t entity.Topic) bool {
		return entity.ParseStage(string(t.Stage)) == entity.StageEmerging && t.OpportunityScore != nil && *t.OpportunityScore > EmergingGemMinScore
	})
}

func opportunity(t entity.Topic) *float64 { return t.OpportunityScore }
func competition(t entity.Topic) *float64 { return t.CompetitionIndex }

// rank copies, filters and orders topics by key. Null keys rank last; ties fall back to id.
func rank(topics []entity.Topic, n int, key func(entity.Topic) *float64, desc bool, keep func(entity.Topic) bool) []entity.Topic {
	if n <= 0 {
		return []entity.Topic{}
	}

	out := make([]entity.Topic, 0, len(topics))
	for _, t := range topics {
		if keep == nil || keep(t) {
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := key(out[i]), key(out[j])
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			if desc {
				return *a > *b
			}
			return *a < *b
		default:
			return out[i].ID < out[j].ID
		}
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Summary bundles the distributions and ranked subsets for one collection.
type Summary struct {
	Total          int             `json:"total"`
	ByCategory     []CategoryCount `json:"by_category"`
	ByStage        []StageCount    `json:"by_stage"`
	TopMovers      []entity.Topic  `json:"top_movers"`
	LowCompetition []entity.Topic  `json:"low_competition"`
	EmergingGems   []entity.Topic  `json:"emerging_gems"`
}

// Summarize computes every aggregation with the same limit for the ranked subsets.
func Summarize(topics []entity.Topic, limit int) Summary {
	return Summary{
		Total:          len(topics),
		ByCategory:     GroupByCategory(topics),
		ByStage:        GroupByStage(topics),
		TopMovers:      TopMovers(topics, limit),
		LowCompetition: LowCompetition(topics, limit),
		EmergingGems:   EmergingGems(topics, limit),
	}
}
