// Package heatmap bins topics into a dense price × competition grid.
// Bucket lists are always supplied by the caller; the package never derives boundaries.
package heatmap

import (
	"neuranest-explorer/internal/entity"
)

// Grid is a dense, row-major (price outer, competition inner) heatmap.
type Grid struct {
	PriceBuckets       []string             `json:"price_buckets"`
	CompetitionBuckets []string             `json:"competition_buckets"`
	Cells              []entity.HeatmapCell `json:"cells"`
	TotalTopics        int                  `json:"total_topics"`
	Unbinned           int                  `json:"unbinned"`
	MaxTopicCount      int                  `json:"max_topic_count"`
}

// Cell returns the cell for the given buckets.
func (g Grid) Cell(priceBucket, competitionBucket string) (entity.HeatmapCell, bool) {
	pi, ci := indexOf(g.PriceBuckets, priceBucket), indexOf(g.CompetitionBuckets, competitionBucket)
	if pi < 0 || ci < 0 {
		return entity.HeatmapCell{}, false
	}
	return g.Cells[pi*len(g.CompetitionBuckets)+ci], true
}

// Rows splits the cells per price bucket, in bucket order.
func (g Grid) Rows() [][]entity.HeatmapCell {
	rows := make([][]entity.HeatmapCell, len(g.PriceBuckets))
	width := len(g.CompetitionBuckets)
	for i := range rows {
		rows[i] = g.Cells[i*width : (i+1)*width]
	}
	return rows
}

type accumulator struct {
	count                              int
	dissatisfaction, opportunity, comp sum
}

type sum struct {
	total float64
	n     int
}

func (s *sum) add(v *float64) {
	if v != nil {
		s.total += *v
		s.n++
	}
}

func (s sum) avg() *float64 {
	if s.n == 0 {
		return nil
	}
	v := s.total / float64(s.n)
	return &v
}

// Bin aggregates topics by their price and competition bucket labels.
// Topics whose labels are not in the supplied lists are counted as unbinned.
func Bin(topics []entity.Topic, priceBuckets, competitionBuckets []string) Grid {
	g := emptyGrid(priceBuckets, competitionBuckets)
	acc := make([]accumulator, len(g.Cells))

	for _, t := range topics {
		pi, ci := indexOf(priceBuckets, t.PriceBucket), indexOf(competitionBuckets, t.CompetitionBucket)
		if pi < 0 || ci < 0 {
			g.Unbinned++
			continue
		}
		a := &acc[pi*len(competitionBuckets)+ci]
		a.count++
		a.dissatisfaction.add(t.Dissatisfaction)
		a.opportunity.add(t.OpportunityScore)
		a.comp.add(t.CompetitionIndex)
		g.TotalTopics++
	}

	for i := range g.Cells {
		g.Cells[i].TopicCount = acc[i].count
		g.Cells[i].AvgDissatisfaction = acc[i].dissatisfaction.avg()
		g.Cells[i].AvgOpportunityScore = acc[i].opportunity.avg()
		g.Cells[i].AvgCompetitionIndex = acc[i].comp.avg()
	}
	normalize(&g, true)
	return g
}

// Densify fills an upstream cell list out to the full grid. Cells outside the
// bucket lists are dropped and only the first cell per position is kept;
// upstream intensities are kept but clamped to [0,1].
func Densify(cells []entity.HeatmapCell, priceBuckets, competitionBuckets []string) Grid {
	g := emptyGrid(priceBuckets, competitionBuckets)
	filled := make([]bool, len(g.Cells))
	for _, c := range cells {
		pi, ci := indexOf(priceBuckets, c.PriceBucket), indexOf(competitionBuckets, c.CompetitionBucket)
		if pi < 0 || ci < 0 {
			continue
		}
		idx := pi*len(competitionBuckets) + ci
		if filled[idx] {
			continue
		}
		filled[idx] = true
		if c.TopicCount < 0 {
			c.TopicCount = 0
		}
		g.Cells[idx] = c
		g.TotalTopics += c.TopicCount
	}
	normalize(&g, false)
	return g
}

func emptyGrid(priceBuckets, competitionBuckets []string) Grid {
	g := Grid{
		PriceBuckets:       append([]string{}, priceBuckets...),
		CompetitionBuckets: append([]string{}, competitionBuckets...),
		Cells:              make([]entity.HeatmapCell, len(priceBuckets)*len(competitionBuckets)),
	}
	for pi, p := range priceBuckets {
		for ci, c := range competitionBuckets {
			g.Cells[pi*len(competitionBuckets)+ci] = entity.HeatmapCell{PriceBucket: p, CompetitionBucket: c}
		}
	}
	return g
}

// normalize sets MaxTopicCount and intensities. When recompute is false the
// existing intensity is only clamped; empty cells always get zero.
func normalize(g *Grid, recompute bool) {
	for _, c := range g.Cells {
		if c.TopicCount > g.MaxTopicCount {
			g.MaxTopicCount = c.TopicCount
		}
	}
	for i := range g.Cells {
		c := &g.Cells[i]
		switch {
		case c.TopicCount == 0:
			c.Intensity = 0
		case recompute:
			c.Intensity = float64(c.TopicCount) / float64(g.MaxTopicCount)
		default:
			c.Intensity = clamp01(c.Intensity)
		}
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
