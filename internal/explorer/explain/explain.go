// Package explain decomposes a raw score explainability payload into an auditable explanation.
package explain

import (
	"sort"

	"neuranest-explorer/internal/entity"
)

// MinBarWidth keeps a zero-contribution driver visible.
const MinBarWidth = 0.04

const (
	FallbackArchetypeLabel = "Multi-Signal"
	NoRisksLabel           = "No risks detected"
)

var archetypeLabels = map[entity.Archetype]string{
	entity.ArchetypeScienceLed:  "Science-Led",
	entity.ArchetypeSocialLed:   "Social-Led",
	entity.ArchetypeSearchLed:   "Search-Led",
	entity.ArchetypeCommerceLed: "Commerce-Led",
	entity.ArchetypeSeasonal:    "Seasonal",
}

var confidenceLabels = map[entity.Confidence]string{
	entity.ConfidenceHigh:   "High confidence",
	entity.ConfidenceMedium: "Medium confidence",
	entity.ConfidenceLow:    "Low confidence",
}

// ConvergenceLevel buckets the number of corroborating sources.
type ConvergenceLevel string

const (
	ConvergenceStrong  ConvergenceLevel = "strong"
	ConvergenceGood    ConvergenceLevel = "good"
	ConvergencePartial ConvergenceLevel = "partial"
	ConvergenceWeak    ConvergenceLevel = "weak"
)

// ClassifyConvergence is a step function over the absolute active count.
// total is only used to cap active; thresholds never depend on it.
func ClassifyConvergence(active, total int) ConvergenceLevel {
	if total >= 0 && active > total {
		active = total
	}
	switch {
	case active >= 4:
		return ConvergenceStrong
	case active == 3:
		return ConvergenceGood
	case active == 2:
		return ConvergencePartial
	default:
		return ConvergenceWeak
	}
}

type DriverBar struct {
	Name         string  `json:"name"`
	Contribution float64 `json:"contribution"`
	Width        float64 `json:"width"`
}

type SourceSignal struct {
	Source string `json:"source"`
	Active bool   `json:"active"`
}

type ConvergenceSummary struct {
	Active  int              `json:"active"`
	Total   int              `json:"total"`
	Ratio   float64          `json:"ratio"`
	Level   ConvergenceLevel `json:"level"`
	Sources []SourceSignal   `json:"sources"`
}

type RiskItem struct {
	Level  entity.RiskLevel `json:"level"`
	Detail string           `json:"detail"`
}

type RiskSummary struct {
	None    bool                     `json:"none"`
	Label   string                   `json:"label,omitempty"`
	Highest entity.RiskLevel         `json:"highest,omitempty"`
	Counts  map[entity.RiskLevel]int `json:"counts"`
	Items   []RiskItem               `json:"items"`
}

// Explanation is the render-ready decomposition of a composite score.
// Available is false when the topic carried no payload; the rest then holds placeholders.
type Explanation struct {
	Available       bool               `json:"available"`
	Confidence      entity.Confidence  `json:"confidence"`
	ConfidenceLabel string             `json:"confidence_label"`
	Archetype       entity.Archetype   `json:"archetype"`
	ArchetypeLabel  string             `json:"archetype_label"`
	Drivers         []DriverBar        `json:"drivers"`
	Convergence     ConvergenceSummary `json:"convergence"`
	Risks           RiskSummary        `json:"risks"`
	DampenerApplied bool               `json:"dampener_applied"`
	TimeToPeak      *string            `json:"time_to_peak,omitempty"`
}

// Decompose never fails; absent or malformed parts become explicit empty states.
func Decompose(p *entity.ScoreExplainability) Explanation {
	if p == nil {
		return Explanation{
			Confidence:      entity.ConfidenceUnknown,
			ConfidenceLabel: "Unknown confidence",
			Archetype:       entity.ArchetypeUnknown,
			ArchetypeLabel:  FallbackArchetypeLabel,
			Drivers:         []DriverBar{},
			Convergence:     ConvergenceSummary{Level: ConvergenceWeak, Sources: []SourceSignal{}},
			Risks:           riskSummary(nil),
		}
	}

	archetype := entity.ParseArchetype(p.Archetype)
	confidence := entity.ParseConfidence(p.Confidence)

	e := Explanation{
		Available:       true,
		Confidence:      confidence,
		ConfidenceLabel: ConfidenceLabel(confidence),
		Archetype:       archetype,
		ArchetypeLabel:  ArchetypeLabel(archetype),
		Drivers:         DriverBars(p.Drivers),
		Convergence:     convergenceSummary(p.Convergence),
		Risks:           riskSummary(p.Risks),
		TimeToPeak:      p.TimeToPeak,
	}
	if p.DampenerApplied != nil {
		e.DampenerApplied = *p.DampenerApplied
	}
	return e
}

func ArchetypeLabel(a entity.Archetype) string {
	if label, ok := archetypeLabels[a]; ok {
		return label
	}
	return FallbackArchetypeLabel
}

func ConfidenceLabel(c entity.Confidence) string {
	if label, ok := confidenceLabels[c]; ok {
		return label
	}
	return "Unknown confidence"
}

// DriverBars scales each contribution against the largest one of this payload.
// Order is contribution descending; equal contributions keep payload order.
func DriverBars(drivers []entity.DriverContribution) []DriverBar {
	bars := make([]DriverBar, 0, len(drivers))
	top := 0.0
	for _, d := range drivers {
		c := d.Contribution
		if c < 0 {
			c = 0
		}
		if c > top {
			top = c
		}
		bars = append(bars, DriverBar{Name: d.Name, Contribution: c})
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Contribution > bars[j].Contribution
	})

	for i := range bars {
		w := 0.0
		if top > 0 {
			w = bars[i].Contribution / top
		}
		if w < MinBarWidth {
			w = MinBarWidth
		}
		bars[i].Width = w
	}
	return bars
}

func convergenceSummary(c *entity.Convergence) ConvergenceSummary {
	if c == nil {
		return ConvergenceSummary{Level: ConvergenceWeak, Sources: []SourceSignal{}}
	}

	total := c.Total
	if total <= 0 {
		total = len(c.Sources)
	}
	active := c.Active
	if active < 0 {
		active = 0
	}
	if active > total {
		active = total
	}

	sources := make([]SourceSignal, 0, len(c.Sources))
	for name, on := range c.Sources {
		sources = append(sources, SourceSignal{Source: name, Active: on})
	}
	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Active != sources[j].Active {
			return sources[i].Active
		}
		return sources[i].Source < sources[j].Source
	})

	s := ConvergenceSummary{
		Active:  active,
		Total:   total,
		Level:   ClassifyConvergence(active, total),
		Sources: sources,
	}
	if total > 0 {
		s.Ratio = float64(active) / float64(total)
	}
	return s
}

func riskSummary(risks []entity.Risk) RiskSummary {
	s := RiskSummary{
		Counts: make(map[entity.RiskLevel]int, len(entity.RiskLevelOrder)),
		Items:  make([]RiskItem, 0, len(risks)),
	}
	for _, level := range entity.RiskLevelOrder {
		s.Counts[level] = 0
	}
	if len(risks) == 0 {
		s.None = true
		s.Label = NoRisksLabel
		return s
	}

	for _, r := range risks {
		level := entity.ParseRiskLevel(r.Level)
		s.Counts[level]++
		s.Items = append(s.Items, RiskItem{Level: level, Detail: r.Detail})
		if s.Highest == "" || level.Severity() > s.Highest.Severity() {
			s.Highest = level
		}
	}
	sort.SliceStable(s.Items, func(i, j int) bool {
		return s.Items[i].Level.Severity() > s.Items[j].Level.Severity()
	})
	return s
}
