package entity

import "strings"

// Confidence of the composite score.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

func ParseConfidence(s string) Confidence {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c
	default:
		return ConfidenceUnknown
	}
}

// Archetype classifies why a topic is trending.
type Archetype string

const (
	ArchetypeScienceLed  Archetype = "science-led"
	ArchetypeSocialLed   Archetype = "social-led"
	ArchetypeSearchLed   Archetype = "search-led"
	ArchetypeCommerceLed Archetype = "commerce-led"
	ArchetypeSeasonal    Archetype = "seasonal"
	ArchetypeUnknown     Archetype = "unknown"
)

// ParseArchetype accepts "science_led", "Science-Led" and similar spellings.
func ParseArchetype(s string) Archetype {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	switch a := Archetype(norm); a {
	case ArchetypeScienceLed, ArchetypeSocialLed, ArchetypeSearchLed, ArchetypeCommerceLed, ArchetypeSeasonal:
		return a
	default:
		return ArchetypeUnknown
	}
}

// RiskLevel is the severity of a single risk flag.
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
	RiskOther  RiskLevel = "other"
)

// RiskLevelOrder lists severities from most to least severe.
var RiskLevelOrder = []RiskLevel{RiskHigh, RiskMedium, RiskLow, RiskOther}

func ParseRiskLevel(s string) RiskLevel {
	switch r := RiskLevel(strings.ToLower(strings.TrimSpace(s))); r {
	case RiskHigh, RiskMedium, RiskLow:
		return r
	case "critical", "severe":
		return RiskHigh
	default:
		return RiskOther
	}
}

// Severity ranks a level; higher is worse.
func (r RiskLevel) Severity() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// Convergence counts the independent sources corroborating a trend.
type Convergence struct {
	Active  int             `json:"active"`
	Total   int             `json:"total"`
	Sources map[string]bool `json:"sources,omitempty"`
}

// DriverContribution is one term of the composite score.
type DriverContribution struct {
	Name         string  `json:"driver_name"`
	Contribution float64 `json:"contribution"`
}

// Risk is a single risk flag attached to a score.
type Risk struct {
	Level  string `json:"risk_level"`
	Detail string `json:"detail"`
}

// ScoreExplainability is the raw explanation payload attached to a topic.
// Enumerated fields stay raw strings; the explain package maps them to closed sets.
type ScoreExplainability struct {
	Confidence      string               `json:"confidence"`
	Archetype       string               `json:"archetype"`
	Convergence     *Convergence         `json:"convergence,omitempty"`
	Drivers         []DriverContribution `json:"drivers,omitempty"`
	Risks           []Risk               `json:"risks,omitempty"`
	DampenerApplied *bool                `json:"dampener_applied,omitempty"`
	TimeToPeak      *string              `json:"time_to_peak,omitempty"`
}
