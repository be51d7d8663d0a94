package domain

import "strings"

// Severity is the categorical rating of a review comment.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityMinor    Severity = "minor"
	SeverityGood     Severity = "good"
)

// ParseSeverity maps a raw model value to a known severity.
// Unknown values return false; callers must treat that as a validation failure.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityCritical:
		return SeverityCritical, true
	case SeverityMinor:
		return SeverityMinor, true
	case SeverityGood:
		return SeverityGood, true
	}
	return "", false
}

// IsCritical returns true for must-fix comments.
func (s Severity) IsCritical() bool {
	return s == SeverityCritical
}

// ReviewScores holds the five evaluation dimensions, each in [0,100].
type ReviewScores struct {
	Logic       float64 `json:"logic"`
	Content     float64 `json:"content"`
	Structure   float64 `json:"structure"`
	Feasibility float64 `json:"feasibility"`
	Scientific  float64 `json:"scientific"`
}

// Clamp forces every score into [0,100]. Out-of-range values from the
// model are clamped rather than rejected; scores only drive display.
func (s *ReviewScores) Clamp() {
	s.Logic = clamp(s.Logic)
	s.Content = clamp(s.Content)
	s.Structure = clamp(s.Structure)
	s.Feasibility = clamp(s.Feasibility)
	s.Scientific = clamp(s.Scientific)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// ReviewComment is a single inline critique tied to a source excerpt.
type ReviewComment struct {
	OriginalTextContext string   `json:"original_text_context"`
	Critique            string   `json:"critique"`
	Suggestion          string   `json:"suggestion"`
	Severity            Severity `json:"severity"`
}

// ReviewResponse is the full structured review produced by the model.
// Comment order is preserved as received; it is display order only.
type ReviewResponse struct {
	Summary  string          `json:"summary"`
	Scores   ReviewScores    `json:"scores"`
	Comments []ReviewComment `json:"comments"`
}

// CriticalCount returns the number of must-fix comments.
func (r *ReviewResponse) CriticalCount() int {
	return r.countBySeverity(SeverityCritical)
}

// MinorCount returns the number of should-improve comments.
func (r *ReviewResponse) MinorCount() int {
	return r.countBySeverity(SeverityMinor)
}

// GoodCount returns the number of positive notes.
func (r *ReviewResponse) GoodCount() int {
	return r.countBySeverity(SeverityGood)
}

func (r *ReviewResponse) countBySeverity(sev Severity) int {
	count := 0
	for _, c := range r.Comments {
		if c.Severity == sev {
			count++
		}
	}
	return count
}

// TotalComments returns the total number of comments.
func (r *ReviewResponse) TotalComments() int {
	return len(r.Comments)
}
