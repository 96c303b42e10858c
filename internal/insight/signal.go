package insight

import (
	"strings"

	"FieldOps/internal/domain"
)

// Signal kinds.
const (
	KindScheduledFollowUp = "scheduled_followup"
	KindHotLeadFollowUp   = "hot_lead_followup"
	KindHotLead           = "hot_lead"
	KindRouteOptimization = "route_optimization"
	KindTimingSuggestion  = "timing_suggestion"
	KindTimingPattern     = "timing_pattern"
	KindCategoryPattern   = "category_pattern"
)

// Signal is one noteworthy finding of a detector.
type Signal struct {
	Kind       string   `json:"type"`
	WorkItemID string   `json:"locationId,omitempty"`
	Title      string   `json:"locationName,omitempty"`
	Message    string   `json:"message"`
	Context    string   `json:"context,omitempty"`
	Suggestion string   `json:"suggestion"`
	Rationale  string   `json:"reasoning"`
	Urgency    string   `json:"urgency,omitempty"`
	Confidence string   `json:"confidence,omitempty"`
	Value      string   `json:"potentialValue,omitempty"`
	DataPoints int      `json:"dataPoints,omitempty"`
	Members    []string `json:"locations,omitempty"`
}

// Entry restates the signal as a digest line without rephrasing it.
func (s Signal) Entry() domain.DigestEntry {
	title := s.Title
	if title == "" {
		title = strings.Replace(s.Kind, "_", " ", 1)
	}
	return domain.DigestEntry{
		Title:      title,
		Message:    s.Message,
		Suggestion: s.Suggestion,
		Rationale:  s.Rationale,
	}
}

// Entries maps Entry over signals; the result is never nil.
func Entries(signals []Signal) []domain.DigestEntry {
	out := make([]domain.DigestEntry, 0, len(signals))
	for _, s := range signals {
		out = append(out, s.Entry())
	}
	return out
}

// Signals groups the four detector outputs.
type Signals struct {
	TimeSensitive []Signal `json:"timeSensitive"`
	HotLeads      []Signal `json:"hotLeads"`
	Ideas         []Signal `json:"ideas"`
	Patterns      []Signal `json:"patterns"`
}

// Detect runs every detector over s.
func Detect(s Snapshot) Signals {
	return Signals{
		TimeSensitive: TimeSensitive(s),
		HotLeads:      HotLeads(s),
		Ideas:         Ideas(s),
		Patterns:      Patterns(s),
	}
}
