package insight

import (
	"fmt"
	"strings"
	"time"

	"FieldOps/internal/domain"
)

const engagementWindow = 48 * time.Hour

// TimeSensitive lists today's scheduled actions, then work items with a
// strong interaction in the last 48 hours that nothing is scheduled for.
func TimeSensitive(s Snapshot) []Signal {
	out := make([]Signal, 0, len(s.ScheduledToday))
	scheduled := make(map[string]bool, len(s.ScheduledToday))

	for _, action := range s.ScheduledToday {
		scheduled[action.WorkItemID] = true

		name := action.WorkItemName
		if item, ok := s.item(action.WorkItemID); ok {
			name = item.DisplayName()
		}
		out = append(out, Signal{
			Kind:       KindScheduledFollowUp,
			WorkItemID: action.WorkItemID,
			Title:      name,
			Message:    action.Action,
			Context:    action.Reason,
			Urgency:    "high",
			Suggestion: "Visit at " + action.ScheduledAt.In(s.loc()).Format("03:04 PM"),
			Rationale:  "Scheduled commitment - they're expecting you",
		})
	}

	cutoff := s.Now.Add(-engagementWindow)
	for _, rec := range s.Recent {
		if rec.Score < domain.CompletionThreshold || !rec.Timestamp.After(cutoff) {
			continue
		}
		if scheduled[rec.WorkItemID] {
			continue
		}
		item, ok := s.item(rec.WorkItemID)
		if !ok {
			continue
		}
		scheduled[rec.WorkItemID] = true

		out = append(out, Signal{
			Kind:       KindHotLeadFollowUp,
			WorkItemID: item.ID,
			Title:      item.DisplayName(),
			Message:    fmt.Sprintf("Strong engagement %d hours ago", hoursSince(s.Now, rec.Timestamp)),
			Context:    rec.Note,
			Urgency:    "medium",
			Suggestion: "Follow up while interest is fresh",
			Rationale:  fmt.Sprintf("%d/5 rating indicates interest", rec.Score),
		})
	}
	return out
}

// LeadKeywords mark a note as a buying signal.
var LeadKeywords = []string{"estimate", "quote", "pricing", "interested", "owner"}

// IsLeadNote reports whether note mentions any lead keyword.
func IsLeadNote(note string) bool {
	note = strings.ToLower(note)
	for _, kw := range LeadKeywords {
		if strings.Contains(note, kw) {
			return true
		}
	}
	return false
}

// HotLeads surfaces every recent interaction whose note reads like a
// pricing request, unless its work item is already completed.
func HotLeads(s Snapshot) []Signal {
	var out []Signal
	for _, rec := range s.Recent {
		if !IsLeadNote(rec.Note) {
			continue
		}
		item, ok := s.item(rec.WorkItemID)
		if !ok || item.Status == domain.StatusCompleted {
			continue
		}

		hours := hoursSince(s.Now, rec.Timestamp)
		suggestion := "Prepare and send estimate"
		if hours > 24 {
			suggestion = "Follow up today"
		}
		out = append(out, Signal{
			Kind:       KindHotLead,
			WorkItemID: item.ID,
			Title:      item.DisplayName(),
			Message:    fmt.Sprintf("Requested estimate %d hours ago", hours),
			Context:    rec.Note,
			Suggestion: suggestion,
			Confidence: "high",
			Rationale:  "Direct request for pricing indicates buying intent",
		})
	}
	return out
}
