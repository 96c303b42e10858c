package usecase

import (
	"fmt"
	"hash/fnv"
	"strings"

	"FieldOps/internal/domain"
	"FieldOps/internal/insight"
)

var (
	openerGreetings = []string{"Hey", "Hi", "Hello", "Good morning", "Quick question"}
	openerOffers    = []string{"maintenance plan", "service check", "inspection offer", "free consultation", "quick review"}
)

// fallbackOpener picks a template line keyed by the item id, so the same
// item always gets the same line.
func fallbackOpener(item domain.WorkItem) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(item.ID))
	sum := h.Sum32()

	greeting := openerGreetings[sum%uint32(len(openerGreetings))]
	offer := openerOffers[(sum/uint32(len(openerGreetings)))%uint32(len(openerOffers))]
	return fmt.Sprintf("%s, commercial kitchen %s?", greeting, offer)
}

func fallbackIntel(item domain.WorkItem) Intel {
	return Intel{
		Briefing:        fmt.Sprintf("Target is %s. Standard commercial refrigeration setup likely.", item.DisplayName()),
		LikelyEquipment: []string{"Walk-in Cooler", "Reach-in Freezer", "Ice Machine"},
		PainPoints:      []string{"High energy bills", "Health department compliance"},
		SuggestedOpener: "Hi, checking if your refrigeration equipment is ready for the upcoming season?",
	}
}

// fallbackGuidance applies score and keyword rules to a logged note.
func fallbackGuidance(note string, score int) Guidance {
	g := Guidance{
		Analysis:        "AI analysis unavailable. Using rule-based guidance.",
		ImmediateAction: "Move to next location and continue volume phase.",
		LeadPriority:    PriorityMedium,
		NextMissionType: "new-contact",
		Command:         "Interaction logged. Continue to next location.",
	}

	switch {
	case score >= domain.CompletionThreshold:
		g.LeadPriority = PriorityHigh
		g.Command = "Strong contact! Follow up within 48 hours. For now, move to next location."
	case score <= 2:
		g.LeadPriority = PriorityLow
		g.Command = "Contact logged. Move to next location and maintain momentum."
	}

	lower := strings.ToLower(note)
	if strings.Contains(lower, "owner") && (strings.Contains(lower, "interested") || strings.Contains(lower, "estimate")) {
		g.LeadPriority = PriorityCritical
		g.NextMissionType = "follow-up"
		g.Command = "HOT LEAD! Owner is interested. Prepare estimate ASAP. This is a priority!"
	}
	if strings.Contains(lower, "call back") || strings.Contains(lower, "come back") {
		g.LeadPriority = PriorityHigh
		g.NextMissionType = "scheduled-return"
		g.Command = "Follow-up requested. Note the timing and return as promised. Move to next location now."
	}
	if strings.Contains(lower, "not interested") || strings.Contains(lower, "have someone") {
		g.LeadPriority = PriorityLow
		g.Command = "Polite rejection noted. Don't dwell, volume is key. Next location!"
	}
	return g
}

// fallbackDigest restates the detector output without rephrasing it.
func fallbackDigest(snap insight.Snapshot, signals insight.Signals) domain.DigestContent {
	return domain.DigestContent{
		Greeting: fmt.Sprintf("Good morning, %s!", greetingName(snap)),
		Summary: fmt.Sprintf("You have %d time-sensitive items and %d hot leads to follow up on.",
			len(signals.TimeSensitive), len(signals.HotLeads)),
		TimeSensitive:  insight.Entries(signals.TimeSensitive),
		HotLeads:       insight.Entries(signals.HotLeads),
		Ideas:          insight.Entries(signals.Ideas),
		Patterns:       insight.Entries(signals.Patterns),
		ClosingMessage: "This is just info - you do you!",
	}
}
