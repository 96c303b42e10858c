package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"FieldOps/internal/domain"
	"FieldOps/internal/insight"
)

func openerPrompt(item domain.WorkItem) string {
	return fmt.Sprintf(`You write door-opening lines for a refrigeration technician cold-calling commercial kitchens.
Business: %q
Address: %q
Category: %q

Write one short, friendly opening line (about five words) that fits this business.

Respond in valid JSON only:
{"openingLine": "..."}`, item.DisplayName(), orUnknown(item.Address), orDefault(item.Category, "commercial kitchen"))
}

func intelPrompt(item domain.WorkItem) string {
	return fmt.Sprintf(`You provide pre-visit intelligence for a refrigeration technician.
Target: %q
Address: %q
Type: %q

1. PREDICT EQUIPMENT: what refrigeration or HVAC equipment does this kind of business likely run?
2. PAIN POINTS: what are the specific headaches for this type of business?
3. OPENER: one custom line showing you understand their business.

Respond in valid JSON only:
{
  "briefing": "2-sentence hook about why they need us specifically",
  "likelyEquipment": ["Item 1", "Item 2", "Item 3"],
  "painPoints": ["Pain 1", "Pain 2"],
  "suggestedOpener": "the one-liner to use"
}`, item.DisplayName(), orUnknown(item.Address), orDefault(item.Category, "Commercial Business"))
}

type followUpContext struct {
	Item      domain.WorkItem
	Note      string
	Score     int
	At        time.Time
	Location  *time.Location
	History   []domain.InteractionRecord
	Customers int
	Pending   int
}

func followUpPrompt(c followUpContext) string {
	var history strings.Builder
	if len(c.History) == 0 {
		history.WriteString("None - this is the first contact attempt\n")
	}
	for _, rec := range c.History {
		fmt.Fprintf(&history, "- %s: %q (Score: %d/5)\n", rec.Timestamp.In(c.Location).Format(domain.DateLayout), rec.Note, rec.Score)
	}

	local := c.At.In(c.Location)
	return fmt.Sprintf(`You coach a refrigeration technician cold-calling commercial kitchens. Analyze this field interaction and give tactical guidance.

CURRENT CONTEXT:
- Current time: %s
- Location: %s (%s)
- Address: %s
- Current customer count: %d
- Pending locations: %d

INTERACTION JUST LOGGED:
%q

OUTCOME SCORE: %d/5

PREVIOUS INTERACTIONS AT THIS LOCATION:
%s
RULES:
- Scores 1-2 are likely rejections: low priority, long-term nurture at most.
- Scores 4-5 are strong contacts: prioritize follow-up.
- If the note mentions an interested owner or a requested estimate, priority is critical.
- If the note asks to come back at a specific time, schedule the return for that exact time.
- Always give specific times in RFC3339 format.

Respond in valid JSON only:
{
  "analysis": "2-3 sentences on what happened",
  "immediateAction": "what to do in the next 5 minutes",
  "scheduledAction": {"time": "RFC3339 timestamp", "action": "...", "reason": "..."} or null,
  "leadPriority": "critical|high|medium|low",
  "nextMissionType": "new-contact|follow-up|scheduled-return|nurture",
  "aiCommand": "2-4 direct sentences to show the technician"
}`, local.Format(time.RFC3339), c.Item.DisplayName(), orDefault(c.Item.Category, "commercial kitchen"),
		orUnknown(c.Item.Address), c.Customers, c.Pending, c.Note, c.Score, history.String())
}

func digestPrompt(snap insight.Snapshot, signals insight.Signals) string {
	local := snap.Now
	if snap.Location != nil {
		local = snap.Now.In(snap.Location)
	}

	return fmt.Sprintf(`You are a helpful assistant for a field technician named %s. Create a friendly %s summary of their pipeline.

DATE: %s

TIME-SENSITIVE ITEMS:
%s

HOT LEADS:
%s

IDEAS:
%s

PATTERNS:
%s

ADDITIONAL CONTEXT:
- Active customers: %d
- Pending locations: %d
- Recent interactions (7 days): %d

GUIDELINES:
- Conversational and humble: suggestions and observations, never commands.
- Explain your reasoning briefly.
- If nothing is urgent or interesting, say so honestly. Do not invent items.

Respond in valid JSON only:
{
  "greeting": "personalized greeting",
  "summary": "one sentence overview of today",
  "timeSensitive": [{"title": "", "message": "", "suggestion": "", "why": ""}],
  "hotLeads": [{"title": "", "message": "", "suggestion": "", "why": ""}],
  "ideas": [{"title": "", "message": "", "suggestion": "", "why": ""}],
  "patterns": [{"title": "", "message": "", "suggestion": "", "why": ""}],
  "closingMessage": "casual sign-off that leaves them in charge"
}`, greetingName(snap), timeOfDay(local), local.Format("Monday, January 2"),
		signalBlock(signals.TimeSensitive), signalBlock(signals.HotLeads), signalBlock(signals.Ideas), signalBlock(signals.Patterns),
		snap.CompletedCount, len(snap.PendingItems), len(snap.Recent))
}

func signalBlock(signals []insight.Signal) string {
	if len(signals) == 0 {
		return "None"
	}
	raw, err := json.MarshalIndent(signals, "", "  ")
	if err != nil {
		return "None"
	}
	return string(raw)
}

func timeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func greetingName(snap insight.Snapshot) string {
	return domain.Actor{Name: snap.ActorName}.GreetingName()
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
