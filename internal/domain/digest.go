package domain

import "time"

// DateLayout formats digest calendar days.
const DateLayout = "2006-01-02"

// DigestEntry is one rendered line of a digest section.
type DigestEntry struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Rationale  string `json:"why"`
}

// DigestContent is the narrative body of a daily digest.
type DigestContent struct {
	Greeting       string        `json:"greeting"`
	Summary        string        `json:"summary"`
	TimeSensitive  []DigestEntry `json:"timeSensitive"`
	HotLeads       []DigestEntry `json:"hotLeads"`
	Ideas          []DigestEntry `json:"ideas"`
	Patterns       []DigestEntry `json:"patterns"`
	ClosingMessage string        `json:"closingMessage"`
}

// DigestRecord is the stored digest for one actor and calendar day.
type DigestRecord struct {
	ActorID     string
	Date        string
	Content     DigestContent
	Fallback    bool
	GeneratedAt time.Time
	ViewedAt    *time.Time
	Dismissed   bool
	DismissedAt *time.Time
}

// DigestID is the document key of a digest: {actorId}_{date}.
func DigestID(actorID, date string) string {
	return actorID + "_" + date
}

// ID returns the document key of the record.
func (d DigestRecord) ID() string {
	return DigestID(d.ActorID, d.Date)
}

// ItemFeedback is the actor's reaction to one digest suggestion.
type ItemFeedback struct {
	ItemType string `json:"itemType" yaml:"itemType"`
	ItemID   string `json:"itemId" yaml:"itemId"`
	Action   string `json:"feedback" yaml:"feedback"`
	Outcome  string `json:"outcome" yaml:"outcome"`
	Notes    string `json:"notes" yaml:"notes"`
	Score    int    `json:"efficacyScore" yaml:"efficacyScore"`
}

// DigestFeedback is stored once per feedback submission.
type DigestFeedback struct {
	ID          string
	DigestID    string
	ActorID     string
	Items       []ItemFeedback
	Helpfulness string
	Comments    string
	CreatedAt   time.Time
}
