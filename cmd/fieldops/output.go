package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"FieldOps/internal/domain"
	"FieldOps/internal/narrative"
	"FieldOps/internal/usecase"
)

var (
	heading = color.New(color.FgCyan, color.Bold).SprintFunc()
	good    = color.New(color.FgGreen).SprintFunc()
	warn    = color.New(color.FgYellow).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

func printErr(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, color.RedString("error: %v", err))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func source(o narrative.Outcome) string {
	switch {
	case o.Cached:
		return faint("(cached)")
	case o.Fallback:
		return warn("(template: " + o.Reason + ")")
	default:
		return faint(fmt.Sprintf("(generated in %d attempt(s))", o.Attempts))
	}
}

func printAssignment(w io.Writer, a domain.Assignment) {
	if a.NoneAvailable {
		_, _ = fmt.Fprintln(w, warn(a.Message))
		return
	}
	m := a.Mission
	_, _ = fmt.Fprintf(w, "%s %s\n", heading("Next stop:"), m.Item.DisplayName())
	if m.Item.Address != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", m.Item.Address)
	}
	_, _ = fmt.Fprintf(w, "  %.2f km / %.2f mi away  %s\n", m.DistanceKm, m.DistanceMile, faint(m.Item.ID))
	tag := ""
	if m.Fallback {
		tag = " " + warn("(template)")
	}
	_, _ = fmt.Fprintf(w, "  Opener: %q%s\n", m.OpeningLine, tag)
}

func printIntel(w io.Writer, r usecase.IntelResult) {
	_, _ = fmt.Fprintf(w, "%s %s %s\n", heading("Intel:"), r.Item.DisplayName(), source(r.Outcome))
	_, _ = fmt.Fprintf(w, "  %s\n", r.Intel.Briefing)
	printList(w, "Likely equipment", r.Intel.LikelyEquipment)
	printList(w, "Pain points", r.Intel.PainPoints)
	_, _ = fmt.Fprintf(w, "  Opener: %q\n", r.Intel.SuggestedOpener)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	_, _ = fmt.Fprintf(w, "  %s:\n", title)
	for _, item := range items {
		_, _ = fmt.Fprintf(w, "    - %s\n", item)
	}
}

func printLogResult(w io.Writer, r usecase.LogResult) {
	_, _ = fmt.Fprintf(w, "%s %s -> %s\n", good("Logged"), r.Interaction.WorkItemID, r.Status)
	g := r.Guidance
	_, _ = fmt.Fprintf(w, "%s %s\n", heading("Guidance"), source(r.GuidanceOutcome))
	_, _ = fmt.Fprintf(w, "  Priority: %s  Next: %s\n", g.LeadPriority, g.NextMissionType)
	_, _ = fmt.Fprintf(w, "  %s\n", g.Analysis)
	_, _ = fmt.Fprintf(w, "  Now: %s\n", g.ImmediateAction)
	if g.Command != "" {
		_, _ = fmt.Fprintf(w, "  %s\n", strings.ToUpper(g.Command))
	}
	if r.ScheduledAction != nil {
		_, _ = fmt.Fprintf(w, "  %s %s at %s\n", good("Scheduled:"), r.ScheduledAction.Action, r.ScheduledAction.ScheduledAt.Format(time.RFC1123))
	}
	printKPIs(w, r.Aggregate)
}

func printKPIs(w io.Writer, agg domain.PerformanceAggregate) {
	_, _ = fmt.Fprintf(w, "%s visits %d, completed %d, attempted %d, pending %d, mean score %.2f\n",
		heading("KPIs:"), agg.TotalInteractions, agg.TotalCompleted, agg.TotalAttempted, agg.TotalPending, agg.MeanScore)
	if agg.LastActivityAt != nil {
		_, _ = fmt.Fprintf(w, "  last activity %s\n", agg.LastActivityAt.Format(time.RFC1123))
	}
}

func printActions(w io.Writer, actions []domain.ScheduledAction, loc *time.Location) {
	if len(actions) == 0 {
		_, _ = fmt.Fprintln(w, faint("No upcoming actions."))
		return
	}
	for _, a := range actions {
		_, _ = fmt.Fprintf(w, "%s  %s  %s %s\n",
			heading(a.ScheduledAt.In(loc).Format("Mon Jan 2 15:04")), a.Action, a.WorkItemName, faint(a.ID))
		if a.Reason != "" {
			_, _ = fmt.Fprintf(w, "  %s\n", a.Reason)
		}
	}
}

func printRunSummary(w io.Writer, s usecase.RunSummary) {
	_, _ = fmt.Fprintf(w, "%s generated %d, existing %d, skipped %d, failed %d\n",
		heading("Digest run:"), s.Generated, s.Existing, s.Skipped, s.Failed)
}
