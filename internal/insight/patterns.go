package insight

import (
	"fmt"
	"time"

	"FieldOps/internal/domain"
)

const (
	minPatternInteractions = 5
	minTimeBucket          = 3
	minCategoryBucket      = 3
	minCategories          = 2
	significantGap         = 1.0
)

// Comparison contrasts the best and worst buckets of a pattern.
type Comparison struct {
	Best       string
	Worst      string
	BestAvg    float64
	WorstAvg   float64
	SampleSize int
}

// Patterns reports behavioral trends once there are at least five recent
// interactions.
func Patterns(s Snapshot) []Signal {
	if len(s.Recent) < minPatternInteractions {
		return nil
	}

	var out []Signal
	if cmp, ok := TimeOfDay(s.Recent, s.loc()); ok {
		out = append(out, Signal{
			Kind:       KindTimingPattern,
			Message:    fmt.Sprintf("%s visits: %.1f avg, %s visits: %.1f avg", cmp.Best, cmp.BestAvg, cmp.Worst, cmp.WorstAvg),
			Suggestion: "Maybe timing matters? Just an observation",
			Rationale:  fmt.Sprintf("Based on %d recent interactions", len(s.Recent)),
			Confidence: "medium",
			DataPoints: len(s.Recent),
		})
	}
	if cmp, ok := CategoryPattern(s.Recent, s.Items); ok {
		out = append(out, Signal{
			Kind:       KindCategoryPattern,
			Message:    fmt.Sprintf("%s locations: %.1f avg, %s: %.1f avg", cmp.Best, cmp.BestAvg, cmp.Worst, cmp.WorstAvg),
			Suggestion: fmt.Sprintf("%s businesses might be responding better", cmp.Best),
			Rationale:  fmt.Sprintf("Based on %d interactions across categories", cmp.SampleSize),
			Confidence: "medium",
			DataPoints: cmp.SampleSize,
		})
	}
	return out
}

// TimeOfDay compares morning (06-12h) with afternoon (12-17h) visits; it
// is significant when each side has three visits and the means differ by
// more than one point.
func TimeOfDay(recent []domain.InteractionRecord, loc *time.Location) (Comparison, bool) {
	if loc == nil {
		loc = time.UTC
	}
	var morning, afternoon bucket
	morning.key, afternoon.key = "Morning", "Afternoon"

	for _, rec := range recent {
		switch h := rec.Timestamp.In(loc).Hour(); {
		case h >= 6 && h < 12:
			morning.sum += rec.Score
			morning.count++
		case h >= 12 && h < 17:
			afternoon.sum += rec.Score
			afternoon.count++
		}
	}
	if morning.count < minTimeBucket || afternoon.count < minTimeBucket {
		return Comparison{}, false
	}

	best, worst := morning, afternoon
	if afternoon.avg() > morning.avg() {
		best, worst = afternoon, morning
	}
	if best.avg()-worst.avg() <= significantGap {
		return Comparison{}, false
	}
	return Comparison{
		Best: best.key, Worst: worst.key,
		BestAvg: best.avg(), WorstAvg: worst.avg(),
		SampleSize: best.count + worst.count,
	}, true
}

// CategoryPattern compares work-item categories with at least three
// interactions each; it needs two such categories and a best-minus-worst
// gap above one point.
func CategoryPattern(recent []domain.InteractionRecord, items map[string]domain.WorkItem) (Comparison, bool) {
	cats := qualifying(buckets(recent, func(r domain.InteractionRecord) (string, bool) {
		item, ok := items[r.WorkItemID]
		if !ok || item.Category == "" {
			return "", false
		}
		return item.Category, true
	}), minCategoryBucket)
	if len(cats) < minCategories {
		return Comparison{}, false
	}

	best, worst := cats[0], cats[len(cats)-1]
	if best.avg()-worst.avg() <= significantGap {
		return Comparison{}, false
	}

	sample := 0
	for _, c := range cats {
		sample += c.count
	}
	return Comparison{
		Best: best.key, Worst: worst.key,
		BestAvg: best.avg(), WorstAvg: worst.avg(),
		SampleSize: sample,
	}, true
}
