package insight

import (
	"fmt"
	"math"
	"sort"
	"time"

	"FieldOps/internal/domain"
)

const (
	minPendingForClusters = 5
	minWeekdayBucket      = 2
	minWeekdayBuckets     = 2
	weekdayImprovementPct = 20.0
)

// Ideas suggests a clustered route and a best weekday.
func Ideas(s Snapshot) []Signal {
	var out []Signal

	if len(s.PendingItems) > minPendingForClusters {
		if best, ok := Largest(FindClusters(s.PendingItems)); ok {
			names := make([]string, 0, len(best.Members))
			for _, m := range best.Members {
				names = append(names, m.DisplayName())
			}
			out = append(out, Signal{
				Kind:       KindRouteOptimization,
				Message:    fmt.Sprintf("%d locations clustered within %.1f miles", len(best.Members), best.RadiusMiles()),
				Suggestion: "Visit these in one trip to save drive time",
				Value:      fmt.Sprintf("%d contacts in one route", len(best.Members)),
				Rationale:  "Geographic clustering detected - efficient routing opportunity",
				Members:    names,
			})
		}
	}

	if day, ok := BestWeekday(s.Recent, s.loc()); ok {
		out = append(out, Signal{
			Kind:       KindTimingSuggestion,
			Message:    fmt.Sprintf("%ss have shown %d%% better results", day.Day, day.ImprovementPct),
			Suggestion: fmt.Sprintf("Consider scheduling important follow-ups on %ss", day.Day),
			Value:      fmt.Sprintf("Higher engagement on %ss", day.Day),
			Rationale:  fmt.Sprintf("Based on %d interactions", day.SampleSize),
			DataPoints: day.SampleSize,
		})
	}
	return out
}

// WeekdayResult describes the best-performing weekday.
type WeekdayResult struct {
	Day            time.Weekday
	ImprovementPct int
	SampleSize     int
}

type bucket struct {
	key   string
	sum   int
	count int
}

func (b bucket) avg() float64 { return float64(b.sum) / float64(b.count) }

// buckets groups interaction scores by key in order of first appearance.
func buckets(recent []domain.InteractionRecord, key func(domain.InteractionRecord) (string, bool)) []bucket {
	index := map[string]int{}
	var out []bucket
	for _, rec := range recent {
		k, ok := key(rec)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, bucket{key: k})
		}
		out[i].sum += rec.Score
		out[i].count++
	}
	return out
}

func qualifying(in []bucket, min int) []bucket {
	out := make([]bucket, 0, len(in))
	for _, b := range in {
		if b.count >= min {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].avg() > out[j].avg() })
	return out
}

// BestWeekday compares weekday buckets of at least two interactions and
// reports the best one if it beats the median bucket by more than 20%.
func BestWeekday(recent []domain.InteractionRecord, loc *time.Location) (WeekdayResult, bool) {
	if loc == nil {
		loc = time.UTC
	}
	days := qualifying(buckets(recent, func(r domain.InteractionRecord) (string, bool) {
		return r.Timestamp.In(loc).Weekday().String(), true
	}), minWeekdayBucket)
	if len(days) < minWeekdayBuckets {
		return WeekdayResult{}, false
	}

	best, median := days[0], days[len(days)/2]
	improvement := (best.avg() - median.avg()) / median.avg() * 100
	if improvement <= weekdayImprovementPct {
		return WeekdayResult{}, false
	}
	return WeekdayResult{
		Day:            parseWeekday(best.key),
		ImprovementPct: int(math.Round(improvement)),
		SampleSize:     best.count,
	}, true
}

func parseWeekday(name string) time.Weekday {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if d.String() == name {
			return d
		}
	}
	return time.Sunday
}
