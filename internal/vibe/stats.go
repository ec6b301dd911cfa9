package vibe

import (
	"math"
	"sort"
	"time"
)

const recentLimit = 5

type Summary struct {
	TotalScans    int             `json:"total_scans"`
	AverageScore  int             `json:"average_score"`
	BestScore     int             `json:"best_score"`
	VerdictCounts map[Verdict]int `json:"verdict_counts"`
	Recent        []VibeResult    `json:"recent"`
	// WeeklyTrend is this week's average minus last week's, in score points.
	// Nil when either week has no scans.
	WeeklyTrend *int `json:"weekly_trend"`
}

// Summarize builds the home and progress figures from history. results are
// in append order.
func Summarize(results []VibeResult, now time.Time) Summary {
	s := Summary{
		TotalScans: len(results),
		VerdictCounts: map[Verdict]int{
			VerdictYes:   0,
			VerdictRisky: 0,
			VerdictNo:    0,
		},
		Recent: []VibeResult{},
	}
	if len(results) == 0 {
		return s
	}

	total := 0
	for _, r := range results {
		total += r.Score
		if r.Score > s.BestScore {
			s.BestScore = r.Score
		}
		s.VerdictCounts[r.Verdict]++
	}
	s.AverageScore = int(math.Round(float64(total) / float64(len(results))))

	sorted := NewestFirst(results)
	if len(sorted) > recentLimit {
		sorted = sorted[:recentLimit]
	}
	s.Recent = sorted

	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)
	var thisWeek, lastWeek []int
	for _, r := range results {
		at := r.CreatedAt()
		switch {
		case at.After(weekAgo):
			thisWeek = append(thisWeek, r.Score)
		case at.After(twoWeeksAgo):
			lastWeek = append(lastWeek, r.Score)
		}
	}
	if len(thisWeek) > 0 && len(lastWeek) > 0 {
		delta := int(math.Round(mean(thisWeek) - mean(lastWeek)))
		s.WeeklyTrend = &delta
	}
	return s
}

// NewestFirst returns a copy of results ordered by timestamp, newest first.
// Ties keep reverse append order.
func NewestFirst(results []VibeResult) []VibeResult {
	out := make([]VibeResult, len(results))
	for i, r := range results {
		out[len(results)-1-i] = r
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

func mean(xs []int) float64 {
	sum := 0
	for _, x := range xs {
		sum += x
	}
	return float64(sum) / float64(len(xs))
}
