package vibe

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id string, score int, verdict Verdict, at time.Time) VibeResult {
	return VibeResult{ID: id, Score: score, Verdict: verdict, Timestamp: at.UnixMilli()}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, time.Now())
	assert.Equal(t, 0, s.TotalScans)
	assert.Equal(t, 0, s.AverageScore)
	assert.Empty(t, s.Recent)
	assert.Nil(t, s.WeeklyTrend)
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	history := []VibeResult{
		result("a", 40, VerdictNo, now.AddDate(0, 0, -10)),
		result("b", 60, VerdictRisky, now.AddDate(0, 0, -9)),
		result("c", 82, VerdictYes, now.AddDate(0, 0, -3)),
		result("d", 71, VerdictYes, now.AddDate(0, 0, -2)),
		result("e", 90, VerdictYes, now.AddDate(0, 0, -1)),
		result("f", 65, VerdictRisky, now.Add(-time.Hour)),
	}

	s := Summarize(history, now)
	assert.Equal(t, 6, s.TotalScans)
	assert.Equal(t, 68, s.AverageScore)
	assert.Equal(t, 90, s.BestScore)
	assert.Equal(t, 3, s.VerdictCounts[VerdictYes])
	assert.Equal(t, 2, s.VerdictCounts[VerdictRisky])
	assert.Equal(t, 1, s.VerdictCounts[VerdictNo])

	require.Len(t, s.Recent, 5)
	assert.Equal(t, "f", s.Recent[0].ID)
	assert.Equal(t, "b", s.Recent[4].ID)

	// this week (82+71+90+65)/4 = 77, last week (40+60)/2 = 50
	require.NotNil(t, s.WeeklyTrend)
	assert.Equal(t, 27, *s.WeeklyTrend)
}

func TestNewestFirstKeepsInput(t *testing.T) {
	t.Parallel()

	now := time.Now()
	in := []VibeResult{result("old", 1, VerdictNo, now.Add(-time.Minute)), result("new", 2, VerdictYes, now)}
	out := NewestFirst(in)
	assert.Equal(t, "new", out[0].ID)
	assert.Equal(t, "old", in[0].ID)
}

func TestProfileClone(t *testing.T) {
	t.Parallel()

	d := Date("2026-01-01")
	p := DefaultProfile()
	p.LastScanDate = &d
	p.OnboardingAnswers["goal"] = "Work presence"
	p.Badges = append(p.Badges, "first_scan")

	c := p.Clone()
	*c.LastScanDate = "2026-02-02"
	c.OnboardingAnswers["goal"] = "changed"
	c.Badges[0] = "changed"

	assert.Equal(t, Date("2026-01-01"), *p.LastScanDate)
	assert.Equal(t, "Work presence", p.OnboardingAnswers["goal"])
	assert.Equal(t, "first_scan", p.Badges[0])
}

func TestParseVerdict(t *testing.T) {
	t.Parallel()

	v, ok := ParseVerdict(" risky ")
	assert.True(t, ok)
	assert.Equal(t, VerdictRisky, v)

	_, ok = ParseVerdict("MAYBE")
	assert.False(t, ok)
}

func TestDateArithmetic(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Date("2026-02-28"), Date("2026-03-01").Yesterday())
	assert.Equal(t, Date("2025-12-31"), Date("2026-01-01").AddDays(-1))
	assert.Equal(t, Date("2028-03-01"), Date("2028-02-29").AddDays(1))

	d, err := ParseDate("2026-07-04")
	require.NoError(t, err)
	assert.Equal(t, Date("2026-07-04"), d)

	_, err = ParseDate("07/04/2026")
	assert.Error(t, err)
}
