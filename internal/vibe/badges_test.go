package vibe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateBadges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		streak int
		total  int
		want   []string
	}{
		{"nothing yet", 0, 0, []string{}},
		{"first scan", 1, 1, []string{"first_scan"}},
		{"three day streak", 3, 3, []string{"first_scan", "streak_3"}},
		{"ten scans short streak", 1, 10, []string{"first_scan", "scans_10"}},
		{"everything", 30, 50, []string{"first_scan", "streak_3", "streak_7", "scans_10", "streak_30", "scans_50"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultProfile()
			p.Streak = tt.streak
			p.TotalScans = tt.total
			assert.Equal(t, tt.want, EvaluateBadges(p).Badges)
		})
	}
}

func TestEvaluateBadgesNoDuplicates(t *testing.T) {
	t.Parallel()

	p := DefaultProfile()
	p.Streak = 7
	p.TotalScans = 1
	p.Badges = []string{"streak_3"}

	got := EvaluateBadges(EvaluateBadges(p))
	assert.ElementsMatch(t, []string{"streak_3", "first_scan", "streak_7"}, got.Badges)
	assert.Equal(t, []string{"streak_3"}, p.Badges)
}

func TestCatalogIsACopy(t *testing.T) {
	t.Parallel()

	c := Catalog()
	c[0].Name = "changed"
	assert.NotEqual(t, "changed", Catalog()[0].Name)
}
