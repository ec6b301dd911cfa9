package vibe

type BadgeKind string

const (
	BadgeStreak BadgeKind = "streak"
	BadgeScans  BadgeKind = "scans"
)

type Badge struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Icon      string    `json:"icon"`
	Kind      BadgeKind `json:"kind"`
	Threshold int       `json:"threshold"`
}

var badges = []Badge{
	{ID: "first_scan", Name: "First Vibe", Icon: "📸", Kind: BadgeScans, Threshold: 1},
	{ID: "streak_3", Name: "On Fire", Icon: "🔥", Kind: BadgeStreak, Threshold: 3},
	{ID: "streak_7", Name: "Week Warrior", Icon: "⚡", Kind: BadgeStreak, Threshold: 7},
	{ID: "scans_10", Name: "Style Scholar", Icon: "🎓", Kind: BadgeScans, Threshold: 10},
	{ID: "streak_30", Name: "Vibe Legend", Icon: "👑", Kind: BadgeStreak, Threshold: 30},
	{ID: "scans_50", Name: "Aesthetic Icon", Icon: "💎", Kind: BadgeScans, Threshold: 50},
}

// Catalog returns every badge in display order.
func Catalog() []Badge {
	out := make([]Badge, len(badges))
	copy(out, badges)
	return out
}

func (b Badge) qualifies(p UserProfile) bool {
	switch b.Kind {
	case BadgeStreak:
		return p.Streak >= b.Threshold
	case BadgeScans:
		return p.TotalScans >= b.Threshold
	}
	return false
}

// EvaluateBadges adds every badge the profile now qualifies for. Badges are
// only ever added.
func EvaluateBadges(p UserProfile) UserProfile {
	p.Badges = append([]string{}, p.Badges...)
	for _, b := range badges {
		if b.qualifies(p) && !p.HasBadge(b.ID) {
			p.Badges = append(p.Badges, b.ID)
		}
	}
	return p
}
