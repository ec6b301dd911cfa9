package vibe

import "time"

// FreeDailyScans is how many scans a non-premium profile gets per calendar day.
const FreeDailyScans = 1

// EffectiveDailyCount is the stored count when it belongs to today, and 0 otherwise.
func EffectiveDailyCount(p UserProfile, now time.Time) int {
	if p.LastScanDate == nil || *p.LastScanDate != LocalDate(now) {
		return 0
	}
	if p.DailyScanCount < 0 {
		return 0
	}
	return p.DailyScanCount
}

// CanScan reports whether a new scan may start now.
func CanScan(p UserProfile, isPremium bool, now time.Time) bool {
	if isPremium {
		return true
	}
	return EffectiveDailyCount(p, now) < FreeDailyScans
}

// RemainingScans returns the free scans left today, or -1 when unlimited.
func RemainingScans(p UserProfile, isPremium bool, now time.Time) int {
	if isPremium {
		return -1
	}
	remaining := FreeDailyScans - EffectiveDailyCount(p, now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RecordScan applies one completed scan to the profile and returns the
// updated copy. The input is not modified.
func RecordScan(p UserProfile, now time.Time) UserProfile {
	out := p.Clone()
	today := LocalDate(now)

	switch {
	case out.LastScanDate != nil && *out.LastScanDate == today:
		out.DailyScanCount = EffectiveDailyCount(out, now) + 1
	case out.LastScanDate != nil && *out.LastScanDate == today.Yesterday():
		out.Streak++
		out.DailyScanCount = 1
	default:
		out.Streak = 1
		out.DailyScanCount = 1
	}
	out.LastScanDate = datePtr(today)
	out.TotalScans++

	return EvaluateBadges(out)
}
