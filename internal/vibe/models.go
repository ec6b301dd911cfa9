package vibe

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Verdict string

const (
	VerdictYes   Verdict = "YES"
	VerdictRisky Verdict = "RISKY"
	VerdictNo    Verdict = "NO"
)

// ParseVerdict accepts the three verdict literals, case-insensitively.
func ParseVerdict(s string) (Verdict, bool) {
	switch v := Verdict(strings.ToUpper(strings.TrimSpace(s))); v {
	case VerdictYes, VerdictRisky, VerdictNo:
		return v, true
	}
	return "", false
}

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

// UserProfile is the single persisted profile of a device.
type UserProfile struct {
	Onboarded            bool                   `json:"onboarded"`
	IsPremium            bool                   `json:"isPremium"`
	Theme                Theme                  `json:"theme"`
	NotificationsEnabled bool                   `json:"notificationsEnabled"`
	LastScanDate         *Date                  `json:"lastScanDate"`
	DailyScanCount       int                    `json:"dailyScanCount"`
	Streak               int                    `json:"streak"`
	TotalScans           int                    `json:"totalScans"`
	OnboardingAnswers    map[string]interface{} `json:"onboardingAnswers"`
	Badges               []string               `json:"badges"`
}

// DefaultProfile is what a device starts with before anything was saved.
func DefaultProfile() UserProfile {
	return UserProfile{
		Theme:                ThemeLight,
		NotificationsEnabled: true,
		OnboardingAnswers:    map[string]interface{}{},
		Badges:               []string{},
	}
}

// Clone returns a deep copy so callers can mutate without aliasing the original.
func (p UserProfile) Clone() UserProfile {
	out := p
	if p.LastScanDate != nil {
		d := *p.LastScanDate
		out.LastScanDate = &d
	}
	out.OnboardingAnswers = make(map[string]interface{}, len(p.OnboardingAnswers))
	for k, v := range p.OnboardingAnswers {
		out.OnboardingAnswers[k] = v
	}
	out.Badges = append([]string{}, p.Badges...)
	return out
}

func (p UserProfile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

type DetailedStats struct {
	ColorHarmony   int `json:"color_harmony"`
	Symmetry       int `json:"symmetry"`
	FitAccuracy    int `json:"fit_accuracy"`
	TextureQuality int `json:"texture_quality"`
	Composition    int `json:"composition"`
}

type Insights struct {
	Lighting    int `json:"lighting"`
	Style       int `json:"style"`
	Cleanliness int `json:"cleanliness"`
	Grooming    int `json:"grooming"`
	Confidence  int `json:"confidence"`
	Alignment   int `json:"alignment"`
}

// VibeReport is the validated output of the analysis call.
type VibeReport struct {
	Score         int           `json:"score"`
	Verdict       Verdict       `json:"verdict"`
	FixTip        string        `json:"fix_tip"`
	DetailedStats DetailedStats `json:"detailedStats"`
	Insights      Insights      `json:"insights"`
}

// VibeResult is one completed scan. Never edited after creation.
type VibeResult struct {
	ID               string        `json:"id"`
	Timestamp        int64         `json:"timestamp"`
	Score            int           `json:"score"`
	Verdict          Verdict       `json:"verdict"`
	FixTip           string        `json:"fix_tip"`
	Situation        string        `json:"situation"`
	ImageURL         string        `json:"imageUrl"`
	ImprovedImageURL *string       `json:"improvedImageUrl,omitempty"`
	DetailedStats    DetailedStats `json:"detailedStats"`
	Insights         Insights      `json:"insights"`
}

// NewResult builds a result from a report. improved may be empty.
func NewResult(report VibeReport, situation, imageURL, improved string, now time.Time) VibeResult {
	r := VibeResult{
		ID:            NewResultID(),
		Timestamp:     now.UnixMilli(),
		Score:         report.Score,
		Verdict:       report.Verdict,
		FixTip:        report.FixTip,
		Situation:     situation,
		ImageURL:      imageURL,
		DetailedStats: report.DetailedStats,
		Insights:      report.Insights,
	}
	if improved != "" {
		r.ImprovedImageURL = &improved
	}
	return r
}

func NewResultID() string {
	return uuid.NewString()
}

func (r VibeResult) CreatedAt() time.Time {
	return time.UnixMilli(r.Timestamp)
}
