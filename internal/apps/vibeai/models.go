package vibeai

import (
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/navigation"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

// Snapshot is what the view renders: the session, the profile and the
// values derived from them.
type Snapshot struct {
	Session          navigation.Session `json:"session"`
	Profile          vibe.UserProfile   `json:"profile"`
	ProcessingStatus string             `json:"processing_status,omitempty"`
	Eligibility      Eligibility        `json:"eligibility"`
	OnboardingTotal  int                `json:"onboarding_total"`
}

type Eligibility struct {
	CanScan   bool `json:"can_scan"`
	Remaining int  `json:"remaining"`
	IsPremium bool `json:"is_premium"`
}

type AnswerRequest struct {
	QuestionID string      `json:"question_id"`
	Value      interface{} `json:"value"`
}

type NavigateRequest struct {
	Screen string `json:"screen"`
}

type StageImageRequest struct {
	ImageData string `json:"image_data"`
}

type SituationRequest struct {
	Situation string `json:"situation"`
}

type PurchaseRequest struct {
	Plan string `json:"plan"`
}

type SettingsRequest struct {
	Theme                *string `json:"theme"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
	IsPremium            *bool   `json:"is_premium"`
}

type ResetRequest struct {
	Confirm string `json:"confirm"`
}

type Perk struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Plan struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Period    string `json:"period"`
	FreeTrial bool   `json:"free_trial"`
	BestValue bool   `json:"best_value"`
}

type PaywallResponse struct {
	Perks      []Perk `json:"perks"`
	Plans      []Plan `json:"plans"`
	PrivacyURL string `json:"privacy_url"`
	TermsURL   string `json:"terms_url"`
}

type BadgeView struct {
	vibe.Badge
	Unlocked bool `json:"unlocked"`
}

type StatsResponse struct {
	Summary vibe.Summary `json:"summary"`
	Streak  int          `json:"streak"`
	Badges  []BadgeView  `json:"badges"`
}

var perks = []Perk{
	{Icon: "infinity", Title: "Unlimited Scans", Description: "Check every outfit, every day."},
	{Icon: "chart", Title: "Full Insights", Description: "All eleven aesthetic metrics on every result."},
	{Icon: "sparkles", Title: "No Watermarks", Description: "Share improved looks without branding."},
	{Icon: "hanger", Title: "AI Wardrobe Advice", Description: "Fix tips tuned to the situation you pick."},
}

var plans = []Plan{
	{ID: "yearly", Name: "Yearly", Price: "$29.99", Period: "year", FreeTrial: true, BestValue: true},
	{ID: "monthly", Name: "Monthly", Price: "$3.99", Period: "month"},
}

func findPlan(id string) (Plan, bool) {
	for _, p := range plans {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

func paywall() PaywallResponse {
	return PaywallResponse{
		Perks:      append([]Perk(nil), perks...),
		Plans:      append([]Plan(nil), plans...),
		PrivacyURL: "/api/legal/privacy",
		TermsURL:   "/api/legal/terms",
	}
}
