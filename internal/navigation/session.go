package navigation

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

const RetryNotice = "Neural sync failed. Please try again with a clearer image."

var processingStatuses = []string{
	"Deconstructing aesthetic DNA...",
	"Mapping color harmonies...",
	"Analyzing spatial composition...",
	"Evaluating contextual alignment...",
	"Synthesizing fix protocols...",
}

const (
	generatingStatus   = "Manifesting improved vision..."
	statusStepInterval = 2 * time.Second
)

// Session is everything transient about what the user currently sees.
// It is plain data so it can be serialized as-is.
type Session struct {
	Screen            Screen                 `json:"screen"`
	ScanStep          ScanStep               `json:"scan_step"`
	StagedImage       string                 `json:"staged_image,omitempty"`
	Situation         string                 `json:"situation,omitempty"`
	PaywallReturn     Screen                 `json:"paywall_return,omitempty"`
	Result            *vibe.VibeResult       `json:"result,omitempty"`
	Notice            string                 `json:"notice,omitempty"`
	OnboardingStep    int                    `json:"onboarding_step"`
	OnboardingAnswers map[string]interface{} `json:"onboarding_answers,omitempty"`
	ProcessingSince   *time.Time             `json:"processing_since,omitempty"`
	AnalysisDone      bool                   `json:"analysis_done,omitempty"`
}

// Processing reports whether a scan is in flight.
func (s Session) Processing() bool {
	return s.Screen == ScreenScan && s.ScanStep == StepProcessing
}

// ProcessingStatus is the progress line to show while a scan is in flight.
func (s Session) ProcessingStatus(now time.Time) string {
	if !s.Processing() {
		return ""
	}
	if s.AnalysisDone {
		return generatingStatus
	}
	idx := 0
	if s.ProcessingSince != nil {
		idx = int(now.Sub(*s.ProcessingSince) / statusStepInterval)
	}
	if idx < 0 {
		idx = 0
	}
	if idx >= len(processingStatuses) {
		idx = len(processingStatuses) - 1
	}
	return processingStatuses[idx]
}

func (s Session) clone() Session {
	out := s
	if s.Result != nil {
		r := *s.Result
		out.Result = &r
	}
	if s.OnboardingAnswers != nil {
		out.OnboardingAnswers = make(map[string]interface{}, len(s.OnboardingAnswers))
		for k, v := range s.OnboardingAnswers {
			out.OnboardingAnswers[k] = v
		}
	}
	if s.ProcessingSince != nil {
		t := *s.ProcessingSince
		out.ProcessingSince = &t
	}
	return out
}
