package navigation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

var (
	ErrInvalidTransition = errors.New("invalid transition")
	ErrScanInFlight      = errors.New("a scan is already processing")
	ErrImageRequired     = errors.New("an image must be staged first")
	ErrSituationRequired = errors.New("a situation must be chosen first")
)

// Action is a user intent or an asynchronous outcome fed to Transition.
type Action interface {
	name() string
}

type (
	// Boot starts a fresh session, as on a cold start.
	Boot struct{ Onboarded bool }
	// AnswerQuestion answers the current onboarding question.
	AnswerQuestion struct {
		QuestionID string
		Value      interface{}
	}
	SelectTab       struct{ Target Screen }
	StageImage      struct{ DataURI string }
	StepBack        struct{}
	ChooseSituation struct{ Label string }
	// StartScan asks to begin processing. Allowed is the quota decision.
	StartScan struct {
		Allowed bool
		At      time.Time
	}
	AnalysisComplete  struct{}
	ScanSucceeded     struct{ Result vibe.VibeResult }
	ScanFailed        struct{}
	OpenPaywall       struct{}
	PurchaseSucceeded struct{}
	DismissPaywall    struct{}
	OpenResult        struct{ Result vibe.VibeResult }
	ResultBack        struct{}
	DismissNotice     struct{}
)

func (Boot) name() string              { return "boot" }
func (AnswerQuestion) name() string    { return "answer_question" }
func (SelectTab) name() string         { return "select_tab" }
func (StageImage) name() string        { return "stage_image" }
func (StepBack) name() string          { return "step_back" }
func (ChooseSituation) name() string   { return "choose_situation" }
func (StartScan) name() string         { return "start_scan" }
func (AnalysisComplete) name() string  { return "analysis_complete" }
func (ScanSucceeded) name() string     { return "scan_succeeded" }
func (ScanFailed) name() string        { return "scan_failed" }
func (OpenPaywall) name() string       { return "open_paywall" }
func (PurchaseSucceeded) name() string { return "purchase_succeeded" }
func (DismissPaywall) name() string    { return "dismiss_paywall" }
func (OpenResult) name() string        { return "open_result" }
func (ResultBack) name() string        { return "result_back" }
func (DismissNotice) name() string     { return "dismiss_notice" }

type EffectKind int

const (
	EffectNone EffectKind = iota
	// EffectCompleteOnboarding: mark the profile onboarded and store Answers.
	EffectCompleteOnboarding
	// EffectRoutedToPaywall: the quota blocked a scan.
	EffectRoutedToPaywall
	// EffectBeginProcessing: run the analysis for the staged image and situation.
	EffectBeginProcessing
	// EffectGrantPremium: the profile becomes premium.
	EffectGrantPremium
)

// Effect is work the caller must carry out after a transition.
type Effect struct {
	Kind    EffectKind
	Answers map[string]interface{}
}

func invalid(a Action, s Session) error {
	return fmt.Errorf("%w: %s from %s", ErrInvalidTransition, a.name(), s.describe())
}

func (s Session) describe() string {
	if s.Screen == ScreenScan {
		return string(s.Screen) + "/" + string(s.ScanStep)
	}
	return string(s.Screen)
}

// Transition applies a to s and returns the next session. s is never
// modified; on error the returned session equals s.
func Transition(s Session, a Action) (Session, Effect, error) {
	next := s.clone()
	none := Effect{Kind: EffectNone}

	switch a := a.(type) {
	case Boot:
		fresh := Session{Screen: ScreenHome, ScanStep: StepUpload}
		if !a.Onboarded {
			fresh.Screen = ScreenOnboarding
			fresh.OnboardingAnswers = map[string]interface{}{}
		}
		return fresh, none, nil

	case AnswerQuestion:
		if s.Screen != ScreenOnboarding {
			return s, none, invalid(a, s)
		}
		q, ok := vibe.QuestionAt(s.OnboardingStep)
		if !ok || q.ID != a.QuestionID {
			return s, none, fmt.Errorf("%w: expected answer to %q", vibe.ErrUnknownQuestion, q.ID)
		}
		value, err := vibe.ValidateAnswer(q, a.Value)
		if err != nil {
			return s, none, err
		}
		if next.OnboardingAnswers == nil {
			next.OnboardingAnswers = map[string]interface{}{}
		}
		next.OnboardingAnswers[q.ID] = value
		next.OnboardingStep++
		if _, more := vibe.QuestionAt(next.OnboardingStep); more {
			return next, none, nil
		}
		answers := next.OnboardingAnswers
		next.OnboardingAnswers = nil
		next.OnboardingStep = 0
		next.Screen = ScreenHome
		return next, Effect{Kind: EffectCompleteOnboarding, Answers: answers}, nil

	case SelectTab:
		if !a.Target.IsTab() || !s.Screen.IsTab() {
			return s, none, invalid(a, s)
		}
		if s.Processing() {
			return s, none, invalid(a, s)
		}
		if a.Target == ScreenScan {
			next.ScanStep = StepUpload
			if next.StagedImage != "" {
				next.ScanStep = StepContext
			}
		} else {
			next.Notice = ""
		}
		next.Screen = a.Target
		return next, none, nil

	case StageImage:
		if s.Screen != ScreenScan || s.ScanStep != StepUpload {
			return s, none, invalid(a, s)
		}
		if strings.TrimSpace(a.DataURI) == "" {
			return s, none, ErrImageRequired
		}
		next.StagedImage = a.DataURI
		next.ScanStep = StepContext
		next.Notice = ""
		return next, none, nil

	case StepBack:
		if s.Screen != ScreenScan {
			return s, none, invalid(a, s)
		}
		switch s.ScanStep {
		case StepContext:
			next.ScanStep = StepUpload
			next.StagedImage = ""
			next.Situation = ""
			next.Notice = ""
		case StepUpload:
			next.Screen = ScreenHome
		default:
			return s, none, invalid(a, s)
		}
		return next, none, nil

	case ChooseSituation:
		if s.Screen != ScreenScan || s.ScanStep != StepContext {
			return s, none, invalid(a, s)
		}
		label, err := vibe.NormalizeSituation(a.Label)
		if err != nil {
			return s, none, err
		}
		next.Situation = label
		return next, none, nil

	case StartScan:
		if s.Processing() {
			return s, none, ErrScanInFlight
		}
		if s.Screen != ScreenScan || s.ScanStep != StepContext {
			return s, none, invalid(a, s)
		}
		if s.StagedImage == "" {
			return s, none, ErrImageRequired
		}
		if s.Situation == "" {
			return s, none, ErrSituationRequired
		}
		if !a.Allowed {
			next.Screen = ScreenPaywall
			next.PaywallReturn = ScreenScan
			return next, Effect{Kind: EffectRoutedToPaywall}, nil
		}
		at := a.At
		next.ScanStep = StepProcessing
		next.ProcessingSince = &at
		next.AnalysisDone = false
		next.Notice = ""
		return next, Effect{Kind: EffectBeginProcessing}, nil

	case AnalysisComplete:
		if !s.Processing() {
			return s, none, invalid(a, s)
		}
		next.AnalysisDone = true
		return next, none, nil

	case ScanSucceeded:
		if !s.Processing() {
			return s, none, invalid(a, s)
		}
		r := a.Result
		next.Screen = ScreenResult
		next.Result = &r
		next.ScanStep = StepUpload
		next.StagedImage = ""
		next.Situation = ""
		next.ProcessingSince = nil
		next.AnalysisDone = false
		return next, none, nil

	case ScanFailed:
		if !s.Processing() {
			return s, none, invalid(a, s)
		}
		next.ScanStep = StepContext
		next.Notice = RetryNotice
		next.ProcessingSince = nil
		next.AnalysisDone = false
		return next, none, nil

	case OpenPaywall:
		switch s.Screen {
		case ScreenHome, ScreenProgress, ScreenSettings:
		default:
			return s, none, invalid(a, s)
		}
		next.Screen = ScreenPaywall
		next.PaywallReturn = s.Screen
		return next, none, nil

	case PurchaseSucceeded:
		if s.Screen != ScreenPaywall {
			return s, none, invalid(a, s)
		}
		next.Screen = s.returnScreen()
		next.PaywallReturn = ""
		return next, Effect{Kind: EffectGrantPremium}, nil

	case DismissPaywall:
		if s.Screen != ScreenPaywall {
			return s, none, invalid(a, s)
		}
		next.Screen = s.returnScreen()
		next.PaywallReturn = ""
		return next, none, nil

	case OpenResult:
		if s.Screen != ScreenHome && s.Screen != ScreenProgress {
			return s, none, invalid(a, s)
		}
		r := a.Result
		next.Screen = ScreenResult
		next.Result = &r
		return next, none, nil

	case ResultBack:
		if s.Screen != ScreenResult {
			return s, none, invalid(a, s)
		}
		next.Screen = ScreenHome
		next.Result = nil
		return next, none, nil

	case DismissNotice:
		next.Notice = ""
		return next, none, nil
	}

	return s, none, fmt.Errorf("%w: unknown action %T", ErrInvalidTransition, a)
}

func (s Session) returnScreen() Screen {
	if s.PaywallReturn == "" {
		return ScreenHome
	}
	return s.PaywallReturn
}
