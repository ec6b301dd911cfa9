package navigation

type Screen string

const (
	ScreenOnboarding Screen = "ONBOARDING"
	ScreenPaywall    Screen = "PAYWALL"
	ScreenHome       Screen = "HOME"
	ScreenScan       Screen = "SCAN"
	ScreenProgress   Screen = "PROGRESS"
	ScreenSettings   Screen = "SETTINGS"
	ScreenResult     Screen = "RESULT"
)

// IsTab reports whether the screen sits on the bottom navigation bar.
func (s Screen) IsTab() bool {
	switch s {
	case ScreenHome, ScreenScan, ScreenProgress, ScreenSettings:
		return true
	}
	return false
}

func ParseScreen(s string) (Screen, bool) {
	switch sc := Screen(s); sc {
	case ScreenOnboarding, ScreenPaywall, ScreenHome, ScreenScan, ScreenProgress, ScreenSettings, ScreenResult:
		return sc, true
	}
	return "", false
}

// ScanStep is the sub-step inside SCAN. The order is upload, context, processing.
type ScanStep string

const (
	StepUpload     ScanStep = "upload"
	StepContext    ScanStep = "context"
	StepProcessing ScanStep = "processing"
)
