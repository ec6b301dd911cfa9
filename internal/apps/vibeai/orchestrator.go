package vibeai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/navigation"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/store"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

const resetConfirmation = "RESET"

var (
	ErrConfirmationRequired = errors.New(`reset requires {"confirm":"RESET"}`)
	ErrImageRequired        = navigation.ErrImageRequired
	ErrSituationRequired    = navigation.ErrSituationRequired
	ErrImageTooLarge        = errors.New("image exceeds the upload limit")
	ErrResultNotFound       = errors.New("result not found")
	ErrUnknownPlan          = errors.New("unknown plan")
	ErrInvalidTheme         = errors.New("theme must be light or dark")
	ErrUnknownScreen        = errors.New("unknown screen")
)

// ScanJob is the input of one processing run, captured when the scan starts.
type ScanJob struct {
	Image     string
	Situation string
}

// Orchestrator owns one device's session and profile. The in-memory profile
// is authoritative; persistence is best-effort.
type Orchestrator struct {
	deviceID      string
	store         store.Store
	gateway       *gateway.Gateway
	now           func() time.Time
	maxImageBytes int
	log           *slog.Logger

	mu      sync.Mutex
	profile vibe.UserProfile
	session navigation.Session
}

// NewOrchestrator loads the device's profile and boots a fresh session.
// An undecodable profile is replaced by the default one.
func NewOrchestrator(ctx context.Context, deviceID string, st store.Store, gw *gateway.Gateway, now func() time.Time, maxImageBytes int) (*Orchestrator, error) {
	log := slog.Default().With("device_id", deviceID)

	profile, err := st.Load(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrCorruptRecord) {
			return nil, err
		}
		log.Warn("stored profile discarded", "action", "persist", "error", err)
	}

	o := &Orchestrator{
		deviceID:      deviceID,
		store:         st,
		gateway:       gw,
		now:           now,
		maxImageBytes: maxImageBytes,
		log:           log,
		profile:       profile,
	}
	o.session, _, _ = navigation.Transition(navigation.Session{}, navigation.Boot{Onboarded: profile.Onboarded})
	return o, nil
}

func (o *Orchestrator) DeviceID() string {
	return o.deviceID
}

// Processing reports whether a scan is in flight.
func (o *Orchestrator) Processing() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.session.Processing()
}

// Snapshot returns the current state. Transitions never mutate a session in
// place, so the returned value is safe to use after the lock is released.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshot()
}

func (o *Orchestrator) snapshot() Snapshot {
	now := o.now()
	return Snapshot{
		Session:          o.session,
		Profile:          o.profile.Clone(),
		ProcessingStatus: o.session.ProcessingStatus(now),
		Eligibility:      o.eligibility(now),
		OnboardingTotal:  len(vibe.Questions()),
	}
}

func (o *Orchestrator) Eligibility() Eligibility {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.eligibility(o.now())
}

func (o *Orchestrator) eligibility(now time.Time) Eligibility {
	return Eligibility{
		CanScan:   vibe.CanScan(o.profile, o.profile.IsPremium, now),
		Remaining: vibe.RemainingScans(o.profile, o.profile.IsPremium, now),
		IsPremium: o.profile.IsPremium,
	}
}

// apply runs a transition and carries out its profile effects. The caller
// holds mu. EffectBeginProcessing is returned for the caller to act on.
func (o *Orchestrator) apply(ctx context.Context, a navigation.Action) (navigation.Effect, error) {
	next, effect, err := navigation.Transition(o.session, a)
	if err != nil {
		return effect, err
	}
	o.session = next

	switch effect.Kind {
	case navigation.EffectCompleteOnboarding:
		o.profile.Onboarded = true
		o.profile.OnboardingAnswers = effect.Answers
		o.save(ctx)
	case navigation.EffectRoutedToPaywall:
		metrics.PaywallRouted.Inc()
	case navigation.EffectGrantPremium:
		o.profile.IsPremium = true
		o.save(ctx)
	}
	return effect, nil
}

func (o *Orchestrator) do(ctx context.Context, a navigation.Action) (Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, err := o.apply(ctx, a); err != nil {
		return Snapshot{}, err
	}
	return o.snapshot(), nil
}

func (o *Orchestrator) save(ctx context.Context) {
	if err := o.store.Save(ctx, o.profile); err != nil {
		o.persistFailed("save", err)
	}
}

func (o *Orchestrator) persistFailed(operation string, err error) {
	metrics.PersistenceErrors.WithLabelValues(operation).Inc()
	o.log.Warn("persistence failed", "action", "persist", "operation", operation, "error", err)
}

func (o *Orchestrator) AnswerOnboarding(ctx context.Context, questionID string, value interface{}) (Snapshot, error) {
	return o.do(ctx, navigation.AnswerQuestion{QuestionID: questionID, Value: value})
}

// Navigate handles a tab tap.
func (o *Orchestrator) Navigate(ctx context.Context, screen string) (Snapshot, error) {
	target, ok := navigation.ParseScreen(screen)
	if !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownScreen, screen)
	}
	return o.do(ctx, navigation.SelectTab{Target: target})
}

// StageImage validates and stages the picture to scan.
func (o *Orchestrator) StageImage(ctx context.Context, data string) (Snapshot, error) {
	img, err := gateway.ParseDataURI(data)
	if err != nil {
		return Snapshot{}, err
	}
	if o.maxImageBytes > 0 && len(img.Data) > o.maxImageBytes {
		return Snapshot{}, ErrImageTooLarge
	}
	return o.do(ctx, navigation.StageImage{DataURI: img.DataURI()})
}

func (o *Orchestrator) StepBack(ctx context.Context) (Snapshot, error) {
	return o.do(ctx, navigation.StepBack{})
}

func (o *Orchestrator) ChooseSituation(ctx context.Context, label string) (Snapshot, error) {
	return o.do(ctx, navigation.ChooseSituation{Label: label})
}

// BeginScan checks the quota and either moves to processing, returning the
// job to run, or routes to the paywall with a nil job.
func (o *Orchestrator) BeginScan(ctx context.Context) (*ScanJob, Snapshot, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	now := o.now()
	allowed := vibe.CanScan(o.profile, o.profile.IsPremium, now)
	effect, err := o.apply(ctx, navigation.StartScan{Allowed: allowed, At: now})
	if err != nil {
		return nil, Snapshot{}, err
	}
	if effect.Kind != navigation.EffectBeginProcessing {
		return nil, o.snapshot(), nil
	}

	metrics.ScansStarted.Inc()
	job := &ScanJob{Image: o.session.StagedImage, Situation: o.session.Situation}
	return job, o.snapshot(), nil
}

// ProcessScan runs the gateway for job and resolves the processing step.
// On a primary failure nothing is recorded and the session returns to the
// context step with the retry notice.
func (o *Orchestrator) ProcessScan(ctx context.Context, job *ScanJob) error {
	start := time.Now()
	result, improved, err := o.gateway.Scan(ctx, job.Image, job.Situation, func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		_, _ = o.apply(ctx, navigation.AnalysisComplete{})
	})
	if err != nil {
		o.FailScan(err)
		return err
	}

	// Persistence must not be cut short by the scan deadline.
	persistCtx := context.WithoutCancel(ctx)

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.store.AppendResult(persistCtx, result); err != nil {
		o.persistFailed("append_result", err)
	}
	o.profile = vibe.RecordScan(o.profile, o.now())
	o.save(persistCtx)

	if _, err := o.apply(persistCtx, navigation.ScanSucceeded{Result: result}); err != nil {
		return err
	}
	metrics.ScansCompleted.WithLabelValues(string(result.Verdict)).Inc()
	attrs := []any{
		"score", result.Score,
		"verdict", result.Verdict,
		"improved_image", improved.Available(),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if !improved.Available() {
		attrs = append(attrs, "improved_image_reason", improved.Reason())
	}
	o.log.Info("scan completed", attrs...)
	return nil
}

// FailScan resolves an in-flight scan as failed. It is a no-op when nothing
// is processing.
func (o *Orchestrator) FailScan(cause error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.session.Processing() {
		return
	}
	_, _ = o.apply(context.Background(), navigation.ScanFailed{})
	metrics.ScansFailed.Inc()
	o.log.Error("scan analysis failed", "action", "analyze", "error", cause)
}

func (o *Orchestrator) OpenPaywall(ctx context.Context) (Snapshot, error) {
	return o.do(ctx, navigation.OpenPaywall{})
}

// Purchase simulates a successful store purchase of plan.
func (o *Orchestrator) Purchase(ctx context.Context, plan string) (Snapshot, error) {
	if _, ok := findPlan(plan); !ok {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}
	snap, err := o.do(ctx, navigation.PurchaseSucceeded{})
	if err == nil {
		o.log.Info("premium purchased", "plan", plan)
	}
	return snap, err
}

func (o *Orchestrator) DismissPaywall(ctx context.Context) (Snapshot, error) {
	return o.do(ctx, navigation.DismissPaywall{})
}

func (o *Orchestrator) ResultBack(ctx context.Context) (Snapshot, error) {
	return o.do(ctx, navigation.ResultBack{})
}

func (o *Orchestrator) DismissNotice(ctx context.Context) (Snapshot, error) {
	return o.do(ctx, navigation.DismissNotice{})
}

// OpenResult shows a stored result.
func (o *Orchestrator) OpenResult(ctx context.Context, id string) (Snapshot, error) {
	results, err := o.store.ListResults(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, r := range results {
		if r.ID == id {
			return o.do(ctx, navigation.OpenResult{Result: r})
		}
	}
	return Snapshot{}, fmt.Errorf("%w: %s", ErrResultNotFound, id)
}

// History returns every stored result in append order.
func (o *Orchestrator) History(ctx context.Context) ([]vibe.VibeResult, error) {
	return o.store.ListResults(ctx)
}

func (o *Orchestrator) Stats(ctx context.Context) (StatsResponse, error) {
	results, err := o.store.ListResults(ctx)
	if err != nil {
		return StatsResponse{}, err
	}

	o.mu.Lock()
	profile := o.profile.Clone()
	now := o.now()
	o.mu.Unlock()

	catalog := vibe.Catalog()
	views := make([]BadgeView, 0, len(catalog))
	for _, b := range catalog {
		views = append(views, BadgeView{Badge: b, Unlocked: profile.HasBadge(b.ID)})
	}

	return StatsResponse{
		Summary: vibe.Summarize(results, now),
		Streak:  profile.Streak,
		Badges:  views,
	}, nil
}

// UpdateSettings applies the fields present in req and saves once.
func (o *Orchestrator) UpdateSettings(ctx context.Context, req SettingsRequest) (Snapshot, error) {
	var theme vibe.Theme
	if req.Theme != nil {
		theme = vibe.Theme(*req.Theme)
		if !theme.Valid() {
			return Snapshot{}, ErrInvalidTheme
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if req.Theme != nil {
		o.profile.Theme = theme
	}
	if req.NotificationsEnabled != nil {
		o.profile.NotificationsEnabled = *req.NotificationsEnabled
	}
	if req.IsPremium != nil {
		o.profile.IsPremium = *req.IsPremium
	}
	o.save(ctx)
	return o.snapshot(), nil
}

// Reset erases profile and history and boots the device from defaults.
// It refuses while a scan is processing.
func (o *Orchestrator) Reset(ctx context.Context, confirm string) (Snapshot, error) {
	if confirm != resetConfirmation {
		return Snapshot{}, ErrConfirmationRequired
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.session.Processing() {
		return Snapshot{}, navigation.ErrScanInFlight
	}
	if err := o.store.ClearAll(ctx); err != nil {
		return Snapshot{}, err
	}

	o.profile = vibe.DefaultProfile()
	o.session, _, _ = navigation.Transition(o.session, navigation.Boot{Onboarded: false})
	o.log.Info("device data reset")
	return o.snapshot(), nil
}
