package vibeai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/store"
	"github.com/getsentry/sentry-go"
	"gorm.io/gorm"
)

// Service keeps one Orchestrator per device and runs scans in the
// background.
type Service struct {
	db            *gorm.DB
	gateway       *gateway.Gateway
	now           func() time.Time
	scanTimeout   time.Duration
	maxImageBytes int

	mu       sync.Mutex
	sessions map[string]*entry
	inflight sync.WaitGroup
}

type entry struct {
	orchestrator *Orchestrator
	lastSeen     time.Time
}

func NewService(db *gorm.DB, client gateway.VisionClient, cfg *config.Config) *Service {
	loc := cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Service{
		db:            db,
		gateway:       gateway.New(client).WithClock(now),
		now:           now,
		scanTimeout:   2 * timeout,
		maxImageBytes: cfg.MaxImageBytes,
		sessions:      make(map[string]*entry),
	}
}

// WithClock replaces the clock for quota decisions and result timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	s.gateway.WithClock(now)
	return s
}

// Session returns the device's orchestrator, loading it on first use. The
// profile is loaded without holding the registry lock.
func (s *Service) Session(ctx context.Context, deviceID string) (*Orchestrator, error) {
	if o, ok := s.lookup(deviceID); ok {
		return o, nil
	}

	loaded, err := NewOrchestrator(ctx, deviceID, store.NewGormStore(s.db, deviceID), s.gateway, s.now, s.maxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Another request may have loaded the device meanwhile.
	if e, ok := s.sessions[deviceID]; ok {
		e.lastSeen = s.now()
		return e.orchestrator, nil
	}
	s.sessions[deviceID] = &entry{orchestrator: loaded, lastSeen: s.now()}
	return loaded, nil
}

func (s *Service) lookup(deviceID string) (*Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[deviceID]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.orchestrator, true
}

// Sessions is the number of loaded device sessions.
func (s *Service) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// EvictIdle unloads sessions unused for longer than maxIdle. Sessions with a
// scan in flight stay. The profile is reloaded from the store on next use.
func (s *Service) EvictIdle(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxIdle)
	evicted := 0
	for id, e := range s.sessions {
		if e.lastSeen.After(cutoff) || e.orchestrator.Processing() {
			continue
		}
		delete(s.sessions, id)
		evicted++
	}
	return evicted
}

// StartEviction runs EvictIdle every interval until done is closed.
func (s *Service) StartEviction(interval, maxIdle time.Duration, done <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if n := s.EvictIdle(maxIdle); n > 0 {
					slog.Info("idle sessions unloaded", "count", n)
				}
			case <-done:
				return
			}
		}
	}()
}

// StartScan begins a scan for the device. started is false when the quota
// routed the device to the paywall instead.
func (s *Service) StartScan(ctx context.Context, deviceID string) (snap Snapshot, started bool, err error) {
	o, err := s.Session(ctx, deviceID)
	if err != nil {
		return Snapshot{}, false, err
	}

	job, snap, err := o.BeginScan(ctx)
	if err != nil || job == nil {
		return snap, false, err
	}

	s.inflight.Add(1)
	go s.process(o, job)
	return snap, true, nil
}

func (s *Service) process(o *Orchestrator, job *ScanJob) {
	defer s.inflight.Done()

	hub := sentry.CurrentHub().Clone()
	hub.Scope().SetTag("device_id", o.DeviceID())

	ctx, cancel := context.WithTimeout(context.Background(), s.scanTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("scan panicked: %v", r)
			hub.CaptureException(err)
			o.FailScan(err)
		}
	}()

	if err := o.ProcessScan(ctx, job); err != nil {
		hub.CaptureException(err)
	}
}

// Drain waits for in-flight scans to finish or for ctx to end.
func (s *Service) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		slog.Warn("scans still running at shutdown", "error", ctx.Err())
		return ctx.Err()
	}
}
