package vibeai

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/store"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin implements the apps.Plugin interface for Vibe AI.
type Plugin struct {
	client  gateway.VisionClient
	service *Service
	done    chan struct{}
}

// New creates a Vibe AI plugin that analyzes images with client.
func New(client gateway.VisionClient) *Plugin {
	return &Plugin{client: client}
}

func (p *Plugin) ID() string { return "vibe" }

func (p *Plugin) Models() []interface{} {
	return store.Models()
}

func (p *Plugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config) {
	p.service = NewService(db, p.client, cfg)
	if cfg.SessionIdleTimeout > 0 {
		p.done = make(chan struct{})
		p.service.StartEviction(cfg.SessionIdleTimeout/2, cfg.SessionIdleTimeout, p.done)
	}
	handler := NewVibeHandler(p.service)

	g := router.Group("/" + p.ID())

	g.Get("/session", handler.GetSession)
	g.Get("/onboarding/questions", handler.GetQuestions)
	g.Post("/onboarding/answers", handler.AnswerQuestion)
	g.Post("/navigate", handler.Navigate)
	g.Get("/situations", handler.GetSituations)

	g.Post("/scan/image", handler.StageImage)
	g.Post("/scan/image/upload", handler.UploadImage)
	g.Post("/scan/situation", handler.ChooseSituation)
	g.Post("/scan/back", handler.StepBack)
	g.Get("/scan/eligibility", handler.GetEligibility)
	g.Post("/scan/start", handler.StartScan)

	g.Get("/paywall", handler.GetPaywall)
	g.Post("/paywall/open", handler.OpenPaywall)
	g.Post("/paywall/purchase", handler.Purchase)
	g.Post("/paywall/dismiss", handler.DismissPaywall)

	g.Post("/result/back", handler.ResultBack)
	g.Get("/results", handler.GetResults)
	g.Post("/results/:id/open", handler.OpenResult)
	g.Get("/stats", handler.GetStats)

	g.Patch("/settings", handler.UpdateSettings)
	g.Post("/notice/dismiss", handler.DismissNotice)
	g.Delete("/data", handler.ResetData)
}

// Sessions is the number of loaded device sessions.
func (p *Plugin) Sessions() int {
	if p.service == nil {
		return 0
	}
	return p.service.Sessions()
}

// Drain stops session eviction and waits for in-flight scans.
func (p *Plugin) Drain(ctx context.Context) error {
	if p.service == nil {
		return nil
	}
	if p.done != nil {
		close(p.done)
		p.done = nil
	}
	return p.service.Drain(ctx)
}
