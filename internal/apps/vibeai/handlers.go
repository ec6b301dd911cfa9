package vibeai

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/device"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/dto"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/gateway"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/navigation"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
	"github.com/gofiber/fiber/v2"
)

var uploadTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// VibeHandler handles HTTP requests for the device session.
type VibeHandler struct {
	service       *Service
	maxImageBytes int
}

func NewVibeHandler(service *Service) *VibeHandler {
	return &VibeHandler{service: service, maxImageBytes: service.maxImageBytes}
}

func (h *VibeHandler) session(c *fiber.Ctx) (*Orchestrator, error) {
	id, err := device.GetID(c)
	if err != nil {
		return nil, err
	}
	return h.service.Session(c.UserContext(), id)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
		Error: true, Message: message,
	})
}

// fail maps domain errors to HTTP statuses.
func (h *VibeHandler) fail(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, device.ErrMissingDevice):
		status = fiber.StatusUnauthorized
	case errors.Is(err, navigation.ErrInvalidTransition),
		errors.Is(err, navigation.ErrScanInFlight):
		status = fiber.StatusConflict
	case errors.Is(err, ErrConfirmationRequired):
		status = fiber.StatusPreconditionRequired
	case errors.Is(err, ErrResultNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrImageTooLarge):
		status = fiber.StatusRequestEntityTooLarge
	case errors.Is(err, vibe.ErrUnknownQuestion),
		errors.Is(err, vibe.ErrInvalidAnswer),
		errors.Is(err, vibe.ErrInvalidSituation),
		errors.Is(err, gateway.ErrInvalidImage),
		errors.Is(err, ErrImageRequired),
		errors.Is(err, ErrSituationRequired),
		errors.Is(err, ErrUnknownPlan),
		errors.Is(err, ErrInvalidTheme),
		errors.Is(err, ErrUnknownScreen):
		status = fiber.StatusBadRequest
	}

	message := err.Error()
	if status >= fiber.StatusInternalServerError {
		slog.Error("vibe request failed", "method", c.Method(), "path", c.Path(), "error", err)
		message = "Internal server error"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Error: true, Message: message})
}

// GetSession handles GET /api/p/vibe/session
func (h *VibeHandler) GetSession(c *fiber.Ctx) error {
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(o.Snapshot())
}

// GetQuestions handles GET /api/p/vibe/onboarding/questions
func (h *VibeHandler) GetQuestions(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": vibe.Questions()})
}

// AnswerQuestion handles POST /api/p/vibe/onboarding/answers
func (h *VibeHandler) AnswerQuestion(c *fiber.Ctx) error {
	var req AnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.AnswerOnboarding(c.UserContext(), req.QuestionID, req.Value)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// Navigate handles POST /api/p/vibe/navigate
func (h *VibeHandler) Navigate(c *fiber.Ctx) error {
	var req NavigateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.Navigate(c.UserContext(), req.Screen)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// GetSituations handles GET /api/p/vibe/situations
func (h *VibeHandler) GetSituations(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": vibe.Situations()})
}

// StageImage handles POST /api/p/vibe/scan/image
func (h *VibeHandler) StageImage(c *fiber.Ctx) error {
	var req StageImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ImageData == "" {
		return badRequest(c, "image_data is required")
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.StageImage(c.UserContext(), req.ImageData)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// UploadImage handles POST /api/p/vibe/scan/image/upload
func (h *VibeHandler) UploadImage(c *fiber.Ctx) error {
	file, err := c.FormFile("image")
	if err != nil {
		return badRequest(c, "image file is required")
	}
	if h.maxImageBytes > 0 && file.Size > int64(h.maxImageBytes) {
		return h.fail(c, ErrImageTooLarge)
	}
	mime := file.Header.Get("Content-Type")
	if !uploadTypes[mime] {
		return badRequest(c, "image must be JPEG, PNG or WebP")
	}

	f, err := file.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.fail(c, err)
	}

	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	img := gateway.Image{MIMEType: mime, Data: data}
	snap, err := o.StageImage(c.UserContext(), img.DataURI())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// ChooseSituation handles POST /api/p/vibe/scan/situation
func (h *VibeHandler) ChooseSituation(c *fiber.Ctx) error {
	var req SituationRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.ChooseSituation(c.UserContext(), req.Situation)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// StepBack handles POST /api/p/vibe/scan/back
func (h *VibeHandler) StepBack(c *fiber.Ctx) error {
	return h.act(c, (*Orchestrator).StepBack)
}

// GetEligibility handles GET /api/p/vibe/scan/eligibility
func (h *VibeHandler) GetEligibility(c *fiber.Ctx) error {
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(o.Eligibility())
}

// StartScan handles POST /api/p/vibe/scan/start
func (h *VibeHandler) StartScan(c *fiber.Ctx) error {
	id, err := device.GetID(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, started, err := h.service.StartScan(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if started {
		return c.Status(fiber.StatusAccepted).JSON(snap)
	}
	return c.JSON(snap)
}

// GetPaywall handles GET /api/p/vibe/paywall
func (h *VibeHandler) GetPaywall(c *fiber.Ctx) error {
	return c.JSON(paywall())
}

// OpenPaywall handles POST /api/p/vibe/paywall/open
func (h *VibeHandler) OpenPaywall(c *fiber.Ctx) error {
	return h.act(c, (*Orchestrator).OpenPaywall)
}

// Purchase handles POST /api/p/vibe/paywall/purchase
func (h *VibeHandler) Purchase(c *fiber.Ctx) error {
	var req PurchaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.Purchase(c.UserContext(), req.Plan)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// DismissPaywall handles POST /api/p/vibe/paywall/dismiss
func (h *VibeHandler) DismissPaywall(c *fiber.Ctx) error {
	return h.act(c, (*Orchestrator).DismissPaywall)
}

// ResultBack handles POST /api/p/vibe/result/back
func (h *VibeHandler) ResultBack(c *fiber.Ctx) error {
	return h.act(c, (*Orchestrator).ResultBack)
}

// GetResults handles GET /api/p/vibe/results
func (h *VibeHandler) GetResults(c *fiber.Ctx) error {
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	results, err := o.History(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"data": results, "total": len(results)})
}

// OpenResult handles POST /api/p/vibe/results/:id/open
func (h *VibeHandler) OpenResult(c *fiber.Ctx) error {
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.OpenResult(c.UserContext(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// GetStats handles GET /api/p/vibe/stats
func (h *VibeHandler) GetStats(c *fiber.Ctx) error {
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	stats, err := o.Stats(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(stats)
}

// UpdateSettings handles PATCH /api/p/vibe/settings
func (h *VibeHandler) UpdateSettings(c *fiber.Ctx) error {
	var req SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.UpdateSettings(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

// DismissNotice handles POST /api/p/vibe/notice/dismiss
func (h *VibeHandler) DismissNotice(c *fiber.Ctx) error {
	return h.act(c, (*Orchestrator).DismissNotice)
}

// ResetData handles DELETE /api/p/vibe/data
func (h *VibeHandler) ResetData(c *fiber.Ctx) error {
	var req ResetRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
	}
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := o.Reset(c.UserContext(), req.Confirm)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}

func (h *VibeHandler) act(c *fiber.Ctx, fn func(*Orchestrator, context.Context) (Snapshot, error)) error {
	o, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := fn(o, c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(snap)
}
