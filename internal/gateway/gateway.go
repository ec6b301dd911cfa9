package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

// VisionClient is the generative-AI vision service.
type VisionClient interface {
	Analyze(ctx context.Context, img Image, situation string) (vibe.VibeReport, error)
	GenerateImprovedImage(ctx context.Context, img Image, fixTip string) (Image, error)
}

// ImprovedImage is the outcome of the best-effort generation call.
type ImprovedImage struct {
	image  *Image
	reason string
}

func Generated(img Image) ImprovedImage {
	return ImprovedImage{image: &img}
}

func Unavailable(reason string) ImprovedImage {
	return ImprovedImage{reason: reason}
}

func (i ImprovedImage) Available() bool {
	return i.image != nil
}

func (i ImprovedImage) Image() (Image, bool) {
	if i.image == nil {
		return Image{}, false
	}
	return *i.image, true
}

// DataURI is empty when the image is unavailable.
func (i ImprovedImage) DataURI() string {
	img, ok := i.Image()
	if !ok {
		return ""
	}
	return img.DataURI()
}

func (i ImprovedImage) Reason() string {
	return i.reason
}

// Gateway runs the two-call scan contract on top of a VisionClient.
// Neither call is retried.
type Gateway struct {
	client VisionClient
	now    func() time.Time
}

func New(client VisionClient) *Gateway {
	return &Gateway{client: client, now: time.Now}
}

// WithClock replaces the clock used to timestamp results.
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	g.now = now
	return g
}

// Analyze is the primary call. Any error aborts the scan.
func (g *Gateway) Analyze(ctx context.Context, img Image, situation string) (vibe.VibeReport, error) {
	report, err := g.client.Analyze(ctx, img, situation)
	if err != nil {
		return vibe.VibeReport{}, fmt.Errorf("analyze: %w", err)
	}
	return report, nil
}

// GenerateImprovedImage is the secondary call. It never returns an error
// and never panics; failures become Unavailable and are logged.
func (g *Gateway) GenerateImprovedImage(ctx context.Context, img Image, fixTip string) (improved ImprovedImage) {
	defer func() {
		if r := recover(); r != nil {
			improved = g.unavailable(fmt.Errorf("generation panicked: %v", r))
		}
	}()

	out, err := g.client.GenerateImprovedImage(ctx, img, fixTip)
	if err == nil && len(out.Data) == 0 {
		err = ErrEmptyResponse
	}
	if err != nil {
		return g.unavailable(err)
	}
	metrics.ImprovedImages.WithLabelValues("generated").Inc()
	return Generated(out)
}

func (g *Gateway) unavailable(err error) ImprovedImage {
	slog.Warn("improved image generation failed", "action", "generate_improved_image", "error", err)
	metrics.ImprovedImages.WithLabelValues("unavailable").Inc()
	return Unavailable(err.Error())
}

// Scan analyzes imageData for the situation and, on success, tries to
// generate the improved look. onAnalyzed, if set, runs between the calls.
// The returned ImprovedImage tells whether the result carries the improved
// look and, if not, why.
func (g *Gateway) Scan(ctx context.Context, imageData, situation string, onAnalyzed func()) (vibe.VibeResult, ImprovedImage, error) {
	img, err := ParseDataURI(imageData)
	if err != nil {
		return vibe.VibeResult{}, ImprovedImage{}, err
	}

	report, err := g.Analyze(ctx, img, situation)
	if err != nil {
		return vibe.VibeResult{}, ImprovedImage{}, err
	}
	if onAnalyzed != nil {
		onAnalyzed()
	}

	improved := g.GenerateImprovedImage(ctx, img, report.FixTip)
	return vibe.NewResult(report, situation, img.DataURI(), improved.DataURI(), g.now()), improved, nil
}
