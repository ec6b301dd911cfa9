package handlers

import "github.com/gofiber/fiber/v2"

const legalStyle = `<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>`

type LegalHandler struct {
	appName string
}

func NewLegalHandler(appName string) *LegalHandler {
	return &LegalHandler{appName: appName}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Privacy Policy - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Privacy Policy</h1>
<p>Last updated: October 2026</p>
<h2>Information We Collect</h2>
<p>` + h.appName + ` stores your onboarding answers, settings, scan history and the photos you submit on this device only.</p>
<h2>Image Analysis</h2>
<p>When you start a scan, the photo and the situation you chose are sent to our AI provider to produce a score and an improved look. Photos are not kept by us outside your device.</p>
<h2>Deleting Your Data</h2>
<p>Use Reset Progress in Settings to erase your profile and history. This cannot be undone.</p>
<h2>Contact</h2>
<p>For questions about this policy, contact support@vibeai.app</p>
</body></html>`)
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	return c.Type("html").SendString(`<!DOCTYPE html>
<html><head><title>Terms of Service - ` + h.appName + `</title>
` + legalStyle + `
</head><body>
<h1>Terms of Service</h1>
<p>Last updated: October 2026</p>
<h2>Acceptance</h2>
<p>By using ` + h.appName + `, you agree to these terms.</p>
<h2>Scores Are Opinions</h2>
<p>Vibe scores, verdicts and generated images are produced by an AI model and are for entertainment. They are not professional advice.</p>
<h2>Subscriptions</h2>
<p>Premium removes the daily scan limit. Subscriptions auto-renew unless cancelled 24 hours before the end of the current period.</p>
<h2>Contact</h2>
<p>For questions, contact support@vibeai.app</p>
</body></html>`)
}
