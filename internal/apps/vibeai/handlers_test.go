package vibeai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testAPI struct {
	app    *fiber.App
	plugin *Plugin
	token  string
}

func newTestAPI(t *testing.T, client *fakeVision) *testAPI {
	t.Helper()
	db := newTestDB(t)
	cfg := testConfig()
	cfg.JWTSecret = testSecret

	plugin := New(client)
	app := fiber.New()
	protected := app.Group("/api/p", middleware.JWTProtected(cfg), middleware.DeviceRequired())
	plugin.RegisterRoutes(protected, db, cfg)

	clock := &testClock{t: time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)}
	plugin.service.WithClock(clock.Now)

	return &testAPI{app: app, plugin: plugin, token: signToken(t, testDevice, cfg)}
}

func signToken(t *testing.T, sub string, cfg *config.Config) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	require.NoError(t, err)
	return signed
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	return a.send(t, req)
}

func (a *testAPI) send(t *testing.T, req *http.Request) (int, map[string]interface{}) {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (a *testAPI) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.plugin.Drain(ctx))
}

func screenOf(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	session, ok := body["session"].(map[string]interface{})
	require.True(t, ok, "response has no session: %v", body)
	return session["screen"].(string)
}

func (a *testAPI) onboard(t *testing.T) {
	t.Helper()
	answers := []map[string]interface{}{
		{"question_id": "goal", "value": "Work presence"},
		{"question_id": "style", "value": "Classic"},
		{"question_id": "confidence", "value": 6},
		{"question_id": "notifications", "value": false},
	}
	for _, ans := range answers {
		status, body := a.do(t, http.MethodPost, "/api/p/vibe/onboarding/answers", ans)
		require.Equal(t, http.StatusOK, status, body)
	}
}

func TestRoutesRequireDeviceToken(t *testing.T) {
	api := newTestAPI(t, &fakeVision{report: report82})

	api.token = ""
	status, _ := api.do(t, http.MethodGet, "/api/p/vibe/session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	api.token = signToken(t, "not-a-uuid", &config.Config{JWTSecret: testSecret})
	status, body := api.do(t, http.MethodGet, "/api/p/vibe/session", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, true, body["error"])
}

func TestScanFlowOverHTTP(t *testing.T) {
	api := newTestAPI(t, &fakeVision{report: report82})

	status, body := api.do(t, http.MethodGet, "/api/p/vibe/session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ONBOARDING", screenOf(t, body))

	api.onboard(t)

	status, body = api.do(t, http.MethodPost, "/api/p/vibe/navigate", map[string]string{"screen": "SCAN"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SCAN", screenOf(t, body))

	// Multipart upload stages the image.
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="fit.jpg"`)
	h.Set("Content-Type", "image/jpeg")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("hello"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/p/vibe/scan/image/upload", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+api.token)
	status, body = api.send(t, req)
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, "context", body["session"].(map[string]interface{})["scan_step"])

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/scan/situation", map[string]string{"situation": "Job Interview"})
	require.Equal(t, http.StatusOK, status)

	status, body = api.do(t, http.MethodGet, "/api/p/vibe/scan/eligibility", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["can_scan"])
	assert.Equal(t, float64(1), body["remaining"])

	status, body = api.do(t, http.MethodPost, "/api/p/vibe/scan/start", nil)
	require.Equal(t, http.StatusAccepted, status, body)
	assert.NotEmpty(t, body["processing_status"])
	api.drain(t)

	status, body = api.do(t, http.MethodGet, "/api/p/vibe/session", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "RESULT", screenOf(t, body))
	result := body["session"].(map[string]interface{})["result"].(map[string]interface{})
	assert.Equal(t, float64(82), result["score"])
	assert.Equal(t, "YES", result["verdict"])
	assert.Equal(t, "data:image/png;base64,YmV0dGVy", result["improvedImageUrl"])

	status, body = api.do(t, http.MethodGet, "/api/p/vibe/results", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["total"])

	// Second scan on the same day is routed to the paywall.
	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/result/back", nil)
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/navigate", map[string]string{"screen": "SCAN"})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/scan/image", map[string]string{"image_data": jpegURI})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/scan/situation", map[string]string{"situation": "Brunch"})
	require.Equal(t, http.StatusOK, status)

	status, body = api.do(t, http.MethodPost, "/api/p/vibe/scan/start", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "PAYWALL", screenOf(t, body))

	status, body = api.do(t, http.MethodGet, "/api/p/vibe/paywall", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["plans"], 2)
	assert.Len(t, body["perks"], 4)

	status, body = api.do(t, http.MethodPost, "/api/p/vibe/paywall/purchase", map[string]string{"plan": "monthly"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SCAN", screenOf(t, body))
	assert.Equal(t, true, body["profile"].(map[string]interface{})["isPremium"])

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/scan/start", nil)
	require.Equal(t, http.StatusAccepted, status)
	api.drain(t)

	status, body = api.do(t, http.MethodGet, "/api/p/vibe/stats", nil)
	require.Equal(t, http.StatusOK, status)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["total_scans"])
}

func TestErrorStatuses(t *testing.T) {
	api := newTestAPI(t, &fakeVision{report: report82})

	status, _ := api.do(t, http.MethodPost, "/api/p/vibe/onboarding/answers", map[string]interface{}{"question_id": "goal", "value": "World domination"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/onboarding/answers", map[string]interface{}{"question_id": "style", "value": "Minimal"})
	assert.Equal(t, http.StatusBadRequest, status)

	api.onboard(t)

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/result/back", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/navigate", map[string]string{"screen": "MARS"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/scan/start", nil)
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/navigate", map[string]string{"screen": "SCAN"})
	require.Equal(t, http.StatusOK, status)
	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/scan/image", map[string]string{"image_data": "data:text/plain;base64,aGVsbG8="})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(t, http.MethodPatch, "/api/p/vibe/settings", map[string]string{"theme": "neon"})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = api.do(t, http.MethodPost, "/api/p/vibe/results/nope/open", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body := api.do(t, http.MethodDelete, "/api/p/vibe/data", nil)
	assert.Equal(t, http.StatusPreconditionRequired, status)
	assert.Equal(t, true, body["error"])

	status, body = api.do(t, http.MethodDelete, "/api/p/vibe/data", map[string]string{"confirm": "RESET"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ONBOARDING", screenOf(t, body))
}

func TestCatalogEndpoints(t *testing.T) {
	api := newTestAPI(t, &fakeVision{report: report82})

	status, body := api.do(t, http.MethodGet, "/api/p/vibe/onboarding/questions", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["data"], 4)

	status, body = api.do(t, http.MethodGet, "/api/p/vibe/situations", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body["data"])
}
