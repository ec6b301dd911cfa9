package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/config"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/vibe-ai/internal/vibe"
)

const defaultBaseURL = "https://api.openai.com/v1"

var (
	ErrNoProvider     = errors.New("no AI provider configured")
	ErrProviderStatus = errors.New("AI provider returned an error status")
	ErrEmptyResponse  = errors.New("empty response from AI provider")
	ErrResponseTooBig = errors.New("AI provider response exceeds the size limit")
)

// defaultResponseLimit applies when no image limit is configured.
const defaultResponseLimit = 32 << 20

const analysisPrompt = `BRUTAL HONESTY MODE: Analyze this specific image for the context: "%s".
Do not use generic praise. Look at the specific fit of the clothes, the exact lighting shadows, the cleanliness of the room and the harmony of the colors present in THIS image.

Return strictly one JSON object with:
- score (0-100)
- verdict ("YES", "RISKY" or "NO")
- fix_tip (one punchy, actionable piece of advice)
- detailedStats: {color_harmony, symmetry, fit_accuracy, texture_quality, composition} (all 0-100)
- insights: {lighting, style, cleanliness, grooming, confidence, alignment} (all 0-100)

If the image is blurry or dark, penalize the lighting and composition scores significantly.`

const analysisRequest = `Rate this image for "%s". Reply with the JSON object only.`

const improvePrompt = `Re-imagine this exact scene and person but implement this aesthetic fix: "%s". High-end photography, cinematic lighting, 8k resolution, photorealistic.`

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type chatContentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *chatImageURL `json:"image_url,omitempty"`
}

type chatImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content interface{} `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imagesResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// OpenAIClient talks to any OpenAI-compatible endpoint.
type OpenAIClient struct {
	http        *http.Client
	baseURL     string
	apiKey      string
	visionModel string
	imageModel  string
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes int64
}

var _ VisionClient = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg *config.Config) *OpenAIClient {
	baseURL := strings.TrimRight(cfg.OpenAIBaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	// Generated images come back base64-encoded and may be larger than the upload.
	limit := int64(defaultResponseLimit)
	if cfg.MaxImageBytes > 0 {
		limit = int64(cfg.MaxImageBytes)*4 + 1<<20
	}
	return &OpenAIClient{
		http:             &http.Client{Timeout: timeout},
		baseURL:          baseURL,
		apiKey:           cfg.OpenAIAPIKey,
		visionModel:      cfg.OpenAIVisionModel,
		imageModel:       cfg.OpenAIImageModel,
		maxResponseBytes: limit,
	}
}

func (c *OpenAIClient) Analyze(ctx context.Context, img Image, situation string) (vibe.VibeReport, error) {
	if c.apiKey == "" {
		return vibe.VibeReport{}, ErrNoProvider
	}

	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: fmt.Sprintf(analysisPrompt, situation)},
			{Role: "user", Content: []chatContentPart{
				{Type: "text", Text: fmt.Sprintf(analysisRequest, situation)},
				{Type: "image_url", ImageURL: &chatImageURL{URL: img.DataURI(), Detail: "auto"}},
			}},
		},
		Temperature:    0.7,
		MaxTokens:      800,
		ResponseFormat: &responseFormat{Type: "json_object"},
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return vibe.VibeReport{}, fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.do(ctx, "chat_completions", c.visionModel, "/chat/completions", "application/json", payload)
	if err != nil {
		return vibe.VibeReport{}, err
	}

	var completion chatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return vibe.VibeReport{}, fmt.Errorf("decode response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return vibe.VibeReport{}, ErrEmptyResponse
	}

	var content string
	switch v := completion.Choices[0].Message.Content.(type) {
	case string:
		content = v
	case nil:
		return vibe.VibeReport{}, ErrEmptyResponse
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return vibe.VibeReport{}, fmt.Errorf("extract content: %w", err)
		}
		content = string(b)
	}
	if strings.TrimSpace(content) == "" {
		return vibe.VibeReport{}, ErrEmptyResponse
	}

	return ParseReport(content)
}

func (c *OpenAIClient) GenerateImprovedImage(ctx context.Context, img Image, fixTip string) (Image, error) {
	if c.apiKey == "" {
		return Image{}, ErrNoProvider
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("model", c.imageModel); err != nil {
		return Image{}, err
	}
	if err := w.WriteField("prompt", fmt.Sprintf(improvePrompt, fixTip)); err != nil {
		return Image{}, err
	}
	if err := w.WriteField("n", "1"); err != nil {
		return Image{}, err
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="scan.%s"`, img.extension()))
	h.Set("Content-Type", img.MIMEType)
	part, err := w.CreatePart(h)
	if err != nil {
		return Image{}, err
	}
	if _, err := part.Write(img.Data); err != nil {
		return Image{}, err
	}
	if err := w.Close(); err != nil {
		return Image{}, err
	}

	body, err := c.do(ctx, "images_edits", c.imageModel, "/images/edits", w.FormDataContentType(), buf.Bytes())
	if err != nil {
		return Image{}, err
	}

	var resp imagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Image{}, fmt.Errorf("decode response: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return Image{}, ErrEmptyResponse
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return Image{}, fmt.Errorf("decode image: %w", err)
	}
	return Image{MIMEType: "image/png", Data: data}, nil
}

func (c *OpenAIClient) do(ctx context.Context, operation, model, path, contentType string, payload []byte) (body []byte, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveNetworkRequest("openai", operation, model, start, err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(body)) > c.maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooBig, c.maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("%w: %d: %s", ErrProviderStatus, resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("%w: %d", ErrProviderStatus, resp.StatusCode)
	}
	return body, nil
}
