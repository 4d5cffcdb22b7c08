// Package gateway is the model session gateway: the only place AstroChat
// talks to the Gemini API. It owns session creation, streaming chat, and
// the one-shot image/video/visualization calls, and converts transport
// failures into a typed error hierarchy at this boundary.
//
// The gateway performs no caching and no retries; every call maps to
// exactly one provider interaction (plus polling for video operations).
package gateway

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"google.golang.org/genai"

	"astrochat/internal/i18n"
	"astrochat/internal/logging"
)

// Default model identifiers, matching the provider's current generation.
const (
	DefaultChatModel  = "gemini-2.5-flash"
	DefaultImageModel = "imagen-4.0-generate-001"
	DefaultVideoModel = "veo-2.0-generate-001"

	// defaultPollInterval is the delay between video operation status checks.
	defaultPollInterval = 10 * time.Second
)

// Config holds gateway construction parameters.
type Config struct {
	// APIKey is the Gemini credential. Required.
	APIKey string

	ChatModel  string
	ImageModel string
	VideoModel string

	// PollInterval overrides the video polling delay. Zero means the
	// 10-second default; tests shrink it.
	PollInterval time.Duration
}

// APIKeyFromEnv reads the credential from the process environment,
// preferring API_KEY and falling back to GEMINI_API_KEY.
func APIKeyFromEnv() string {
	if key := strings.TrimSpace(os.Getenv("API_KEY")); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
}

// Client wraps the genai client with AstroChat's operations.
type Client struct {
	ai   *genai.Client
	cfg  Config
	key  string
	poll time.Duration
}

// New creates a gateway client. Fails with ErrMissingAPIKey when no
// credential is present; this is the configuration error the UI surfaces
// on first use of any model feature.
func New(ctx context.Context, cfg Config) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.VideoModel == "" {
		cfg.VideoModel = DefaultVideoModel
	}
	poll := cfg.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}

	ai, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, classify("client init", err)
	}

	logging.Gateway("gateway ready (chat=%s image=%s video=%s)", cfg.ChatModel, cfg.ImageModel, cfg.VideoModel)
	return &Client{ai: ai, cfg: cfg, key: key, poll: poll}, nil
}

// CreateImagePrompt converts explanatory text into a single concise image
// generation prompt.
func (c *Client) CreateImagePrompt(ctx context.Context, text string) (string, error) {
	resp, err := c.ai.Models.GenerateContent(ctx, c.cfg.ChatModel,
		genai.Text(fmt.Sprintf("Create an image prompt from this text: %q", text)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(imagePromptInstruction, genai.RoleUser),
		})
	if err != nil {
		return "", classify("image prompt", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// GenerateImage produces one 16:9 JPEG for the prompt and returns the raw
// image bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.ai.Models.GenerateImages(ctx, c.cfg.ImageModel,
		"Astronomy, cinematic, epic, beautiful, high resolution. "+prompt,
		&genai.GenerateImagesConfig{
			NumberOfImages: 1,
			OutputMIMEType: "image/jpeg",
			AspectRatio:    "16:9",
		})
	if err != nil {
		return nil, classify("image generation", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return nil, &GenerationError{Op: "image generation", Err: fmt.Errorf("no images returned")}
	}
	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// GenerateVideo starts a video generation operation and polls its status
// until completion, then returns the artifact URI with the credential
// appended as a query parameter (the provider requires it on download).
// The poll loop honors ctx.
func (c *Client) GenerateVideo(ctx context.Context, prompt string) (string, error) {
	op, err := c.ai.Models.GenerateVideos(ctx, c.cfg.VideoModel, prompt, nil,
		&genai.GenerateVideosConfig{NumberOfVideos: 1})
	if err != nil {
		return "", classify("video generation", err)
	}

	for !op.Done {
		logging.Gateway("video operation pending, next check in %s", c.poll)
		select {
		case <-ctx.Done():
			return "", &VideoError{Reason: "polling aborted", Err: ctx.Err()}
		case <-time.After(c.poll):
		}
		op, err = c.ai.Operations.GetVideosOperation(ctx, op, nil)
		if err != nil {
			return "", classify("video status", err)
		}
	}

	if op.Error != nil {
		msg, _ := op.Error["message"].(string)
		if msg == "" {
			msg = fmt.Sprintf("%v", op.Error)
		}
		return "", &VideoError{Reason: msg}
	}

	uri := videoURI(op)
	if uri == "" {
		return "", &VideoError{Reason: "operation completed without a video URI; it may have failed silently"}
	}
	return uri + "&key=" + c.key, nil
}

func videoURI(op *genai.GenerateVideosOperation) string {
	if op == nil || op.Response == nil || len(op.Response.GeneratedVideos) == 0 {
		return ""
	}
	v := op.Response.GeneratedVideos[0].Video
	if v == nil {
		return ""
	}
	return v.URI
}

// GenerateVisualizationCode asks the model for a self-contained HTML/CSS/JS
// document depicting the event (nil means the Big Bang default) and strips
// any surrounding markdown code fence from the response.
func (c *Client) GenerateVisualizationCode(ctx context.Context, event *i18n.CosmicEvent) (string, error) {
	resp, err := c.ai.Models.GenerateContent(ctx, c.cfg.ChatModel,
		genai.Text(visualizationPrompt(event)),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(visualizationInstruction, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.7),
		})
	if err != nil {
		return "", classify("visualization generation", err)
	}
	return stripCodeFences(resp.Text()), nil
}
