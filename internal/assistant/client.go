package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var (
	ErrRemoteAssistantUnavailable = errors.New("remote assistant unavailable")
	ErrMissingAPIKey              = errors.New("assistant api key not configured")
	ErrEmptyAnswer                = errors.New("assistant returned no text")
)

// Generator sends one prompt with a system instruction and returns the model's text.
type Generator interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type geminiClient struct {
	cfg GeminiConfig
}

// NewGeminiClient calls the generateContent REST endpoint of the Gemini API.
func NewGeminiClient(cfg GeminiConfig) Generator {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &geminiClient{cfg: cfg}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *content  `json:"systemInstruction,omitempty"`
	Contents          []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *geminiClient) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}

	timeout := c.cfg.Timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		return "", fmt.Errorf("%w: %v", ErrRemoteAssistantUnavailable, context.DeadlineExceeded)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.cfg.BaseURL, c.cfg.Model)
	agent := fiber.Post(url)
	agent.Set("x-goog-api-key", c.cfg.APIKey)
	agent.Timeout(timeout)
	agent.JSON(generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: systemInstruction}}},
		Contents:          []content{{Role: "user", Parts: []part{{Text: prompt}}}},
	})
	if err := agent.Parse(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRemoteAssistantUnavailable, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return "", fmt.Errorf("%w: %v", ErrRemoteAssistantUnavailable, errors.Join(errs...))
	}

	var resp generateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: status %d: %v", ErrRemoteAssistantUnavailable, code, err)
	}
	if code != fiber.StatusOK {
		msg := string(body)
		if resp.Error != nil {
			msg = resp.Error.Message
		}
		return "", fmt.Errorf("%w: status %d: %s", ErrRemoteAssistantUnavailable, code, msg)
	}

	var sb strings.Builder
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyAnswer
	}
	return sb.String(), nil
}
