package content

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-3-flash-preview"

	tipPrompt = "Give me a short, one-sentence empowering or healthy tip for a woman on her menstrual cycle. " +
		"Keep it friendly and concise."

	chatInstruction = "You are a compassionate, knowledgeable, and friendly women's health assistant named 'FemBot'. " +
		"You help users with menstrual health questions, cycle tracking advice, and general wellness. " +
		"Always clarify you are an AI and not a substitute for professional medical advice."

	emailPrompt = "Write a short, warm reminder email for %s whose next menstrual cycle is expected in %d days, on %s. " +
		"Include one practical self-care suggestion. " +
		`Respond only with JSON of the form {"subject": "...", "body": "..."}.`
)

type GeminiConfig struct {
	APIKey   string
	Model    string
	Attempts uint
	Delay    time.Duration
	Timeout  time.Duration
}

type GeminiSource struct {
	client *genai.Client
	cfg    GeminiConfig
}

func NewGeminiSource(ctx context.Context, cfg GeminiConfig) (*GeminiSource, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 1
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &GeminiSource{client: client, cfg: cfg}, nil
}

func (g *GeminiSource) Tip(ctx context.Context) (string, error) {
	return withRetry(ctx, g.retryOpts(ctx), g.cfg.Timeout, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model, genai.Text(tipPrompt), &genai.GenerateContentConfig{
			Temperature: genai.Ptr[float32](0.7),
		})
		if err != nil {
			return "", fmt.Errorf("failed to generate tip: %w", err)
		}
		return resp.Text(), nil
	})
}

func (g *GeminiSource) EmailContent(ctx context.Context, name string, daysUntil int, date string) (EmailContent, error) {
	raw, err := withRetry(ctx, g.retryOpts(ctx), g.cfg.Timeout, func(ctx context.Context) (string, error) {
		resp, err := g.client.Models.GenerateContent(ctx, g.cfg.Model,
			genai.Text(fmt.Sprintf(emailPrompt, name, daysUntil, date)),
			&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
		)
		if err != nil {
			return "", fmt.Errorf("failed to generate email content: %w", err)
		}
		return resp.Text(), nil
	})
	if err != nil {
		return EmailContent{}, err
	}
	return parseEmailContent(raw)
}

// Chat starts a fresh conversation per message; history is kept for display only.
func (g *GeminiSource) Chat(ctx context.Context, message string) (string, error) {
	return withRetry(ctx, g.retryOpts(ctx), g.cfg.Timeout, func(ctx context.Context) (string, error) {
		chat, err := g.client.Chats.Create(ctx, g.cfg.Model, &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(chatInstruction, genai.RoleUser),
		}, nil)
		if err != nil {
			return "", fmt.Errorf("failed to create chat: %w", err)
		}
		resp, err := chat.SendMessage(ctx, genai.Part{Text: message})
		if err != nil {
			return "", fmt.Errorf("failed to send chat message: %w", err)
		}
		return resp.Text(), nil
	})
}

func (g *GeminiSource) retryOpts(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(g.cfg.Attempts),
		retry.Delay(g.cfg.Delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	}
}

func withRetry[T any](ctx context.Context, opts []retry.Option, timeout time.Duration, call func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := retry.Do(func() error {
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		v, err := call(cctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	}, opts...)
	return out, err
}

// parseEmailContent accepts bare JSON or JSON wrapped in a markdown fence.
func parseEmailContent(raw string) (EmailContent, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	var c EmailContent
	if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &c); err != nil {
		return EmailContent{}, fmt.Errorf("failed to parse email content: %w", err)
	}
	return c, nil
}
