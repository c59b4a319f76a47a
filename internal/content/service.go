package content

import (
	"context"
	"errors"
	"strings"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/infrastructure/tracing"
	"github.com/kotche/femhealth/internal/metrics"
)

var errEmpty = errors.New("empty response")

type DefaultService struct {
	src  Source
	lggr logger.Logger
}

func NewDefaultService(src Source, lggr logger.Logger) *DefaultService {
	return &DefaultService{src: src, lggr: lggr.Named("content")}
}

func (d *DefaultService) Tip(ctx context.Context) string {
	ctx, span := tracing.StartSpan(ctx, "content.Tip")
	defer span.End()

	tip, err := d.src.Tip(ctx)
	if err == nil && strings.TrimSpace(tip) == "" {
		err = errEmpty
	}
	if err != nil {
		d.fallback(OpTip, err)
		return Fallbacks[OpTip]
	}
	return strings.TrimSpace(tip)
}

func (d *DefaultService) EmailContent(ctx context.Context, name string, daysUntil int, date string) EmailContent {
	ctx, span := tracing.StartSpan(ctx, "content.EmailContent")
	defer span.End()

	c, err := d.src.EmailContent(ctx, name, daysUntil, date)
	if err == nil && (strings.TrimSpace(c.Subject) == "" || strings.TrimSpace(c.Body) == "") {
		err = errEmpty
	}
	if err != nil {
		d.fallback(OpEmail, err)
		return FallbackEmail(name, daysUntil, date)
	}
	return c
}

func (d *DefaultService) Chat(ctx context.Context, message string) string {
	ctx, span := tracing.StartSpan(ctx, "content.Chat")
	defer span.End()

	answer, err := d.src.Chat(ctx, message)
	if err != nil {
		d.fallback(OpChat, err)
		return Fallbacks[OpChat]
	}
	if strings.TrimSpace(answer) == "" {
		d.fallback(OpChatEmpty, errEmpty)
		return Fallbacks[OpChatEmpty]
	}
	return answer
}

func (d *DefaultService) fallback(op Operation, err error) {
	metrics.ContentFallback(string(op))
	d.lggr.Warnw("content generation failed, using fallback", "operation", op, "err", err)
}

// StaticSource serves no generated content; every call falls back.
type StaticSource struct{}

var errNotConfigured = errors.New("content generation is not configured")

func (StaticSource) Tip(context.Context) (string, error) { return "", errNotConfigured }

func (StaticSource) EmailContent(context.Context, string, int, string) (EmailContent, error) {
	return EmailContent{}, errNotConfigured
}

func (StaticSource) Chat(context.Context, string) (string, error) { return "", errNotConfigured }
