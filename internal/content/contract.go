package content

import "context"

type (
	// Source talks to a text-generation backend and may fail.
	Source interface {
		Tip(ctx context.Context) (string, error)
		EmailContent(ctx context.Context, name string, daysUntil int, date string) (EmailContent, error)
		Chat(ctx context.Context, message string) (string, error)
	}

	// Service never fails: every operation degrades to a fallback.
	Service interface {
		Tip(ctx context.Context) string
		EmailContent(ctx context.Context, name string, daysUntil int, date string) EmailContent
		Chat(ctx context.Context, message string) string
	}
)
