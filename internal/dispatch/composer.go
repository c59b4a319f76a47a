package dispatch

import (
	"context"
	"net/url"
	"strings"

	"github.com/kotche/femhealth/internal/model"
)

// Composer hands a finished reminder to the user's own mail client.
type Composer interface {
	Compose(ctx context.Context, to, subject, body string) error
}

// OpenFunc delivers a mailto link to wherever the user can click it.
type OpenFunc func(ctx context.Context, link string) error

type MailtoComposer struct {
	open OpenFunc
}

func NewMailtoComposer(open OpenFunc) *MailtoComposer {
	return &MailtoComposer{open: open}
}

func (m *MailtoComposer) Compose(ctx context.Context, to, subject, body string) error {
	return m.open(ctx, MailtoLink(to, subject, body))
}

// MailtoLink builds a mailto URL with percent-encoded subject and body.
func MailtoLink(to, subject, body string) string {
	return "mailto:" + to + "?subject=" + escape(subject) + "&body=" + escape(body)
}

// escape encodes spaces as %20; mail clients do not decode '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

type recipientKey struct{}

// ContextWithRecipient tags ctx with the user a composed link belongs to.
func ContextWithRecipient(ctx context.Context, userID model.UserID) context.Context {
	return context.WithValue(ctx, recipientKey{}, userID)
}

func RecipientFromContext(ctx context.Context) (model.UserID, bool) {
	id, ok := ctx.Value(recipientKey{}).(model.UserID)
	return id, ok
}
