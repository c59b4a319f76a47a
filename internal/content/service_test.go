package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotche/femhealth/infrastructure/logger"
)

// ---------------------------------------------------------------------------
// Mock Source
// ---------------------------------------------------------------------------

type mockSource struct {
	tip   func(ctx context.Context) (string, error)
	email func(ctx context.Context, name string, days int, date string) (EmailContent, error)
	chat  func(ctx context.Context, message string) (string, error)
}

func (m *mockSource) Tip(ctx context.Context) (string, error) {
	return m.tip(ctx)
}

func (m *mockSource) EmailContent(ctx context.Context, name string, days int, date string) (EmailContent, error) {
	return m.email(ctx, name, days, date)
}

func (m *mockSource) Chat(ctx context.Context, message string) (string, error) {
	return m.chat(ctx, message)
}

var errUnavailable = errors.New("503 service unavailable")

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestService_Tip(t *testing.T) {
	tests := []struct {
		name string
		src  func(context.Context) (string, error)
		want string
	}{
		{
			name: "generated",
			src:  func(context.Context) (string, error) { return "  Try a warm compress.  ", nil },
			want: "Try a warm compress.",
		},
		{
			name: "error",
			src:  func(context.Context) (string, error) { return "", errUnavailable },
			want: "Stay hydrated and listen to your body today!",
		},
		{
			name: "empty",
			src:  func(context.Context) (string, error) { return " \n", nil },
			want: "Stay hydrated and listen to your body today!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewDefaultService(&mockSource{tip: tt.src}, logger.Test(t))
			assert.Equal(t, tt.want, svc.Tip(context.Background()))
		})
	}
}

func TestService_EmailContentFallback(t *testing.T) {
	failing := []func(context.Context, string, int, string) (EmailContent, error){
		func(context.Context, string, int, string) (EmailContent, error) {
			return EmailContent{}, errUnavailable
		},
		func(context.Context, string, int, string) (EmailContent, error) {
			return parseEmailContent("Sure! Here is your email: Subject: hi")
		},
		func(context.Context, string, int, string) (EmailContent, error) {
			return EmailContent{Subject: "Only a subject"}, nil
		},
	}

	for i, src := range failing {
		svc := NewDefaultService(&mockSource{email: src}, logger.Test(t))
		got := svc.EmailContent(context.Background(), "Jane", 3, "Sunday, October 18")

		assert.Equal(t, "FemHealth: Important Cycle Reminder", got.Subject, "case %d", i)
		assert.Contains(t, got.Body, "Jane", "case %d", i)
		assert.Contains(t, got.Body, "3 days", "case %d", i)
		assert.Contains(t, got.Body, "Sunday, October 18", "case %d", i)
	}
}

func TestService_EmailContentGenerated(t *testing.T) {
	src := &mockSource{email: func(_ context.Context, name string, days int, date string) (EmailContent, error) {
		return EmailContent{Subject: "Heads up, " + name, Body: date}, nil
	}}
	svc := NewDefaultService(src, logger.Test(t))

	got := svc.EmailContent(context.Background(), "Jane", 3, "Sunday, October 18")
	assert.Equal(t, EmailContent{Subject: "Heads up, Jane", Body: "Sunday, October 18"}, got)
}

func TestService_Chat(t *testing.T) {
	svc := NewDefaultService(&mockSource{chat: func(_ context.Context, msg string) (string, error) {
		return "echo: " + msg, nil
	}}, logger.Test(t))
	assert.Equal(t, "echo: cramps?", svc.Chat(context.Background(), "cramps?"))

	svc = NewDefaultService(&mockSource{chat: func(context.Context, string) (string, error) {
		return "", errUnavailable
	}}, logger.Test(t))
	assert.Equal(t, Fallbacks[OpChat], svc.Chat(context.Background(), "hi"))

	svc = NewDefaultService(&mockSource{chat: func(context.Context, string) (string, error) {
		return "", nil
	}}, logger.Test(t))
	assert.Equal(t, Fallbacks[OpChatEmpty], svc.Chat(context.Background(), "hi"))
}

func TestStaticSource_AlwaysFallsBack(t *testing.T) {
	svc := NewDefaultService(StaticSource{}, logger.Nop())
	ctx := context.Background()

	assert.Equal(t, Fallbacks[OpTip], svc.Tip(ctx))
	assert.Equal(t, Fallbacks[OpChat], svc.Chat(ctx, "hello"))
	assert.Equal(t, FallbackEmailSubject, svc.EmailContent(ctx, "Jane", 5, "Friday").Subject)
}

func TestParseEmailContent(t *testing.T) {
	got, err := parseEmailContent("```json\n{\"subject\": \"Soon\", \"body\": \"Three days left\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, EmailContent{Subject: "Soon", Body: "Three days left"}, got)

	_, err = parseEmailContent("not json")
	assert.Error(t, err)
}

func TestWithRetry_StopsOnSuccess(t *testing.T) {
	calls := 0
	opts := []retry.Option{retry.Attempts(3), retry.Delay(0), retry.LastErrorOnly(true)}

	got, err := withRetry(context.Background(), opts, time.Second, func(context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", errUnavailable
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 2, calls)

	calls = 0
	_, err = withRetry(context.Background(), opts, time.Second, func(context.Context) (string, error) {
		calls++
		return "", errUnavailable
	})
	assert.ErrorIs(t, err, errUnavailable)
	assert.Equal(t, 3, calls)
}
