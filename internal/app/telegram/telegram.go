package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/kotche/femhealth/internal/dispatch"
)

// Sender is the part of *telebot.Bot the apps push messages through.
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

func NewBot(token string) (*telebot.Bot, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:  token,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	return bot, nil
}

// LinkOpener sends a composed mailto link to the chat of the user the
// dispatch runs for.
func LinkOpener(sender Sender) dispatch.OpenFunc {
	return func(ctx context.Context, link string) error {
		userID, ok := dispatch.RecipientFromContext(ctx)
		if !ok {
			return errors.New("no recipient for mail link")
		}
		if _, err := sender.Send(telebot.ChatID(userID), "Open in your mail app:\n"+link); err != nil {
			return fmt.Errorf("failed to send mail link to user '%d': %w", userID, err)
		}
		return nil
	}
}
