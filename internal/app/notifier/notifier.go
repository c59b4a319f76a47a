package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/telebot.v3"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/internal/app/telegram"
	"github.com/kotche/femhealth/internal/dispatch"
	"github.com/kotche/femhealth/internal/metrics"
	"github.com/kotche/femhealth/internal/model"
	"github.com/kotche/femhealth/internal/service/kafka"
	"github.com/kotche/femhealth/internal/service/session"
)

const DefaultSchedule = "0 8 * * *"

type Notifier struct {
	sender   telegram.Sender
	sessions session.Service
	broker   kafka.MessageBroker
	schedule string
	lggr     logger.Logger
}

func New(sender telegram.Sender, sessions session.Service, broker kafka.MessageBroker, schedule string, lggr logger.Logger) *Notifier {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &Notifier{
		sender:   sender,
		sessions: sessions,
		broker:   broker,
		schedule: schedule,
		lggr:     lggr.Named("notifier"),
	}
}

// Start runs one sweep immediately, then on the cron schedule, and consumes
// reminder requests until ctx is done.
func (n *Notifier) Start(ctx context.Context) error {
	n.lggr.Infof("Notifier started with schedule '%s'", n.schedule)

	c := cron.New()
	if _, err := c.AddFunc(n.schedule, func() { n.runSweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule sweep '%s': %w", n.schedule, err)
	}

	n.runSweep(ctx)
	c.Start()
	defer c.Stop()

	go n.consume(ctx)

	<-ctx.Done()
	return nil
}

func (n *Notifier) runSweep(ctx context.Context) {
	queued, err := n.Sweep(ctx)
	if err != nil {
		n.lggr.Errorf("error sweeping due reminders: %v", err)
	}
	if queued > 0 {
		n.lggr.Infof("%d reminders queued", queued)
	}
}

// Sweep publishes a reminder request for every due-soon session that has not
// been reminded for its predicted date yet.
func (n *Notifier) Sweep(ctx context.Context) (int, error) {
	due, err := n.sessions.DueReminders(ctx)
	if err != nil {
		return 0, err
	}

	queued := 0
	for _, r := range due {
		value, err := json.Marshal(r)
		if err != nil {
			n.lggr.Errorf("failed to encode reminder for user '%d': %v", r.UserID, err)
			continue
		}
		if err = n.broker.SendMessage(ctx, []byte(strconv.FormatInt(int64(r.UserID), 10)), value); err != nil {
			n.lggr.Errorf("failed to queue reminder for user '%d': %v", r.UserID, err)
			continue
		}
		queued++
	}

	metrics.RemindersQueued(queued)
	return queued, nil
}

func (n *Notifier) consume(ctx context.Context) {
	for {
		key, value, err := n.broker.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			n.lggr.Errorf("error reading message from kafka: %v", err)
			continue
		}

		if err = n.Handle(ctx, key, value); err != nil {
			n.lggr.Errorw("failed to handle reminder", "key", string(key), "err", err)
		}
	}
}

// Handle dispatches one queued reminder and, when the user currently allows
// it, sends the device alert. The session is marked notified unless another dispatch
// for the same recipient was already running.
func (n *Notifier) Handle(ctx context.Context, key, value []byte) error {
	var r session.Reminder
	if err := json.Unmarshal(value, &r); err != nil {
		return fmt.Errorf("failed to decode reminder '%s': %w", key, err)
	}

	emit := func(line string) error {
		n.lggr.Debugw("dispatch", "user", r.UserID, "line", line)
		return nil
	}

	entry, err := n.sessions.Dispatch(ctx, r.UserID, emit)
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		n.lggr.Infof("session for user '%d' closed before its reminder", r.UserID)
		return nil
	case errors.Is(err, dispatch.ErrDispatchInFlight):
		n.lggr.Infof("reminder for user '%d' already in flight", r.UserID)
		return nil
	case err != nil:
		return err
	}

	// Решение пользователя могло измениться после обхода
	permission, err := n.sessions.Permission(ctx, r.UserID)
	if err != nil {
		n.lggr.Warnw("failed to read alert permission", "user", r.UserID, "err", err)
	}
	if permission == model.PermissionGranted {
		if _, err = n.sender.Send(telebot.ChatID(r.UserID), AlertText(r)); err != nil {
			n.lggr.Warnw("failed to send device alert", "user", r.UserID, "err", err)
		}
	}

	if entry.Status != model.StatusDelivered {
		n.lggr.Warnw("reminder interrupted", "user", r.UserID, "id", entry.ID)
	}

	return n.sessions.MarkNotified(ctx, r.UserID, r.Predicted)
}

// AlertText is the native alert shown when a cycle is due soon.
func AlertText(r session.Reminder) string {
	return fmt.Sprintf("Hi %s, your cycle starts in %d days (%s).",
		model.User{Name: r.Name}.FirstName(), r.DaysUntil, r.Date)
}
