package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/telebot.v3"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/infrastructure/metrics"
	"github.com/kotche/femhealth/internal/content"
	"github.com/kotche/femhealth/internal/cycle"
	"github.com/kotche/femhealth/internal/dispatch"
	"github.com/kotche/femhealth/internal/model"
	"github.com/kotche/femhealth/internal/service/session"
)

const (
	longProcessTimeout = 25
	dispatchTimeout    = 60
)

var (
	btnAlertsOn  = telebot.InlineButton{Unique: "alerts_on", Text: "Enable alerts"}
	btnAlertsOff = telebot.InlineButton{Unique: "alerts_off", Text: "Not now"}
	btnQuizYes   = telebot.InlineButton{Unique: "quiz_yes", Text: "Yes"}
	btnQuizNo    = telebot.InlineButton{Unique: "quiz_no", Text: "No"}
)

const helpMessage = "Available commands:\n" +
	"/login {email} {password} - sign in\n" +
	"/register {name} {email} {password} {YYYY-MM-DD} [cycle length] - create a profile\n" +
	"/dashboard - next cycle prediction and daily tip\n" +
	"/remind - email yourself a cycle reminder\n" +
	"/alerts - turn device alerts on or off\n" +
	"/logs - notification history\n" +
	"/quiz - health check-in\n" +
	"/care - self care guide\n" +
	"/doctors - specialists\n" +
	"/fun - games and sounds\n" +
	"/chat {text} - ask FemBot (or just type)\n" +
	"/logout - end the session\n" +
	"/help - show this message"

type Dashboard struct {
	bot      *telebot.Bot
	sessions session.Service
	lggr     logger.Logger
}

func New(bot *telebot.Bot, sessions session.Service, lggr logger.Logger) *Dashboard {
	return &Dashboard{bot: bot, sessions: sessions, lggr: lggr.Named("dashboard")}
}

func (d *Dashboard) Start() {
	d.helpHandler()
	d.authHandlers()
	d.dashboardHandler()
	d.remindHandler()
	d.alertsHandler()
	d.logsHandler()
	d.quizHandler()
	d.pagesHandler()
	d.chatHandler()

	d.lggr.Infof("Dashboard started...")
	d.bot.Start()
}

func (d *Dashboard) Stop() {
	d.bot.Stop()
}

// handle регистрирует обработчик и замеряет время его работы
func (d *Dashboard) handle(endpoint interface{}, name string, h telebot.HandlerFunc) {
	d.bot.Handle(endpoint, func(c telebot.Context) error {
		defer metrics.ObserveCommand(name, time.Now())
		return h(c)
	})
}

// helpHandler обработчик помощь
func (d *Dashboard) helpHandler() {
	h := func(c telebot.Context) error {
		return c.Send(helpMessage)
	}
	d.handle("/start", "start", h)
	d.handle("/help", "help", h)
}

// authHandlers обработчики входа, регистрации и выхода
func (d *Dashboard) authHandlers() {
	d.handle("/login", "login", func(c telebot.Context) error {
		args := c.Args()
		if len(args) != 2 {
			return c.Send("Usage: /login {email} {password}")
		}
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		user, err := d.sessions.Login(ctx, userID, args[0], args[1])
		if err != nil {
			return d.fail(ctx, c, "login", userID, err)
		}
		return c.Send(fmt.Sprintf("Welcome, %s! Use /dashboard to see your cycle.", user.FirstName()))
	})

	d.handle("/register", "register", func(c telebot.Context) error {
		userID := model.UserID(c.Sender().ID)
		reg, err := parseRegistration(userID, c.Args())
		if err != nil {
			return c.Send(err.Error())
		}

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		user, err := d.sessions.Register(ctx, reg)
		if err != nil {
			return d.fail(ctx, c, "register", userID, err)
		}
		return c.Send(fmt.Sprintf("Profile created. Welcome, %s! Use /dashboard to see your cycle.", user.FirstName()))
	})

	d.handle("/logout", "logout", func(c telebot.Context) error {
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		if err := d.sessions.Logout(ctx, userID); err != nil {
			return d.fail(ctx, c, "logout", userID, err)
		}
		return c.Send("You are signed out. Take care!")
	})
}

// dashboardHandler обработчик главного экрана
func (d *Dashboard) dashboardHandler() {
	d.handle("/dashboard", "dashboard", func(c telebot.Context) error {
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		dash, err := d.sessions.Dashboard(ctx, userID)
		if err != nil {
			return d.fail(ctx, c, "dashboard", userID, err)
		}

		if !dash.ShowAlertPrompt() {
			return c.Send(renderDashboard(dash))
		}
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{{btnAlertsOn, btnAlertsOff}}
		return c.Send(renderDashboard(dash)+"\n\nWant a device alert when your cycle is near?", markup)
	})
}

// remindHandler обработчик отправки напоминания
func (d *Dashboard) remindHandler() {
	d.handle("/remind", "remind", func(c telebot.Context) error {
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout*time.Second)
		defer cancel()

		live, err := d.bot.Send(c.Recipient(), "Connecting...")
		if err != nil {
			return err
		}

		var transcript strings.Builder
		emit := func(line string) error {
			text := appendTranscript(&transcript, line)
			if _, err := d.bot.Edit(live, text); err != nil {
				d.lggr.Debugw("failed to update transcript", "user", userID, "err", err)
			}
			return nil
		}

		entry, err := d.sessions.Dispatch(ctx, userID, emit)
		if err != nil {
			return d.fail(ctx, c, "dispatch", userID, err)
		}

		if entry.Status == model.StatusDelivered {
			return c.Send(fmt.Sprintf("Reminder ready: %s", entry.Subject))
		}
		return c.Send(fmt.Sprintf("%s. Try /remind again.", entry.Message))
	})
}

// alertsHandler обработчик разрешения уведомлений
func (d *Dashboard) alertsHandler() {
	d.handle("/alerts", "alerts", func(c telebot.Context) error {
		markup := &telebot.ReplyMarkup{}
		markup.InlineKeyboard = [][]telebot.InlineButton{{btnAlertsOn, btnAlertsOff}}
		return c.Send("Device alerts tell you when your cycle is three days away.", markup)
	})

	setPermission := func(p model.AlertPermission, reply string) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			userID := model.UserID(c.Sender().ID)

			ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
			defer cancel()

			if err := d.sessions.SetPermission(ctx, userID, p); err != nil {
				return d.fail(ctx, c, "alerts", userID, err)
			}
			_ = c.Respond()
			return c.Send(reply)
		}
	}
	d.handle(&btnAlertsOn, "alerts_on", setPermission(model.PermissionGranted, session.AlertsEnabledMessage))
	d.handle(&btnAlertsOff, "alerts_off", setPermission(model.PermissionDenied, "Okay, no device alerts."))
}

// logsHandler обработчик истории уведомлений
func (d *Dashboard) logsHandler() {
	d.handle("/logs", "logs", func(c telebot.Context) error {
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		logs, err := d.sessions.Logs(ctx, userID)
		if err != nil {
			return d.fail(ctx, c, "logs", userID, err)
		}
		return c.Send(renderLogs(logs))
	})
}

// quizHandler обработчик опросника
func (d *Dashboard) quizHandler() {
	markup := &telebot.ReplyMarkup{}
	markup.InlineKeyboard = [][]telebot.InlineButton{{btnQuizYes, btnQuizNo}}

	d.handle("/quiz", "quiz", func(c telebot.Context) error {
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		state, err := d.sessions.StartQuiz(ctx, userID)
		if err != nil {
			return d.fail(ctx, c, "quiz", userID, err)
		}
		return c.Send(renderQuestion(state), markup)
	})

	answer := func(yes bool) telebot.HandlerFunc {
		return func(c telebot.Context) error {
			userID := model.UserID(c.Sender().ID)

			ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
			defer cancel()

			_ = c.Respond()
			state, err := d.sessions.AnswerQuiz(ctx, userID, yes)
			if err != nil {
				return d.fail(ctx, c, "quiz", userID, err)
			}
			if state.Finished {
				return c.Send(renderQuizResult(state.Tier()))
			}
			return c.Send(renderQuestion(state), markup)
		}
	}
	d.handle(&btnQuizYes, "quiz_yes", answer(true))
	d.handle(&btnQuizNo, "quiz_no", answer(false))
}

// pagesHandler обработчик статических страниц
func (d *Dashboard) pagesHandler() {
	d.handle("/care", "care", func(c telebot.Context) error {
		return c.Send(content.SelfCarePage())
	})
	d.handle("/doctors", "doctors", func(c telebot.Context) error {
		return c.Send(content.DoctorsPage())
	})
	d.handle("/fun", "fun", func(c telebot.Context) error {
		return c.Send(content.FunZonePage())
	})
}

// chatHandler обработчик чата с ассистентом
func (d *Dashboard) chatHandler() {
	h := func(c telebot.Context) error {
		text := c.Message().Payload
		if text == "" {
			text = c.Text()
		}
		if strings.TrimSpace(text) == "" || strings.HasPrefix(text, "/") {
			return c.Send("Ask me anything about your cycle, nutrition or wellness.")
		}
		userID := model.UserID(c.Sender().ID)

		ctx, cancel := context.WithTimeout(context.Background(), longProcessTimeout*time.Second)
		defer cancel()

		_ = c.Notify(telebot.Typing)
		reply, err := d.sessions.Chat(ctx, userID, text)
		if err != nil {
			return d.fail(ctx, c, "chat", userID, err)
		}
		return c.Send(reply.Text)
	}
	d.handle("/chat", "chat", h)
	d.handle(telebot.OnText, "text", h)
}

// fail переводит ошибку сервиса в сообщение пользователю
func (d *Dashboard) fail(ctx context.Context, c telebot.Context, op string, userID model.UserID, err error) error {
	switch {
	case errors.Is(err, model.ErrSessionNotFound):
		return c.Send("Please /login or /register first.")
	case errors.Is(err, model.ErrInvalidCredentials):
		return c.Send("Email and password are required.")
	case errors.Is(err, model.ErrMissingProfile):
		return c.Send("Name and last period start date are required.")
	case errors.Is(err, cycle.ErrInvalidDate):
		return c.Send("Dates look like 2026-10-01.")
	case errors.Is(err, cycle.ErrInvalidCycleLength):
		return c.Send(fmt.Sprintf("Cycle length must be between 1 and %d days.", cycle.MaxLength))
	case errors.Is(err, model.ErrQuizNotStarted):
		return c.Send("Start the check-in with /quiz.")
	case errors.Is(err, model.ErrQuizFinished):
		return c.Send("You've finished this check-in. Send /quiz to take it again.")
	case errors.Is(err, dispatch.ErrDispatchInFlight):
		return c.Send("A reminder is already on its way.")
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		d.lggr.Warnw("context deadline exceeded", "op", op, "user", userID, "err", err)
		return c.Send("That took too long. Please try again later.")
	}

	d.lggr.Errorw("operation failed", "op", op, "user", userID, "err", err)
	return c.Send("Something went wrong. Please try again later.")
}
