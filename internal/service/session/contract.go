package session

import (
	"context"
	"time"

	"github.com/kotche/femhealth/internal/cycle"
	"github.com/kotche/femhealth/internal/dispatch"
	"github.com/kotche/femhealth/internal/model"
	"github.com/kotche/femhealth/internal/quiz"
)

type (
	Service interface {
		Login(ctx context.Context, userID model.UserID, email, password string) (model.User, error)
		Register(ctx context.Context, in Registration) (model.User, error)
		Logout(ctx context.Context, userID model.UserID) error
		Dashboard(ctx context.Context, userID model.UserID) (*Dashboard, error)
		Dispatch(ctx context.Context, userID model.UserID, emit dispatch.EmitFunc) (model.NotificationLog, error)
		Logs(ctx context.Context, userID model.UserID) (model.NotificationLogs, error)
		SetPermission(ctx context.Context, userID model.UserID, permission model.AlertPermission) error
		Permission(ctx context.Context, userID model.UserID) (model.AlertPermission, error)
		Chat(ctx context.Context, userID model.UserID, text string) (model.ChatMessage, error)
		History(ctx context.Context, userID model.UserID) ([]model.ChatMessage, error)
		StartQuiz(ctx context.Context, userID model.UserID) (quiz.State, error)
		AnswerQuiz(ctx context.Context, userID model.UserID, yes bool) (quiz.State, error)
		DueReminders(ctx context.Context) ([]Reminder, error)
		MarkNotified(ctx context.Context, userID model.UserID, predicted time.Time) error
	}

	// Dispatcher runs the reminder handshake.
	Dispatcher interface {
		Dispatch(ctx context.Context, req dispatch.Request, emit dispatch.EmitFunc) (model.NotificationLog, error)
	}

	Registration struct {
		UserID          model.UserID
		Name            string
		Email           string
		Password        string
		LastPeriodStart string
		CycleLength     int
	}

	Dashboard struct {
		User       model.User
		Prediction cycle.Prediction
		Tip        string
		Permission model.AlertPermission
		Logs       model.NotificationLogs
	}

	// Reminder is a due-soon session found by the sweep.
	Reminder struct {
		UserID     model.UserID          `json:"user_id"`
		Name       string                `json:"name"`
		Email      string                `json:"email"`
		DaysUntil  int                   `json:"days_until"`
		Date       string                `json:"date"`
		Predicted  time.Time             `json:"predicted"`
		Permission model.AlertPermission `json:"permission"`
	}
)

// ShowAlertPrompt reports whether the user has not decided on device alerts yet.
func (d Dashboard) ShowAlertPrompt() bool {
	return d.Permission == model.PermissionDefault
}
