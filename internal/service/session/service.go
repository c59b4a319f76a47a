package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/internal/content"
	"github.com/kotche/femhealth/internal/cycle"
	"github.com/kotche/femhealth/internal/dispatch"
	"github.com/kotche/femhealth/internal/metrics"
	"github.com/kotche/femhealth/internal/model"
	"github.com/kotche/femhealth/internal/quiz"
	"github.com/kotche/femhealth/internal/repository/sessions"
)

const (
	mockUserName      = "Jane Smith"
	mockDaysSinceLast = 5

	Greeting = "Hello! I'm FemBot, your personal health companion. I'm here to answer your questions about " +
		"menstrual cycles, nutrition, or general wellness. How can I support you today?"

	AlertsEnabledMessage = "Device alerts enabled successfully."
)

type DefaultService struct {
	repo       sessions.Repository
	predictor  *cycle.Predictor
	content    content.Service
	dispatcher Dispatcher
	now        func() time.Time
	lggr       logger.Logger

	// Chat history and quiz progress never leave the process.
	mu      sync.Mutex
	history map[model.UserID][]model.ChatMessage
	quizzes map[model.UserID]quiz.State
}

func NewDefaultService(
	repo sessions.Repository,
	predictor *cycle.Predictor,
	contentSvc content.Service,
	dispatcher Dispatcher,
	now func() time.Time,
	lggr logger.Logger,
) *DefaultService {
	if now == nil {
		now = time.Now
	}
	return &DefaultService{
		repo:       repo,
		predictor:  predictor,
		content:    contentSvc,
		dispatcher: dispatcher,
		now:        now,
		lggr:       lggr.Named("session"),
		history:    make(map[model.UserID][]model.ChatMessage),
		quizzes:    make(map[model.UserID]quiz.State),
	}
}

// Login accepts any non-empty credentials and opens a session for a mock user
// whose last cycle started five days ago.
func (d *DefaultService) Login(ctx context.Context, userID model.UserID, email, password string) (model.User, error) {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return model.User{}, model.ErrInvalidCredentials
	}

	user := model.User{
		ID:              userID,
		Name:            mockUserName,
		Email:           strings.TrimSpace(email),
		CycleLength:     cycle.DefaultLength,
		LastPeriodStart: cycle.Midnight(d.now()).AddDate(0, 0, -mockDaysSinceLast),
	}
	if err := d.open(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (d *DefaultService) Register(ctx context.Context, in Registration) (model.User, error) {
	if strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.Password) == "" {
		return model.User{}, model.ErrInvalidCredentials
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.LastPeriodStart) == "" {
		return model.User{}, model.ErrMissingProfile
	}

	last, err := cycle.ParseDate(in.LastPeriodStart)
	if err != nil {
		return model.User{}, err
	}
	length := in.CycleLength
	if length == 0 {
		length = cycle.DefaultLength
	}
	if _, err = cycle.Predict(last, length, d.now()); err != nil {
		return model.User{}, err
	}

	user := model.User{
		ID:              in.UserID,
		Name:            strings.TrimSpace(in.Name),
		Email:           strings.TrimSpace(in.Email),
		CycleLength:     length,
		LastPeriodStart: last,
	}
	if err = d.open(ctx, user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

func (d *DefaultService) Logout(ctx context.Context, userID model.UserID) error {
	if err := d.repo.DeleteSession(ctx, userID); err != nil {
		return err
	}
	metrics.ActiveSessionsGauge.Dec()

	d.mu.Lock()
	delete(d.history, userID)
	delete(d.quizzes, userID)
	d.mu.Unlock()

	d.lggr.Infow("session closed", "user", userID)
	return nil
}

func (d *DefaultService) Dashboard(ctx context.Context, userID model.UserID) (*Dashboard, error) {
	s, err := d.repo.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	pred, err := d.predictor.Predict(s.User.LastPeriodStart, s.User.CycleLength)
	if err != nil {
		return nil, fmt.Errorf("failed to predict cycle for user '%d': %w", userID, err)
	}

	return &Dashboard{
		User:       s.User,
		Prediction: pred,
		Tip:        d.content.Tip(ctx),
		Permission: s.Permission,
		Logs:       s.Logs,
	}, nil
}

// Dispatch runs the reminder handshake for the session owner and records the
// resulting entry at the front of the log.
func (d *DefaultService) Dispatch(ctx context.Context, userID model.UserID, emit dispatch.EmitFunc) (model.NotificationLog, error) {
	s, err := d.repo.GetSession(ctx, userID)
	if err != nil {
		return model.NotificationLog{}, err
	}

	pred, err := d.predictor.Predict(s.User.LastPeriodStart, s.User.CycleLength)
	if err != nil {
		return model.NotificationLog{}, fmt.Errorf("failed to predict cycle for user '%d': %w", userID, err)
	}

	entry, err := d.dispatcher.Dispatch(dispatch.ContextWithRecipient(ctx, userID), dispatch.Request{
		Name:      s.User.Name,
		Email:     s.User.Email,
		DaysUntil: pred.DaysUntil,
		Date:      pred.FormattedDate(),
	}, emit)
	if err != nil {
		return model.NotificationLog{}, err
	}

	if err = d.repo.PrependLog(ctx, userID, entry); err != nil {
		return entry, fmt.Errorf("failed to record dispatch for user '%d': %w", userID, err)
	}
	return entry, nil
}

func (d *DefaultService) Logs(ctx context.Context, userID model.UserID) (model.NotificationLogs, error) {
	s, err := d.repo.GetSession(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Logs, nil
}

func (d *DefaultService) SetPermission(ctx context.Context, userID model.UserID, permission model.AlertPermission) error {
	if !permission.Valid() {
		return fmt.Errorf("unknown alert permission '%s'", permission)
	}
	if err := d.repo.SetPermission(ctx, userID, permission); err != nil {
		return err
	}
	if permission != model.PermissionGranted {
		return nil
	}

	return d.repo.PrependLog(ctx, userID, model.NotificationLog{
		ID:        "log_" + ksuid.New().String(),
		Type:      model.LogTypeSystem,
		Message:   AlertsEnabledMessage,
		Timestamp: d.now().Format("15:04:05"),
		Status:    model.StatusDelivered,
	})
}

// Permission returns the session's current device alert decision.
func (d *DefaultService) Permission(ctx context.Context, userID model.UserID) (model.AlertPermission, error) {
	s, err := d.repo.GetSession(ctx, userID)
	if err != nil {
		return "", err
	}
	return s.Permission, nil
}

// Chat sends text to the assistant and returns its reply. Both messages are
// appended to the session's history.
func (d *DefaultService) Chat(ctx context.Context, userID model.UserID, text string) (model.ChatMessage, error) {
	if _, err := d.repo.GetSession(ctx, userID); err != nil {
		return model.ChatMessage{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, errors.New("message is empty")
	}

	d.appendHistory(userID, d.message(model.RoleUser, text))
	reply := d.message(model.RoleModel, d.content.Chat(ctx, text))
	d.appendHistory(userID, reply)

	return reply, nil
}

func (d *DefaultService) History(ctx context.Context, userID model.UserID) ([]model.ChatMessage, error) {
	if _, err := d.repo.GetSession(ctx, userID); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	h := d.historyLocked(userID)
	out := make([]model.ChatMessage, len(h))
	copy(out, h)
	return out, nil
}

func (d *DefaultService) StartQuiz(ctx context.Context, userID model.UserID) (quiz.State, error) {
	if _, err := d.repo.GetSession(ctx, userID); err != nil {
		return quiz.State{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	state := d.quizzes[userID].Reset()
	d.quizzes[userID] = state
	return state, nil
}

func (d *DefaultService) AnswerQuiz(ctx context.Context, userID model.UserID, yes bool) (quiz.State, error) {
	if _, err := d.repo.GetSession(ctx, userID); err != nil {
		return quiz.State{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	state, ok := d.quizzes[userID]
	if !ok {
		return quiz.State{}, model.ErrQuizNotStarted
	}
	next, err := state.Answer(yes)
	if err != nil {
		return state, err
	}
	d.quizzes[userID] = next
	return next, nil
}

// DueReminders lists sessions whose cycle is due soon and that have not been
// reminded for the current predicted date.
func (d *DefaultService) DueReminders(ctx context.Context) ([]Reminder, error) {
	list, err := d.repo.ListSessions(ctx)
	if err != nil {
		return nil, err
	}

	var due []Reminder
	for _, s := range list {
		pred, err := d.predictor.Predict(s.User.LastPeriodStart, s.User.CycleLength)
		if err != nil {
			d.lggr.Warnw("skipping session with invalid cycle", "user", s.User.ID, "err", err)
			continue
		}
		if !pred.DueSoon || sameDay(s.NotifiedFor, pred.NextPeriodDate) {
			continue
		}
		due = append(due, Reminder{
			UserID:     s.User.ID,
			Name:       s.User.Name,
			Email:      s.User.Email,
			DaysUntil:  pred.DaysUntil,
			Date:       pred.FormattedDate(),
			Predicted:  pred.NextPeriodDate,
			Permission: s.Permission,
		})
	}
	return due, nil
}

func (d *DefaultService) MarkNotified(ctx context.Context, userID model.UserID, predicted time.Time) error {
	y, m, day := predicted.Date()
	return d.repo.MarkNotified(ctx, userID, time.Date(y, m, day, 0, 0, 0, 0, time.UTC))
}

func (d *DefaultService) open(ctx context.Context, user model.User) error {
	_, err := d.repo.GetSession(ctx, user.ID)
	existed := err == nil

	if err = d.repo.SaveUser(ctx, user); err != nil {
		return fmt.Errorf("failed to open session for user '%d': %w", user.ID, err)
	}
	if !existed {
		metrics.ActiveSessionsGauge.Inc()
	}

	d.mu.Lock()
	delete(d.history, user.ID)
	delete(d.quizzes, user.ID)
	d.mu.Unlock()

	d.lggr.Infow("session opened", "user", user.ID)
	return nil
}

func (d *DefaultService) appendHistory(userID model.UserID, msg model.ChatMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.history[userID] = append(d.historyLocked(userID), msg)
}

// historyLocked returns the history, seeding it with the greeting.
func (d *DefaultService) historyLocked(userID model.UserID) []model.ChatMessage {
	h, ok := d.history[userID]
	if !ok {
		h = []model.ChatMessage{d.message(model.RoleModel, Greeting)}
		d.history[userID] = h
	}
	return h
}

func (d *DefaultService) message(role model.Role, text string) model.ChatMessage {
	return model.ChatMessage{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: d.now(),
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
