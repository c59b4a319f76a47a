package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/kotche/femhealth/internal/content"
	"github.com/kotche/femhealth/internal/cycle"
	"github.com/kotche/femhealth/internal/dispatch"
	"github.com/kotche/femhealth/internal/model"
	"github.com/kotche/femhealth/internal/quiz"
	"github.com/kotche/femhealth/internal/repository/sessions"
)

var fixedNow = time.Date(2026, time.October, 15, 10, 0, 0, 0, time.UTC)

type stubContent struct{}

func (stubContent) Tip(context.Context) string { return "Take a short walk." }

func (stubContent) EmailContent(_ context.Context, name string, days int, date string) content.EmailContent {
	return content.FallbackEmail(name, days, date)
}

func (stubContent) Chat(_ context.Context, msg string) string { return "About " + msg + ": rest well." }

type nopComposer struct{ links []string }

func (n *nopComposer) Compose(_ context.Context, to, subject, body string) error {
	n.links = append(n.links, dispatch.MailtoLink(to, subject, body))
	return nil
}

func newTestService(t *testing.T) (*DefaultService, *sessions.MemoryRepository, *nopComposer) {
	t.Helper()
	clock := func() time.Time { return fixedNow }
	repo := sessions.NewMemoryRepository()
	composer := &nopComposer{}
	lggr := logger.Test(t)

	seq := dispatch.NewSequencer(stubContent{}, composer, lggr,
		dispatch.WithDelay(dispatch.NoDelay), dispatch.WithClock(clock))
	svc := NewDefaultService(repo, cycle.NewPredictor(cycle.DefaultDueSoonDay, clock), stubContent{}, seq, clock, lggr)
	return svc, repo, composer
}

func TestLogin_FabricatesMockUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, 7, "jane@example.com", "")
	assert.ErrorIs(t, err, model.ErrInvalidCredentials)

	user, err := svc.Login(ctx, 7, "jane@example.com", "anything")
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith", user.Name)
	assert.Equal(t, 28, user.CycleLength)

	dash, err := svc.Dashboard(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 23, dash.Prediction.DaysUntil)
	assert.Equal(t, "Take a short walk.", dash.Tip)
	assert.True(t, dash.ShowAlertPrompt())
	assert.Empty(t, dash.Logs)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	base := Registration{UserID: 1, Name: "Ada Lovelace", Email: "ada@example.com", Password: "pw", LastPeriodStart: "2026-10-01"}

	missing := base
	missing.Name = ""
	_, err := svc.Register(ctx, missing)
	assert.ErrorIs(t, err, model.ErrMissingProfile)

	badDate := base
	badDate.LastPeriodStart = "yesterday"
	_, err = svc.Register(ctx, badDate)
	assert.ErrorIs(t, err, cycle.ErrInvalidDate)

	negative := base
	negative.CycleLength = -2
	_, err = svc.Register(ctx, negative)
	assert.ErrorIs(t, err, cycle.ErrInvalidCycleLength)

	tooLong := base
	tooLong.CycleLength = 200000
	_, err = svc.Register(ctx, tooLong)
	assert.ErrorIs(t, err, cycle.ErrInvalidCycleLength)

	user, err := svc.Register(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, 28, user.CycleLength)

	dash, err := svc.Dashboard(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 14, dash.Prediction.DaysUntil)
	assert.Equal(t, "Thursday, October 29", dash.Prediction.FormattedDate())
}

func TestDispatch_TwoDispatchesAreMostRecentFirst(t *testing.T) {
	svc, _, composer := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, 3, "jane@example.com", "pw")
	require.NoError(t, err)

	var lines []string
	emit := func(line string) error {
		lines = append(lines, line)
		return nil
	}

	first, err := svc.Dispatch(ctx, 3, emit)
	require.NoError(t, err)
	second, err := svc.Dispatch(ctx, 3, emit)
	require.NoError(t, err)

	assert.Equal(t, model.StatusDelivered, first.Status)
	assert.Equal(t, content.FallbackEmailSubject, first.Subject)
	assert.Contains(t, first.Message, "23 days")
	assert.Len(t, lines, 2*len(dispatch.Steps("", "", "", "")))
	assert.Len(t, composer.links, 2)

	logs, err := svc.Logs(ctx, 3)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, second.ID, logs[0].ID)
	assert.Equal(t, first.ID, logs[1].ID)
}

func TestSetPermission_GrantedAddsSystemLog(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, 5, "jane@example.com", "pw")
	require.NoError(t, err)

	assert.Error(t, svc.SetPermission(ctx, 5, "sometimes"))

	permission, err := svc.Permission(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionDefault, permission)

	require.NoError(t, svc.SetPermission(ctx, 5, model.PermissionDenied))
	permission, err = svc.Permission(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionDenied, permission)

	logs, err := svc.Logs(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, logs)

	require.NoError(t, svc.SetPermission(ctx, 5, model.PermissionGranted))
	dash, err := svc.Dashboard(ctx, 5)
	require.NoError(t, err)
	assert.False(t, dash.ShowAlertPrompt())
	require.Len(t, dash.Logs, 1)
	assert.Equal(t, model.LogTypeSystem, dash.Logs[0].Type)
	assert.Equal(t, AlertsEnabledMessage, dash.Logs[0].Message)
	assert.Equal(t, "10:00:00", dash.Logs[0].Timestamp)
}

func TestChat_KeepsHistoryWithGreeting(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Chat(ctx, 9, "hello")
	assert.ErrorIs(t, err, model.ErrSessionNotFound)

	_, err = svc.Login(ctx, 9, "jane@example.com", "pw")
	require.NoError(t, err)

	reply, err := svc.Chat(ctx, 9, "  cramps ")
	require.NoError(t, err)
	assert.Equal(t, model.RoleModel, reply.Role)
	assert.Equal(t, "About cramps: rest well.", reply.Text)

	history, err := svc.History(ctx, 9)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, Greeting, history[0].Text)
	assert.Equal(t, model.RoleUser, history[1].Role)
	assert.Equal(t, "cramps", history[1].Text)
	assert.NotEqual(t, history[1].ID, history[2].ID)

	_, err = svc.Chat(ctx, 9, "   ")
	assert.Error(t, err)
}

func TestQuiz_Flow(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, 11, "jane@example.com", "pw")
	require.NoError(t, err)

	_, err = svc.AnswerQuiz(ctx, 11, true)
	assert.ErrorIs(t, err, model.ErrQuizNotStarted)

	_, err = svc.StartQuiz(ctx, 11)
	require.NoError(t, err)

	var state quiz.State
	for i := 0; i < len(quiz.Questions); i++ {
		state, err = svc.AnswerQuiz(ctx, 11, i < 3)
		require.NoError(t, err)
	}
	assert.True(t, state.Finished)
	assert.Equal(t, quiz.TierModerate, state.Tier())

	_, err = svc.AnswerQuiz(ctx, 11, true)
	assert.ErrorIs(t, err, model.ErrQuizFinished)
}

func TestDueReminders_OnlyUnnotifiedDueSoon(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	reg := func(id model.UserID, last string) {
		_, err := svc.Register(ctx, Registration{UserID: id, Name: "User", Email: "u@example.com", Password: "pw", LastPeriodStart: last})
		require.NoError(t, err)
	}
	reg(1, "2026-09-20") // next 2026-10-18, three days away
	reg(2, "2026-10-10") // 23 days away
	reg(3, "2026-09-20")

	due, err := svc.DueReminders(ctx)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, model.UserID(1), due[0].UserID)
	assert.Equal(t, 3, due[0].DaysUntil)
	assert.Equal(t, "Sunday, October 18", due[0].Date)

	require.NoError(t, svc.MarkNotified(ctx, 1, due[0].Predicted))

	due, err = svc.DueReminders(ctx)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, model.UserID(3), due[0].UserID)
}

func TestLogout_DestroysSession(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Login(ctx, 4, "jane@example.com", "pw")
	require.NoError(t, err)
	_, err = svc.Chat(ctx, 4, "hi")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, 4))

	_, err = svc.Dashboard(ctx, 4)
	assert.ErrorIs(t, err, model.ErrSessionNotFound)
	assert.ErrorIs(t, svc.Logout(ctx, 4), model.ErrSessionNotFound)

	_, err = svc.Login(ctx, 4, "jane@example.com", "pw")
	require.NoError(t, err)
	history, err := svc.History(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
