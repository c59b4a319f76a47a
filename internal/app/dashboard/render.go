package dashboard

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kotche/femhealth/internal/cycle"
	"github.com/kotche/femhealth/internal/model"
	"github.com/kotche/femhealth/internal/quiz"
	"github.com/kotche/femhealth/internal/service/session"
)

var errRegisterUsage = errors.New("usage: /register <name> <email> <password> <YYYY-MM-DD> [cycle length]")

func renderDashboard(d *session.Dashboard) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Hi %s!\n\n", d.User.FirstName())
	fmt.Fprintf(&sb, "Next cycle: %s (%s)\n", d.Prediction.FormattedDate(), d.Prediction.Summary())
	fmt.Fprintf(&sb, "Cycle length: %d days\n\n", d.User.CycleLength)
	fmt.Fprintf(&sb, "Daily tip: %s", d.Tip)

	if d.Prediction.DueSoon {
		sb.WriteString("\n\nYour cycle is close. Use /remind to email yourself a reminder.")
	}
	if latest, ok := d.Logs.Latest(); ok {
		fmt.Fprintf(&sb, "\n\nLast notification: %s at %s", latest.Status, latest.Timestamp)
	}
	return sb.String()
}

func renderLogs(logs model.NotificationLogs) string {
	if len(logs) == 0 {
		return "No notifications yet."
	}

	var sb strings.Builder
	sb.WriteString("Notification history:\n")
	for _, l := range logs {
		title := l.Subject
		if l.Type == model.LogTypeSystem || title == "" {
			title = l.Message
		}
		fmt.Fprintf(&sb, "\n%s [%s] %s: %s", l.Timestamp, l.Status, l.Type, title)
	}
	return sb.String()
}

func renderQuestion(s quiz.State) string {
	q, ok := s.Current()
	if !ok {
		return renderQuizResult(s.Tier())
	}
	return fmt.Sprintf("Question %d of %d\n\n%s", q.ID, len(quiz.Questions), q.Text)
}

func renderQuizResult(t quiz.Tier) string {
	return fmt.Sprintf("Your result: %s\n\n%s\n\nNext: /%s", t, t.Message(), t.Suggestion())
}

// appendTranscript adds one line to the live dispatch transcript.
func appendTranscript(sb *strings.Builder, line string) string {
	if sb.Len() > 0 {
		sb.WriteByte('\n')
	}
	sb.WriteString(line)
	return sb.String()
}

// parseRegistration reads "<name...> <email> <password> <date> [cycle]". The
// name may span several words; the date anchors the rest.
func parseRegistration(userID model.UserID, args []string) (session.Registration, error) {
	for i := len(args) - 1; i >= 3; i-- {
		if _, err := cycle.ParseDate(args[i]); err != nil {
			continue
		}
		rest := args[i+1:]
		if len(rest) > 1 {
			return session.Registration{}, errRegisterUsage
		}

		reg := session.Registration{
			UserID:          userID,
			Name:            strings.Join(args[:i-2], " "),
			Email:           args[i-2],
			Password:        args[i-1],
			LastPeriodStart: args[i],
		}
		if len(rest) == 1 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return session.Registration{}, fmt.Errorf("cycle length '%s' is not a number", rest[0])
			}
			reg.CycleLength = n
		}
		return reg, nil
	}
	return session.Registration{}, errRegisterUsage
}
