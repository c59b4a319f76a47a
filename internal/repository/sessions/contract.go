package sessions

import (
	"context"
	"time"

	"github.com/kotche/femhealth/internal/model"
)

type (
	Repository interface {
		// SaveUser starts a new session for user, discarding any previous one.
		SaveUser(ctx context.Context, user model.User) error
		GetSession(ctx context.Context, userID model.UserID) (*model.Session, error)
		DeleteSession(ctx context.Context, userID model.UserID) error
		// ListSessions returns every session without its logs.
		ListSessions(ctx context.Context) ([]model.Session, error)
		PrependLog(ctx context.Context, userID model.UserID, entry model.NotificationLog) error
		SetPermission(ctx context.Context, userID model.UserID, permission model.AlertPermission) error
		MarkNotified(ctx context.Context, userID model.UserID, predicted time.Time) error
	}
)
