package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/kotche/femhealth/infrastructure/tracing"
	"github.com/kotche/femhealth/internal/model"
)

type DefaultRepository struct {
	db *sql.DB
}

func NewDefaultRepository(pg *sql.DB) *DefaultRepository {
	return &DefaultRepository{pg}
}

func (d *DefaultRepository) SaveUser(ctx context.Context, user model.User) error {
	ctx, span := tracing.StartSpan(ctx, "SaveUser_repo")
	defer span.End()

	// Новая сессия начинается без логов прошлой
	query := `
		INSERT INTO sessions (user_id, name, email, cycle_length, last_period_start, permission, notified_for, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULL, NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			cycle_length = EXCLUDED.cycle_length,
			last_period_start = EXCLUDED.last_period_start,
			permission = EXCLUDED.permission,
			notified_for = NULL,
			created_at = NOW()
	`

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, `DELETE FROM notification_logs WHERE user_id = $1`, user.ID); err != nil {
		return fmt.Errorf("failed to clear logs for user '%d': %w", user.ID, err)
	}
	if _, err = tx.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.CycleLength,
		user.LastPeriodStart, model.PermissionDefault); err != nil {
		tracing.Fail(span, err)
		return fmt.Errorf("failed to save session for user '%d': %w", user.ID, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session for user '%d': %w", user.ID, err)
	}
	return nil
}

func (d *DefaultRepository) GetSession(ctx context.Context, userID model.UserID) (*model.Session, error) {
	ctx, span := tracing.StartSpan(ctx, "GetSession_repo")
	defer span.End()

	s := &model.Session{}
	var notified sql.NullTime
	query := `
		SELECT user_id, name, email, cycle_length, last_period_start, permission, notified_for
		FROM sessions WHERE user_id = $1
	`
	err := d.db.QueryRowContext(ctx, query, userID).Scan(&s.User.ID, &s.User.Name, &s.User.Email,
		&s.User.CycleLength, &s.User.LastPeriodStart, &s.Permission, &notified)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrSessionNotFound
		}
		tracing.Fail(span, err)
		return nil, fmt.Errorf("failed to get session for user '%d': %w", userID, err)
	}
	if notified.Valid {
		s.NotifiedFor = notified.Time
	}

	logs, err := d.listLogs(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.Logs = logs

	return s, nil
}

func (d *DefaultRepository) DeleteSession(ctx context.Context, userID model.UserID) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete session for user '%d': %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

func (d *DefaultRepository) ListSessions(ctx context.Context) ([]model.Session, error) {
	ctx, span := tracing.StartSpan(ctx, "ListSessions_repo")
	defer span.End()

	query, args, err := squirrel.
		Select("user_id",
			"name",
			"email",
			"cycle_length",
			"last_period_start",
			"permission",
			"notified_for").
		From("sessions").
		OrderBy("user_id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		tracing.Fail(span, err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []model.Session
	for rows.Next() {
		var (
			s        model.Session
			notified sql.NullTime
		)
		if err = rows.Scan(&s.User.ID, &s.User.Name, &s.User.Email, &s.User.CycleLength,
			&s.User.LastPeriodStart, &s.Permission, &notified); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		if notified.Valid {
			s.NotifiedFor = notified.Time
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func (d *DefaultRepository) PrependLog(ctx context.Context, userID model.UserID, entry model.NotificationLog) error {
	query, args, err := squirrel.
		Insert("notification_logs").
		Columns("user_id", "log_id", "type", "subject", "message", "stamp", "status", "created_at").
		Values(userID, entry.ID, entry.Type, entry.Subject, entry.Message, entry.Timestamp, entry.Status, squirrel.Expr("NOW()")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err = d.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to add log '%s' for user '%d': %w", entry.ID, userID, err)
	}
	return nil
}

func (d *DefaultRepository) SetPermission(ctx context.Context, userID model.UserID, permission model.AlertPermission) error {
	return d.updateSession(ctx, userID, squirrel.Eq{"permission": permission})
}

func (d *DefaultRepository) MarkNotified(ctx context.Context, userID model.UserID, predicted time.Time) error {
	return d.updateSession(ctx, userID, squirrel.Eq{"notified_for": predicted})
}

func (d *DefaultRepository) updateSession(ctx context.Context, userID model.UserID, set squirrel.Eq) error {
	query, args, err := squirrel.
		Update("sessions").
		SetMap(set).
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session for user '%d': %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return model.ErrSessionNotFound
	}
	return nil
}

// listLogs returns the user's entries most recent first.
func (d *DefaultRepository) listLogs(ctx context.Context, userID model.UserID) (model.NotificationLogs, error) {
	query, args, err := squirrel.
		Select("log_id", "type", "subject", "message", "stamp", "status").
		From("notification_logs").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("id DESC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var logs model.NotificationLogs
	for rows.Next() {
		var l model.NotificationLog
		if err = rows.Scan(&l.ID, &l.Type, &l.Subject, &l.Message, &l.Timestamp, &l.Status); err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, rows.Err()
}
