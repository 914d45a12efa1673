package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/notification"
)

type notificationRepository struct {
	exec core.DBExecutor
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(exec core.DBExecutor) *notificationRepository {
	return &notificationRepository{exec: exec}
}

func (repo notificationRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo notificationRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return notification.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification, exec ...core.DBExecutor) (notification.Notification, error) {
	notif.ID = uuid.New().String()
	const q = `
		INSERT INTO notification (id, user_email, message, type, is_read, meeting_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		notif.ID, notif.UserEmail, notif.Message, notif.Type, notif.IsRead, notif.MeetingID, notif.CreatedAt,
	)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return notif, nil
}

func (repo notificationRepository) QueryNotificationsByEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]notification.Notification, error) {
	var notifs []notification.Notification
	const q = `SELECT * FROM notification WHERE user_email = $1 ORDER BY created_at DESC`
	if err := repo.getExec(exec).SelectContext(ctx, &notifs, q, email); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo notificationRepository) ReminderExists(ctx context.Context, meetingID, typ string, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	const q = `SELECT EXISTS (SELECT 1 FROM notification WHERE meeting_id = $1 AND type = $2)`
	if err := repo.getExec(exec).GetContext(ctx, &exists, q, meetingID, typ); err != nil {
		return false, errors.Wrap(err, "checking reminder guard")
	}
	return exists, nil
}

func (repo notificationRepository) GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (notification.Notification, error) {
	var notif notification.Notification
	const q = `SELECT * FROM notification WHERE id = $1`
	if err := repo.getExec(exec).GetContext(ctx, &notif, q, id); err != nil {
		return notification.Notification{}, repo.trapNoRowsErr(err, "getting notification")
	}
	return notif, nil
}

func (repo notificationRepository) MarkRead(ctx context.Context, id string, exec ...core.DBExecutor) error {
	const q = `UPDATE notification SET is_read = TRUE WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo notificationRepository) MarkAllRead(ctx context.Context, email string, exec ...core.DBExecutor) error {
	const q = `UPDATE notification SET is_read = TRUE WHERE user_email = $1`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, email); err != nil {
		return errors.Wrap(err, "marking notifications read")
	}
	return nil
}
