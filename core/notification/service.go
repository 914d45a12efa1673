package notification

import (
	"context"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(ctx context.Context, notif Notification, exec ...core.DBExecutor) (Notification, error)
		// QueryNotificationsByEmail returns the user's feed, newest first.
		QueryNotificationsByEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]Notification, error)
		// ReminderExists reports whether a guard row with this exact
		// (meeting id, type) pair has already been written.
		ReminderExists(ctx context.Context, meetingID, typ string, exec ...core.DBExecutor) (bool, error)
		GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (Notification, error)
		MarkRead(ctx context.Context, id string, exec ...core.DBExecutor) error
		MarkAllRead(ctx context.Context, email string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Feed(ctx context.Context, email string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) UnreadCount(ctx context.Context, email string) (int, error) {
	feed, err := svc.Feed(ctx, email)
	if err != nil {
		return 0, err
	}
	var n int
	for _, notif := range feed {
		if !notif.IsRead {
			n++
		}
	}
	return n, nil
}

// MarkRead marks one notification read; the notification must belong to the
// given user.
func (svc *Service) MarkRead(ctx context.Context, id, email string) error {
	notif, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return err
	}
	if notif.UserEmail != core.CleanString(email, true /* lower */) {
		return ErrNotFound
	}
	return svc.repo.MarkRead(ctx, id)
}

func (svc *Service) MarkAllRead(ctx context.Context, email string) error {
	return svc.repo.MarkAllRead(ctx, core.CleanString(email, true /* lower */))
}
