package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/notification"
)

type notificationRepository struct {
	db *notificationTable
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *DB) notification.Repository {
	return &notificationRepository{db: db.notif}
}

func (repo *notificationRepository) query() []notification.Notification {
	notifs := make([]notification.Notification, 0, len(repo.db.table))
	for _, notif := range repo.db.table {
		notifs = append(notifs, *notif)
	}
	// newest first
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, notif notification.Notification, exec ...core.DBExecutor) (notification.Notification, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	notif.ID = uuid.New().String()
	repo.db.table[notif.ID] = &notif
	return notif, nil
}

func (repo *notificationRepository) QueryNotificationsByEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var notifs []notification.Notification
	for _, notif := range repo.query() {
		if notif.UserEmail == email {
			notifs = append(notifs, notif)
		}
	}
	return notifs, nil
}

func (repo *notificationRepository) ReminderExists(ctx context.Context, meetingID, typ string, exec ...core.DBExecutor) (bool, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, notif := range repo.db.table {
		if notif.MeetingID == meetingID && notif.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string, exec ...core.DBExecutor) (notification.Notification, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if notif, ok := repo.db.table[id]; ok {
		return *notif, nil
	}
	return notification.Notification{}, notification.ErrNotFound
}

func (repo *notificationRepository) MarkRead(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	notif, ok := repo.db.table[id]
	if !ok {
		return notification.ErrNotFound
	}
	notif.IsRead = true
	return nil
}

func (repo *notificationRepository) MarkAllRead(ctx context.Context, email string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, notif := range repo.db.table {
		if notif.UserEmail == email {
			notif.IsRead = true
		}
	}
	return nil
}
