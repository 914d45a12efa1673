package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
)

// ErrCommitFailed is returned by transactions when FailCommit is set.
var ErrCommitFailed = errors.New("dummydb: commit failed")

type (
	DB struct {
		user  *userTable
		slot  *slotTable
		mtg   *meetingTable
		notif *notificationTable

		// FailCommit makes every transaction's Commit fail, for tests
		// exercising store failure paths.
		FailCommit bool
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	slotTable struct {
		sync.RWMutex
		table map[string]*schedule.Availability
	}

	meetingTable struct {
		sync.RWMutex
		table map[string]*meeting.Meeting
	}

	notificationTable struct {
		sync.RWMutex
		table map[string]*notification.Notification
	}
)

var _ core.DB = (*DB)(nil) // interface compliance check

func Open() (*DB, error) {
	db := &DB{
		user:  &userTable{table: make(map[string]*user.User)},
		slot:  &slotTable{table: make(map[string]*schedule.Availability)},
		mtg:   &meetingTable{table: make(map[string]*meeting.Meeting)},
		notif: &notificationTable{table: make(map[string]*notification.Notification)},
	}
	return db, nil
}

// BeginTx hands out a no-op transaction; the dummy repositories write
// straight to their tables so there is nothing to commit or roll back.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return &tx{db: db}, nil
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}
func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return nil
}

type tx struct {
	db *DB
}

var _ core.DBTransactor = (*tx)(nil)

func (t *tx) Commit() error {
	if t.db.FailCommit {
		return ErrCommitFailed
	}
	return nil
}
func (t *tx) Rollback() error { return nil }

func (t *tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return t.db.ExecContext(ctx, query, args...)
}
func (t *tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return t.db.QueryContext(ctx, query, args...)
}
func (t *tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return t.db.QueryRowContext(ctx, query, args...)
}
func (t *tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.db.GetContext(ctx, dest, query, args...)
}
func (t *tx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return t.db.SelectContext(ctx, dest, query, args...)
}
