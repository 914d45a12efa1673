package core

import (
	"context"
	"database/sql"
)

type (
	// DBExecutor is satisfied by both *sqlx.DB and *sqlx.Tx; repositories
	// take an optional trailing DBExecutor so services can inject an open
	// transaction.
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
		QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}

	DB interface {
		DBExecutor

		BeginTx(ctx context.Context, opts *sql.TxOptions) (DBTransactor, error)
	}
)
