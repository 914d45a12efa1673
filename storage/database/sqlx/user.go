package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/user"
)

type userRepository struct {
	exec core.DBExecutor
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1`
	args := []interface{}{email}
	if len(excludedUsers) > 0 {
		params := make([]string, 0, len(excludedUsers))
		for i, usr := range excludedUsers {
			params = append(params, placeholder(i+2))
			args = append(args, usr.ID)
		}
		q += " AND id NOT IN (" + strings.Join(params, ",") + ")"
	}
	q += ")"

	var exists bool
	if err := repo.getExec(exec).GetContext(ctx, &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	const q = `
		INSERT INTO "user" (id, role, name, email, google_id, password_hash, is_active, created_at, updated_at, last_login)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		usr.ID, usr.Role, usr.Name, usr.Email, usr.GoogleID, usr.PasswordHash,
		usr.IsActive, usr.CreatedAt, usr.UpdatedAt, usr.LastLogin,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	const q = `SELECT * FROM "user" WHERE id = $1`
	if err := repo.getExec(exec).GetContext(ctx, &usr, q, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by id")
	}
	return usr, nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	const q = `SELECT * FROM "user" WHERE email = $1`
	if err := repo.getExec(exec).GetContext(ctx, &usr, q, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return usr, nil
}

func (repo userRepository) GetUserByName(ctx context.Context, name string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	const q = `SELECT * FROM "user" WHERE name = $1`
	if err := repo.getExec(exec).GetContext(ctx, &usr, q, name); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by name")
	}
	return usr, nil
}

func (repo userRepository) GetUserByGoogleID(ctx context.Context, googleID string, exec ...core.DBExecutor) (user.User, error) {
	var usr user.User
	const q = `SELECT * FROM "user" WHERE google_id = $1 AND google_id <> ''`
	if err := repo.getExec(exec).GetContext(ctx, &usr, q, googleID); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by google id")
	}
	return usr, nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	const q = `
		UPDATE "user"
		SET name          = COALESCE(NULLIF($2, ''), name),
		    password_hash = COALESCE($3, password_hash),
		    google_id     = COALESCE(NULLIF($4, ''), google_id),
		    updated_at    = $5
		WHERE id = $1`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, usr.ID, usr.Name, usr.PasswordHash, usr.GoogleID, usr.UpdatedAt); err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	return repo.GetUserByID(ctx, usr.ID, exec...)
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	const q = `UPDATE "user" SET last_login = $2 WHERE id = $1`
	if _, err := repo.getExec(exec).ExecContext(ctx, q, usr.ID, time.Now().UTC()); err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	return repo.GetUserByID(ctx, usr.ID, exec...)
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) error {
	if len(ids) == 0 {
		return nil
	}
	params := make([]string, 0, len(ids))
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		params = append(params, placeholder(i+1))
		args = append(args, id)
	}
	q := `DELETE FROM "user" WHERE id IN (` + strings.Join(params, ",") + ")"
	if _, err := repo.getExec(exec).ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
