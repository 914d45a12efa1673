package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
)

type meetingRepository struct {
	exec core.DBExecutor
}

var _ meeting.Repository = (*meetingRepository)(nil) // interface compliance check

func NewMeetingRepository(exec core.DBExecutor) *meetingRepository {
	return &meetingRepository{exec: exec}
}

func (repo meetingRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo meetingRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return meeting.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo meetingRepository) CreateMeeting(ctx context.Context, mtg meeting.Meeting, exec ...core.DBExecutor) (meeting.Meeting, error) {
	mtg.ID = uuid.New().String()
	const q = `
		INSERT INTO meeting (id, student, student_email, professor, professor_email, date, time, notes, notified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := repo.getExec(exec).ExecContext(
		ctx, q,
		mtg.ID, mtg.Student, mtg.StudentEmail, mtg.Professor, mtg.ProfessorEmail,
		mtg.Date, mtg.Time, mtg.Notes, mtg.Notified, mtg.CreatedAt,
	)
	if err != nil {
		return meeting.Meeting{}, errors.Wrap(err, "inserting meeting")
	}
	return mtg, nil
}

func (repo meetingRepository) GetMeetingByID(ctx context.Context, id string, exec ...core.DBExecutor) (meeting.Meeting, error) {
	var mtg meeting.Meeting
	const q = `SELECT * FROM meeting WHERE id = $1`
	if err := repo.getExec(exec).GetContext(ctx, &mtg, q, id); err != nil {
		return meeting.Meeting{}, repo.trapNoRowsErr(err, "getting meeting")
	}
	return mtg, nil
}

func (repo meetingRepository) QueryMeetingsByDate(ctx context.Context, date string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	var meetings []meeting.Meeting
	const q = `SELECT * FROM meeting WHERE date = $1 ORDER BY time`
	if err := repo.getExec(exec).SelectContext(ctx, &meetings, q, date); err != nil {
		return nil, errors.Wrap(err, "querying meetings by date")
	}
	return meetings, nil
}

func (repo meetingRepository) QueryMeetingsByStudentEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	var meetings []meeting.Meeting
	const q = `SELECT * FROM meeting WHERE student_email = $1 ORDER BY date, time`
	if err := repo.getExec(exec).SelectContext(ctx, &meetings, q, email); err != nil {
		return nil, errors.Wrap(err, "querying student meetings")
	}
	return meetings, nil
}

func (repo meetingRepository) QueryMeetingsByProfessorEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]meeting.Meeting, error) {
	var meetings []meeting.Meeting
	const q = `SELECT * FROM meeting WHERE professor_email = $1 ORDER BY date, time`
	if err := repo.getExec(exec).SelectContext(ctx, &meetings, q, email); err != nil {
		return nil, errors.Wrap(err, "querying professor meetings")
	}
	return meetings, nil
}

func (repo meetingRepository) DeleteMeeting(ctx context.Context, id string, exec ...core.DBExecutor) error {
	const q = `DELETE FROM meeting WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting meeting")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return meeting.ErrNotFound
	}
	return nil
}
