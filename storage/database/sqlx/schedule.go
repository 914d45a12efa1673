package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/schedule"
)

type scheduleRepository struct {
	exec core.DBExecutor
}

var _ schedule.Repository = (*scheduleRepository)(nil) // interface compliance check

func NewScheduleRepository(exec core.DBExecutor) *scheduleRepository {
	return &scheduleRepository{exec: exec}
}

func (repo scheduleRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo scheduleRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return schedule.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo scheduleRepository) CreateAvailability(ctx context.Context, slot schedule.Availability, exec ...core.DBExecutor) (schedule.Availability, error) {
	slot.ID = uuid.New().String()
	const q = `
		INSERT INTO availability (id, professor_name, date, time, booked, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.getExec(exec).ExecContext(ctx, q, slot.ID, slot.ProfessorName, slot.Date, slot.Time, slot.Booked, slot.CreatedAt)
	if err != nil {
		return schedule.Availability{}, errors.Wrap(err, "inserting availability")
	}
	return slot, nil
}

func (repo scheduleRepository) GetAvailabilityByID(ctx context.Context, id string, exec ...core.DBExecutor) (schedule.Availability, error) {
	var slot schedule.Availability
	const q = `SELECT * FROM availability WHERE id = $1`
	if err := repo.getExec(exec).GetContext(ctx, &slot, q, id); err != nil {
		return schedule.Availability{}, repo.trapNoRowsErr(err, "getting availability")
	}
	return slot, nil
}

func (repo scheduleRepository) GetBookedSlot(ctx context.Context, professorName, date, tm string, exec ...core.DBExecutor) (schedule.Availability, error) {
	var slot schedule.Availability
	const q = `
		SELECT * FROM availability
		WHERE booked AND professor_name = $1 AND date = $2 AND time = $3
		LIMIT 1`
	if err := repo.getExec(exec).GetContext(ctx, &slot, q, professorName, date, tm); err != nil {
		return schedule.Availability{}, repo.trapNoRowsErr(err, "getting booked slot")
	}
	return slot, nil
}

func (repo scheduleRepository) QueryOpenSlots(ctx context.Context, exec ...core.DBExecutor) ([]schedule.Availability, error) {
	var slots []schedule.Availability
	const q = `SELECT * FROM availability WHERE NOT booked ORDER BY date, time`
	if err := repo.getExec(exec).SelectContext(ctx, &slots, q); err != nil {
		return nil, errors.Wrap(err, "querying open slots")
	}
	return slots, nil
}

func (repo scheduleRepository) QuerySlotsByProfessor(ctx context.Context, professorName string, exec ...core.DBExecutor) ([]schedule.Availability, error) {
	var slots []schedule.Availability
	const q = `SELECT * FROM availability WHERE professor_name = $1 ORDER BY date, time`
	if err := repo.getExec(exec).SelectContext(ctx, &slots, q, professorName); err != nil {
		return nil, errors.Wrap(err, "querying professor slots")
	}
	return slots, nil
}

func (repo scheduleRepository) SetBooked(ctx context.Context, id string, booked bool, exec ...core.DBExecutor) error {
	const q = `UPDATE availability SET booked = $2 WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, id, booked)
	if err != nil {
		return errors.Wrap(err, "setting booked flag")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}

func (repo scheduleRepository) DeleteAvailability(ctx context.Context, id string, exec ...core.DBExecutor) error {
	const q = `DELETE FROM availability WHERE id = $1`
	res, err := repo.getExec(exec).ExecContext(ctx, q, id)
	if err != nil {
		return errors.Wrap(err, "deleting availability")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return schedule.ErrNotFound
	}
	return nil
}
