package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/schedule"
)

type slotRepository struct {
	db *slotTable
}

var _ schedule.Repository = (*slotRepository)(nil) // interface compliance check

func NewScheduleRepository(db *DB) schedule.Repository {
	return &slotRepository{db: db.slot}
}

func (repo *slotRepository) query() []schedule.Availability {
	slots := make([]schedule.Availability, 0, len(repo.db.table))
	for _, slot := range repo.db.table {
		slots = append(slots, *slot)
	}
	sortSlots(slots)
	return slots
}

func sortSlots(slots []schedule.Availability) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Date != slots[j].Date {
			return slots[i].Date < slots[j].Date
		}
		return slots[i].Time < slots[j].Time
	})
}

func (repo *slotRepository) CreateAvailability(ctx context.Context, slot schedule.Availability, exec ...core.DBExecutor) (schedule.Availability, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	slot.ID = uuid.New().String()
	repo.db.table[slot.ID] = &slot
	return slot, nil
}

func (repo *slotRepository) GetAvailabilityByID(ctx context.Context, id string, exec ...core.DBExecutor) (schedule.Availability, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if slot, ok := repo.db.table[id]; ok {
		return *slot, nil
	}
	return schedule.Availability{}, schedule.ErrNotFound
}

func (repo *slotRepository) GetBookedSlot(ctx context.Context, professorName, date, tm string, exec ...core.DBExecutor) (schedule.Availability, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, slot := range repo.query() {
		if slot.Booked && slot.ProfessorName == professorName && slot.Date == date && slot.Time == tm {
			return slot, nil
		}
	}
	return schedule.Availability{}, schedule.ErrNotFound
}

func (repo *slotRepository) QueryOpenSlots(ctx context.Context, exec ...core.DBExecutor) ([]schedule.Availability, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var open []schedule.Availability
	for _, slot := range repo.query() {
		if !slot.Booked {
			open = append(open, slot)
		}
	}
	return open, nil
}

func (repo *slotRepository) QuerySlotsByProfessor(ctx context.Context, professorName string, exec ...core.DBExecutor) ([]schedule.Availability, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var slots []schedule.Availability
	for _, slot := range repo.query() {
		if slot.ProfessorName == professorName {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (repo *slotRepository) SetBooked(ctx context.Context, id string, booked bool, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	slot, ok := repo.db.table[id]
	if !ok {
		return schedule.ErrNotFound
	}
	slot.Booked = booked
	return nil
}

func (repo *slotRepository) DeleteAvailability(ctx context.Context, id string, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
