package schedule

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
)

var (
	ErrNotFound      = errors.New("slot not found")
	ErrSlotBooked    = errors.New("slot is already booked")
	ErrSlotNotBooked = errors.New("slot is not booked")
)

type (
	Repository interface {
		CreateAvailability(ctx context.Context, slot Availability, exec ...core.DBExecutor) (Availability, error)
		GetAvailabilityByID(ctx context.Context, id string, exec ...core.DBExecutor) (Availability, error)
		// GetBookedSlot finds the booked slot matching a meeting's professor
		// and date/time, used to re-open it on cancellation.
		GetBookedSlot(ctx context.Context, professorName, date, tm string, exec ...core.DBExecutor) (Availability, error)
		QueryOpenSlots(ctx context.Context, exec ...core.DBExecutor) ([]Availability, error)
		QuerySlotsByProfessor(ctx context.Context, professorName string, exec ...core.DBExecutor) ([]Availability, error)
		// SetBooked flips the booked flag; callers pass their transaction so
		// booking and meeting creation commit together.
		SetBooked(ctx context.Context, id string, booked bool, exec ...core.DBExecutor) error
		DeleteAvailability(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, professorName string, na NewAvailability) (Availability, error) {
	slot := Availability{
		ProfessorName: professorName,
		Date:          na.Date,
		Time:          na.Time,
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateAvailability(ctx, slot)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Availability, error) {
	return svc.repo.GetAvailabilityByID(ctx, id)
}

// OpenSlots returns every unbooked slot, across professors.
func (svc *Service) OpenSlots(ctx context.Context) ([]Availability, error) {
	return svc.repo.QueryOpenSlots(ctx)
}

func (svc *Service) ProfessorSlots(ctx context.Context, professorName string) ([]Availability, error) {
	return svc.repo.QuerySlotsByProfessor(ctx, professorName)
}

func (svc *Service) OpenSlotCount(ctx context.Context, professorName string) (int, error) {
	slots, err := svc.repo.QuerySlotsByProfessor(ctx, professorName)
	if err != nil {
		return 0, err
	}
	var n int
	for _, slot := range slots {
		if !slot.Booked {
			n++
		}
	}
	return n, nil
}

// Delete removes a slot a professor no longer offers. Booked slots cannot
// be removed; the meeting has to be cancelled first.
func (svc *Service) Delete(ctx context.Context, id, professorName string) error {
	slot, err := svc.repo.GetAvailabilityByID(ctx, id)
	if err != nil {
		return err
	}
	if slot.ProfessorName != professorName {
		return ErrNotFound
	}
	if slot.Booked {
		return ErrSlotBooked
	}
	return svc.repo.DeleteAvailability(ctx, id)
}
