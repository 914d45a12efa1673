package meeting

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
)

var (
	ErrNotFound          = errors.New("meeting not found")
	ErrProfessorNotFound = errors.New("professor account not found")
)

type (
	Repository interface {
		CreateMeeting(ctx context.Context, mtg Meeting, exec ...core.DBExecutor) (Meeting, error)
		GetMeetingByID(ctx context.Context, id string, exec ...core.DBExecutor) (Meeting, error)
		// QueryMeetingsByDate matches the stored date string exactly.
		QueryMeetingsByDate(ctx context.Context, date string, exec ...core.DBExecutor) ([]Meeting, error)
		QueryMeetingsByStudentEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]Meeting, error)
		QueryMeetingsByProfessorEmail(ctx context.Context, email string, exec ...core.DBExecutor) ([]Meeting, error)
		DeleteMeeting(ctx context.Context, id string, exec ...core.DBExecutor) error
	}

	Service struct {
		db        core.DB
		repo      Repository
		slotRepo  schedule.Repository
		userRepo  user.Repository
		notifRepo notification.Repository
		mailSvc   core.EmailService
		conf      *core.Config
	}
)

func NewService(
	db core.DB,
	repo Repository,
	slotRepo schedule.Repository,
	userRepo user.Repository,
	notifRepo notification.Repository,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		db:        db,
		repo:      repo,
		slotRepo:  slotRepo,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		mailSvc:   mailSvc,
		conf:      conf,
	}
}

func (svc *Service) GetByID(ctx context.Context, id string) (Meeting, error) {
	return svc.repo.GetMeetingByID(ctx, id)
}

func (svc *Service) StudentMeetings(ctx context.Context, email string) ([]Meeting, error) {
	return svc.repo.QueryMeetingsByStudentEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) ProfessorMeetings(ctx context.Context, email string) ([]Meeting, error) {
	return svc.repo.QueryMeetingsByProfessorEmail(ctx, core.CleanString(email, true /* lower */))
}

// Book turns an open slot into a Meeting for the given student: the slot is
// marked booked, the meeting row is written and both parties get a
// booking_confirmation feed entry, all in one transaction. Confirmation
// mail goes out after commit, best-effort.
func (svc *Service) Book(ctx context.Context, student user.User, slotID string, form BookingForm) (Meeting, error) {
	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return Meeting{}, errors.Wrap(err, "beginning booking transaction")
	}
	defer func() { _ = tx.Rollback() }()

	slot, err := svc.slotRepo.GetAvailabilityByID(ctx, slotID, tx)
	if err != nil {
		return Meeting{}, err
	}
	if slot.Booked {
		return Meeting{}, schedule.ErrSlotBooked
	}

	professor, err := svc.userRepo.GetUserByName(ctx, slot.ProfessorName, tx)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return Meeting{}, ErrProfessorNotFound
		}
		return Meeting{}, err
	}

	if err = svc.slotRepo.SetBooked(ctx, slot.ID, true, tx); err != nil {
		return Meeting{}, err
	}

	mtg := Meeting{
		Student:        student.Name,
		StudentEmail:   student.Email,
		Professor:      professor.Name,
		ProfessorEmail: professor.Email,
		Date:           slot.Date,
		Time:           slot.Time,
		Notes:          form.Notes,
		CreatedAt:      time.Now().UTC(),
	}
	mtg, err = svc.repo.CreateMeeting(ctx, mtg, tx)
	if err != nil {
		return Meeting{}, err
	}

	studentMsg := fmt.Sprintf("Session confirmed: %s at %s with %s", mtg.Date, mtg.Time, mtg.Professor)
	profMsg := fmt.Sprintf("%s booked your session on %s at %s", mtg.Student, mtg.Date, mtg.Time)
	for _, n := range []notification.Notification{
		{UserEmail: mtg.StudentEmail, Message: studentMsg, Type: notification.TypeBookingConfirmation, MeetingID: mtg.ID},
		{UserEmail: mtg.ProfessorEmail, Message: profMsg, Type: notification.TypeBookingConfirmation, MeetingID: mtg.ID},
	} {
		n.CreatedAt = time.Now().UTC()
		if _, err = svc.notifRepo.CreateNotification(ctx, n, tx); err != nil {
			return Meeting{}, err
		}
	}

	if err = tx.Commit(); err != nil {
		return Meeting{}, errors.Wrap(err, "committing booking")
	}

	svc.sendBookingMail(mtg)
	return mtg, nil
}

// Cancel deletes the meeting, re-opens the matching slot when one can still
// be found, and notifies the party that did not cancel. Reminder
// notifications already written for this meeting are left in place.
func (svc *Service) Cancel(ctx context.Context, id string, actor user.User) error {
	mtg, err := svc.repo.GetMeetingByID(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsAdmin() && actor.Email != mtg.StudentEmail && actor.Email != mtg.ProfessorEmail {
		return ErrNotFound
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning cancellation transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = svc.repo.DeleteMeeting(ctx, mtg.ID, tx); err != nil {
		return err
	}

	// the slot may have been deleted by the professor in the meantime
	if slot, sErr := svc.slotRepo.GetBookedSlot(ctx, mtg.Professor, mtg.Date, mtg.Time, tx); sErr == nil {
		if err = svc.slotRepo.SetBooked(ctx, slot.ID, false, tx); err != nil {
			return err
		}
	} else if errors.Cause(sErr) != schedule.ErrNotFound {
		return sErr
	}

	other := mtg.ProfessorEmail
	otherName := mtg.Professor
	if actor.Email == mtg.ProfessorEmail {
		other = mtg.StudentEmail
		otherName = mtg.Student
	}
	notif := notification.Notification{
		UserEmail: other,
		Message:   fmt.Sprintf("Meeting on %s at %s was cancelled by %s", mtg.Date, mtg.Time, actor.Name),
		Type:      notification.TypeMeetingCancelled,
		MeetingID: mtg.ID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err = svc.notifRepo.CreateNotification(ctx, notif, tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "committing cancellation")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: otherName, Address: other}},
		Subject: "Meeting Cancelled",
		Body: fmt.Sprintf(
			"Hi %s,\n\nYour meeting on %s at %s was cancelled by %s.\n\n- %s Team",
			otherName, mtg.Date, mtg.Time, actor.Name, svc.conf.AppName,
		),
	})
	return nil
}

func (svc *Service) sendBookingMail(mtg Meeting) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:      []mail.Address{{Name: mtg.Student, Address: mtg.StudentEmail}},
			Subject: "Meeting Booked",
			Body: fmt.Sprintf(
				"Hi %s,\n\nYour meeting with %s on %s at %s is confirmed.\n\nNotes: %s\n\n- %s Team",
				mtg.Student, mtg.Professor, mtg.Date, mtg.Time, mtg.Notes, svc.conf.AppName,
			),
		},
		&core.EmailMessage{
			To:      []mail.Address{{Name: mtg.Professor, Address: mtg.ProfessorEmail}},
			Subject: "New Booking",
			Body: fmt.Sprintf(
				"Hi Prof. %s,\n\n%s booked your session on %s at %s.\n\nNotes: %s\n\n- %s Team",
				mtg.Professor, mtg.Student, mtg.Date, mtg.Time, mtg.Notes, svc.conf.AppName,
			),
		},
	)
}
