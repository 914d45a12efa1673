package reminder

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/user"
)

// Reminder windows. The 12hr window is a [10,14] hour buffer around the
// nominal lead time so a meeting is not missed between hourly scans.
const (
	window12hrMin = 10.0
	window12hrMax = 14.0
)

// Engine scans meetings and makes sure every qualifying (meeting, window)
// pair gets notified exactly once. Idempotence comes from guard rows: a
// notification keyed by (meeting id, window type) marks the pair handled,
// whether or not the email transport cooperated.
type Engine struct {
	db          core.DB
	meetingRepo meeting.Repository
	userRepo    user.Repository
	notifRepo   notification.Repository
	mailSvc     core.EmailService
	clock       core.Clock
	logger      core.Logger
}

func NewEngine(
	db core.DB,
	meetingRepo meeting.Repository,
	userRepo user.Repository,
	notifRepo notification.Repository,
	mailSvc core.EmailService,
	clock core.Clock,
	logger core.Logger,
) *Engine {
	return &Engine{
		db:          db,
		meetingRepo: meetingRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		mailSvc:     mailSvc,
		clock:       clock,
		logger:      logger,
	}
}

// CheckUpcomingMeetings runs one scan: meetings dated tomorrow get a 24hr
// reminder, meetings later today a 12hr one. All guard rows created during
// the scan commit together at the end; a commit failure bubbles up so the
// next tick retries with nothing persisted.
func (e *Engine) CheckUpcomingMeetings(ctx context.Context) error {
	now := e.clock.Now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning reminder scan transaction")
	}
	defer func() { _ = tx.Rollback() }()

	tomorrow := now.AddDate(0, 0, 1).Format(meeting.DateLayout)
	meetings24hr, err := e.meetingRepo.QueryMeetingsByDate(ctx, tomorrow, tx)
	if err != nil {
		return errors.Wrapf(err, "querying meetings on %s", tomorrow)
	}
	e.logger.Debug(fmt.Sprintf("reminder scan: %d meeting(s) on %s (24hr check)", len(meetings24hr), tomorrow))

	for _, mtg := range meetings24hr {
		exists, gErr := e.notifRepo.ReminderExists(ctx, mtg.ID, notification.TypeMeetingReminder24hr, tx)
		if gErr != nil {
			e.logger.Error("checking 24hr reminder guard", gErr)
			continue
		}
		if exists {
			continue // already handled
		}
		e.notifyParties(ctx, tx, mtg, notification.TypeMeetingReminder24hr)
	}

	today := now.Format(meeting.DateLayout)
	meetings12hr, err := e.meetingRepo.QueryMeetingsByDate(ctx, today, tx)
	if err != nil {
		return errors.Wrapf(err, "querying meetings on %s", today)
	}
	e.logger.Debug(fmt.Sprintf("reminder scan: %d meeting(s) on %s (12hr check)", len(meetings12hr), today))

	for _, mtg := range meetings12hr {
		when, pErr := mtg.When()
		if pErr != nil {
			// malformed rows must not abort the scan
			e.logger.Warn(fmt.Sprintf("skipping meeting %s: unparsable time %q %q", mtg.ID, mtg.Date, mtg.Time))
			continue
		}
		hoursUntil := when.Sub(now).Hours()
		if hoursUntil < window12hrMin || hoursUntil > window12hrMax {
			continue
		}
		exists, gErr := e.notifRepo.ReminderExists(ctx, mtg.ID, notification.TypeMeetingReminder12hr, tx)
		if gErr != nil {
			e.logger.Error("checking 12hr reminder guard", gErr)
			continue
		}
		if exists {
			continue
		}
		e.notifyParties(ctx, tx, mtg, notification.TypeMeetingReminder12hr)
	}

	return errors.Wrap(tx.Commit(), "committing reminder scan")
}

// notifyParties dispatches one (meeting, window) pair to the student and
// the professor independently: a side whose account cannot be resolved is
// skipped, a failed send never blocks the sibling, and the guard row is
// written regardless of the send outcome.
func (e *Engine) notifyParties(ctx context.Context, tx core.DBTransactor, mtg meeting.Meeting, typ string) {
	recipients := []struct {
		email       string
		counterpart string
	}{
		{email: mtg.StudentEmail, counterpart: mtg.Professor},
		{email: mtg.ProfessorEmail, counterpart: mtg.Student},
	}

	for _, rcp := range recipients {
		usr, err := e.userRepo.GetUserByEmail(ctx, rcp.email, tx)
		if err != nil {
			if errors.Cause(err) != user.ErrNotFound {
				e.logger.Error("resolving reminder recipient", err)
			}
			continue // no account, no reminder for this side only
		}

		subject, body, feedMsg := e.compose(usr, mtg, rcp.counterpart, typ)
		e.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject: subject,
			Body:    body,
		})

		notif := notification.Notification{
			UserEmail: usr.Email,
			Message:   feedMsg,
			Type:      typ,
			MeetingID: mtg.ID,
			CreatedAt: time.Now().UTC(),
		}
		if _, err = e.notifRepo.CreateNotification(ctx, notif, tx); err != nil {
			e.logger.Error("writing reminder guard row", err)
		}
	}
}

func (e *Engine) compose(usr user.User, mtg meeting.Meeting, counterpart, typ string) (subject, body, feedMsg string) {
	greeting := usr.Name
	if usr.IsProfessor() {
		greeting = "Prof. " + usr.Name
	}

	switch typ {
	case notification.TypeMeetingReminder12hr:
		subject = "Meeting in 12 Hours"
		body = fmt.Sprintf(
			"Hi %s,\n\nYour meeting with %s starts in about 12 hours, today (%s) at %s.\n\nNotes: %s\n\nSee you there!\n\n- Collegia Team",
			greeting, counterpart, mtg.Date, mtg.Time, mtg.Notes,
		)
		feedMsg = fmt.Sprintf("Meeting in 12 hours! %s with %s", mtg.Time, counterpart)
	default: // 24hr
		subject = "Meeting Tomorrow - 24 Hour Reminder"
		body = fmt.Sprintf(
			"Hi %s,\n\nYou have a meeting tomorrow (%s) at %s with %s.\n\nNotes: %s\n\nSee you there!\n\n- Collegia Team",
			greeting, mtg.Date, mtg.Time, counterpart, mtg.Notes,
		)
		feedMsg = fmt.Sprintf("Reminder: Meeting tomorrow at %s with %s", mtg.Time, counterpart)
	}
	return subject, body, feedMsg
}
