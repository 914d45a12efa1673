package reminder

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/notification"
	"github.com/collegia/collegia/core/user"
	logsvc "github.com/collegia/collegia/services/logger"
	dummydb "github.com/collegia/collegia/storage/database/dummy"
)

type mailerMock struct {
	mu   sync.Mutex
	sent []core.EmailMessage

	// drop simulates a dead transport: messages vanish without a trace,
	// as a real send failure would (sends are fire and forget).
	drop bool
}

func (m *mailerMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.drop {
		return
	}
	for _, msg := range messages {
		m.sent = append(m.sent, *msg)
	}
}

func (m *mailerMock) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type fixture struct {
	db        *dummydb.DB
	usrRepo   user.Repository
	mtgRepo   meeting.Repository
	notifRepo notification.Repository
	mailer    *mailerMock
	engine    *Engine
	now       time.Time
	student   user.User
	professor user.User
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	fix := &fixture{
		db:        db,
		usrRepo:   dummydb.NewUserRepository(db),
		mtgRepo:   dummydb.NewMeetingRepository(db),
		notifRepo: dummydb.NewNotificationRepository(db),
		mailer:    &mailerMock{},
		now:       now,
	}
	fix.engine = NewEngine(
		db,
		fix.mtgRepo,
		fix.usrRepo,
		fix.notifRepo,
		fix.mailer,
		core.ClockFunc(func() time.Time { return now }),
		logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
	)

	ctx := context.Background()
	fix.student, err = fix.usrRepo.CreateUser(ctx, user.User{
		Role: user.RoleStudent, Name: "Jane Doe", Email: "jane@test.cd",
	})
	require.NoError(t, err)
	fix.professor, err = fix.usrRepo.CreateUser(ctx, user.User{
		Role: user.RoleProfessor, Name: "Ada Lovelace", Email: "ada@test.cd",
	})
	require.NoError(t, err)
	return fix
}

func (fix *fixture) addMeeting(t *testing.T, date, tm string) meeting.Meeting {
	t.Helper()
	mtg, err := fix.mtgRepo.CreateMeeting(context.Background(), meeting.Meeting{
		Student:        fix.student.Name,
		StudentEmail:   fix.student.Email,
		Professor:      fix.professor.Name,
		ProfessorEmail: fix.professor.Email,
		Date:           date,
		Time:           tm,
		Notes:          "thesis check-in",
	})
	require.NoError(t, err)
	return mtg
}

func (fix *fixture) guards(t *testing.T, meetingID, typ string) int {
	t.Helper()
	var n int
	for _, email := range []string{fix.student.Email, fix.professor.Email} {
		feed, err := fix.notifRepo.QueryNotificationsByEmail(context.Background(), email)
		require.NoError(t, err)
		for _, notif := range feed {
			if notif.MeetingID == meetingID && notif.Type == typ {
				n++
			}
		}
	}
	return n
}

func TestCheckUpcomingMeetings24hr(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)
	mtg := fix.addMeeting(t, "2021-03-11", "10:00:00")

	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))

	assert.Equal(t, 2, fix.mailer.sentCount())
	assert.Equal(t, 2, fix.guards(t, mtg.ID, notification.TypeMeetingReminder24hr))
	assert.Equal(t, 0, fix.guards(t, mtg.ID, notification.TypeMeetingReminder12hr))

	// a second scan at the same instant is a no-op
	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 2, fix.mailer.sentCount())
	assert.Equal(t, 2, fix.guards(t, mtg.ID, notification.TypeMeetingReminder24hr))
}

func TestCheckUpcomingMeetings12hrWindow(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)

	tests := []struct {
		name     string
		tm       string
		reminded bool
	}{
		{"9 hours out is too early", "15:00:00", false},
		{"10 hours out is the lower bound", "16:00:00", true},
		{"14 hours out is the upper bound", "20:00:00", true},
		{"15 hours out is too late", "21:00:00", false},
		{"already started", "05:00:00", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mtg := fix.addMeeting(t, "2021-03-10", tt.tm)
			require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
			want := 0
			if tt.reminded {
				want = 2
			}
			assert.Equal(t, want, fix.guards(t, mtg.ID, notification.TypeMeetingReminder12hr))
		})
	}
}

func TestCheckUpcomingMeetingsSkipsMalformedTime(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)
	bad := fix.addMeeting(t, "2021-03-10", "sometime later")
	good := fix.addMeeting(t, "2021-03-10", "18:00:00")

	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))

	assert.Equal(t, 0, fix.guards(t, bad.ID, notification.TypeMeetingReminder12hr))
	assert.Equal(t, 2, fix.guards(t, good.ID, notification.TypeMeetingReminder12hr))
}

func TestCheckUpcomingMeetingsNoMeetings(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)

	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 0, fix.mailer.sentCount())
}

func TestCheckUpcomingMeetingsMissingAccountSideIsSkipped(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)
	mtg, err := fix.mtgRepo.CreateMeeting(context.Background(), meeting.Meeting{
		Student:        fix.student.Name,
		StudentEmail:   fix.student.Email,
		Professor:      "Gone Prof",
		ProfessorEmail: "gone@test.cd",
		Date:           "2021-03-11",
		Time:           "10:00:00",
	})
	require.NoError(t, err)

	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))

	// only the student side gets dispatched
	assert.Equal(t, 1, fix.mailer.sentCount())
	assert.Equal(t, fix.student.Email, fix.mailer.sent[0].To[0].Address)
	assert.Equal(t, 1, fix.guards(t, mtg.ID, notification.TypeMeetingReminder24hr))

	// and the pair is handled, not retried
	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 1, fix.mailer.sentCount())
}

func TestCheckUpcomingMeetingsGuardSurvivesDeadTransport(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)
	mtg := fix.addMeeting(t, "2021-03-11", "10:00:00")

	fix.mailer.drop = true
	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 0, fix.mailer.sentCount())
	assert.Equal(t, 2, fix.guards(t, mtg.ID, notification.TypeMeetingReminder24hr))

	// transport comes back; the window stays spent
	fix.mailer.drop = false
	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 0, fix.mailer.sentCount())
}

func TestCheckUpcomingMeetingsBothWindowsSameMeeting(t *testing.T) {
	// a meeting first seen tomorrow, then seen again on its own day within
	// the 12hr window, gets one reminder per window
	fix := newFixture(t, time.Date(2021, 3, 10, 12, 0, 0, 0, time.Local))
	mtg := fix.addMeeting(t, "2021-03-11", "20:00:00")

	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 2, fix.guards(t, mtg.ID, notification.TypeMeetingReminder24hr))

	*fix.engine = *NewEngine(
		fix.db, fix.mtgRepo, fix.usrRepo, fix.notifRepo, fix.mailer,
		core.ClockFunc(func() time.Time { return time.Date(2021, 3, 11, 8, 0, 0, 0, time.Local) }),
		logsvc.NewStdLogger(log.New(io.Discard, "", 0)),
	)
	require.NoError(t, fix.engine.CheckUpcomingMeetings(context.Background()))
	assert.Equal(t, 2, fix.guards(t, mtg.ID, notification.TypeMeetingReminder12hr))
	assert.Equal(t, 2, fix.guards(t, mtg.ID, notification.TypeMeetingReminder24hr))
	assert.Equal(t, 4, fix.mailer.sentCount())
}

func TestCheckUpcomingMeetingsCommitFailure(t *testing.T) {
	now := time.Date(2021, 3, 10, 6, 0, 0, 0, time.Local)
	fix := newFixture(t, now)
	fix.addMeeting(t, "2021-03-11", "10:00:00")

	fix.db.FailCommit = true
	err := fix.engine.CheckUpcomingMeetings(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "committing reminder scan")
}
