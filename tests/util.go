package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/collegia/collegia/core"
	"github.com/collegia/collegia/core/meeting"
	"github.com/collegia/collegia/core/schedule"
	"github.com/collegia/collegia/core/user"
)

// NewConfig returns a minimal test configuration. It does not read the
// environment so tests behave the same everywhere.
func NewConfig() *core.Config {
	conf := &core.Config{
		Env:              "TEST",
		TestMode:         true,
		AppName:          "Collegia",
		SecretKey:        []byte("s3cr3t-t3st-k3y"),
		FrontendBaseURL:  "http://localhost:3000",
		DefaultFromEmail: mail.Address{Name: "Collegia Team", Address: "noreply@collegia.app"},

		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	return conf
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Role:      role,
		Name:      name,
		Email:     email,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSlot(
	t *testing.T,
	repo schedule.Repository,
	professorName, date, tm string,
	booked bool,
) schedule.Availability {
	t.Helper()
	slot := schedule.Availability{
		ProfessorName: professorName,
		Date:          date,
		Time:          tm,
		Booked:        booked,
		CreatedAt:     time.Now().UTC(),
	}
	slot, err := repo.CreateAvailability(context.Background(), slot)
	if err != nil {
		t.Fatalf("CreateSlot() failed: %v", err)
	}
	return slot
}

func CreateMeeting(
	t *testing.T,
	repo meeting.Repository,
	student, professor user.User,
	date, tm, notes string,
) meeting.Meeting {
	t.Helper()
	mtg := meeting.Meeting{
		Student:        student.Name,
		StudentEmail:   student.Email,
		Professor:      professor.Name,
		ProfessorEmail: professor.Email,
		Date:           date,
		Time:           tm,
		Notes:          notes,
		CreatedAt:      time.Now().UTC(),
	}
	mtg, err := repo.CreateMeeting(context.Background(), mtg)
	if err != nil {
		t.Fatalf("CreateMeeting() failed: %v", err)
	}
	return mtg
}
