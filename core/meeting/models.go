package meeting

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/collegia/collegia/core"
)

// Layouts for the stored date/time string fields.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	timestampLayout = DateLayout + " " + TimeLayout
)

// Meeting is a booked session between a student and a professor. Names and
// emails are denormalized onto the row at booking time; date and time are
// kept as separate strings and combined on read by When.
type Meeting struct {
	ID             string    `json:"id" db:"id"`
	Student        string    `json:"student" db:"student"`
	StudentEmail   string    `json:"student_email" db:"student_email"`
	Professor      string    `json:"professor" db:"professor"`
	ProfessorEmail string    `json:"professor_email" db:"professor_email"`
	Date           string    `json:"date" db:"date"` // YYYY-MM-DD
	Time           string    `json:"time" db:"time"` // HH:MM:SS
	Notes          string    `json:"notes" db:"notes"`
	Notified       bool      `json:"-" db:"notified"`             // legacy 24hr flag; reminders key off guard rows instead
	CreatedAt      time.Time `json:"created_at" db:"created_at"` // UTC
}

// When combines the stored date and time strings into a timestamp in the
// server's timezone. Rows with malformed values return an error; reminder
// scans skip those rather than fail.
func (m Meeting) When() (time.Time, error) {
	return time.ParseInLocation(timestampLayout, m.Date+" "+m.Time, time.Local)
}

// BookingForm contains what a student submits to book an open slot.
type BookingForm struct {
	Notes string `json:"notes" validate:"required"`
}

func (bf *BookingForm) Validate(validate *validator.Validate) error {
	bf.Notes = core.CleanString(bf.Notes)
	return validate.Struct(bf)
}
