package schedule

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/collegia/collegia/core"
)

// Availability is one bookable slot a professor has opened up. Date and
// Time are stored as strings, the same shape meetings use.
type Availability struct {
	ID            string    `json:"id" db:"id"`
	ProfessorName string    `json:"professor_name" db:"professor_name"`
	Date          string    `json:"date" db:"date"` // YYYY-MM-DD
	Time          string    `json:"time" db:"time"` // HH:MM:SS
	Booked        bool      `json:"booked" db:"booked"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"` // UTC
}

// NewAvailability contains information needed to open a slot.
type NewAvailability struct {
	Date string `json:"date" validate:"required,datestr"`
	Time string `json:"time" validate:"required,timestr"`
}

func (na *NewAvailability) Validate(validate *validator.Validate) error {
	na.Date = core.CleanString(na.Date)
	na.Time = core.CleanString(na.Time)
	return validate.Struct(na)
}
