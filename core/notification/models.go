package notification

import "time"

// Notification types
const (
	TypeBookingConfirmation = "booking_confirmation"
	TypeMeetingCancelled    = "meeting_cancelled"
	TypeMeetingReminder24hr = "meeting_reminder_24hr"
	TypeMeetingReminder12hr = "meeting_reminder_12hr"
)

// Notification is one entry of a user's in-app feed. MeetingID is a loose
// back-reference: the meeting may have been cancelled since, leaving the
// notification behind.
type Notification struct {
	ID        string    `json:"id" db:"id"`
	UserEmail string    `json:"user_email" db:"user_email"`
	Message   string    `json:"message" db:"message"`
	Type      string    `json:"type" db:"type"`
	IsRead    bool      `json:"is_read" db:"is_read"`
	MeetingID string    `json:"meeting_id,omitempty" db:"meeting_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
}
