package core

import "net/mail"

type (
	// EmailMessage is a plain-text email. Everything Collegia sends
	// (booking confirmations, reminders, password resets) is body-string
	// mail.
	EmailMessage struct {
		To      []mail.Address
		Cc      []mail.Address
		Subject string
		Body    string
	}

	// EmailService is any service that can send emails. SendMessages is
	// best-effort and never returns an error to the caller: transport
	// failures are logged by the implementation and swallowed.
	EmailService interface {
		SendMessages(messages ...*EmailMessage)
	}
)

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return m.Body != "" }
