package email

import (
	"fmt"
	"html"
	"time"
)

// Message is an addressed, rendered email ready for a Sender.
type Message struct {
	Subject  string
	HTMLBody string
}

func ReservationConfirmation(name, service string, scheduledAt, deadline time.Time) Message {
	return Message{
		Subject: "Your reservation is in, complete payment to confirm",
		HTMLBody: fmt.Sprintf(
			"<h2>Hi %s,</h2>"+
				"<p>Your <strong>%s</strong> appointment is reserved for <strong>%s</strong>.</p>"+
				"<p>Please complete your payment before <strong>%s</strong>. "+
				"Unpaid reservations are cancelled automatically once the deadline passes.</p>",
			html.EscapeString(name),
			html.EscapeString(service),
			scheduledAt.Format("Monday, 2 January 2006 at 15:04"),
			deadline.Format("Monday, 2 January 2006 at 15:04")),
	}
}

func ReservationCancellation(name, service string, scheduledAt time.Time) Message {
	return Message{
		Subject: "Your reservation was cancelled",
		HTMLBody: fmt.Sprintf(
			"<h2>Hi %s,</h2>"+
				"<p>Your <strong>%s</strong> appointment on <strong>%s</strong> has been cancelled.</p>"+
				"<p>You are welcome to book a new slot any time.</p>",
			html.EscapeString(name),
			html.EscapeString(service),
			scheduledAt.Format("Monday, 2 January 2006 at 15:04")),
	}
}

func KYCReceived(name string) Message {
	return Message{
		Subject: "We received your booking intake",
		HTMLBody: fmt.Sprintf(
			"<h2>Hi %s,</h2><p>Thanks for your submission. We will review it shortly and let you know the outcome.</p>",
			html.EscapeString(name)),
	}
}

func KYCVerdict(name string, approved bool, reason string) Message {
	if approved {
		return Message{
			Subject: "You're verified, welcome!",
			HTMLBody: fmt.Sprintf(
				"<h2>Hi %s,</h2><p>Your booking intake has been approved. You can now book appointments with us.</p>",
				html.EscapeString(name)),
		}
	}
	body := fmt.Sprintf("<h2>Hi %s,</h2><p>We could not approve your booking intake.</p>", html.EscapeString(name))
	if reason != "" {
		body += fmt.Sprintf("<p>Reason: %s</p>", html.EscapeString(reason))
	}
	return Message{Subject: "About your booking intake", HTMLBody: body}
}

func Test(recipient string) Message {
	return Message{
		Subject: "Test message from the studio dashboard",
		HTMLBody: fmt.Sprintf(
			"<p>This is a test message sent to %s. If you are reading this, email delivery works.</p>",
			html.EscapeString(recipient)),
	}
}
