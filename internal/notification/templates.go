package notification

import (
	"fmt"
	"time"
)

// Template renders a {title, message} pair from domain parameters.
// Templates are pure; the emitter attaches type, target user, read
// flag and creation instant.

func KYCSubmittedTemplate(name string) (string, string) {
	return "Verification received",
		fmt.Sprintf("Thanks %s, we received your booking intake form. We will review it shortly.", name)
}

func KYCApprovedTemplate(name string) (string, string) {
	return "Verification approved",
		fmt.Sprintf("Great news %s, your booking intake has been approved. You can now book appointments.", name)
}

func KYCRejectedTemplate(name, reason string) (string, string) {
	msg := fmt.Sprintf("Sorry %s, we could not approve your booking intake.", name)
	if reason != "" {
		msg = fmt.Sprintf("%s Reason: %s", msg, reason)
	}
	return "Verification rejected", msg
}

func ReservationCreatedTemplate(service string, scheduledAt time.Time) (string, string) {
	return "Reservation created",
		fmt.Sprintf("Your %s appointment on %s is reserved. Please complete payment before the deadline to confirm it.",
			service, scheduledAt.Format("Mon, 2 Jan 2006 at 15:04"))
}

func ReservationCancelledTemplate(service string, scheduledAt time.Time) (string, string) {
	return "Reservation cancelled",
		fmt.Sprintf("Your %s appointment on %s has been cancelled.",
			service, scheduledAt.Format("Mon, 2 Jan 2006 at 15:04"))
}

func AdminNewKYCTemplate(name string) (string, string) {
	return "New intake submission",
		fmt.Sprintf("%s submitted a booking intake form awaiting review.", name)
}
