package notification

import (
	"fmt"
	"net/url"
)

const dateLayout = "02/01/2006"
const timeLayout = "15:04"

func confirmationLink(baseURL, token, decision string) string {
	return fmt.Sprintf("%s/meeting-response?token=%s&response=%s",
		baseURL, url.QueryEscape(token), decision)
}

func renderInvitation(baseURL string, inv Invitation) (subject, html, text string) {
	acceptURL := confirmationLink(baseURL, inv.Token, "accept")
	declineURL := confirmationLink(baseURL, inv.Token, "decline")

	greeting := "Hello"
	if inv.AttendeeName != "" {
		greeting = "Hello " + inv.AttendeeName
	}

	subject = fmt.Sprintf("Invitation: %s (%s)", inv.BookingTitle, inv.Start.Format(dateLayout))

	html = fmt.Sprintf(`<html><body>
<p>%s,</p>
<p><strong>%s</strong> invited you to a meeting.</p>
<table>
  <tr><td><strong>Title</strong></td><td>%s</td></tr>
  <tr><td><strong>Room</strong></td><td>%s</td></tr>
  <tr><td><strong>Date</strong></td><td>%s</td></tr>
  <tr><td><strong>Time</strong></td><td>%s &ndash; %s</td></tr>
</table>
<p>%s</p>
<p>
  <a href="%s">Accept</a> &nbsp;|&nbsp; <a href="%s">Decline</a>
</p>
<p>This link can be used only once.</p>
</body></html>`,
		greeting, inv.OrganizerName, inv.BookingTitle, inv.RoomName,
		inv.Start.Format(dateLayout),
		inv.Start.Format(timeLayout), inv.End.Format(timeLayout),
		inv.Description, acceptURL, declineURL)

	text = fmt.Sprintf("%s,\n\n%s invited you to %q in room %s on %s from %s to %s.\n\nAccept: %s\nDecline: %s\n",
		greeting, inv.OrganizerName, inv.BookingTitle, inv.RoomName,
		inv.Start.Format(dateLayout),
		inv.Start.Format(timeLayout), inv.End.Format(timeLayout),
		acceptURL, declineURL)

	return subject, html, text
}

func renderCancellation(cn Cancellation) (subject, html, text string) {
	subject = fmt.Sprintf("Cancelled: %s (%s)", cn.BookingTitle, cn.Start.Format(dateLayout))

	html = fmt.Sprintf(`<html><body>
<p>The meeting <strong>%s</strong> in room %s, scheduled for %s at %s, was cancelled by %s.</p>
<p>No action is needed.</p>
</body></html>`,
		cn.BookingTitle, cn.RoomName,
		cn.Start.Format(dateLayout), cn.Start.Format(timeLayout),
		cn.OrganizerName)

	text = fmt.Sprintf("The meeting %q in room %s, scheduled for %s at %s, was cancelled by %s.\n",
		cn.BookingTitle, cn.RoomName,
		cn.Start.Format(dateLayout), cn.Start.Format(timeLayout),
		cn.OrganizerName)

	return subject, html, text
}
