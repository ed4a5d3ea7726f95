package email

import (
	"fmt"
	"html"
	"time"
)

// FromLine formats the sender line so mail appears to come from the coach.
func FromLine(coachName, fromAddress string) string {
	return fmt.Sprintf("%s via CoachForge <%s>", coachName, fromAddress)
}

// FollowUpSubject builds the recap subject line for a given date.
func FollowUpSubject(date time.Time) string {
	return fmt.Sprintf("Your session recap — %s", date.Format("January 2"))
}

// FollowUpHTML wraps the pipeline-written recap body with the greeting and
// portal block; the body itself carries no greeting or signature.
func FollowUpHTML(clientFirstName, body, portalURL string) string {
	return fmt.Sprintf(`<div style="font-family: 'Outfit', -apple-system, sans-serif; max-width: 600px; margin: 0 auto; color: #1C1917;">
  <p style="font-size: 16px;">Hi %s,</p>
  <div style="font-size: 15px; line-height: 1.8; color: #57534E; white-space: pre-wrap;">%s</div>
  <div style="margin-top: 24px; padding: 20px; background: #E6F4F4; border-radius: 12px;">
    <p style="margin: 0 0 8px; font-weight: 600; color: #0D7377;">Your Client Portal</p>
    <p style="margin: 0 0 12px; font-size: 14px; color: #57534E;">Track your progress, review action items, and see your journey.</p>
    <a href="%s" style="display: inline-block; padding: 10px 24px; background: #0D7377; color: white; border-radius: 8px; text-decoration: none; font-weight: 600; font-size: 14px;">Open Your Portal</a>
  </div>
  <p style="margin-top: 32px; font-size: 13px; color: #A8A29E;">Sent via CoachForge · <a href="https://coachforge.pro" style="color: #0D7377;">coachforge.pro</a></p>
</div>`, html.EscapeString(clientFirstName), html.EscapeString(body), portalURL)
}

// JoinLinkHTML is sent to the client when a session starts.
func JoinLinkHTML(clientFirstName, coachName, roomURL string) string {
	return fmt.Sprintf(`<div style="font-family: 'Outfit', -apple-system, sans-serif; max-width: 500px; margin: 0 auto; color: #1C1917;">
  <p style="font-size: 16px;">Hi %s,</p>
  <p style="font-size: 15px; line-height: 1.8; color: #57534E;">%s is ready for your session. Join when you are:</p>
  <div style="margin: 24px 0; text-align: center;">
    <a href="%s" style="display: inline-block; padding: 14px 32px; background: #0D7377; color: white; border-radius: 12px; text-decoration: none; font-weight: 600; font-size: 16px;">Join Session</a>
  </div>
</div>`, html.EscapeString(clientFirstName), html.EscapeString(coachName), roomURL)
}

// NudgeSubject builds the nudge subject line.
func NudgeSubject(coachName string) string {
	return fmt.Sprintf("Quick check-in from %s", coachName)
}

// NudgeHTML wraps a short nudge message.
func NudgeHTML(clientFirstName, coachName, message string) string {
	return fmt.Sprintf(`<div style="font-family: 'Outfit', -apple-system, sans-serif; max-width: 500px; margin: 0 auto; color: #1C1917;">
  <p style="font-size: 16px;">Hi %s,</p>
  <p style="font-size: 15px; line-height: 1.8; color: #57534E;">%s</p>
  <p style="margin-top: 24px; font-size: 13px; color: #A8A29E;">— %s</p>
</div>`, html.EscapeString(clientFirstName), html.EscapeString(message), html.EscapeString(coachName))
}

// InviteSubject builds the portal invite subject line.
func InviteSubject(coachName string) string {
	return fmt.Sprintf("%s has set up your coaching portal", coachName)
}

// InviteHTML is sent when a coach adds a new client.
func InviteHTML(clientFirstName, coachName, portalURL string) string {
	return fmt.Sprintf(`<div style="font-family: 'Outfit', -apple-system, sans-serif; max-width: 600px; margin: 0 auto; color: #1C1917;">
  <p style="font-size: 16px;">Hi %s,</p>
  <p style="font-size: 15px; line-height: 1.8; color: #57534E;">
    %s has set up a personal coaching portal for you. Here you'll find your session recaps, action items, and progress tracking all in one place.
  </p>
  <div style="margin: 24px 0; text-align: center;">
    <a href="%s" style="display: inline-block; padding: 14px 32px; background: #0D7377; color: white; border-radius: 12px; text-decoration: none; font-weight: 600; font-size: 16px;">Access Your Portal</a>
  </div>
  <p style="font-size: 13px; color: #A8A29E;">Powered by CoachForge · <a href="https://coachforge.pro" style="color: #0D7377;">coachforge.pro</a></p>
</div>`, html.EscapeString(clientFirstName), html.EscapeString(coachName), portalURL)
}
