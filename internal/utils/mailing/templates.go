package mailing

import (
	"fmt"
	"html"
)

func VerificationEmail(appURL, name, token string) (string, string) {
	link := fmt.Sprintf("%s/api/v1/users/verify?token=%s", appURL, token)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Please verify your AgriWaste account by opening the link below.</p><p><a href="%s">Verify email</a></p>`,
		html.EscapeString(name), link,
	)
	return "Verify your AgriWaste account", body
}

func ResetPasswordEmail(appURL, name, token string) (string, string) {
	link := fmt.Sprintf("%s/reset-password?token=%s", appURL, token)
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>We received a request to reset your password. The link expires in 30 minutes.</p><p><a href="%s">Reset password</a></p>`,
		html.EscapeString(name), link,
	)
	return "Reset your AgriWaste password", body
}

func QueryResponseEmail(name, subject, status, response string) (string, string) {
	body := fmt.Sprintf(
		`<p>Hi %s,</p><p>Your query <b>%s</b> was <b>%s</b>.</p><p>%s</p>`,
		html.EscapeString(name), html.EscapeString(subject), status, html.EscapeString(response),
	)
	return fmt.Sprintf("Your query has been %s", status), body
}
