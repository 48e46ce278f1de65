package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendEmail sends an HTML email through the SMTP relay configured in the
// environment.
func SendEmail(to, subject, body string) error {
	host := os.Getenv("EMAIL_HOST")
	port := os.Getenv("EMAIL_PORT")
	user := os.Getenv("EMAIL_USER")
	password := os.Getenv("EMAIL_PASS")

	if host == "" || port == "" {
		return fmt.Errorf("EMAIL_HOST/EMAIL_PORT are not set")
	}

	from := "MERN Tasks <accounts@merntasks.com>"
	message := []byte("Subject: " + subject + "\r\n" +
		"From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, password, host)
	}

	if err := smtp.SendMail(host+":"+port, auth, user, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

// RegistrationEmail builds the account confirmation message.
func RegistrationEmail(name, token string) (subject, body string) {
	subject = "MERN Tasks - Confirm your account"
	body = fmt.Sprintf(`<p>Hi %s, your account is almost ready.</p>
<p>Confirm it at the following link:</p>
<a href="%s/confirm/%s">Confirm account</a>
<p>If you did not create this account you can ignore this message.</p>`,
		name, os.Getenv("FRONTEND_URL"), token)
	return subject, body
}

// PasswordResetEmail builds the password reset message.
func PasswordResetEmail(name, token string) (subject, body string) {
	subject = "MERN Tasks - Reset your password"
	body = fmt.Sprintf(`<p>Hi %s, you requested a password reset.</p>
<p>Follow the link below to set a new password:</p>
<a href="%s/forgot-password/%s">Reset password</a>
<p>If you did not request this you can ignore this message.</p>`,
		name, os.Getenv("FRONTEND_URL"), token)
	return subject, body
}
