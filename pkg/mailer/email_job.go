package mailer

import "fmt"

// EmailJob is the JSON payload put on the RabbitMQ queue for asynchronous
// sends (welcome emails). Password-reset emails are sent synchronously by the
// account service because their delivery failure must roll back the stored
// reset token.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// WelcomeJob builds the post-registration email.
func WelcomeJob(to, name string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome to ShopIT",
		Body:    fmt.Sprintf("Hi %s,\n\nYour ShopIT account is ready. Happy shopping!\n", name),
	}
}

// PasswordResetBody builds the reset email body embedding the raw token URL.
func PasswordResetBody(resetURL string) string {
	return fmt.Sprintf("Your password reset token is as follow:\n\n%s\n\nIf you have not requested this email, then ignore it.", resetURL)
}

// PasswordResetSubject is the subject line for reset emails.
const PasswordResetSubject = "ShopIT Password Recovery"
