package utils

import (
	"fmt"
	"log"

	"lms/config"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers a single HTML email through Sendgrid. When no API key is
// configured the message is logged instead, so local setups work without one.
func SendEmail(to, toName, subject, htmlBody string) error {
	cfg := config.AppConfig

	if cfg.SendgridKey == "" {
		log.Printf("--- Email (not sent, no SENDGRID_API_KEY) ---\nTo: %s\nSubject: %s\n", to, subject)
		return nil
	}

	from := sgmail.NewEmail(cfg.AppName, cfg.EmailSender)
	recipient := sgmail.NewEmail(toName, to)
	message := sgmail.NewSingleEmail(from, "["+cfg.AppName+"] "+subject, recipient, "", htmlBody)

	client := sendgrid.NewSendClient(cfg.SendgridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", to, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("Sendgrid rejected email to %s: %d %s", to, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

func getEmailTemplate(title, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<body style="font-family: Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0;">
		<div style="max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px;">
			<div style="background-color: #1A2B4C; padding: 24px; text-align: center;">
				<h1 style="color: #FFFFFF; margin: 0;">%s</h1>
			</div>
			<div style="padding: 32px; color: #1A2B4C; line-height: 1.6;">
				<h2>%s</h2>
				%s
			</div>
		</div>
	</body>
	</html>
	`, config.AppConfig.AppName, title, bodyContent)
}

// --- Triggers ---

// SendWelcomeEmail greets a newly registered user.
func SendWelcomeEmail(email, name string) {
	body := fmt.Sprintf(`<p>Hi %s,</p><p>Your account is ready. Browse the catalog and enroll in your first course!</p>`, name)
	SendEmail(email, name, "Welcome!", getEmailTemplate("Welcome aboard", body))
}

// SendEnrollmentEmail confirms an enrollment.
func SendEnrollmentEmail(email, name, courseTitle string) {
	body := fmt.Sprintf(`<p>Hi %s,</p><p>You are now enrolled in <strong>%s</strong>. Happy learning!</p>`, name, courseTitle)
	SendEmail(email, name, "Enrollment confirmed", getEmailTemplate("Enrollment confirmed", body))
}
