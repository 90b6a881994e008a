package integration

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/mtwilk/smart-study-buddy/internal/config"
)

type EmailClient interface {
	SendAssignmentNotification(to string, details AssignmentNotification) error
	SendTestEmail(to string) error
}

// AssignmentNotification carries everything the new-assignment email needs.
type AssignmentNotification struct {
	AssignmentID string
	Title        string
	DueAt        time.Time
	Type         string
	Course       string
}

type emailClient struct {
	dialer      *gomail.Dialer
	sender      string
	senderName  string
	frontendURL string
	logger      zerolog.Logger
}

func NewEmailClient(cfg config.SMTPConfig, frontendURL string, logger zerolog.Logger) EmailClient {
	return &emailClient{
		dialer:      gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password),
		sender:      cfg.Sender,
		senderName:  cfg.SenderName,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger,
	}
}

// SendAssignmentNotification asks the user to upload materials before any
// study sessions are planned.
func (c *emailClient) SendAssignmentNotification(to string, details AssignmentNotification) error {
	assignmentURL := c.frontendURL + "/assignments"
	if details.AssignmentID != "" {
		assignmentURL = fmt.Sprintf("%s/assignments/%s", c.frontendURL, details.AssignmentID)
	}

	due := details.DueAt.Format("Monday, 2 January 2006 at 15:04")

	textBody := fmt.Sprintf(`Hi there!

I've detected a new assignment from your calendar:

Assignment: %s
Due Date: %s
Type: %s

NEXT STEP: upload your study materials (slides, syllabus, practice problems)
so I can build a personalized study plan with practice questions.

Upload materials here: %s

Once the materials are in, a study schedule is generated automatically.

Best,
Your Study Companion

---
This is an automated notification. The assignment was detected from your calendar.
`, details.Title, due, titleCase(details.Type), assignmentURL)

	htmlBody := fmt.Sprintf(`<html><body>
<h2>New Assignment Detected</h2>
<p><strong>Assignment:</strong> %s<br>
<strong>Due Date:</strong> %s<br>
<strong>Type:</strong> %s</p>
<p>Upload your study materials so a personalized study plan can be generated.</p>
<p><a href="%s">Upload materials</a></p>
<hr>
<p style="color:#666;font-size:12px">This is an automated notification. The assignment was detected from your calendar.</p>
</body></html>`, details.Title, due, titleCase(details.Type), assignmentURL)

	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(c.sender, c.senderName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("New Assignment Detected: %s", details.Title))
	msg.SetBody("text/plain", textBody)
	msg.AddAlternative("text/html", htmlBody)

	if err := c.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send assignment notification: %w", err)
	}

	c.logger.Info().
		Str("to", to).
		Str("assignment_id", details.AssignmentID).
		Msg("Assignment notification sent")

	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (c *emailClient) SendTestEmail(to string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", msg.FormatAddress(c.sender, c.senderName))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Study Companion test email")
	msg.SetBody("text/plain", "SMTP configuration works. You will receive assignment notifications at this address.")

	if err := c.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send test email: %w", err)
	}

	c.logger.Info().Str("to", to).Msg("Test email sent")
	return nil
}
