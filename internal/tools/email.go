package tools

import (
	"context"
	"fmt"

	"github.com/npetros/argosales/internal/llm"
	"github.com/npetros/argosales/internal/mailer"
)

const mailExtractionPrompt = `Given the query: "%s", analyze the content and extract the necessary information to send an email. The information needed includes the recipient's email address, the subject of the email, and the body content of the email.
Return a JSON object where the keys are 'recipient', 'subject', and 'body', and the values are the corresponding pieces of information extracted from the query.
For example, if the query was about sending an email to notify someone of an upcoming event, the output should look like this:
{
    "recipient": "example@example.com",
    "subject": "Upcoming Event Notification",
    "body": "Dear [Name], we would like to remind you of the upcoming event happening next week. We look forward to seeing you there."
}`

// NewSendEmailTool builds the SendEmail action: extract recipient, subject
// and body from the query, then deliver through the relay. Extraction and
// delivery failures are both folded into the status string — email delivery
// problems are something for the model to apologize about, not a crash.
func NewSendEmailTool(client llm.Client, sender mailer.Sender) *Tool {
	return &Tool{
		Name: "SendEmail",
		Description: "Sends an email based on the query input. " +
			"The query should specify the recipient, subject, and body of the email.",
		Handler: func(ctx context.Context, input string) (string, error) {
			var details struct {
				Recipient string `json:"recipient"`
				Subject   string `json:"subject"`
				Body      string `json:"body"`
			}
			if err := llm.Extract(ctx, client, fmt.Sprintf(mailExtractionPrompt, input), &details); err != nil {
				return fmt.Sprintf("Email was not sent successfully, error: %v", err), nil
			}
			if details.Recipient == "" {
				return "Email was not sent successfully, error: no recipient address found in the request.", nil
			}

			err := sender.Send(ctx, mailer.Message{
				Recipient: details.Recipient,
				Subject:   details.Subject,
				Body:      details.Body,
			})
			if err != nil {
				return fmt.Sprintf("Email was not sent successfully, error: %v", err), nil
			}
			return "Email sent successfully.", nil
		},
	}
}
