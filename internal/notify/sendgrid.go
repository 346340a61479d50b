package notify

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/fairyhunter13/storefront/internal/obs"
)

const defaultSendGridHost = "https://api.sendgrid.com"

// SendGridMailer delivers messages through the SendGrid v3 API.
type SendGridMailer struct {
	apiKey   string
	from     string
	fromName string
	host     string
}

func NewSendGridMailer(apiKey, from, fromName string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, from: from, fromName: fromName, host: defaultSendGridHost}
}

// WithHost points the mailer at another API host.
func (c *SendGridMailer) WithHost(host string) *SendGridMailer {
	c.host = host
	return c
}

func (c *SendGridMailer) Send(ctx context.Context, msg Message) error {
	if c.apiKey == "" {
		return errors.New("sendgrid api key is empty")
	}
	if c.from == "" {
		return errors.New("from address is empty")
	}
	if msg.To == "" {
		return errors.New("to address is empty")
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(c.fromName, c.from),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Text,
		fmt.Sprintf("<pre>%s</pre>", html.EscapeString(msg.Text)),
	)

	request := sendgrid.GetRequest(c.apiKey, "/v3/mail/send", c.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("sendgrid send error: %w", err)
	}
	if response.StatusCode >= 400 {
		obs.Logger.Warnw("sendgrid_rejected", "status", response.StatusCode, "body", response.Body)
		return fmt.Errorf("sendgrid send failed: status=%d", response.StatusCode)
	}

	obs.Logger.Infow("mail_sent", "status", response.StatusCode, "to", msg.To, "subject", msg.Subject)
	return nil
}
