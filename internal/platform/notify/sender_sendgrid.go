package notify

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sendgridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

func newSendgridSender(cfg Config) *sendgridSender {
	fromName := cfg.FromName
	if fromName == "" {
		fromName = "Reception"
	}
	return &sendgridSender{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   mail.NewEmail(fromName, cfg.FromEmail),
	}
}

func (s *sendgridSender) SendEmail(to, subject, plain string) error {
	message := mail.NewSingleEmail(s.from, subject, mail.NewEmail("", to), plain, "")
	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", to, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sendgrid returned %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}
