package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

// Mailgun sends transactional mail for one domain.
type Mailgun struct {
	client *mg.MailgunImpl
	Sender string
}

// NewMailgun builds the client once; apiBase overrides the region endpoint
// (for example mg.APIBaseEU) when non-empty.
func NewMailgun(domain, apiKey, sender, apiBase string) *Mailgun {
	client := mg.NewMailgun(domain, apiKey)
	if apiBase != "" {
		client.SetAPIBase(apiBase)
	}
	return &Mailgun{client: client, Sender: sender}
}

// Send delivers one message. html is optional; tags label the message in
// Mailgun analytics.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string, tags ...string) error {
	if to == "" {
		return errors.New("mailgun: empty recipient")
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	for _, t := range tags {
		if t == "" {
			continue
		}
		if err := msg.AddTag(t); err != nil {
			return err
		}
	}
	c, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
