package mailer

import (
	"context"
	"io"
	"wymiana-plikow/internal/config"

	"gopkg.in/gomail.v2"
)

type Attachment struct {
	Filename string
	Data     []byte
}

// Mailer dispatches transactional mail. Delivery is best-effort: callers
// decide whether a failure aborts their workflow.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string, attachments ...Attachment) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

var _ Mailer = (*SMTPMailer)(nil)

func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	// gomail dials with a 10s timeout, which bounds how long a slow relay
	// can hold a request.
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string, attachments ...Attachment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	for _, att := range attachments {
		data := att.Data
		msg.Attach(att.Filename, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(data)
			return err
		}))
	}

	return m.dialer.DialAndSend(msg)
}
