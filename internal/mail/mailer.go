package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers messages. Activation mail failures propagate to the caller;
// restoration mail is best effort and the recovery service only logs failures.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through a single SMTP relay with PLAIN auth.
type SMTPMailer struct {
	host   string
	port   int
	user   string
	pass   string
	from   string
	logger *zap.Logger
}

// NewSMTPMailer builds an SMTP-backed mailer.
func NewSMTPMailer(host string, port int, user, pass, from string, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:   host,
		port:   port,
		user:   user,
		pass:   pass,
		from:   from,
		logger: logger,
	}
}

// Send delivers one message. smtp.SendMail blocks; the context is checked up
// front so cancelled requests do not start a dial.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.pass, m.host)
	}

	var payload strings.Builder
	payload.WriteString("From: " + m.from + "\r\n")
	payload.WriteString("To: " + msg.To + "\r\n")
	payload.WriteString("Subject: " + msg.Subject + "\r\n")
	payload.WriteString("MIME-Version: 1.0\r\n")
	payload.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	payload.WriteString("\r\n")
	payload.WriteString(msg.Body)
	payload.WriteString("\r\n")

	if err := smtp.SendMail(addr, auth, m.from, []string{msg.To}, []byte(payload.String())); err != nil {
		m.logger.Error("smtp send failed", zap.String("to", msg.To), zap.Error(err))
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Info("mail sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}
